package repository

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	libdb "meterbill/backend/libs/db"
)

// TARIFF_TEST_POSTGRES_DSN must point at a disposable database: the test empties the history table.
func TestPostgresCalculationRepository(t *testing.T) {
	dsn := os.Getenv("TARIFF_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TARIFF_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()

	pool, err := libdb.NewPostgresPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, libdb.Migrate(ctx, pool, CalculationsSchema...))

	repo := NewPostgresCalculationRepository(pool)
	_, err = repo.DeleteAll(ctx)
	require.NoError(t, err)

	exerciseCalculationStore(t, repo)
}
