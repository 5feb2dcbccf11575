package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meterbill/backend/services/tariff-service/internal/repository"
)

func TestStatusService(t *testing.T) {
	svc := NewStatusService(repository.NewMemoryStatusRepository(10))
	ctx := context.Background()

	empty, err := svc.ListStatusChecks(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	check, err := svc.CreateStatusCheck(ctx, "  web-client ")
	require.NoError(t, err)
	assert.Equal(t, "web-client", check.ClientName)
	assert.NotEmpty(t, check.ID)
	assert.False(t, check.Timestamp.IsZero())

	_, err = svc.CreateStatusCheck(ctx, " ")
	assert.ErrorIs(t, err, ErrClientNameRequired)

	list, err := svc.ListStatusChecks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, check.ID, list[0].ID)
}
