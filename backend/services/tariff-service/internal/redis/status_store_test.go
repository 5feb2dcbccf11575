package redisstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	libredis "meterbill/backend/libs/redis"
	"meterbill/backend/services/tariff-service/internal/models"
)

func newTestStore(t *testing.T, ttl time.Duration) *StatusStore {
	t.Helper()
	addr := os.Getenv("TARIFF_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TARIFF_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := libredis.NewRedisClient(ctx, libredis.Options{Addr: addr})
	require.NoError(t, err)

	store := NewStatusStore(client, ttl)
	store.key = fmt.Sprintf("%s:test:%d", statusKey, time.Now().UnixNano())
	t.Cleanup(func() {
		_ = client.Del(context.Background(), store.key).Err()
		_ = client.Close()
	})
	return store
}

func TestStatusStoreRoundTrip(t *testing.T) {
	store := newTestStore(t, time.Minute)
	ctx := context.Background()

	empty, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	base := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	for i, name := range []string{"meter-a", "meter-b"} {
		require.NoError(t, store.Create(ctx, &models.StatusCheck{
			ID:         fmt.Sprintf("check-%d", i),
			ClientName: name,
			Timestamp:  base.Add(time.Duration(i) * time.Second),
		}))
	}

	checks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.Equal(t, "meter-b", checks[0].ClientName)
	assert.Equal(t, "meter-a", checks[1].ClientName)
	assert.True(t, base.Equal(checks[1].Timestamp))

	ttl, err := store.client.TTL(ctx, store.key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestStatusStoreCapsList(t *testing.T) {
	store := newTestStore(t, 0)
	ctx := context.Background()

	for i := 0; i < MaxStatusChecks+5; i++ {
		require.NoError(t, store.Create(ctx, &models.StatusCheck{
			ID:         fmt.Sprintf("check-%d", i),
			ClientName: "meter",
			Timestamp:  time.Unix(int64(i), 0).UTC(),
		}))
	}

	n, err := store.client.LLen(ctx, store.key).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(MaxStatusChecks), n)

	checks, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, checks, MaxStatusChecks)
	assert.Equal(t, fmt.Sprintf("check-%d", MaxStatusChecks+4), checks[0].ID)
	assert.Equal(t, "check-5", checks[len(checks)-1].ID)

	ttl, err := store.client.TTL(ctx, store.key).Result()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)
}
