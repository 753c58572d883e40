package cache

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/tuitioncentres/backend/internal/domain/providers"
	redisclient "github.com/zatekoja/tuitioncentres/backend/internal/infrastructure/clients/redis"
)

func newIntegrationAdapter(t *testing.T) providers.CacheProvider {
	t.Helper()
	if os.Getenv("TEST_INTEGRATION") != "true" {
		t.Skip("Skipping integration test. Set TEST_INTEGRATION=true to run.")
	}
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisAdapter(redisclient.NewFromRedis(rdb))
}

func TestRedisAdapter_MissingKeyIsCacheMiss(t *testing.T) {
	adapter := newIntegrationAdapter(t)

	_, err := adapter.Get(context.Background(), "tuition_centres:test:absent")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}

func TestRedisAdapter_DeletePattern(t *testing.T) {
	adapter := newIntegrationAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "tuition_centres:test:a", []byte("1"), 60))
	require.NoError(t, adapter.Set(ctx, "tuition_centres:test:b", []byte("2"), 60))
	require.NoError(t, adapter.Set(ctx, "other:test:c", []byte("3"), 60))
	t.Cleanup(func() { _ = adapter.Delete(ctx, "other:test:c") })

	require.NoError(t, adapter.DeletePattern(ctx, "tuition_centres:test:*"))

	_, err := adapter.Get(ctx, "tuition_centres:test:a")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
	_, err = adapter.Get(ctx, "tuition_centres:test:b")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	value, err := adapter.Get(ctx, "other:test:c")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), value)
}
