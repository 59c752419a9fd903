package counter

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusalpri/academy/core/security"
)

func testStore(t *testing.T, store security.CounterStore, key string) {
	ctx := context.Background()

	n, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)

	for want := int64(1); want <= 3; want++ {
		n, err = store.Incr(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, store.Delete(ctx, key))
	n, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInMemStore(t *testing.T) {
	testStore(t, NewInMemStore(), "k")
}

func TestInMemStore_window(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	store := NewInMemStore()
	_, _ = store.Incr(ctx, "k", time.Minute)

	// later hits do not extend the window
	now = now.Add(50 * time.Second)
	n, err := store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	now = now.Add(11 * time.Second)
	n, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.Incr(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	key := "academy_test:" + t.Name()
	require.NoError(t, rdb.Del(ctx, key).Err())
	testStore(t, NewRedisStore(rdb), key)

	store := NewRedisStore(rdb)
	_, err := store.Incr(ctx, key, time.Minute)
	require.NoError(t, err)
	ttl, err := rdb.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute, "ttl = %v", ttl)
	require.NoError(t, store.Delete(ctx, key))
}
