package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisCache(rdb, "fh:"), mr
}

func TestRedisCache_GetSet(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var out map[string]string
	hit, err := c.Get(ctx, "course:1", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "course:1", map[string]string{"title": "Go"}, time.Minute))
	hit, err = c.Get(ctx, "course:1", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "Go", out["title"])
	assert.Equal(t, time.Minute, mr.TTL("fh:course:1"))

	require.NoError(t, c.Delete(ctx, "course:1"))
	assert.False(t, mr.Exists("fh:course:1"))
}

func TestRedisCache_CorruptEntryIsDropped(t *testing.T) {
	c, mr := newCache(t)
	require.NoError(t, mr.Set("fh:course:2", "{broken"))

	var out map[string]string
	hit, err := c.Get(context.Background(), "course:2", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.False(t, mr.Exists("fh:course:2"))
}

func TestRedisCache_Counter(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	n, err := c.Count(ctx, "cart_add:x")
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 1; i <= 3; i++ {
		n, err = c.Increment(ctx, "cart_add:x", time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, i, n)
	}

	n, err = c.Count(ctx, "cart_add:x")
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	mr.FastForward(2 * time.Minute)
	n, err = c.Count(ctx, "cart_add:x")
	require.NoError(t, err)
	assert.Zero(t, n)
}
