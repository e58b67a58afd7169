package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientKey(t *testing.T) {
	a := ClientKey("203.0.113.7", "Mozilla/5.0")
	assert.Len(t, a, 64)
	assert.NotContains(t, a, "203.0.113.7")
	assert.Equal(t, a, ClientKey("203.0.113.7", "Mozilla/5.0"))
	assert.NotEqual(t, a, ClientKey("203.0.113.7", "curl/8.0"))
}

func TestMemoryLimiterWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(5, time.Minute).(*memoryLimiter)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok, "hit %d", i+1)
	}
	ok, _ := l.Allow(ctx, "k")
	assert.False(t, ok)

	other, _ := l.Allow(ctx, "other")
	assert.True(t, other)

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "k")
	assert.True(t, ok)
}

func newRedisLimiter(t *testing.T, limit int) (Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewRedisLimiter(rdb, "helpful", limit, time.Minute), mr
}

func TestRedisLimiterWindow(t *testing.T) {
	l, mr := newRedisLimiter(t, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok, "hit %d", i+1)
	}
	ok, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := mr.Get("helpful:k")
	require.NoError(t, err)
	assert.Equal(t, "6", got)
	assert.Equal(t, time.Minute, mr.TTL("helpful:k"))

	other, err := l.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, other)

	mr.FastForward(time.Minute)
	ok, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLimiterKeepsFirstExpiry(t *testing.T) {
	l, mr := newRedisLimiter(t, 5)
	ctx := context.Background()

	_, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	mr.FastForward(40 * time.Second)
	_, err = l.Allow(ctx, "k")
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, mr.TTL("helpful:k"))
}

func TestRedisLimiterUnavailable(t *testing.T) {
	l, mr := newRedisLimiter(t, 5)
	mr.Close()

	_, err := l.Allow(context.Background(), "k")
	assert.Error(t, err)
}
