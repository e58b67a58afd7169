package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter admits at most a fixed number of hits per key per window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ClientKey hashes the caller's address and user agent so raw IPs are never
// stored.
func ClientKey(ip, userAgent string) string {
	sum := sha256.Sum256([]byte(ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}

type redisLimiter struct {
	rdb    redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisLimiter counts hits with INCR on a key that expires with the window.
func NewRedisLimiter(rdb redis.Cmdable, prefix string, limit int, window time.Duration) Limiter {
	return &redisLimiter{rdb: rdb, prefix: prefix, limit: int64(limit), window: window}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := fmt.Sprintf("%s:%s", l.prefix, key)

	var incr *redis.IntCmd
	_, err := l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", k, err)
	}
	return incr.Val() <= l.limit, nil
}

type memoryLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	buckets map[string]*bucket
}

type bucket struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter keeps counters in process. It is used when Redis is not
// configured and in tests.
func NewMemoryLimiter(limit int, window time.Duration) Limiter {
	return &memoryLimiter{limit: limit, window: window, now: time.Now, buckets: map[string]*bucket{}}
}

func (l *memoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.resetAt) {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
		l.sweep(now)
	}
	b.count++
	return b.count <= l.limit, nil
}

func (l *memoryLimiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, k)
		}
	}
}
