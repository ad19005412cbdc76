package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window counter backed by a shared Redis
// INCR, so the limit holds across multiple server processes. The window
// starts at a key's first increment (EXPIRE NX) and is not refreshed by
// later ones; bursts at window boundaries are an accepted trade-off for
// O(1) state per key.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	full := fmt.Sprintf("%s:%s", rl.prefix, key)

	pipe := rl.client.Pipeline()
	incrCmd := pipe.Incr(ctx, full)
	pipe.ExpireNX(ctx, full, rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}

	return incrCmd.Val() <= int64(rl.limit), nil
}

// MemoryRateLimiter is the process-local variant for single-instance
// deployments and tests. Same fixed-window semantics as the Redis limiter.
type MemoryRateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	counts map[string]*memoryWindow
	now    func() time.Time
}

type memoryWindow struct {
	start time.Time
	count int
}

func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		limit:  limit,
		window: window,
		counts: make(map[string]*memoryWindow),
		now:    time.Now,
	}
}

// SetNow overrides the clock, for tests.
func (rl *MemoryRateLimiter) SetNow(now func() time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.now = now
}

func (rl *MemoryRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.counts[key]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.counts[key] = &memoryWindow{start: now, count: 1}
		return true, nil
	}

	w.count++
	return w.count <= rl.limit, nil
}
