package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter counts requests in fixed windows shared by every server
// process. Keys look like <prefix>:<key>:<window index>.
type RedisRateLimiter struct {
	client   *redis.Client
	prefix   string
	requests int
	window   time.Duration
	now      func() time.Time
}

func NewRedisRateLimiter(client *redis.Client, prefix string, requests int, windowSeconds int) *RedisRateLimiter {
	if requests <= 0 {
		requests = 100
	}
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return &RedisRateLimiter{
		client:   client,
		prefix:   prefix,
		requests: requests,
		window:   time.Duration(windowSeconds) * time.Second,
		now:      time.Now,
	}
}

// NewLimiter uses Redis when a client is configured and the in-process limiter
// otherwise.
func NewLimiter(client *redis.Client, prefix string, requests int, windowSeconds int) Limiter {
	if client == nil {
		return NewRateLimiter(requests, windowSeconds)
	}
	return NewRedisRateLimiter(client, prefix, requests, windowSeconds)
}

func (rl *RedisRateLimiter) Limit() int {
	return rl.requests
}

func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	seconds := int64(rl.window / time.Second)
	index := rl.now().Unix() / seconds
	reset := time.Unix((index+1)*seconds, 0)
	windowKey := fmt.Sprintf("%s:%s:%d", rl.prefix, key, index)

	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, reset, fmt.Errorf("counting requests: %w", err)
	}

	count := int(incr.Val())
	remaining := rl.requests - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= rl.requests, remaining, reset, nil
}
