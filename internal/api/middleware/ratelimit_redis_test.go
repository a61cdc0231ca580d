package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, requests int) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRedisRateLimiter(client, "ratelimit:test", requests, 60)
	fixed := time.Unix(1_800_000_010, 0)
	rl.now = func() time.Time { return fixed }
	return rl, mr
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	rl, mr := newRedisLimiter(t, 2)
	ctx := context.Background()

	ok, remaining, reset, err := rl.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	assert.Equal(t, time.Unix(1_800_000_060, 0), reset)

	ok, remaining, _, err = rl.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, remaining)

	ok, remaining, _, err = rl.Allow(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)

	ok, _, _, err = rl.Allow(ctx, "b")
	require.NoError(t, err)
	assert.True(t, ok, "keys are limited independently")

	key := "ratelimit:test:a:30000000"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 60*time.Second, mr.TTL(key))

	// The next window starts a fresh count.
	rl.now = func() time.Time { return time.Unix(1_800_000_070, 0) }
	ok, _, _, err = rl.Allow(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRateLimiter_SharedAcrossLimiters(t *testing.T) {
	first, mr := newRedisLimiter(t, 1)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	second := NewRedisRateLimiter(client, "ratelimit:test", 1, 60)
	second.now = first.now

	ok, _, _, err := first.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, _, err = second.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok, "a second server process sees the same count")
}

func TestRateLimit_RedisUnavailableLetsRequestsThrough(t *testing.T) {
	rl, mr := newRedisLimiter(t, 1)
	mr.Close()

	handler := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/ping/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestNewLimiter(t *testing.T) {
	_, isMemory := NewLimiter(nil, "ratelimit:ip", 10, 60).(*RateLimiter)
	assert.True(t, isMemory)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	_, isRedis := NewLimiter(client, "ratelimit:ip", 10, 60).(*RedisRateLimiter)
	assert.True(t, isRedis)
}
