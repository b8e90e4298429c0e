package httpx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, cfg httpx.RateLimitConfig) (*httpx.RedisLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return httpx.NewRedisLimiter(client, cfg, "test"), mr
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	l, mr := newRedisLimiter(t, httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute})

	d, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Remaining)

	d, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 0, d.Remaining)

	d, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Greater(t, d.RetryAfter, time.Duration(0))

	// Other keys are unaffected.
	d, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	// Window rolls over once the key expires.
	mr.FastForward(time.Minute + time.Second)
	d, err = l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestRedisLimiter_Reset(t *testing.T) {
	ctx := context.Background()
	l, _ := newRedisLimiter(t, httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute})

	_, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	d, err := l.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	ttl, err := l.TTL(ctx, "k")
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, l.Reset(ctx, "k"))
	d, err = l.Allow(ctx, "k")
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestRedisLimiter_FailsOpenWhenUnavailable(t *testing.T) {
	l, mr := newRedisLimiter(t, httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute})
	mr.Close()

	handler := httpx.RateLimit(l, httpx.IPKeyExtractor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Error(t, l.Ping(context.Background()))
}

func TestRedisLimiter_Middleware(t *testing.T) {
	l, _ := newRedisLimiter(t, httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute})

	handler := httpx.RateLimit(l, httpx.IPKeyExtractor)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:4000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send().Code)
	rec := send()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
