package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		ok, _ := rl.Allow("10.0.0.1", now)
		assert.True(t, ok, "request %d", i)
	}

	ok, retryAfter := rl.Allow("10.0.0.1", now)
	assert.False(t, ok)
	assert.InDelta(t, 20*time.Second, retryAfter, float64(time.Second))

	ok, _ = rl.Allow("10.0.0.2", now)
	assert.True(t, ok, "limits are per client")

	ok, _ = rl.Allow("10.0.0.1", now.Add(21*time.Second))
	assert.True(t, ok, "bucket refills over the window")
}

func TestRateLimiter_RejectedRequestsDoNotConsume(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Now()

	ok, _ := rl.Allow("ip", now)
	require.True(t, ok)

	for i := 0; i < 5; i++ {
		ok, _ = rl.Allow("ip", now.Add(time.Second))
		assert.False(t, ok)
	}

	ok, _ = rl.Allow("ip", now.Add(61*time.Second))
	assert.True(t, ok)
}

func TestRateLimiter_Evict(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)
	now := time.Now()

	rl.Allow("old", now)
	rl.Allow("fresh", now.Add(50*time.Second))

	assert.Equal(t, 1, rl.evict(now.Add(time.Minute)))
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "fresh")
}

func TestRateLimiter_RunStopsWithContext(t *testing.T) {
	rl := NewRateLimiter(10, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl := NewRateLimiter(2, 15*time.Minute)
	r := newRouter(rl.Middleware())

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 450, retryAfter, 1, "one token refills every window/max")
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, "1", retryAfterSeconds(0))
	assert.Equal(t, "1", retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, "2", retryAfterSeconds(1500*time.Millisecond))
	assert.Equal(t, "9", retryAfterSeconds(9*time.Second))
}
