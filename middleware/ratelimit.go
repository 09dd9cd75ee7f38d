package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"folio/logging"
	"folio/metrics"
	"folio/models"
)

// RateLimiter limits requests per client IP with a token bucket that
// refills maxRequests tokens over window, allowing bursts of that size.
type RateLimiter struct {
	max    int
	window time.Duration
	limit  rate.Limit

	mu      sync.Mutex
	clients map[string]*client
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		max:     maxRequests,
		window:  window,
		limit:   rate.Limit(float64(maxRequests) / window.Seconds()),
		clients: make(map[string]*client),
	}
}

// Run evicts idle clients until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	interval := rl.window
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.evict(now)
		}
	}
}

// evict drops clients idle for a full window; their bucket would be full again.
func (rl *RateLimiter) evict(now time.Time) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	for ip, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.window {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) limiter(ip string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[ip]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.max)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

// Allow reports whether ip may proceed at now and, if not, how long to wait.
func (rl *RateLimiter) Allow(ip string, now time.Time) (bool, time.Duration) {
	lim := rl.limiter(ip, now)

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Middleware rejects over-limit requests with 429 and a Retry-After header.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.Allow(c.ClientIP(), time.Now())
		if ok {
			c.Next()
			return
		}

		metrics.RecordRateLimitHit(c.FullPath())
		logging.Warn().Str("client_ip", c.ClientIP()).Dur("retry_after", retryAfter).Msg("Rate limit exceeded")

		c.Header("Retry-After", retryAfterSeconds(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
			Success: false,
			Error:   "Too many requests from this IP, please try again later.",
		})
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
