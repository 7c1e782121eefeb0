package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/feedback/errors"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// RequestsPerMinute is the maximum number of requests per key per minute.
	RequestsPerMinute int
	// KeyFunc extracts the rate limit key. Defaults to the client address.
	KeyFunc func(*gin.Context) string
	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

// RateLimit applies a per-key sliding window. It is mounted on the
// credential endpoints to slow down password guessing.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    cfg.RequestsPerMinute,
		now:      cfg.Now,
	}

	return func(c *gin.Context) {
		if retry, ok := rl.allow(cfg.KeyFunc(c)); !ok {
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			abortWithError(c, apperrors.New(apperrors.ErrCodeRateLimited, "Too many attempts. Please wait a moment and try again.", http.StatusTooManyRequests))
			return
		}
		c.Next()
	}
}

// ClientKey keys requests by the connection's remote address.
func ClientKey(c *gin.Context) string {
	return c.RemoteIP()
}

type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	now      func() time.Time
	calls    int
}

// allow records a request for key. When the window is full it returns false
// and the time until the oldest request leaves the window.
func (rl *rateLimiter) allow(key string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-time.Minute)

	rl.calls++
	if rl.calls%1024 == 0 {
		rl.sweep(cutoff)
	}

	valid := filterByTime(rl.requests[key], cutoff)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return valid[0].Sub(cutoff), false
	}
	rl.requests[key] = append(valid, now)
	return 0, true
}

// sweep drops keys with no request inside the window. Callers hold mu.
func (rl *rateLimiter) sweep(cutoff time.Time) {
	for key, times := range rl.requests {
		if valid := filterByTime(times, cutoff); len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func filterByTime(times []time.Time, cutoff time.Time) []time.Time {
	var result []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			result = append(result, t)
		}
	}
	return result
}
