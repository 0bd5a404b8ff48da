package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/V10L1/modulo-assinatura/config"
	"github.com/V10L1/modulo-assinatura/pkg/logger"
	"github.com/gin-gonic/gin"
)

type window struct {
	start time.Time
	count int
}

// RateLimiter counts requests per client in fixed windows. Each client's
// window starts with its first request.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	rate    int           // requests per window
	window  time.Duration // time window
	now     func() time.Time
	sweep   time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate int, windowSize time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*window),
		rate:    rate,
		window:  windowSize,
		now:     time.Now,
	}
}

// Allow records a request from key and reports whether it is within the
// limit, how many requests remain and when the window resets
func (l *RateLimiter) Allow(key string) (ok bool, remaining int, reset time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweepExpired(now)

	w, exists := l.clients[key]
	if !exists || now.Sub(w.start) >= l.window {
		w = &window{start: now}
		l.clients[key] = w
	}
	reset = w.start.Add(l.window)

	if w.count >= l.rate {
		return false, 0, reset
	}
	w.count++
	return true, l.rate - w.count, reset
}

// sweepExpired drops finished windows at most once per window. Must be called with lock held
func (l *RateLimiter) sweepExpired(now time.Time) {
	if now.Sub(l.sweep) < l.window {
		return
	}
	for key, w := range l.clients {
		if now.Sub(w.start) >= l.window {
			delete(l.clients, key)
		}
	}
	l.sweep = now
}

// RateLimit middleware limits requests per client IP. A zero rate disables it.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := NewRateLimiter(cfg.Requests, cfg.Window)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		ok, remaining, reset := limiter.Allow(clientIP)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			retryAfter := int(time.Until(reset).Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logger.Warn(c.Request.Context(), "rate limit exceeded", "client_ip", clientIP)

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
