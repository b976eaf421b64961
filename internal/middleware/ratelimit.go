package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a sliding-window request counter kept in process memory.
// Good enough for a single-instance deployment; swap for a shared store
// before running more than one replica.
type RateLimiter struct {
	mu     sync.Mutex
	seen   map[string][]time.Time
	limit  int
	window time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		seen:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
	}
	go l.sweep()
	return l
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-l.window)
	kept := l.seen[key][:0]
	for _, at := range l.seen[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) >= l.limit {
		l.seen[key] = kept
		return false
	}
	l.seen[key] = append(kept, now)
	return true
}

// sweep drops idle keys so the map does not grow with every IP ever seen.
func (l *RateLimiter) sweep() {
	for range time.Tick(5 * time.Minute) {
		l.mu.Lock()
		cutoff := time.Now().Add(-l.window)
		for key, times := range l.seen {
			if len(times) == 0 || !times[len(times)-1].After(cutoff) {
				delete(l.seen, key)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit throttles all traffic by client IP.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow("ip:" + c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

// MoneyRateLimit throttles state-changing ledger endpoints (payments,
// funding, withdrawals) per authenticated user, so one user hammering retries
// cannot eat the shared IP budget of everyone behind the same NAT. Must run
// after AuthRequired.
func MoneyRateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id := GetUserID(c); id != 0 {
			key = fmt.Sprintf("user:%d", id)
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, slow down"})
			return
		}
		c.Next()
	}
}
