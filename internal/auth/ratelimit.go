package auth

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// LoginRateLimiter throttles login attempts per client IP with a token
// bucket. Limiters for idle IPs are pruned once the map grows past maxEntries.
type LoginRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	limit      rate.Limit
	burst      int
	maxEntries int
}

// NewLoginRateLimiter allows ratePerMinute attempts per minute with the given
// burst per client IP.
func NewLoginRateLimiter(ratePerMinute float64, burst int) *LoginRateLimiter {
	return &LoginRateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		limit:      rate.Limit(ratePerMinute / 60.0),
		burst:      burst,
		maxEntries: 10000,
	}
}

func (l *LoginRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lim, ok := l.limiters[ip]; ok {
		return lim
	}
	if len(l.limiters) >= l.maxEntries {
		l.limiters = make(map[string]*rate.Limiter)
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	l.limiters[ip] = lim
	return lim
}

// Middleware rejects requests over the per-IP limit with 429.
func (l *LoginRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiterFor(realClientIP(c)).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many login attempts, try again later"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// realClientIP extracts the client IP, preferring proxy headers over the
// socket address.
func realClientIP(c *gin.Context) string {
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		if parts := strings.Split(xff, ","); len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	return c.ClientIP()
}
