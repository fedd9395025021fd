package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/websap/backend/internal/metrics"
)

// RateLimiter keeps one token bucket per client key. Buckets idle for
// longer than twice the window are evicted.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	window    time.Duration
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows requests per window for each key, refilling
// continuously. It returns nil when requests is not positive.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 || window <= 0 {
		return nil
	}
	idle := 2 * window
	if idle < time.Minute {
		idle = time.Minute
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		window:   window,
		idleTTL:  idle,
		now:      time.Now,
	}
}

// Allow reports whether key may make another request now.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.idleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.idleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// RateLimit rejects clients over the limiter's budget with 429. A nil
// limiter disables the check.
func RateLimit(l *RateLimiter, scope, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil {
			c.Next()
			return
		}
		if !l.Allow(c.ClientIP()) {
			metrics.IncRateLimited(scope)
			retry := int(math.Ceil(float64(l.window) / float64(l.burst) / float64(time.Second)))
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"success": false, "message": message})
			return
		}
		c.Next()
	}
}
