package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"go-employee/internal/shared/apperror"
	"go-employee/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitorIdleTTL is how long a client's bucket is kept after its last request.
const visitorIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter hands out one token bucket per client key.
type ClientLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func NewClientLimiter(limit rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

// Reserve takes a token for key. When none is available it returns false and
// how long the client should wait.
func (l *ClientLimiter) Reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > visitorIdleTTL {
		l.sweepLocked(now)
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len reports how many clients are tracked.
func (l *ClientLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

func (l *ClientLimiter) sweepLocked(now time.Time) {
	for key, v := range l.visitors {
		if now.Sub(v.lastSeen) > visitorIdleTTL {
			delete(l.visitors, key)
		}
	}
	l.lastSweep = now
}

// RateLimitByIP allows r requests per second per client IP with bursts of b.
// Rejected requests get 429 and a Retry-After header.
func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	return rateLimit(NewClientLimiter(r, b))
}

func rateLimit(l *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, wait := l.Reserve(c.ClientIP())
		if !ok {
			if wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			}
			response.AbortWithError(c, apperror.ToHTTP(
				apperror.ErrTooManyRequests.WithDetails("Too many requests from this IP"),
			))
			return
		}
		c.Next()
	}
}
