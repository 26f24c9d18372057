package handlers

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tashasho/MCP-Server-BNV/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID keeps a caller supplied X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(logger.RequestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter is a token bucket per client ip. Idle buckets are swept on access.
type ipLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

const visitorTTL = 10 * time.Minute

func newIPLimiter(perMin int, now func() time.Time) *ipLimiter {
	return &ipLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Limit(float64(perMin) / 60),
		burst:     perMin,
		now:       now,
		lastSweep: now(),
	}
}

func (l *ipLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > visitorTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimit allows perMin requests per minute per client ip with a burst of
// the same size.
func RateLimit(perMin int, now func() time.Time) gin.HandlerFunc {
	l := newIPLimiter(perMin, now)
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.Header("Retry-After", strconv.Itoa(max(1, 60/perMin)))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
