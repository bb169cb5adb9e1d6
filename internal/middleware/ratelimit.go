package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
	"github.com/noah-isme/course-timetable-api/pkg/response"
)

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	interval time.Duration
	burst    int
	idle     time.Duration
	clients  map[string]*client
	now      func() time.Time

	sweepEvery time.Duration
	lastSweep  time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per IP with the given burst.
// Buckets untouched for ten minutes are dropped by a sweep that runs at most
// once a minute.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	interval := time.Minute / time.Duration(perMinute)
	return &RateLimiter{
		limit:    rate.Every(interval),
		interval: interval,
		burst:    burst,
		idle:     10 * time.Minute,
		clients:  make(map[string]*client),
		now:      time.Now,

		sweepEvery: time.Minute,
	}
}

// Allow reports whether key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.clients[key]
	if !ok {
		l.sweep(now)
		entry = &client{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.sweepEvery {
		return
	}
	l.lastSweep = now
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.idle {
			delete(l.clients, key)
		}
	}
}

// Handler rejects requests over the limit with 429.
func (l *RateLimiter) Handler() gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(math.Ceil(l.interval.Seconds())))
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", retryAfter)
			response.Error(c, appErrors.Clone(appErrors.ErrTooManyRequests, "too many login attempts, try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
