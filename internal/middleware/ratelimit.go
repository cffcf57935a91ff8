package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"moviecatalog/internal/metrics"
	"moviecatalog/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const sweepInterval = 10 * time.Minute

// RateLimiter keeps one token bucket per key. A bucket left idle for a full
// window has refilled completely, so dropping it loses nothing.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rateLimiterEntry
	rate      rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewRateLimiter allows reqsPerWindow requests per window for each key.
func NewRateLimiter(reqsPerWindow int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		rate:     rate.Limit(float64(reqsPerWindow) / window.Seconds()),
		burst:    reqsPerWindow,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	if now.Sub(rl.lastSweep) > sweepInterval {
		rl.sweep(now)
	}
	entry, ok := rl.limiters[key]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = now
	limiter := entry.limiter
	rl.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// sweep must be called with mu held.
func (rl *RateLimiter) sweep(now time.Time) {
	threshold := now.Add(-rl.window)
	for key, entry := range rl.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Throttle applies per-day quotas: authenticated users are keyed by id,
// anonymous callers by client IP. A quota of zero disables that scope.
func Throttle(anonPerDay, userPerDay int) gin.HandlerFunc {
	var anon, user *RateLimiter
	if anonPerDay > 0 {
		anon = NewRateLimiter(anonPerDay, 24*time.Hour)
	}
	if userPerDay > 0 {
		user = NewRateLimiter(userPerDay, 24*time.Hour)
	}

	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		limiter, key, scope := anon, "ip:"+c.ClientIP(), "anon"
		if p.IsAuthenticated() {
			limiter, key, scope = user, "user:"+strconv.FormatInt(p.UserID, 10), "user"
		}
		if limiter == nil || limiter.Allow(key) {
			c.Next()
			return
		}
		metrics.RateLimitRejections.WithLabelValues(scope).Inc()
		response.CustomError(c, http.StatusTooManyRequests, "THROTTLED", "Request was throttled.")
	}
}
