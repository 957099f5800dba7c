package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/iho/walletledger/internal/adapter/http/render"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
)

type tenantLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter implements per-tenant token buckets.
type RateLimiter struct {
	limiters map[string]*tenantLimiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewRateLimiter creates a new rate limiter
// rate: requests per second
// burst: max burst size
func NewRateLimiter(r float64, b int, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*tenantLimiter),
		rate:     rate.Limit(r),
		burst:    b,
		metrics:  m,
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(tenantID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	tl, ok := rl.limiters[tenantID]
	if !ok {
		tl = &tenantLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[tenantID] = tl
	}
	tl.lastSeen = rl.now()
	return tl.limiter
}

// Limit enforces the tenant's bucket. It must run after RequireTenant.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := TenantID(r.Context())

		if !rl.getLimiter(tenantID).Allow() {
			if rl.metrics != nil {
				rl.metrics.RateLimitHits.WithLabelValues(tenantID).Inc()
			}
			w.Header().Set("Retry-After", strconv.Itoa(1))
			render.Fail(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// CleanupLimiters drops buckets of tenants idle for longer than maxIdle.
func (rl *RateLimiter) CleanupLimiters(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxIdle)
	removed := 0
	for tenantID, tl := range rl.limiters {
		if tl.lastSeen.Before(cutoff) {
			delete(rl.limiters, tenantID)
			removed++
		}
	}
	return removed
}
