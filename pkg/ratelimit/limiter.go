package ratelimit

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for rate limiting.
var (
	rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketdash_rate_limited_total",
		Help: "Total number of requests rejected by the fixed-window rate limiter",
	}, []string{"domain"})

	rateLimitWindows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "marketdash_rate_limit_windows",
		Help: "Current number of tracked rate-limit windows",
	})
)

// window is one fixed-window counter for a domain.
type window struct {
	// count is the number of admitted requests in the current window.
	// It resets to 1 when a request arrives after resetAt.
	count int

	// resetAt is when the current window lapses.
	resetAt time.Time
}

// Limiter tracks fixed-window request counters per domain.
//
// A Limiter is an explicitly constructed value owning its window map;
// callers inject an instance so tests get isolated state. All methods are
// safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
}

// NewLimiter creates a limiter with no tracked windows.
func NewLimiter() *Limiter {
	return &Limiter{
		windows: make(map[string]*window),
	}
}

// IsLimited reports whether a request for domain must be rejected under the
// given budget, and consumes one request slot when it is admitted.
//
// If no window exists for the domain, or the stored window has lapsed, a
// fresh window starts with count 1 and the request is admitted. If the
// window's count has reached the budget the request is rejected and the
// count is left unchanged, so repeated rejected calls are idempotent.
//
// Because admission consumes a slot, callers must call IsLimited exactly
// once per attempted request, not once per retry.
func (l *Limiter) IsLimited(domain string, budget Budget) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[domain]
	if !ok || now.After(w.resetAt) {
		l.windows[domain] = &window{
			count:   1,
			resetAt: now.Add(budget.Window),
		}
		rateLimitWindows.Set(float64(len(l.windows)))
		return false
	}

	if w.count >= budget.MaxRequests {
		rateLimitedTotal.WithLabelValues(domain).Inc()
		return true
	}

	w.count++
	return false
}

// Remaining returns the number of request slots left for domain in its
// current window and the time the window resets.
//
// This is a pure read against possibly stale state: a lapsed window is not
// reset here (that happens on the next IsLimited call). With no tracked
// window the full budget is reported with a zero reset time.
func (l *Limiter) Remaining(domain string, maxRequests int) (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[domain]
	if !ok {
		return maxRequests, time.Time{}
	}

	remaining := maxRequests - w.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, w.resetAt
}

// Cleanup removes all lapsed windows and returns the number removed.
// Implements the cache package's Sweeper interface so the janitor can
// sweep limiter state alongside the cache store.
func (l *Limiter) Cleanup() int {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for domain, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, domain)
			removed++
		}
	}

	if removed > 0 {
		rateLimitWindows.Set(float64(len(l.windows)))
	}
	return removed
}

// Size returns the number of tracked windows, lapsed or not.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.windows)
}
