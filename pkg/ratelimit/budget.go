// Package ratelimit implements per-domain fixed-window rate limiting for
// outbound provider requests. A fixed-window counter (not sliding-window or
// token-bucket) may permit a burst across a window boundary; that is an
// accepted trade-off for simplicity.
package ratelimit

import (
	"net/url"
	"time"
)

// UnknownDomain is the sentinel bucket for targets whose hostname cannot be
// determined. All malformed targets share this one budget.
const UnknownDomain = "unknown"

// Budget is a fixed-window request allowance for a single domain.
type Budget struct {
	// MaxRequests is the number of admitted requests per window.
	MaxRequests int

	// Window is the length of the fixed window.
	Window time.Duration
}

// Budgets maps provider domains to their request budgets, with a fallback
// for unrecognized domains. The table is static configuration; it is not
// mutated at runtime.
type Budgets struct {
	Domains map[string]Budget
	Default Budget
}

// DefaultBudgets returns the budgets for the known market-data providers.
func DefaultBudgets() Budgets {
	return Budgets{
		Domains: map[string]Budget{
			// Finnhub free tier: 60 calls/minute
			"finnhub.io": {MaxRequests: 60, Window: time.Minute},
			// Coinbase public API: 10 requests/second
			"api.coinbase.com": {MaxRequests: 10, Window: time.Second},
		},
		Default: Budget{MaxRequests: 30, Window: time.Minute},
	}
}

// For returns the budget for domain, falling back to the default entry for
// unrecognized domains (including the UnknownDomain bucket).
func (b Budgets) For(domain string) Budget {
	if budget, ok := b.Domains[domain]; ok {
		return budget
	}
	return b.Default
}

// Domain derives the rate-limit domain from a request target. It returns the
// target's hostname, or UnknownDomain when the target cannot be parsed or has
// no host. Many malformed targets therefore collapse into one shared bucket.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return UnknownDomain
	}
	return u.Hostname()
}
