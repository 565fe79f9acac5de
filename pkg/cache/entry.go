// Package cache provides in-process caching of provider API responses
// with per-entry TTL expiration and lazy eviction.
package cache

import (
	"time"
)

// Entry represents a cached provider response.
type Entry struct {
	// Data is the raw JSON response body
	Data []byte `json:"data"`

	// CreatedAt is when the entry was stored
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is when the entry becomes stale
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.ExpiresAt)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.ExpiresAt)
	if ttl < 0 {
		return 0
	}
	return ttl
}
