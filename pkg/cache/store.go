package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the fallback TTL used by SetDefault and by callers that have
// no resource-specific TTL for a response.
const DefaultTTL = 5 * time.Minute

// Store is an in-memory key/value cache with per-entry expiration.
//
// A Store is an explicitly constructed value with its map as owned state;
// callers inject an instance rather than sharing a package-level singleton,
// which keeps test instances isolated.
//
// All operations are safe for concurrent use. A miss is a normal outcome,
// not an error: Get reports presence with a boolean.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewStore creates an empty cache store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Entry),
	}
}

// Get retrieves the payload stored under key.
// Returns (nil, false) if the key is absent or the entry has expired.
// An expired entry is evicted as a side effect (lazy eviction).
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		Misses.Inc()
		return nil, false
	}

	if entry.IsExpired() {
		delete(s.entries, key)
		Evictions.WithLabelValues("lazy").Inc()
		Entries.Set(float64(len(s.entries)))
		Misses.Inc()
		return nil, false
	}

	Hits.Inc()
	return entry.Data, true
}

// Set stores data under key with the given TTL, overwriting any existing
// entry unconditionally.
func (s *Store) Set(key string, data []byte, ttl time.Duration) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &Entry{
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	Entries.Set(float64(len(s.entries)))
}

// SetDefault stores data under key with DefaultTTL.
func (s *Store) SetDefault(key string, data []byte) {
	s.Set(key, data, DefaultTTL)
}

// Delete removes the entry stored under key, if any.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	Entries.Set(float64(len(s.entries)))
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
	Entries.Set(0)
}

// Size returns the number of entries currently held, expired or not.
func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Cleanup removes all expired entries and returns the number evicted.
// Pairs with the lazy eviction in Get so the store never grows unboundedly
// between sweeps. Implements the Sweeper interface for the Janitor.
func (s *Store) Cleanup() int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for key, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, key)
			evicted++
		}
	}

	if evicted > 0 {
		Evictions.WithLabelValues("sweep").Add(float64(evicted))
		Entries.Set(float64(len(s.entries)))
	}
	return evicted
}
