// Package cache provides in-process caching of market-data API responses.
//
// The store implements bounded-lifetime caching with the following features:
//
// - Per-entry TTL with lazy eviction on read
// - Periodic background sweeps via the Janitor
// - Deterministic cache key generation (parameter-order independent)
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	store := cache.NewStore()
//
//	key := cache.Key("https://finnhub.io/api/v1/quote", map[string]string{
//		"symbol": "AAPL",
//	})
//
//	store.Set(key, body, 60*time.Second)
//
//	if data, ok := store.Get(key); ok {
//		// Cache hit - data is the stored response body
//	}
//
// # Background Cleanup
//
// Expired entries are evicted lazily when read. A Janitor pairs with that
// to bound growth between reads, sweeping the store (and any other Sweeper,
// such as the rate limiter) on a fixed interval:
//
//	janitor := cache.NewJanitor(cache.DefaultSweepInterval, logger, store, limiter)
//	janitor.Start()
//	defer janitor.Stop()
//
// # Metrics
//
// The store exports Prometheus metrics:
//
//   - marketdash_cache_hits_total - Cache hits
//   - marketdash_cache_misses_total - Cache misses
//   - marketdash_cache_evictions_total{path} - Evictions by path (lazy, sweep)
//   - marketdash_cache_entries - Current entry count
//
// # Consistency Notes
//
// All state lives in process memory and is lost on restart. Concurrent
// identical misses are not coalesced: two goroutines missing on the same
// key may both fetch and both write back (last write wins). See the
// client package for the fetch orchestration built on this store.
package cache
