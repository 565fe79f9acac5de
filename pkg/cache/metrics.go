package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hits tracks cache hits
	Hits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketdash_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	// Misses tracks cache misses, including reads of expired entries
	Misses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketdash_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Evictions tracks evicted entries by path (lazy read-side eviction
	// vs the periodic sweep)
	Evictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketdash_cache_evictions_total",
			Help: "Total number of expired cache entries evicted",
		},
		[]string{"path"}, // "lazy", "sweep"
	)

	// Entries tracks the current number of cached entries
	Entries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketdash_cache_entries",
			Help: "Current number of entries in the cache store",
		},
	)
)
