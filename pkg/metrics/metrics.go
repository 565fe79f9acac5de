// Package metrics provides the Prometheus registry reference for the
// market-data client. All metrics are defined in their respective packages
// (cache, ratelimit, client, batch) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Cache Metrics (pkg/cache):
//   - marketdash_cache_hits_total (Counter): Cache hits
//   - marketdash_cache_misses_total (Counter): Cache misses
//   - marketdash_cache_evictions_total{path} (Counter): Evictions by path (lazy, sweep)
//   - marketdash_cache_entries (Gauge): Current number of cached entries
//
// Rate Limit Metrics (pkg/ratelimit):
//   - marketdash_rate_limited_total{domain} (Counter): Requests rejected per domain
//   - marketdash_rate_limit_windows (Gauge): Currently tracked fixed windows
//
// Request Metrics (pkg/client):
//   - marketdash_requests_total{endpoint, status} (Counter): Fetches by endpoint and outcome
//   - marketdash_request_duration_seconds{endpoint} (Histogram): Network request duration
//   - marketdash_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, parse)
//
// Retry Metrics (pkg/client):
//   - marketdash_retries_total{error_class} (Counter): Retry attempts by error class
//   - marketdash_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - marketdash_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Batch Metrics (pkg/batch):
//   - marketdash_batch_symbols_total{outcome} (Counter): Symbols processed (ok, degraded)
//   - marketdash_batch_duration_seconds (Histogram): Whole-batch wall-clock duration
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(marketdash_cache_hits_total[5m])) /
//   (sum(rate(marketdash_cache_hits_total[5m])) + sum(rate(marketdash_cache_misses_total[5m])))
//
//   # Rate-Limit Rejections by Provider
//   sum by (domain) (rate(marketdash_rate_limited_total[5m]))
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(marketdash_request_duration_seconds_bucket[5m]))
//
//   # Degraded Symbol Share
//   rate(marketdash_batch_symbols_total{outcome="degraded"}[5m]) /
//   rate(marketdash_batch_symbols_total[5m])
