// Package batch provides parallel multi-symbol fetching with per-symbol
// error isolation.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"

	"github.com/marketdash/market-data-client/pkg/provider"
)

var (
	batchSymbolsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketdash_batch_symbols_total",
		Help: "Total symbols processed by batch fetches, by outcome",
	}, []string{"outcome"}) // "ok", "degraded"

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "marketdash_batch_duration_seconds",
		Help:    "Wall-clock duration of whole batch fetches",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

// Fetcher is the single-request fetch contract the batch fans out over.
// It is implemented by client.Client.
type Fetcher interface {
	FetchJSON(ctx context.Context, target string, ttl time.Duration, v any) error
}

// Include selects which sub-resources to fetch per symbol.
type Include struct {
	Quote   bool
	Profile bool
	Metrics bool
}

// IncludeAll selects every sub-resource.
func IncludeAll() Include {
	return Include{Quote: true, Profile: true, Metrics: true}
}

// SymbolData is the per-symbol result bundle. When Err is non-nil the
// symbol's fetch chain failed and the payload fields are zero values; the
// symbol identifier is always preserved.
type SymbolData struct {
	Symbol  string
	Quote   provider.Quote
	Profile provider.Profile
	Metrics provider.Metrics
	Err     error
}

// Failed reports whether this symbol's result is degraded.
func (d SymbolData) Failed() bool {
	return d.Err != nil
}

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of symbols in flight at once.
	MaxConcurrency int
}

// DefaultConfig returns safe default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 10,
	}
}

// BatchFetcher fans single-symbol fetches out over many symbols.
type BatchFetcher struct {
	fetcher  Fetcher
	provider *provider.Provider
	config   Config
}

// New creates a batch fetcher.
func New(fetcher Fetcher, p *provider.Provider, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 10
	}
	return &BatchFetcher{
		fetcher:  fetcher,
		provider: p,
		config:   config,
	}
}

type job struct {
	index  int
	symbol string
}

// FetchSymbols fetches the selected sub-resources for every symbol using a
// bounded worker pool and returns one result per symbol in input order.
//
// The batch is a join point, not a race: it returns only once every
// symbol's work has resolved. A symbol whose fetch chain fails yields a
// degraded result for that symbol alone; it never aborts the batch or
// delays the other symbols' results.
func (bf *BatchFetcher) FetchSymbols(ctx context.Context, symbols []string, include Include) []SymbolData {
	start := time.Now()
	defer func() {
		batchDuration.Observe(time.Since(start).Seconds())
	}()

	results := make([]SymbolData, len(symbols))
	if len(symbols) == 0 {
		return results
	}

	jobs := make(chan job, len(symbols))
	for i, symbol := range symbols {
		jobs <- job{index: i, symbol: symbol}
	}
	close(jobs)

	workers := bf.config.MaxConcurrency
	if workers > len(symbols) {
		workers = len(symbols)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				// Workers write to distinct indices, so results
				// need no locking and keep input order.
				results[j.index] = bf.fetchSymbol(ctx, j.symbol, include)
			}
		}()
	}
	wg.Wait()

	return results
}

// fetchSymbol fetches the selected sub-resources for one symbol in
// parallel, each with the TTL matching that resource's volatility.
// Any sub-resource failure degrades the whole symbol.
func (bf *BatchFetcher) fetchSymbol(ctx context.Context, symbol string, include Include) SymbolData {
	data := SymbolData{Symbol: symbol}

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	if include.Quote {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bf.fetcher.FetchJSON(ctx, bf.provider.QuoteURL(symbol), provider.TTLQuote, &data.Quote); err != nil {
				fail(err)
			}
		}()
	}

	if include.Profile {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bf.fetcher.FetchJSON(ctx, bf.provider.ProfileURL(symbol), provider.TTLProfile, &data.Profile); err != nil {
				fail(err)
			}
		}()
	}

	if include.Metrics {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := bf.fetcher.FetchJSON(ctx, bf.provider.MetricsURL(symbol), provider.TTLMetrics, &data.Metrics); err != nil {
				fail(err)
			}
		}()
	}

	wg.Wait()

	if firstErr != nil {
		log.Warn().
			Err(firstErr).
			Str("symbol", symbol).
			Msg("Symbol fetch degraded")
		batchSymbolsTotal.WithLabelValues("degraded").Inc()

		// Identifier preserved, payloads zeroed, error marker set.
		return SymbolData{Symbol: symbol, Err: firstErr}
	}

	batchSymbolsTotal.WithLabelValues("ok").Inc()
	return data
}
