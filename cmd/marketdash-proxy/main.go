// Command marketdash-proxy serves dashboard API routes backed by the cached
// market-data fetcher: per-symbol quotes and batched multi-symbol bundles.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marketdash/market-data-client/pkg/batch"
	"github.com/marketdash/market-data-client/pkg/cache"
	"github.com/marketdash/market-data-client/pkg/client"
	"github.com/marketdash/market-data-client/pkg/logging"
	"github.com/marketdash/market-data-client/pkg/provider"
)

func main() {
	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(getEnv("LOG_LEVEL", "info")),
		Pretty: getEnv("LOG_PRETTY", "") == "true",
	})

	port := getEnv("PORT", "8080")
	token := getEnv("FINNHUB_TOKEN", "")
	if token == "" {
		logger.Warn().Msg("FINNHUB_TOKEN not set, provider requests will be unauthenticated")
	}

	fetchClient, err := client.New(client.DefaultConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create fetch client")
	}

	prov := provider.New(provider.DefaultConfig(token))
	batchFetcher := batch.New(fetchClient, prov, batch.DefaultConfig())

	// Background sweep of expired cache entries and lapsed rate windows.
	janitor := cache.NewJanitor(cache.DefaultSweepInterval, logger,
		fetchClient.Store(), fetchClient.Limiter())
	janitor.Start()
	defer janitor.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/quote", quoteHandler(fetchClient, prov))
	mux.HandleFunc("/api/candles", candlesHandler(fetchClient, prov))
	mux.HandleFunc("/api/crypto", cryptoHandler(fetchClient, prov))
	mux.HandleFunc("/api/symbols", symbolsHandler(batchFetcher))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting marketdash proxy")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
	logger.Info().Msg("Server stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// quoteHandler serves a single cached quote: GET /api/quote?symbol=AAPL
func quoteHandler(c *client.Client, prov *provider.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			http.Error(w, "symbol parameter is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		var quote provider.Quote
		if err := c.FetchJSON(ctx, prov.QuoteURL(symbol), provider.TTLQuote, &quote); err != nil {
			writeFetchError(w, err)
			return
		}

		writeJSON(w, quote)
	}
}

// candlesHandler serves historical candles:
// GET /api/candles?symbol=AAPL&resolution=D&from=1700000000&to=1700086400
// from/to default to the trailing 30 days.
func candlesHandler(c *client.Client, prov *provider.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			http.Error(w, "symbol parameter is required", http.StatusBadRequest)
			return
		}

		resolution := r.URL.Query().Get("resolution")
		if resolution == "" {
			resolution = "D"
		}

		now := time.Now().Unix()
		from := queryInt64(r, "from", now-30*24*3600)
		to := queryInt64(r, "to", now)

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		var candles provider.Candles
		target := prov.CandleURL(symbol, resolution, from, to)
		if err := c.FetchJSON(ctx, target, provider.TTLHistorical, &candles); err != nil {
			writeFetchError(w, err)
			return
		}

		writeJSON(w, candles)
	}
}

// cryptoHandler serves a Coinbase spot price: GET /api/crypto?pair=BTC-USD
func cryptoHandler(c *client.Client, prov *provider.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pair := r.URL.Query().Get("pair")
		if pair == "" {
			http.Error(w, "pair parameter is required", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		var spot provider.SpotPrice
		if err := c.FetchJSON(ctx, prov.SpotPriceURL(pair), provider.TTLMarket, &spot); err != nil {
			writeFetchError(w, err)
			return
		}

		writeJSON(w, spot)
	}
}

func queryInt64(r *http.Request, key string, fallback int64) int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

// symbolsHandler serves a batched bundle: GET /api/symbols?symbols=AAPL,MSFT
func symbolsHandler(bf *batch.BatchFetcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.URL.Query().Get("symbols")
		if raw == "" {
			http.Error(w, "symbols parameter is required", http.StatusBadRequest)
			return
		}

		symbols := strings.Split(raw, ",")
		for i := range symbols {
			symbols[i] = strings.TrimSpace(symbols[i])
		}

		results := bf.FetchSymbols(r.Context(), symbols, batch.IncludeAll())

		// Degraded symbols keep their place in the response with an
		// error marker instead of failing the whole request.
		type symbolJSON struct {
			Symbol  string           `json:"symbol"`
			Quote   provider.Quote   `json:"quote"`
			Profile provider.Profile `json:"profile"`
			Metrics provider.Metrics `json:"metrics"`
			Error   bool             `json:"error,omitempty"`
		}
		out := make([]symbolJSON, len(results))
		for i, res := range results {
			out[i] = symbolJSON{
				Symbol:  res.Symbol,
				Quote:   res.Quote,
				Profile: res.Profile,
				Metrics: res.Metrics,
				Error:   res.Failed(),
			}
		}

		writeJSON(w, out)
	}
}

// writeFetchError maps fetch errors to HTTP responses: rate limits become
// an actionable 429 with Retry-After, everything else a generic 502.
func writeFetchError(w http.ResponseWriter, err error) {
	var rlErr *client.RateLimitError
	if errors.As(err, &rlErr) {
		w.Header().Set("Retry-After", strconv.Itoa(rlErr.RetryAfter()))
		http.Error(w, fmt.Sprintf("rate limited, retry in %d seconds", rlErr.RetryAfter()),
			http.StatusTooManyRequests)
		return
	}
	http.Error(w, "failed to fetch market data", http.StatusBadGateway)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
