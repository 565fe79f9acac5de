// Package client provides the cached market-data fetcher: cache-first
// lookups, per-domain fixed-window rate limiting, retrying network I/O
// and cache write-back.
//
// Concurrent identical misses are not coalesced into a single in-flight
// request: two goroutines missing on the same key may both pass the rate
// limit and both hit the network. Known gap, not a guarantee.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/marketdash/market-data-client/pkg/cache"
	"github.com/marketdash/market-data-client/pkg/ratelimit"
)

// Prometheus metrics for fetch operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketdash_requests_total",
		Help: "Total fetches by endpoint and outcome",
	}, []string{"endpoint", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "marketdash_request_duration_seconds",
		Help:    "Network request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "marketdash_errors_total",
		Help: "Total fetch errors by class",
	}, []string{"class"})
)

// Config holds the client configuration.
type Config struct {
	// Budgets are the per-domain fixed-window rate budgets.
	Budgets ratelimit.Budgets

	// DefaultTTL is used when a fetch supplies no TTL.
	DefaultTTL time.Duration

	// UserAgent is sent on every outbound request.
	UserAgent string

	// Timeout is the per-request HTTP timeout. Zero disables it; a hang
	// then blocks only that one logical fetch.
	Timeout time.Duration

	// Retry controls backoff for server and network errors.
	Retry RetryConfig

	// PaceRequests smooths outbound requests to this many per second
	// across all domains, on top of the per-domain admission control.
	// Zero disables pacing.
	PaceRequests float64
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Budgets:      ratelimit.DefaultBudgets(),
		DefaultTTL:   cache.DefaultTTL,
		UserAgent:    "market-data-client/1.0",
		Timeout:      30 * time.Second,
		Retry:        DefaultRetryConfig(),
		PaceRequests: 10,
	}
}

// Client fetches provider responses with cache-first, rate-limit-gated
// network fallback.
type Client struct {
	httpClient *http.Client
	store      *cache.Store
	limiter    *ratelimit.Limiter
	pacer      *rate.Limiter
	config     Config
	logger     zerolog.Logger
}

// New creates a client owning a fresh cache store and rate limiter.
func New(cfg Config) (*Client, error) {
	if cfg.DefaultTTL <= 0 {
		return nil, fmt.Errorf("default TTL must be positive (got %v)", cfg.DefaultTTL)
	}
	if cfg.Budgets.Default.MaxRequests <= 0 {
		return nil, fmt.Errorf("default budget is required")
	}
	if cfg.PaceRequests < 0 {
		return nil, fmt.Errorf("pace must be >= 0 (got %v)", cfg.PaceRequests)
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	var pacer *rate.Limiter
	if cfg.PaceRequests > 0 {
		burst := int(cfg.PaceRequests)
		if burst < 1 {
			burst = 1
		}
		pacer = rate.NewLimiter(rate.Limit(cfg.PaceRequests), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		store:   cache.NewStore(),
		limiter: ratelimit.NewLimiter(),
		pacer:   pacer,
		config:  cfg,
		logger:  log.With().Str("component", "fetch-client").Logger(),
	}, nil
}

// Fetch performs a cached GET against target and returns the raw JSON body.
// The target URL itself is the sole cache discriminator at this layer;
// query parameters embedded in the URL are not separately normalized.
// A non-positive ttl falls back to the configured default.
func (c *Client) Fetch(ctx context.Context, target string, ttl time.Duration) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.FetchJSON(ctx, target, ttl, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// FetchJSON performs a cached GET against target and decodes the body into v.
//
// Sequence: cache lookup (a hit returns immediately with no rate-limit
// check), then rate-limit admission for the target's domain, then the
// network call, then decode, then cache write-back. Failed responses and
// undecodable bodies are never cached.
func (c *Client) FetchJSON(ctx context.Context, target string, ttl time.Duration, v any) error {
	key := cache.Key(target, nil)

	if data, ok := c.store.Get(key); ok {
		c.logger.Debug().Str("target", target).Msg("Cache hit")
		if err := json.Unmarshal(data, v); err != nil {
			return &ParseError{URL: target, Err: err}
		}
		return nil
	}

	domain := ratelimit.Domain(target)
	budget := c.config.Budgets.For(domain)
	if c.limiter.IsLimited(domain, budget) {
		_, resetAt := c.limiter.Remaining(domain, budget.MaxRequests)
		rlErr := &RateLimitError{Domain: domain, ResetAt: resetAt}
		c.logger.Warn().
			Str("domain", domain).
			Int("retry_after_s", rlErr.RetryAfter()).
			Msg("Request rejected by rate limiter")
		requestsTotal.WithLabelValues(endpointLabel(target), "rate_limited").Inc()
		return rlErr
	}

	body, err := c.do(ctx, target)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		errorsTotal.WithLabelValues("parse").Inc()
		return &ParseError{URL: target, Err: err}
	}

	if ttl <= 0 {
		ttl = c.config.DefaultTTL
	}
	c.store.Set(key, body, ttl)
	c.logger.Debug().
		Str("target", target).
		Dur("ttl", ttl).
		Msg("Cached response")

	return nil
}

// Remaining reports the admission slots left for target's domain and when
// its window resets. Diagnostic read; consumes nothing.
func (c *Client) Remaining(target string) (int, time.Time) {
	domain := ratelimit.Domain(target)
	budget := c.config.Budgets.For(domain)
	return c.limiter.Remaining(domain, budget.MaxRequests)
}

// Store returns the underlying cache store for diagnostics and janitor wiring.
func (c *Client) Store() *cache.Store {
	return c.store
}

// Limiter returns the underlying rate limiter for diagnostics and janitor wiring.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// do executes the network call with pacing and retry. Returns the response
// body on a 2xx status, an HTTPError otherwise.
func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	endpoint := endpointLabel(target)

	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	var body []byte
	retryErr := retryWithBackoff(ctx, c.config.Retry, c.logger, func() error {
		resp, reqErr := c.httpClient.Do(req)
		if reqErr != nil {
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Msg("HTTP request failed")
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			return reqErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			httpErr := &HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				URL:        target,
			}
			errorsTotal.WithLabelValues(string(classify(httpErr))).Inc()
			requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Msg("Provider returned error status")
			return httpErr
		}

		b, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			return fmt.Errorf("read response body: %w", readErr)
		}

		body = b
		requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return body, nil
}

// endpointLabel reduces a target URL to its path for metric labels, keeping
// symbol and token query values out of the label space.
func endpointLabel(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Path == "" {
		return "unknown"
	}
	return u.Path
}
