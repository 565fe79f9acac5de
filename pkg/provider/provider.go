// Package provider builds request targets for the supported market-data
// providers (Finnhub, Coinbase, custom JSON endpoints) and defines their
// response payload types and per-resource cache TTLs.
package provider

import (
	"fmt"
	"net/url"
)

// Default provider base URLs.
const (
	DefaultFinnhubBaseURL  = "https://finnhub.io/api/v1"
	DefaultCoinbaseBaseURL = "https://api.coinbase.com/v2"
)

// Config holds the static provider configuration.
type Config struct {
	// FinnhubBaseURL is the Finnhub REST base URL.
	FinnhubBaseURL string

	// CoinbaseBaseURL is the Coinbase REST base URL.
	CoinbaseBaseURL string

	// Token is the Finnhub API key, passed as a query-string credential.
	// Because the credential is part of the request target, cached entries
	// are keyed per credential.
	Token string
}

// DefaultConfig returns the provider configuration for the given API token.
func DefaultConfig(token string) Config {
	return Config{
		FinnhubBaseURL:  DefaultFinnhubBaseURL,
		CoinbaseBaseURL: DefaultCoinbaseBaseURL,
		Token:           token,
	}
}

// Provider builds request targets from the configured base URLs.
type Provider struct {
	cfg Config
}

// New creates a provider with the given configuration, filling in default
// base URLs for any left empty.
func New(cfg Config) *Provider {
	if cfg.FinnhubBaseURL == "" {
		cfg.FinnhubBaseURL = DefaultFinnhubBaseURL
	}
	if cfg.CoinbaseBaseURL == "" {
		cfg.CoinbaseBaseURL = DefaultCoinbaseBaseURL
	}
	return &Provider{cfg: cfg}
}

// QuoteURL returns the target for a real-time quote.
func (p *Provider) QuoteURL(symbol string) string {
	return p.finnhub("/quote", url.Values{"symbol": {symbol}})
}

// ProfileURL returns the target for a company profile.
func (p *Provider) ProfileURL(symbol string) string {
	return p.finnhub("/stock/profile2", url.Values{"symbol": {symbol}})
}

// MetricsURL returns the target for basic financial metrics.
func (p *Provider) MetricsURL(symbol string) string {
	return p.finnhub("/stock/metric", url.Values{"symbol": {symbol}, "metric": {"all"}})
}

// CandleURL returns the target for historical OHLCV candles.
// Resolution is a Finnhub resolution code ("1", "5", "15", "30", "60", "D",
// "W", "M"); from and to are Unix timestamps.
func (p *Provider) CandleURL(symbol, resolution string, from, to int64) string {
	return p.finnhub("/stock/candle", url.Values{
		"symbol":     {symbol},
		"resolution": {resolution},
		"from":       {fmt.Sprintf("%d", from)},
		"to":         {fmt.Sprintf("%d", to)},
	})
}

// SpotPriceURL returns the Coinbase target for a currency pair spot price,
// e.g. "BTC-USD". Coinbase's public price endpoints take no credential.
func (p *Provider) SpotPriceURL(pair string) string {
	return fmt.Sprintf("%s/prices/%s/spot", p.cfg.CoinbaseBaseURL, url.PathEscape(pair))
}

func (p *Provider) finnhub(path string, params url.Values) string {
	if p.cfg.Token != "" {
		params.Set("token", p.cfg.Token)
	}
	return p.cfg.FinnhubBaseURL + path + "?" + params.Encode()
}
