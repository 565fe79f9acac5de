package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/marketdash/market-data-client/internal/testutil"
	"github.com/marketdash/market-data-client/pkg/batch"
	"github.com/marketdash/market-data-client/pkg/client"
	"github.com/marketdash/market-data-client/pkg/provider"
	"github.com/marketdash/market-data-client/pkg/ratelimit"
)

func newProxyClient(t *testing.T) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig()
	cfg.PaceRequests = 0
	cfg.Budgets = ratelimit.Budgets{
		Default: ratelimit.Budget{MaxRequests: 1000, Window: time.Minute},
	}
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	return c
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestQuoteEndpoint(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetQuote(150.25, 151.0, 149.5, 150.0, 148.75)

	c := newProxyClient(t)
	prov := provider.New(provider.Config{FinnhubBaseURL: mock.URL(), Token: "test"})

	req := httptest.NewRequest("GET", "/api/quote?symbol=AAPL", nil)
	w := httptest.NewRecorder()

	quoteHandler(c, prov)(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var quote provider.Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if quote.Current != 150.25 {
		t.Errorf("Expected current price 150.25, got %v", quote.Current)
	}
}

func TestQuoteEndpoint_MissingSymbol(t *testing.T) {
	c := newProxyClient(t)
	prov := provider.New(provider.DefaultConfig("test"))

	req := httptest.NewRequest("GET", "/api/quote", nil)
	w := httptest.NewRecorder()

	quoteHandler(c, prov)(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Result().StatusCode)
	}
}

func TestQuoteEndpoint_RateLimited(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()

	cfg := client.DefaultConfig()
	cfg.PaceRequests = 0
	cfg.Budgets = ratelimit.Budgets{
		Default: ratelimit.Budget{MaxRequests: 1, Window: time.Minute},
	}
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	prov := provider.New(provider.Config{FinnhubBaseURL: mock.URL(), Token: "test"})

	// First request consumes the single slot.
	w := httptest.NewRecorder()
	quoteHandler(c, prov)(w, httptest.NewRequest("GET", "/api/quote?symbol=AAPL", nil))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Result().StatusCode)
	}

	// A different symbol misses the cache and gets rejected.
	w = httptest.NewRecorder()
	quoteHandler(c, prov)(w, httptest.NewRequest("GET", "/api/quote?symbol=MSFT", nil))

	resp := w.Result()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
}

func TestSymbolsEndpoint(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetQuote(101.5, 102, 99, 100, 100.5)

	c := newProxyClient(t)
	prov := provider.New(provider.Config{FinnhubBaseURL: mock.URL(), Token: "test"})
	bf := batch.New(c, prov, batch.DefaultConfig())

	req := httptest.NewRequest("GET", "/api/symbols?symbols=AAPL,MSFT", nil)
	w := httptest.NewRecorder()

	symbolsHandler(bf)(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var out []struct {
		Symbol string `json:"symbol"`
		Error  bool   `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(out))
	}
	if out[0].Symbol != "AAPL" || out[1].Symbol != "MSFT" {
		t.Errorf("Results out of order: %+v", out)
	}
}

func TestCandlesEndpoint(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse("/stock/candle", testutil.MockResponse{
		Body: `{"c":[100,101],"h":[102,103],"l":[99,100],"o":[100,100.5],"v":[1000,1200],"t":[1700000000,1700086400],"s":"ok"}`,
	})

	c := newProxyClient(t)
	prov := provider.New(provider.Config{FinnhubBaseURL: mock.URL(), Token: "test"})

	req := httptest.NewRequest("GET", "/api/candles?symbol=AAPL&resolution=D", nil)
	w := httptest.NewRecorder()

	candlesHandler(c, prov)(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var candles provider.Candles
	if err := json.NewDecoder(resp.Body).Decode(&candles); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if candles.Status != "ok" || len(candles.Close) != 2 {
		t.Errorf("Unexpected candles payload: %+v", candles)
	}
}

func TestCryptoEndpoint(t *testing.T) {
	mock := testutil.NewMockProvider()
	defer mock.Close()
	mock.SetResponse("/prices/BTC-USD/spot", testutil.MockResponse{
		Body: `{"data":{"amount":"57123.45","base":"BTC","currency":"USD"}}`,
	})

	c := newProxyClient(t)
	prov := provider.New(provider.Config{CoinbaseBaseURL: mock.URL()})

	req := httptest.NewRequest("GET", "/api/crypto?pair=BTC-USD", nil)
	w := httptest.NewRecorder()

	cryptoHandler(c, prov)(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var spot provider.SpotPrice
	if err := json.NewDecoder(resp.Body).Decode(&spot); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if spot.Data.Amount != "57123.45" || spot.Data.Base != "BTC" {
		t.Errorf("Unexpected spot payload: %+v", spot)
	}
}

func TestSymbolsEndpoint_MissingParam(t *testing.T) {
	c := newProxyClient(t)
	prov := provider.New(provider.DefaultConfig("test"))
	bf := batch.New(c, prov, batch.DefaultConfig())

	req := httptest.NewRequest("GET", "/api/symbols", nil)
	w := httptest.NewRecorder()

	symbolsHandler(bf)(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Result().StatusCode)
	}
}
