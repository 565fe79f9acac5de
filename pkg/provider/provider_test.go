package provider

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProvider_QuoteURL(t *testing.T) {
	p := New(DefaultConfig("demo-token"))

	target := p.QuoteURL("AAPL")

	u, err := url.Parse(target)
	require.NoError(t, err)
	require.Equal(t, "finnhub.io", u.Hostname())
	require.Equal(t, "/api/v1/quote", u.Path)
	require.Equal(t, "AAPL", u.Query().Get("symbol"))
	require.Equal(t, "demo-token", u.Query().Get("token"))
}

func TestProvider_CandleURL(t *testing.T) {
	p := New(DefaultConfig("demo-token"))

	target := p.CandleURL("MSFT", "D", 1700000000, 1700086400)

	u, err := url.Parse(target)
	require.NoError(t, err)
	require.Equal(t, "/api/v1/stock/candle", u.Path)
	require.Equal(t, "MSFT", u.Query().Get("symbol"))
	require.Equal(t, "D", u.Query().Get("resolution"))
	require.Equal(t, "1700000000", u.Query().Get("from"))
	require.Equal(t, "1700086400", u.Query().Get("to"))
}

func TestProvider_SpotPriceURL(t *testing.T) {
	p := New(DefaultConfig(""))

	require.Equal(t, "https://api.coinbase.com/v2/prices/BTC-USD/spot", p.SpotPriceURL("BTC-USD"))
}

func TestProvider_TokenOmittedWhenEmpty(t *testing.T) {
	p := New(DefaultConfig(""))

	u, err := url.Parse(p.QuoteURL("AAPL"))
	require.NoError(t, err)
	require.False(t, u.Query().Has("token"))
}

func TestProvider_CustomBaseURL(t *testing.T) {
	p := New(Config{FinnhubBaseURL: "http://localhost:9999/api/v1", Token: "x"})

	u, err := url.Parse(p.ProfileURL("TSLA"))
	require.NoError(t, err)
	require.Equal(t, "localhost", u.Hostname())
	require.Equal(t, "/api/v1/stock/profile2", u.Path)
}

func TestProvider_SymbolsAreQueryEscaped(t *testing.T) {
	p := New(DefaultConfig("t"))

	u, err := url.Parse(p.QuoteURL("BRK.B&x=1"))
	require.NoError(t, err)
	require.Equal(t, "BRK.B&x=1", u.Query().Get("symbol"))
}
