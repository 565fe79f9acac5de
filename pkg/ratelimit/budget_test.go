package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDomain(t *testing.T) {
	tests := []struct {
		name   string
		rawURL string
		want   string
	}{
		{
			name:   "https URL",
			rawURL: "https://finnhub.io/api/v1/quote?symbol=AAPL",
			want:   "finnhub.io",
		},
		{
			name:   "URL with port",
			rawURL: "http://localhost:8080/data",
			want:   "localhost",
		},
		{
			name:   "coinbase spot price",
			rawURL: "https://api.coinbase.com/v2/prices/BTC-USD/spot",
			want:   "api.coinbase.com",
		},
		{
			name:   "relative path has no host",
			rawURL: "/api/v1/quote",
			want:   UnknownDomain,
		},
		{
			name:   "empty target",
			rawURL: "",
			want:   UnknownDomain,
		},
		{
			name:   "unparseable target",
			rawURL: "http://[::1",
			want:   UnknownDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Domain(tt.rawURL))
		})
	}
}

func TestBudgets_For(t *testing.T) {
	budgets := DefaultBudgets()

	finnhub := budgets.For("finnhub.io")
	require.Equal(t, 60, finnhub.MaxRequests)
	require.Equal(t, time.Minute, finnhub.Window)

	coinbase := budgets.For("api.coinbase.com")
	require.Equal(t, 10, coinbase.MaxRequests)
	require.Equal(t, time.Second, coinbase.Window)

	// Unrecognized domains and the unknown bucket share the default budget.
	require.Equal(t, budgets.Default, budgets.For("api.example.com"))
	require.Equal(t, budgets.Default, budgets.For(UnknownDomain))
}
