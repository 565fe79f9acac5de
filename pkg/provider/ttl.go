package provider

import "time"

// Cache TTLs per resource type, scaled to each resource's volatility.
// Quotes and market prices go stale in about a minute; company profiles
// barely change day to day.
const (
	TTLQuote      = 1 * time.Minute
	TTLMarket     = 1 * time.Minute
	TTLHistorical = 30 * time.Minute
	TTLMetrics    = 1 * time.Hour
	TTLProfile    = 24 * time.Hour
)
