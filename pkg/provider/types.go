package provider

// Quote is a Finnhub real-time quote.
type Quote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// Profile is a Finnhub company profile.
type Profile struct {
	Country          string  `json:"country"`
	Currency         string  `json:"currency"`
	Exchange         string  `json:"exchange"`
	Industry         string  `json:"finnhubIndustry"`
	IPO              string  `json:"ipo"`
	Logo             string  `json:"logo"`
	MarketCap        float64 `json:"marketCapitalization"`
	Name             string  `json:"name"`
	ShareOutstanding float64 `json:"shareOutstanding"`
	Ticker           string  `json:"ticker"`
	WebURL           string  `json:"weburl"`
}

// Metrics is a Finnhub basic-financials response. Metric values can be
// numbers or date strings depending on the key, so the inner map stays
// untyped.
type Metrics struct {
	Symbol     string         `json:"symbol"`
	MetricType string         `json:"metricType"`
	Metric     map[string]any `json:"metric"`
}

// Candles is a Finnhub historical candle series. Series fields are parallel
// arrays indexed by candle; Status is "ok" or "no_data".
type Candles struct {
	Close     []float64 `json:"c"`
	High      []float64 `json:"h"`
	Low       []float64 `json:"l"`
	Open      []float64 `json:"o"`
	Volume    []float64 `json:"v"`
	Timestamp []int64   `json:"t"`
	Status    string    `json:"s"`
}

// SpotPrice is a Coinbase spot price response. Amount is a decimal string
// as returned by the API.
type SpotPrice struct {
	Data struct {
		Amount   string `json:"amount"`
		Base     string `json:"base"`
		Currency string `json:"currency"`
	} `json:"data"`
}
