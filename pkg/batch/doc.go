// Package batch fans the cached single-request fetcher out over many stock
// symbols at once, bundling several sub-resources (quote, company profile,
// basic financials) per symbol.
//
// Failures are contained at the symbol boundary: one symbol's failing
// fetch chain produces a degraded result for that symbol alone, and the
// batch always resolves with exactly one result per requested symbol, in
// the order the symbols were given.
//
//	bf := batch.New(client, prov, batch.DefaultConfig())
//
//	results := bf.FetchSymbols(ctx, []string{"AAPL", "MSFT", "TSLA"}, batch.IncludeAll())
//	for _, r := range results {
//		if r.Failed() {
//			// render an error indicator for this symbol only
//			continue
//		}
//		// r.Quote, r.Profile, r.Metrics
//	}
//
// Each sub-resource fetch is an independent cached fetch, separately keyed
// by its full request target (resource + symbol + credential) with a TTL
// matching that resource's volatility.
package batch
