package cache

import (
	"encoding/json"
	"sort"
	"strings"
)

// Key generates a deterministic cache key for an endpoint and its parameters.
// Format: {endpoint}:{canonical-json-of-sorted-params}
//
// Parameter names are sorted lexicographically before serialization, so two
// logically identical requests always map to the same key regardless of the
// order the caller supplied the parameters in.
//
// Example:
//
//	Key("https://finnhub.io/api/v1/quote", map[string]string{"symbol": "AAPL"})
//	=> `https://finnhub.io/api/v1/quote:{"symbol":"AAPL"}`
func Key(endpoint string, params map[string]string) string {
	var sb strings.Builder
	sb.WriteString(endpoint)
	sb.WriteByte(':')
	sb.WriteByte('{')

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.Write(jsonString(name))
		sb.WriteByte(':')
		sb.Write(jsonString(params[name]))
	}

	sb.WriteByte('}')
	return sb.String()
}

// jsonString encodes s as a JSON string literal, including quotes.
func jsonString(s string) []byte {
	// Marshal of a string cannot fail.
	b, _ := json.Marshal(s)
	return b
}
