package marketdata

import (
	"fmt"
	"sort"
	"strings"
)

// Keys are deterministic colon-joined strings built from the domain
// parameters of a request. The leading kind segment doubles as a type
// tag: two call sites can only share a key when they decode the same
// payload, which makes in-flight result-type mismatches a
// key-construction concern instead of a runtime one. The same string
// serves as both request key and cache key.

// CoinsKey identifies one page of the coin listing.
// Example: coins:usd:page=1
func CoinsKey(vs string, page int) string {
	return fmt.Sprintf("coins:%s:page=%d", normalize(vs), page)
}

// QuotesKey identifies a quote map for a set of coins.
// IDs are sorted so equal sets produce equal keys.
// Example: quotes:usd:bitcoin,ethereum
func QuotesKey(vs string, ids []string) string {
	return fmt.Sprintf("quotes:%s:%s", normalize(vs), idList(ids))
}

// LogosKey identifies a logo-URL map for a set of coins.
// Example: logos:bitcoin,ethereum
func LogosKey(ids []string) string {
	return "logos:" + idList(ids)
}

// ChartKey identifies a price-chart series.
// Example: chart:bitcoin:usd:7
func ChartKey(id, vs string, days int) string {
	return fmt.Sprintf("chart:%s:%s:%d", normalize(id), normalize(vs), days)
}

// OHLCKey identifies an OHLC candle series.
// Example: ohlc:bitcoin:usd:30
func OHLCKey(id, vs string, days int) string {
	return fmt.Sprintf("ohlc:%s:%s:%d", normalize(id), normalize(vs), days)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func idList(ids []string) string {
	cleaned := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = normalize(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	sort.Strings(cleaned)
	return strings.Join(cleaned, ",")
}
