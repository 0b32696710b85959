package marketdata

import "testing"

func TestKeys_Deterministic(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"coins page", CoinsKey("USD", 1), "coins:usd:page=1"},
		{"coins later page", CoinsKey("eur", 7), "coins:eur:page=7"},
		{"chart", ChartKey("Bitcoin", "USD", 7), "chart:bitcoin:usd:7"},
		{"ohlc", OHLCKey("bitcoin", "usd", 30), "ohlc:bitcoin:usd:30"},
		{"quotes sorted", QuotesKey("usd", []string{"ethereum", "bitcoin"}), "quotes:usd:bitcoin,ethereum"},
		{"logos sorted", LogosKey([]string{"solana", "bitcoin"}), "logos:bitcoin,solana"},
		{"blank ids dropped", QuotesKey("usd", []string{"bitcoin", "", "  "}), "quotes:usd:bitcoin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestKeys_EqualSetsEqualKeys(t *testing.T) {
	a := QuotesKey("usd", []string{"bitcoin", "ethereum", "solana"})
	b := QuotesKey("USD", []string{"solana", "Bitcoin", "ethereum"})
	if a != b {
		t.Errorf("equal id sets produced different keys: %q vs %q", a, b)
	}
}

func TestKeys_KindPrefixSeparatesTypes(t *testing.T) {
	// A chart series and a candle series for the same coin and range
	// must never share a key: the kind prefix is the type tag.
	if ChartKey("bitcoin", "usd", 7) == OHLCKey("bitcoin", "usd", 7) {
		t.Error("chart and ohlc keys collide")
	}
}
