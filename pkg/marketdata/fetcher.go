package marketdata

import "context"

// Fetcher performs the real upstream operations. Implementations own
// HTTP transport and JSON decoding; the facade only sees success or
// failure and classifies failures via the coordinator. Errors should
// wrap the transport taxonomy in errors.go where it applies.
type Fetcher interface {
	// Coins fetches one market-cap ordered listing page.
	Coins(ctx context.Context, vs string, page, perPage int) ([]Coin, error)

	// Quotes fetches spot quotes for the given coin ids.
	Quotes(ctx context.Context, vs string, ids []string) (map[string]Quote, error)

	// Logos fetches logo URLs for the given coin ids.
	Logos(ctx context.Context, ids []string) (map[string]string, error)

	// Chart fetches a price series covering the last days.
	Chart(ctx context.Context, id, vs string, days int) ([]ChartPoint, error)

	// OHLC fetches a candle series covering the last days.
	OHLC(ctx context.Context, id, vs string, days int) ([]Candle, error)
}
