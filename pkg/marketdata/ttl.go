package marketdata

import "time"

// Freshness windows per data kind. These are added to the store time;
// after the window the entry reads as absent and the next call goes
// back through the coordinator.
const (
	// TTLChart covers price-chart series. Chart shapes move slowly
	// enough that 15 minutes of staleness is invisible in the UI.
	TTLChart = 15 * time.Minute

	// TTLOHLC covers candle series, same freshness class as charts.
	TTLOHLC = 15 * time.Minute

	// TTLQuotes covers spot quotes, the most volatile kind.
	TTLQuotes = 1 * time.Minute

	// TTLCoinList covers listing pages; ranks and prices drift within
	// minutes but pagination must feel instant.
	TTLCoinList = 5 * time.Minute

	// TTLLogos covers logo-URL maps, which effectively never change.
	TTLLogos = 24 * time.Hour
)
