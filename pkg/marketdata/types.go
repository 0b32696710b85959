// Package marketdata is the data-access facade over the coordinator
// and cache: it builds deterministic request keys from domain
// parameters, checks the cache before dispatching, and writes
// successful results back with the data kind's TTL.
package marketdata

import "time"

// Coin is one row of a market-cap ordered coin listing.
type Coin struct {
	ID                string  `json:"id"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Image             string  `json:"image"`
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         float64 `json:"market_cap"`
	MarketCapRank     int     `json:"market_cap_rank"`
	TotalVolume       float64 `json:"total_volume"`
	PriceChange24h    float64 `json:"price_change_24h"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`
}

// Quote is a spot price snapshot for one coin in one currency.
type Quote struct {
	Price       float64
	ChangePct24 float64
	MarketCap   float64
	UpdatedAt   time.Time
}

// ChartPoint is one sample of a price-chart series.
type ChartPoint struct {
	Time  time.Time
	Price float64
}

// Candle is one OHLC bar of a candle series.
type Candle struct {
	Time  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
}
