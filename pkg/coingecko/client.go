// Package coingecko supplies the facade's Fetcher: HTTP transport and
// JSON decoding against the CoinGecko v3 API, with client-side request
// pacing. The coordinator and cache never see any of this; they only
// observe the factory's success or failure.
package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/coinwatch/market-client/pkg/marketdata"
)

// DefaultBaseURL is the public CoinGecko v3 API.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Config holds client configuration.
type Config struct {
	// BaseURL of the API, overridable for tests and proxies.
	BaseURL string

	// UserAgent sent with every request.
	UserAgent string

	// RequestsPerSecond paces outgoing calls. The free CoinGecko tier
	// allows roughly 30 calls/minute; 0 disables pacing.
	RequestsPerSecond float64

	// Burst is the pacing burst size.
	Burst int

	// Timeout per request.
	Timeout time.Duration
}

// DefaultConfig returns a configuration safe for the free API tier.
func DefaultConfig() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		UserAgent:         "market-client/1.0",
		RequestsPerSecond: 0.5,
		Burst:             2,
		Timeout:           30 * time.Second,
	}
}

// Client implements marketdata.Fetcher against CoinGecko.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// New creates a CoinGecko client.
func New(cfg Config, logger zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		logger:     logger,
	}
}

// Coins fetches one market-cap ordered listing page.
func (c *Client) Coins(ctx context.Context, vs string, page, perPage int) ([]marketdata.Coin, error) {
	query := url.Values{
		"vs_currency":             {strings.ToLower(vs)},
		"order":                   {"market_cap_desc"},
		"per_page":                {strconv.Itoa(perPage)},
		"page":                    {strconv.Itoa(page)},
		"sparkline":               {"false"},
		"price_change_percentage": {"24h"},
	}
	var coins []marketdata.Coin
	if err := c.get(ctx, "/coins/markets", query, &coins); err != nil {
		return nil, fmt.Errorf("fetch coins page %d: %w", page, err)
	}
	return coins, nil
}

// Quotes fetches spot quotes via the simple/price endpoint.
func (c *Client) Quotes(ctx context.Context, vs string, ids []string) (map[string]marketdata.Quote, error) {
	vs = strings.ToLower(vs)
	query := url.Values{
		"ids":                     {strings.Join(ids, ",")},
		"vs_currencies":           {vs},
		"include_24hr_change":     {"true"},
		"include_market_cap":      {"true"},
		"include_last_updated_at": {"true"},
	}

	// simple/price answers a flat map of id -> field -> number.
	var raw map[string]map[string]float64
	if err := c.get(ctx, "/simple/price", query, &raw); err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}

	quotes := make(map[string]marketdata.Quote, len(raw))
	for id, fields := range raw {
		quotes[id] = marketdata.Quote{
			Price:       fields[vs],
			ChangePct24: fields[vs+"_24h_change"],
			MarketCap:   fields[vs+"_market_cap"],
			UpdatedAt:   time.Unix(int64(fields["last_updated_at"]), 0),
		}
	}
	return quotes, nil
}

// Logos fetches logo URLs. CoinGecko has no dedicated logo endpoint;
// the image field of a filtered markets listing carries them.
func (c *Client) Logos(ctx context.Context, ids []string) (map[string]string, error) {
	query := url.Values{
		"vs_currency": {"usd"},
		"ids":         {strings.Join(ids, ",")},
		"per_page":    {strconv.Itoa(max(len(ids), 1))},
		"sparkline":   {"false"},
	}
	var coins []marketdata.Coin
	if err := c.get(ctx, "/coins/markets", query, &coins); err != nil {
		return nil, fmt.Errorf("fetch logos: %w", err)
	}

	logos := make(map[string]string, len(coins))
	for _, coin := range coins {
		logos[coin.ID] = coin.Image
	}
	return logos, nil
}

// Chart fetches a price series covering the last days.
func (c *Client) Chart(ctx context.Context, id, vs string, days int) ([]marketdata.ChartPoint, error) {
	endpoint := "/coins/" + url.PathEscape(id) + "/market_chart"
	query := url.Values{
		"vs_currency": {strings.ToLower(vs)},
		"days":        {strconv.Itoa(days)},
	}

	// prices come as [millis, price] pairs.
	var raw struct {
		Prices [][2]float64 `json:"prices"`
	}
	if err := c.get(ctx, endpoint, query, &raw); err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", id, err)
	}

	points := make([]marketdata.ChartPoint, len(raw.Prices))
	for i, p := range raw.Prices {
		points[i] = marketdata.ChartPoint{
			Time:  time.UnixMilli(int64(p[0])),
			Price: p[1],
		}
	}
	return points, nil
}

// OHLC fetches a candle series covering the last days.
func (c *Client) OHLC(ctx context.Context, id, vs string, days int) ([]marketdata.Candle, error) {
	endpoint := "/coins/" + url.PathEscape(id) + "/ohlc"
	query := url.Values{
		"vs_currency": {strings.ToLower(vs)},
		"days":        {strconv.Itoa(days)},
	}

	// candles come as [millis, open, high, low, close] rows.
	var raw [][5]float64
	if err := c.get(ctx, endpoint, query, &raw); err != nil {
		return nil, fmt.Errorf("fetch ohlc for %s: %w", id, err)
	}

	candles := make([]marketdata.Candle, len(raw))
	for i, row := range raw {
		candles[i] = marketdata.Candle{
			Time:  time.UnixMilli(int64(row[0])),
			Open:  row[1],
			High:  row[2],
			Low:   row[3],
			Close: row[4],
		}
	}
	return candles, nil
}

// get performs one paced GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return fmt.Errorf("%w: %v", marketdata.ErrBadURL, err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", marketdata.ErrBadURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		upstreamRequests.WithLabelValues(endpoint, "network_error").Inc()
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	upstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	upstreamRequests.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("Upstream request failed")
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", marketdata.ErrInvalidResponse, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", marketdata.ErrDecoding, err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Dur("duration", time.Since(start)).
		Msg("Upstream request completed")
	return nil
}
