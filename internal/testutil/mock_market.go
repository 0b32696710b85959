// Package testutil provides testing utilities for the market-data
// client.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock upstream endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// MockMarket is a configurable mock market-data API server. Paths
// without a configured handler answer with small CoinGecko-shaped
// defaults so happy-path tests need no setup.
type MockMarket struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	requestCount int
	lastQuery    map[string][]string
}

// NewMockMarket creates a mock upstream server.
func NewMockMarket() *MockMarket {
	mock := &MockMarket{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.lastQuery = r.URL.Query()
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, ok := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if ok {
			handler(w, r)
			return
		}
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server base URL.
func (m *MockMarket) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockMarket) Close() {
	m.server.Close()
}

// Reset clears request tracking.
func (m *MockMarket) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastQuery = nil
}

// SetHandler installs a custom handler for a path.
func (m *MockMarket) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockMarket) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// RequestCount returns the number of requests received.
func (m *MockMarket) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockMarket) LastQuery() map[string][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// defaultHandler answers with minimal CoinGecko-shaped payloads.
func (m *MockMarket) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/coins/markets":
		w.Write([]byte(`[{"id":"bitcoin","symbol":"btc","name":"Bitcoin","image":"https://img.example/btc.png","current_price":43000,"market_cap":840000000000,"market_cap_rank":1,"total_volume":18000000000,"price_change_24h":500,"price_change_percentage_24h":1.2}]`))
	case r.URL.Path == "/simple/price":
		w.Write([]byte(`{"bitcoin":{"usd":43000,"usd_24h_change":1.2,"usd_market_cap":840000000000,"last_updated_at":1700000000}}`))
	case strings.HasSuffix(r.URL.Path, "/market_chart"):
		w.Write([]byte(`{"prices":[[1700000000000,42000],[1700003600000,42500],[1700007200000,43000]]}`))
	case strings.HasSuffix(r.URL.Path, "/ohlc"):
		w.Write([]byte(`[[1700000000000,42000,43500,41800,43000],[1700014400000,43000,43200,42500,42900]]`))
	default:
		w.Write([]byte(`{}`))
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"status":{"error_code":429,"error_message":"You've exceeded the Rate Limit."}}`,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"internal server error"}`,
	}
}
