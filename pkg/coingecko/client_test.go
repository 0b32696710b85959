package coingecko

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/coinwatch/market-client/internal/testutil"
	"github.com/coinwatch/market-client/pkg/coordinator"
	"github.com/coinwatch/market-client/pkg/marketdata"
)

// newTestClient points a client without pacing at a mock upstream.
func newTestClient(t *testing.T) (*Client, *testutil.MockMarket) {
	t.Helper()

	mock := testutil.NewMockMarket()
	t.Cleanup(mock.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.RequestsPerSecond = 0
	return New(cfg, zerolog.Nop()), mock
}

func TestClient_Coins(t *testing.T) {
	client, mock := newTestClient(t)

	coins, err := client.Coins(context.Background(), "USD", 1, 50)
	if err != nil {
		t.Fatalf("Coins failed: %v", err)
	}
	if len(coins) != 1 {
		t.Fatalf("got %d coins, want 1", len(coins))
	}
	if coins[0].ID != "bitcoin" || coins[0].CurrentPrice != 43000 {
		t.Errorf("unexpected coin: %+v", coins[0])
	}

	query := mock.LastQuery()
	if got := query["vs_currency"]; len(got) != 1 || got[0] != "usd" {
		t.Errorf("vs_currency = %v, want [usd]", got)
	}
	if got := query["page"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("page = %v, want [1]", got)
	}
}

func TestClient_Quotes(t *testing.T) {
	client, _ := newTestClient(t)

	quotes, err := client.Quotes(context.Background(), "usd", []string{"bitcoin"})
	if err != nil {
		t.Fatalf("Quotes failed: %v", err)
	}

	q, ok := quotes["bitcoin"]
	if !ok {
		t.Fatal("bitcoin missing from quotes")
	}
	if q.Price != 43000 {
		t.Errorf("Price = %v, want 43000", q.Price)
	}
	if q.ChangePct24 != 1.2 {
		t.Errorf("ChangePct24 = %v, want 1.2", q.ChangePct24)
	}
	if want := time.Unix(1700000000, 0); !q.UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", q.UpdatedAt, want)
	}
}

func TestClient_Logos(t *testing.T) {
	client, _ := newTestClient(t)

	logos, err := client.Logos(context.Background(), []string{"bitcoin"})
	if err != nil {
		t.Fatalf("Logos failed: %v", err)
	}
	if logos["bitcoin"] != "https://img.example/btc.png" {
		t.Errorf("logo = %q", logos["bitcoin"])
	}
}

func TestClient_Chart(t *testing.T) {
	client, _ := newTestClient(t)

	points, err := client.Chart(context.Background(), "bitcoin", "usd", 7)
	if err != nil {
		t.Fatalf("Chart failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	if points[0].Price != 42000 {
		t.Errorf("first price = %v, want 42000", points[0].Price)
	}
	if want := time.UnixMilli(1700000000000); !points[0].Time.Equal(want) {
		t.Errorf("first time = %v, want %v", points[0].Time, want)
	}
}

func TestClient_OHLC(t *testing.T) {
	client, _ := newTestClient(t)

	candles, err := client.OHLC(context.Background(), "bitcoin", "usd", 30)
	if err != nil {
		t.Fatalf("OHLC failed: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	c := candles[0]
	if c.Open != 42000 || c.High != 43500 || c.Low != 41800 || c.Close != 43000 {
		t.Errorf("unexpected candle: %+v", c)
	}
}

func TestClient_RateLimitResponse(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetResponse("/simple/price", testutil.NewRateLimitResponse())

	_, err := client.Quotes(context.Background(), "usd", []string{"bitcoin"})
	if err == nil {
		t.Fatal("expected error for 429")
	}

	var status *StatusError
	if !errors.As(err, &status) {
		t.Fatalf("error is not a *StatusError: %v", err)
	}
	if !status.RateLimit() {
		t.Error("429 not classified as rate limit")
	}
	// The coordinator's default classifier must agree, this is what
	// opens the cooldown window.
	if !coordinator.IsRateLimit(err) {
		t.Error("coordinator.IsRateLimit rejects a 429 StatusError")
	}
}

func TestClient_ServerErrorIsInvalidResponse(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetResponse("/coins/markets", testutil.NewServerErrorResponse())

	_, err := client.Coins(context.Background(), "usd", 1, 50)
	if !errors.Is(err, marketdata.ErrInvalidResponse) {
		t.Errorf("got %v, want ErrInvalidResponse", err)
	}
	if coordinator.IsRateLimit(err) {
		t.Error("500 classified as rate limit")
	}
}

func TestClient_DecodingError(t *testing.T) {
	client, mock := newTestClient(t)
	mock.SetResponse("/coins/markets", testutil.MockResponse{
		StatusCode: 200,
		Body:       `{"not":"a list"}`,
	})

	_, err := client.Coins(context.Background(), "usd", 1, 50)
	if !errors.Is(err, marketdata.ErrDecoding) {
		t.Errorf("got %v, want ErrDecoding", err)
	}
}

func TestClient_Pacing(t *testing.T) {
	mock := testutil.NewMockMarket()
	t.Cleanup(mock.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = mock.URL()
	cfg.RequestsPerSecond = 20
	cfg.Burst = 1
	client := New(cfg, zerolog.Nop())

	// Three paced calls at 20 rps with burst 1 need at least ~100ms.
	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.Coins(context.Background(), "usd", 1, 10); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("three paced calls finished in %v, pacing not applied", elapsed)
	}
}

func TestClient_PacingCancelledContext(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 0.001 // effectively blocks
	cfg.Burst = 1
	client := New(cfg, zerolog.Nop())

	// Exhaust the burst, then cancel while waiting.
	client.limiter.Allow()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Coins(ctx, "usd", 1, 10)
	if err == nil {
		t.Fatal("expected pacing wait to fail on cancelled context")
	}
}
