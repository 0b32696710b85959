package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/coinwatch/market-client/pkg/coordinator"
	"github.com/coinwatch/market-client/pkg/marketdata"
)

type stubFetcher struct {
	calls     atomic.Int32
	throttled map[int]bool
	failPage  int
}

func (s *stubFetcher) Coins(ctx context.Context, vs string, page int) ([]marketdata.Coin, error) {
	s.calls.Add(1)
	if s.throttled[page] {
		return nil, &coordinator.ThrottledError{Key: fmt.Sprintf("coins:%s:page=%d", vs, page)}
	}
	if s.failPage == page {
		return nil, errors.New("upstream down")
	}
	return []marketdata.Coin{{ID: fmt.Sprintf("coin-%d", page)}}, nil
}

func TestBatchFetcher_AllPages(t *testing.T) {
	fetcher := &stubFetcher{}
	bf := NewBatchFetcher(fetcher, DefaultConfig())

	pages, err := bf.FetchPages(context.Background(), "usd", 5)
	if err != nil {
		t.Fatalf("FetchPages: %v", err)
	}
	if len(pages) != 5 {
		t.Fatalf("got %d pages, want 5", len(pages))
	}
	for p := 1; p <= 5; p++ {
		coins, ok := pages[p]
		if !ok || len(coins) != 1 {
			t.Errorf("page %d missing or wrong size", p)
		}
	}
}

func TestBatchFetcher_ThrottledPagesSkipped(t *testing.T) {
	fetcher := &stubFetcher{throttled: map[int]bool{2: true, 4: true}}
	bf := NewBatchFetcher(fetcher, DefaultConfig())

	pages, err := bf.FetchPages(context.Background(), "usd", 5)
	if err != nil {
		t.Fatalf("throttled pages must not fail the batch: %v", err)
	}
	if len(pages) != 3 {
		t.Errorf("got %d pages, want 3", len(pages))
	}
	if _, ok := pages[2]; ok {
		t.Error("throttled page present in results")
	}
}

func TestBatchFetcher_HardFailureSurfaces(t *testing.T) {
	fetcher := &stubFetcher{failPage: 3}
	cfg := DefaultConfig()
	cfg.MaxConcurrency = 1
	bf := NewBatchFetcher(fetcher, cfg)

	pages, err := bf.FetchPages(context.Background(), "usd", 5)
	if err == nil {
		t.Fatal("expected error from failing page")
	}
	// Pages before the failure are still delivered.
	if _, ok := pages[1]; !ok {
		t.Error("partial results dropped")
	}
	// With one worker, the failure stops the remaining pages.
	if fetcher.calls.Load() > 3 {
		t.Errorf("pages fetched after hard failure: %d calls", fetcher.calls.Load())
	}
}

func TestBatchFetcher_ConfigDefaults(t *testing.T) {
	bf := NewBatchFetcher(&stubFetcher{}, Config{})
	if bf.config.MaxConcurrency <= 0 || bf.config.Timeout <= 0 {
		t.Errorf("zero config not defaulted: %+v", bf.config)
	}
}
