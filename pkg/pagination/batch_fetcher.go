package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coinwatch/market-client/pkg/coordinator"
	"github.com/coinwatch/market-client/pkg/marketdata"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of parallel page fetches.
	// The coordinator's throttling still applies per page key.
	MaxConcurrency int

	// Timeout per page fetch.
	Timeout time.Duration
}

// DefaultConfig returns safe defaults for interactive pagination.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
	}
}

// PageFetcher fetches one listing page. *marketdata.Service satisfies
// it.
type PageFetcher interface {
	Coins(ctx context.Context, vs string, page int) ([]marketdata.Coin, error)
}

// BatchFetcher fetches several listing pages with a bounded worker
// pool.
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewBatchFetcher creates a batch fetcher.
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &BatchFetcher{fetcher: fetcher, config: config}
}

// FetchPages fetches pages 1..pages and returns the ones that
// succeeded, keyed by page number. Throttled pages are skipped; any
// other failure aborts the batch and returns the partial map with the
// first such error.
func (bf *BatchFetcher) FetchPages(ctx context.Context, vs string, pages int) (map[int][]marketdata.Coin, error) {
	start := time.Now()

	type pageResult struct {
		page  int
		coins []marketdata.Coin
		err   error
	}

	pageQueue := make(chan int, pages)
	for p := 1; p <= pages; p++ {
		pageQueue <- p
	}
	close(pageQueue)

	results := make(chan pageResult, pages)

	var wg sync.WaitGroup
	workers := min(bf.config.MaxConcurrency, pages)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range pageQueue {
				select {
				case <-ctx.Done():
					return
				default:
				}

				pageCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
				coins, err := bf.fetcher.Coins(pageCtx, vs, page)
				cancel()

				results <- pageResult{page: page, coins: coins, err: err}
				if err != nil && !errors.Is(err, coordinator.ErrThrottled) {
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	fetched := make(map[int][]marketdata.Coin)
	var firstErr error
	for res := range results {
		switch {
		case res.err == nil:
			fetched[res.page] = res.coins
		case errors.Is(res.err, coordinator.ErrThrottled):
			log.Debug().Int("page", res.page).Msg("Page skipped (throttled)")
		case firstErr == nil:
			firstErr = fmt.Errorf("page %d: %w", res.page, res.err)
		}
	}

	log.Info().
		Str("vs", vs).
		Int("fetched", len(fetched)).
		Int("requested", pages).
		Dur("duration", time.Since(start)).
		Msg("Batch page fetch complete")

	return fetched, firstErr
}
