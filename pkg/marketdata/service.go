package marketdata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/coinwatch/market-client/pkg/cache"
	"github.com/coinwatch/market-client/pkg/coordinator"
)

// DefaultPerPage is the listing page size when none is configured.
const DefaultPerPage = 50

// Service composes the cache, coordinator, and a fetcher into the
// data-access facade. Every operation follows the same path: cache
// check, then coordinator dispatch, then write-back with the kind's
// TTL. Construct one Service per upstream quota and share it.
type Service struct {
	store   *cache.Store
	coord   *coordinator.Coordinator
	fetcher Fetcher
	logger  zerolog.Logger
	perPage int
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPerPage sets the listing page size.
func WithPerPage(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.perPage = n
		}
	}
}

// NewService creates the facade.
func NewService(store *cache.Store, coord *coordinator.Coordinator, fetcher Fetcher, logger zerolog.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		coord:   coord,
		fetcher: fetcher,
		logger:  logger,
		perPage: DefaultPerPage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Coins returns one listing page, cached for TTLCoinList.
func (s *Service) Coins(ctx context.Context, vs string, page int) ([]Coin, error) {
	key := CoinsKey(vs, page)
	return fetchThrough(s, ctx, key, coordinator.PriorityNormal, TTLCoinList,
		func(ctx context.Context) ([]Coin, error) {
			return s.fetcher.Coins(ctx, vs, page, s.perPage)
		})
}

// Quotes returns spot quotes for ids, cached for TTLQuotes. Quotes
// back the visible price polling, so they run at high priority and are
// never throttled.
func (s *Service) Quotes(ctx context.Context, vs string, ids []string) (map[string]Quote, error) {
	key := QuotesKey(vs, ids)
	return fetchThrough(s, ctx, key, coordinator.PriorityHigh, TTLQuotes,
		func(ctx context.Context) (map[string]Quote, error) {
			return s.fetcher.Quotes(ctx, vs, ids)
		})
}

// Logos returns logo URLs for ids, cached for TTLLogos. Decorative
// data, fetched at low priority.
func (s *Service) Logos(ctx context.Context, ids []string) (map[string]string, error) {
	key := LogosKey(ids)
	return fetchThrough(s, ctx, key, coordinator.PriorityLow, TTLLogos,
		func(ctx context.Context) (map[string]string, error) {
			return s.fetcher.Logos(ctx, ids)
		})
}

// Chart returns a price series for id over the last days, cached for
// TTLChart.
func (s *Service) Chart(ctx context.Context, id, vs string, days int) ([]ChartPoint, error) {
	key := ChartKey(id, vs, days)
	return fetchThrough(s, ctx, key, coordinator.PriorityNormal, TTLChart,
		func(ctx context.Context) ([]ChartPoint, error) {
			return s.fetcher.Chart(ctx, id, vs, days)
		})
}

// OHLC returns a candle series for id over the last days, cached for
// TTLOHLC.
func (s *Service) OHLC(ctx context.Context, id, vs string, days int) ([]Candle, error) {
	key := OHLCKey(id, vs, days)
	return fetchThrough(s, ctx, key, coordinator.PriorityNormal, TTLOHLC,
		func(ctx context.Context) ([]Candle, error) {
			return s.fetcher.OHLC(ctx, id, vs, days)
		})
}

// fetchThrough is the shared cache-then-coordinate path. During an
// open cooldown window a cache miss is answered without touching the
// upstream: issuing the request would only burn quota the upstream
// already told us is exhausted.
func fetchThrough[T any](s *Service, ctx context.Context, key string, pri coordinator.Priority, ttl time.Duration, fn coordinator.FactoryFunc[T]) (T, error) {
	if v, ok := cache.Get[T](s.store, key); ok {
		s.logger.Debug().Str("key", key).Msg("Cache hit")
		return v, nil
	}

	if st := s.coord.CooldownStatus(); st.Active {
		var zero T
		s.logger.Debug().
			Str("key", key).
			Dur("remaining", st.Remaining).
			Msg("Cache miss during cooldown - not dispatching")
		return zero, fmt.Errorf("cooldown active for another %s: %w",
			st.Remaining.Round(time.Second), coordinator.ErrRateLimited)
	}

	v, err := coordinator.Execute(s.coord, ctx, key, pri, fn)
	if err != nil {
		return v, err
	}
	s.store.Set(key, v, ttl)
	return v, nil
}

// Warm prefetches the first pages of the listing plus quotes and logos
// for every coin they contain. Throttled keys are skipped: warming is
// best effort and must never fight interactive traffic.
func (s *Service) Warm(ctx context.Context, vs string, pages int) error {
	g, pageCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	pageCoins := make([][]Coin, pages)
	for p := 1; p <= pages; p++ {
		g.Go(func() error {
			coins, err := s.Coins(pageCtx, vs, p)
			if err != nil {
				if errors.Is(err, coordinator.ErrThrottled) {
					return nil
				}
				return fmt.Errorf("warm page %d: %w", p, err)
			}
			pageCoins[p-1] = coins
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var ids []string
	for _, coins := range pageCoins {
		for _, c := range coins {
			ids = append(ids, c.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	// Wait cancels pageCtx on return; the quote and logo fetches run
	// under a fresh group derived from the caller's context.
	g2, detailCtx := errgroup.WithContext(ctx)
	g2.Go(func() error {
		if _, err := s.Quotes(detailCtx, vs, ids); err != nil && !errors.Is(err, coordinator.ErrThrottled) {
			return fmt.Errorf("warm quotes: %w", err)
		}
		return nil
	})
	g2.Go(func() error {
		if _, err := s.Logos(detailCtx, ids); err != nil && !errors.Is(err, coordinator.ErrThrottled) {
			return fmt.Errorf("warm logos: %w", err)
		}
		return nil
	})
	return g2.Wait()
}

// InvalidateAll drops every cached entry. The next call for any key
// goes back through the coordinator.
func (s *Service) InvalidateAll() {
	s.store.Clear()
	s.logger.Info().Msg("Cache cleared")
}

// CooldownStatus exposes the coordinator's cooldown window to callers
// that surface it (status endpoints, retry affordances).
func (s *Service) CooldownStatus() coordinator.Status {
	return s.coord.CooldownStatus()
}

// InFlight reports how many upstream requests are currently running.
func (s *Service) InFlight() int {
	return s.coord.InFlight()
}
