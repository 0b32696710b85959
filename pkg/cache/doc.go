// Package cache provides the TTL caches backing the market-data core.
//
// Store is the in-process cache: a keyed TTL store holding decoded
// market-data artifacts (coin-list pages, logo maps, quote maps, chart
// and candle series). Expiry is lazy, checked on read; an expired entry
// is indistinguishable from a never-stored one. An optional entry bound
// evicts least-recently-used entries once the bound is exceeded.
//
// RedisStore is an optional shared second-level cache for raw upstream
// response bodies, used by the market-proxy daemon so several proxy
// instances can share one fetch. It is not required by the core: the
// in-process Store alone satisfies the library's caching contract.
//
// # Basic Usage
//
//	store := cache.NewStore(cache.WithMaxEntries(4096))
//
//	store.Set("chart:bitcoin:usd:7", points, 15*time.Minute)
//
//	points, ok := cache.Get[[]marketdata.ChartPoint](store, "chart:bitcoin:usd:7")
//	if !ok {
//		// miss or expired - fetch through the coordinator
//	}
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - market_cache_hits_total{store} - cache hits by store
//   - market_cache_misses_total{store} - cache misses by store
//   - market_cache_evictions_total{reason} - evictions (expired, lru)
//   - market_cache_entries - current in-memory entry count
package cache
