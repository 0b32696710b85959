// Package metrics documents the Prometheus metrics exported by the
// market-data client. Metrics are defined next to the code that drives
// them (coordinator, cache, coingecko) via promauto; this package only
// carries the registry reference and the catalogue.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registerer used by the module.
// All metrics register automatically through promauto.
var Registry = prometheus.DefaultRegisterer

// Coordinator metrics (pkg/coordinator):
//   - market_requests_in_flight (Gauge): keys with a running upstream operation
//   - market_request_admissions_total{outcome} (Counter): dispatched, joined, throttled, mismatched
//   - market_cooldowns_total (Counter): rate-limit signals opening/extending the cooldown
//   - market_cooldown_active (Gauge): 1 while the cooldown window is open
//
// Cache metrics (pkg/cache):
//   - market_cache_hits_total{store} (Counter): hits by store (memory, redis)
//   - market_cache_misses_total{store} (Counter): misses by store
//   - market_cache_evictions_total{reason} (Counter): evictions (expired, lru)
//   - market_cache_entries (Gauge): in-memory entry count
//
// Upstream metrics (pkg/coingecko):
//   - market_upstream_requests_total{endpoint, status} (Counter)
//   - market_upstream_request_duration_seconds{endpoint} (Histogram)
//
// Example queries:
//
//	# Cache hit rate
//	sum(rate(market_cache_hits_total[5m])) /
//	(sum(rate(market_cache_hits_total[5m])) + sum(rate(market_cache_misses_total[5m])))
//
//	# Share of calls answered without touching the upstream
//	sum(rate(market_request_admissions_total{outcome=~"joined|throttled"}[5m])) /
//	sum(rate(market_request_admissions_total[5m]))
//
//	# In cooldown right now?
//	market_cooldown_active == 1
