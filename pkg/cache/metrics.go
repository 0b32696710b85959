package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by store (memory, redis).
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"store"},
	)

	// CacheMisses tracks cache misses by store. Expired reads count as
	// misses, callers cannot tell them apart.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"store"},
	)

	// CacheEvictions tracks entries removed before an explicit delete.
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"reason"}, // "expired", "lru"
	)

	// CacheEntries tracks the current in-memory entry count.
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "market_cache_entries",
			Help: "Current number of entries in the in-memory cache",
		},
	)
)

const (
	storeMemory = "memory"
	storeRedis  = "redis"

	evictExpired = "expired"
	evictLRU     = "lru"
)
