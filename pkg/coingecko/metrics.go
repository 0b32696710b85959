package coingecko

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// upstreamRequests counts upstream calls by endpoint and status.
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "market_upstream_requests_total",
		Help: "Total upstream API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	// upstreamDuration tracks upstream call latency by endpoint.
	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "market_upstream_request_duration_seconds",
		Help:    "Upstream API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})
)
