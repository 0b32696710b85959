package coordinator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// requestsInFlight tracks the number of distinct keys with a
	// running upstream operation.
	requestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "market_requests_in_flight",
		Help: "Number of distinct request keys with an in-flight upstream operation",
	})

	// requestOutcomes counts admission decisions by outcome.
	requestOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "market_request_admissions_total",
		Help: "Coordinator admission decisions by outcome",
	}, []string{"outcome"}) // "dispatched", "joined", "throttled", "mismatched"

	// cooldownsTotal counts rate-limit signals that opened or extended
	// the global cooldown window.
	cooldownsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "market_cooldowns_total",
		Help: "Total number of rate-limit signals that opened or extended the cooldown window",
	})

	// cooldownActive mirrors the cooldown window state (1 active, 0 not).
	cooldownActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "market_cooldown_active",
		Help: "Whether the global rate-limit cooldown window is currently open",
	})
)

const (
	outcomeDispatched = "dispatched"
	outcomeJoined     = "joined"
	outcomeThrottled  = "throttled"
	outcomeMismatched = "mismatched"
)
