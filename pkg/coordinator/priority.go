package coordinator

import "time"

// Priority controls the minimum re-issue interval applied to a request
// key after its previous call completed. Higher priorities are allowed
// to re-ask sooner; PriorityHigh bypasses throttling entirely.
type Priority int

const (
	// PriorityHigh is for user-blocking fetches such as visible price
	// polling. Never throttled.
	PriorityHigh Priority = iota

	// PriorityNormal is for interactive fetches (list pages, chart
	// range switches).
	PriorityNormal

	// PriorityLow is for prefetch and decorative data (logo maps).
	PriorityLow
)

// Re-issue intervals per priority. These are fixed product constants,
// not runtime-tunable.
const (
	highInterval   = 1 * time.Second
	normalInterval = 3 * time.Second
	lowInterval    = 6 * time.Second
)

// DelayInterval returns the minimum time that must elapse between a
// completed call and the next dispatch for the same key at this
// priority. PriorityHigh callers are exempt from the check, the value
// is informational for them.
func (p Priority) DelayInterval() time.Duration {
	switch p {
	case PriorityHigh:
		return highInterval
	case PriorityLow:
		return lowInterval
	default:
		return normalInterval
	}
}

// String implements fmt.Stringer, used as a metric and log label.
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return "unknown"
	}
}
