package coingecko

import (
	"fmt"
	"net/http"

	"github.com/coinwatch/market-client/pkg/marketdata"
)

// StatusError reports a non-200 upstream response.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("coingecko %s returned status %d", e.Endpoint, e.Code)
}

// RateLimit reports whether the status signals quota exhaustion. The
// coordinator's classifier probes this to open the cooldown window.
func (e *StatusError) RateLimit() bool {
	return e.Code == http.StatusTooManyRequests
}

// Unwrap folds non-rate-limit statuses into the facade's transport
// taxonomy. Rate limiting is its own signal, not an invalid response.
func (e *StatusError) Unwrap() error {
	if e.RateLimit() {
		return nil
	}
	return marketdata.ErrInvalidResponse
}
