package marketdata

import (
	"errors"

	"github.com/coinwatch/market-client/pkg/coordinator"
)

// Transport-level error kinds a Fetcher implementation reports. The
// facade treats fetchers as opaque beyond this taxonomy; anything else
// passes through as an unknown cause.
var (
	// ErrBadURL indicates the request URL could not be built.
	ErrBadURL = errors.New("bad request url")

	// ErrInvalidResponse indicates the upstream answered with an
	// unusable response (unexpected status, unreadable body).
	ErrInvalidResponse = errors.New("invalid upstream response")

	// ErrDecoding indicates the response body did not decode into the
	// expected payload shape.
	ErrDecoding = errors.New("response decoding failed")
)

// Describe translates the error taxonomy into user-facing guidance.
// The zero-knowledge fallback keeps raw causes out of the UI.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, coordinator.ErrThrottled):
		return "Refreshing too quickly. Please wait a moment and try again."
	case coordinator.IsRateLimit(err):
		return "The market-data service is busy. Showing cached data where available."
	case errors.Is(err, coordinator.ErrResultMismatch):
		return "Internal request conflict. Please report this issue."
	case errors.Is(err, ErrDecoding), errors.Is(err, ErrInvalidResponse):
		return "Received an unexpected answer from the market-data service. Try again shortly."
	case errors.Is(err, ErrBadURL):
		return "Could not build the market-data request."
	default:
		return "Market data is temporarily unavailable. Try again shortly."
	}
}
