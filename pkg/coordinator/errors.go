package coordinator

import (
	"errors"
	"fmt"
	"reflect"
	"time"
)

// Sentinel errors produced by the coordinator's admission control.
var (
	// ErrThrottled is returned when a call is rejected because the
	// priority's re-issue interval has not yet elapsed since the key's
	// last completed call. The factory is never invoked.
	ErrThrottled = errors.New("request throttled")

	// ErrResultMismatch is returned when a caller joins an in-flight
	// request but expects a different result type than the one
	// established by the first caller. The in-flight request and its
	// other waiters are unaffected.
	ErrResultMismatch = errors.New("in-flight result type mismatch")

	// ErrRateLimited marks errors that signal upstream quota
	// exhaustion. Factories may return errors wrapping this sentinel
	// to trigger the global cooldown window.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrDuplicateRequest is reserved for caller-level duplicate
	// submission guards (for example a UI debouncing a button). The
	// coordinator's own dedup path never produces it; duplicates are
	// joined, not rejected.
	ErrDuplicateRequest = errors.New("duplicate request")
)

// ThrottledError reports a rejected call together with the time the
// caller has to wait before the key accepts that priority again.
type ThrottledError struct {
	Key        string
	Priority   Priority
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("request %q throttled (%s priority, retry after %s)",
		e.Key, e.Priority, e.RetryAfter)
}

func (e *ThrottledError) Unwrap() error {
	return ErrThrottled
}

// ResultMismatchError reports the established and requested result
// types of a failed join. It usually indicates a key-design bug: two
// call sites share a key but decode different payloads.
type ResultMismatchError struct {
	Key         string
	Established reflect.Type
	Requested   reflect.Type
}

func (e *ResultMismatchError) Error() string {
	return fmt.Sprintf("request %q already in flight with result type %s, caller expects %s",
		e.Key, e.Established, e.Requested)
}

func (e *ResultMismatchError) Unwrap() error {
	return ErrResultMismatch
}

// rateLimiter is probed by the default classifier so transport errors
// can flag quota exhaustion without importing this package's sentinel.
type rateLimiter interface {
	RateLimit() bool
}

// IsRateLimit is the default rate-limit classifier. It recognizes
// errors wrapping ErrRateLimited and errors exposing RateLimit() bool
// anywhere in their chain.
func IsRateLimit(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var rl rateLimiter
	return errors.As(err, &rl) && rl.RateLimit()
}
