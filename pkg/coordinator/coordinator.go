// Package coordinator implements admission control for upstream
// market-data requests: per-key deduplication of in-flight calls,
// priority-tiered minimum-interval throttling, and a process-wide
// cooldown window entered when the upstream signals rate limiting.
package coordinator

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FactoryFunc performs the real upstream operation for a request key.
// It is treated as a black box: the coordinator only looks at success
// versus failure, and classifies failures for cooldown triggering.
type FactoryFunc[T any] func(ctx context.Context) (T, error)

// flight is the single in-flight operation for a key. Its result is
// published exactly once by closing done; waiters read val/err only
// after the close, which establishes the necessary happens-before.
type flight struct {
	rtype   reflect.Type
	done    chan struct{}
	val     any
	err     error
	waiters int
}

// Config holds coordinator configuration.
type Config struct {
	// CooldownWindow is how long the process backs off after an
	// upstream rate-limit signal. Repeated signals extend the window.
	CooldownWindow time.Duration

	// IsRateLimit classifies factory errors as rate-limit signals.
	// Defaults to IsRateLimit.
	IsRateLimit func(error) bool
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		CooldownWindow: 60 * time.Second,
		IsRateLimit:    IsRateLimit,
	}
}

// Coordinator serializes the check-then-act admission sequence for all
// request keys behind one mutex. It owns no goroutines of its own
// beyond the one spawned per dispatched flight.
type Coordinator struct {
	mu       sync.Mutex
	flights  map[string]*flight
	lastDone map[string]time.Time
	cooldown cooldownWindow

	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

// New creates a coordinator. Construct exactly one per upstream quota
// and pass it by reference to every consumer; the single instance is
// what makes the cooldown window process-wide.
func New(cfg Config, logger zerolog.Logger) *Coordinator {
	if cfg.CooldownWindow <= 0 {
		cfg.CooldownWindow = DefaultConfig().CooldownWindow
	}
	if cfg.IsRateLimit == nil {
		cfg.IsRateLimit = IsRateLimit
	}
	return &Coordinator{
		flights:  make(map[string]*flight),
		lastDone: make(map[string]time.Time),
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Execute runs fn for key, or joins the result of an already-running
// call for the same key.
//
// Evaluation order per call:
//
//  1. Join: an existing flight for key makes this caller an additional
//     waiter of the same eventual result; fn is not invoked. A waiter
//     expecting a different result type fails with ErrResultMismatch.
//  2. Throttle: with no flight present, a completed call within the
//     priority's re-issue interval rejects with ErrThrottled.
//     PriorityHigh is exempt.
//  3. Dispatch: otherwise fn runs in its own goroutine and its single
//     result is fanned out to every waiter.
//
// Cancelling ctx withdraws this caller only: the flight runs to
// completion, other waiters still get its result, and the throttle
// record and cooldown window update normally.
func Execute[T any](c *Coordinator, ctx context.Context, key string, pri Priority, fn FactoryFunc[T]) (T, error) {
	var zero T
	rtype := reflect.TypeFor[T]()

	c.mu.Lock()
	if f, ok := c.flights[key]; ok {
		if f.rtype != rtype {
			c.mu.Unlock()
			requestOutcomes.WithLabelValues(outcomeMismatched).Inc()
			c.logger.Error().
				Str("key", key).
				Str("established", f.rtype.String()).
				Str("requested", rtype.String()).
				Msg("Result type mismatch on join")
			return zero, &ResultMismatchError{Key: key, Established: f.rtype, Requested: rtype}
		}
		f.waiters++
		c.mu.Unlock()
		requestOutcomes.WithLabelValues(outcomeJoined).Inc()
		c.logger.Debug().Str("key", key).Msg("Joined in-flight request")
		return await[T](ctx, key, f)
	}

	if pri != PriorityHigh {
		if last, ok := c.lastDone[key]; ok {
			if elapsed := c.now().Sub(last); elapsed < pri.DelayInterval() {
				retryAfter := pri.DelayInterval() - elapsed
				c.mu.Unlock()
				requestOutcomes.WithLabelValues(outcomeThrottled).Inc()
				c.logger.Debug().
					Str("key", key).
					Str("priority", pri.String()).
					Dur("retry_after", retryAfter).
					Msg("Request throttled")
				return zero, &ThrottledError{Key: key, Priority: pri, RetryAfter: retryAfter}
			}
		}
	}

	f := &flight{rtype: rtype, done: make(chan struct{}), waiters: 1}
	c.flights[key] = f
	c.mu.Unlock()

	requestOutcomes.WithLabelValues(outcomeDispatched).Inc()
	requestsInFlight.Inc()
	c.logger.Debug().Str("key", key).Str("priority", pri.String()).Msg("Dispatching request")

	// The flight must outlive any individual waiter, so it runs under
	// a context detached from the first caller's cancellation.
	go c.run(context.WithoutCancel(ctx), key, f, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})

	return await[T](ctx, key, f)
}

// run invokes the factory, records completion state, and publishes the
// result to all waiters.
func (c *Coordinator) run(ctx context.Context, key string, f *flight, fn func(context.Context) (any, error)) {
	v, err := fn(ctx)

	c.mu.Lock()
	// Reset may have swapped the table and a fresh flight may already
	// occupy the key; only remove our own entry.
	if cur, ok := c.flights[key]; ok && cur == f {
		delete(c.flights, key)
	}
	waiters := f.waiters
	if err == nil {
		// Only successful completions become a throttle baseline.
		c.lastDone[key] = c.now()
	} else if c.cfg.IsRateLimit(err) {
		c.cooldown.extend(c.now(), c.cfg.CooldownWindow)
		remaining := c.cooldown.statusAt(c.now()).Remaining
		c.mu.Unlock()

		cooldownsTotal.Inc()
		cooldownActive.Set(1)
		c.logger.Warn().
			Str("key", key).
			Dur("cooldown_remaining", remaining).
			Msg("Upstream rate limited - cooldown window open")

		c.finish(key, f, v, err, waiters)
		return
	}
	c.mu.Unlock()

	c.finish(key, f, v, err, waiters)
}

func (c *Coordinator) finish(key string, f *flight, v any, err error, waiters int) {
	f.val, f.err = v, err
	close(f.done)
	requestsInFlight.Dec()

	evt := c.logger.Debug()
	if err != nil {
		evt = c.logger.Warn().Err(err)
	}
	evt.Str("key", key).Int("waiters", waiters).Msg("Request completed")
}

// await blocks the calling goroutine until the flight resolves or ctx
// is cancelled. Every waiter of the same flight sees the identical
// value or identical error.
func await[T any](ctx context.Context, key string, f *flight) (T, error) {
	var zero T
	select {
	case <-f.done:
		if f.err != nil {
			return zero, f.err
		}
		v, ok := f.val.(T)
		if !ok {
			// Unreachable as long as every waiter passed the join-time
			// type check.
			return zero, &ResultMismatchError{
				Key:         key,
				Established: reflect.TypeOf(f.val),
				Requested:   reflect.TypeFor[T](),
			}
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// CooldownStatus reads the global cooldown window relative to the
// current time.
func (c *Coordinator) CooldownStatus() Status {
	c.mu.Lock()
	st := c.cooldown.statusAt(c.now())
	c.mu.Unlock()

	if st.Active {
		cooldownActive.Set(1)
	} else {
		cooldownActive.Set(0)
	}
	return st
}

// ShouldPreferCache reports whether callers should serve cached data
// instead of issuing new requests. True exactly while the cooldown
// window is open.
func (c *Coordinator) ShouldPreferCache() bool {
	return c.CooldownStatus().Active
}

// InFlight returns the number of keys currently in flight.
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.flights)
}

// Reset clears all in-flight bookkeeping, throttle records, and the
// cooldown window. Flights already running complete normally but are
// no longer joinable. Intended for test isolation; normal operation
// never needs it.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	c.flights = make(map[string]*flight)
	c.lastDone = make(map[string]time.Time)
	c.cooldown = cooldownWindow{}
	c.mu.Unlock()

	cooldownActive.Set(0)
}
