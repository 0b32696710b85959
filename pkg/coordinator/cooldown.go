package coordinator

import "time"

// Status is a point-in-time read of the global cooldown window.
type Status struct {
	// Active is true while the upstream is considered rate limited.
	Active bool

	// Remaining is the time until the window closes. Zero when
	// inactive.
	Remaining time.Duration
}

// cooldownWindow is a stored deadline compared against the clock at
// check time. No timer goroutine is involved; the window simply lapses
// once now passes the deadline.
type cooldownWindow struct {
	until time.Time
}

// extend opens the window, or pushes an open window further out. The
// deadline never moves backwards, repeated rate-limit signals can only
// lengthen the quiet period.
func (w *cooldownWindow) extend(now time.Time, window time.Duration) {
	deadline := now.Add(window)
	if deadline.After(w.until) {
		w.until = deadline
	}
}

func (w *cooldownWindow) activeAt(now time.Time) bool {
	return now.Before(w.until)
}

func (w *cooldownWindow) statusAt(now time.Time) Status {
	if !w.activeAt(now) {
		return Status{}
	}
	return Status{Active: true, Remaining: w.until.Sub(now)}
}
