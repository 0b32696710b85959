package coordinator

import (
	"testing"
	"time"
)

func TestCooldownWindow_StatusAt(t *testing.T) {
	base := time.Unix(1700000000, 0)

	tests := []struct {
		name          string
		until         time.Time
		now           time.Time
		wantActive    bool
		wantRemaining time.Duration
	}{
		{
			name:       "zero window inactive",
			until:      time.Time{},
			now:        base,
			wantActive: false,
		},
		{
			name:          "open window",
			until:         base.Add(45 * time.Second),
			now:           base,
			wantActive:    true,
			wantRemaining: 45 * time.Second,
		},
		{
			name:       "deadline reached",
			until:      base,
			now:        base,
			wantActive: false,
		},
		{
			name:       "deadline passed",
			until:      base,
			now:        base.Add(time.Minute),
			wantActive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := cooldownWindow{until: tt.until}
			st := w.statusAt(tt.now)
			if st.Active != tt.wantActive {
				t.Errorf("Active = %v, want %v", st.Active, tt.wantActive)
			}
			if st.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %v, want %v", st.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestCooldownWindow_ExtendNeverMovesBackwards(t *testing.T) {
	base := time.Unix(1700000000, 0)

	var w cooldownWindow
	w.extend(base, 60*time.Second)
	first := w.until

	// A shorter window later must not pull the deadline in.
	w.extend(base, 10*time.Second)
	if w.until != first {
		t.Errorf("deadline moved backwards: %v -> %v", first, w.until)
	}

	// A later signal pushes it out.
	w.extend(base.Add(30*time.Second), 60*time.Second)
	if want := base.Add(90 * time.Second); !w.until.Equal(want) {
		t.Errorf("deadline = %v, want %v", w.until, want)
	}
}
