package lockwindow

import (
	"testing"
	"time"
)

func TestLocked(t *testing.T) {
	cutoff := time.Date(2026, 3, 18, 18, 39, 0, 0, time.UTC)
	w := Window{CutoffAt: cutoff}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"well before cutoff", cutoff.Add(-time.Hour), false},
		{"at cutoff", cutoff, false},
		{"just after cutoff", cutoff.Add(time.Second), true},
		{"long after cutoff", cutoff.Add(48 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Locked(tt.now); got != tt.want {
				t.Errorf("Locked(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestLocked_ZeroCutoffNeverLocks(t *testing.T) {
	var w Window
	if w.Locked(time.Now().Add(1000 * time.Hour)) {
		t.Error("zero cutoff should never lock")
	}
}

func TestCanLeave(t *testing.T) {
	cutoff := time.Date(2026, 3, 18, 18, 39, 0, 0, time.UTC)
	w := Window{CutoffAt: cutoff}
	after := cutoff.Add(time.Minute)
	before := cutoff.Add(-time.Minute)

	tests := []struct {
		name string
		now  time.Time
		role string
		want bool
	}{
		{"member before cutoff", before, "member", true},
		{"member after cutoff", after, "member", false},
		{"admin after cutoff", after, "admin", true},
		{"exception after cutoff", after, "exception", true},
		{"unknown role after cutoff", after, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.CanLeave(tt.now, tt.role); got != tt.want {
				t.Errorf("CanLeave(%v, %q) = %v, want %v", tt.now, tt.role, got, tt.want)
			}
		})
	}
}
