// internal/app/system/lockwindow/lockwindow.go

// Package lockwindow implements the wall-clock cutoff after which roster
// changes (leaving a team) are frozen for the rest of the event. Admins and
// the "exception" role bypass the freeze.
//
// The check takes an explicit time so callers inside a transaction evaluate
// it against data read at transaction time, and so tests can pin the clock.
package lockwindow

import (
	"time"

	"github.com/dalemusser/questhub/internal/domain/models"
)

// Window is the roster-freeze rule. A zero CutoffAt means no freeze.
type Window struct {
	CutoffAt time.Time
}

// Locked reports whether the freeze is in effect at now.
func (w Window) Locked(now time.Time) bool {
	if w.CutoffAt.IsZero() {
		return false
	}
	return now.After(w.CutoffAt)
}

// CanLeave reports whether a user with the given role may leave a team at
// now. Admin and exception roles are exempt from the freeze.
func (w Window) CanLeave(now time.Time, role string) bool {
	if role == models.RoleAdmin || role == models.RoleException {
		return true
	}
	return !w.Locked(now)
}
