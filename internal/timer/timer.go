// Package timer derives a shared countdown from a single anchor timestamp.
// No tick ever crosses the network: every client computes remaining time from
// the anchor and its local clock, so drift is bounded only by device clock
// skew and the propagation delay of the one anchor write.
package timer

import (
	"time"

	"github.com/spillkveld/minispill/internal/store"
)

// State is the locally derived countdown state at one instant
type State struct {
	// Running is true once an anchor exists
	Running bool

	// Remaining is the time left; zero once expired
	Remaining time.Duration

	// Expired is true when a running countdown has reached zero
	Expired bool
}

// Derive computes the countdown from the write-once anchor, the optional
// reset epoch, and the local clock. A reset later than the anchor restarts
// the countdown from the reset instant; both are epoch milliseconds.
func Derive(anchorMillis, resetMillis int64, duration time.Duration, now time.Time) State {
	effective := anchorMillis
	if resetMillis > effective {
		effective = resetMillis
	}
	if effective == 0 {
		return State{}
	}

	remaining := duration - now.Sub(store.Millis(effective))
	if remaining <= 0 {
		return State{Running: true, Expired: true}
	}
	return State{Running: true, Remaining: remaining}
}

// ResetTracker detects timer resets across snapshots. Observers must react to
// a change in the reset epoch, not to its mere presence, so a redundant
// snapshot delivery is never mistaken for a reset.
type ResetTracker struct {
	last int64
}

// Observe records the reset epoch from the latest snapshot and reports
// whether it changed since the previous call. The first observation of a
// nonzero epoch counts as a reset only if the session carried none before.
func (t *ResetTracker) Observe(resetMillis int64) bool {
	if resetMillis == t.last {
		return false
	}
	t.last = resetMillis
	return resetMillis != 0
}
