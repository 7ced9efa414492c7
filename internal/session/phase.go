package session

import "github.com/spillkveld/minispill/internal/models"

// Phase is the locally derived UI lifecycle. It extends the document status
// with the terminal "ended" phase a subscriber enters when the host deletes
// the session out from under it.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"

	// PhaseEnded means the document no longer exists; shown as "session
	// ended", never retried
	PhaseEnded Phase = "ended"
)

// PhaseOf maps a snapshot's existence and status to the UI phase
func PhaseOf(deleted bool, status models.Status) Phase {
	if deleted {
		return PhaseEnded
	}
	switch status {
	case models.StatusPlaying:
		return PhasePlaying
	case models.StatusFinished:
		return PhaseFinished
	default:
		return PhaseWaiting
	}
}

// PhaseGate keeps an observer's lifecycle monotonic. Pub/sub gives no
// ordering guarantee, so a late delivery can carry an earlier status; the
// gate holds the furthest phase seen rather than walking the UI backwards.
// Not safe for concurrent use; watchers call it from one goroutine.
type PhaseGate struct {
	last Phase
}

// Observe returns the phase the UI should show for a snapshot reduced to p
func (g *PhaseGate) Observe(p Phase) Phase {
	if g.last == PhaseEnded {
		return PhaseEnded
	}
	if p == PhaseEnded {
		g.last = p
		return p
	}
	if g.last != "" && !statusFor(g.last).CanTransition(statusFor(p)) {
		return g.last
	}
	g.last = p
	return p
}

// statusFor maps a non-ended phase back onto the status that produced it
func statusFor(p Phase) models.Status {
	switch p {
	case PhasePlaying:
		return models.StatusPlaying
	case PhaseFinished:
		return models.StatusFinished
	default:
		return models.StatusWaiting
	}
}
