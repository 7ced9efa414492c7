package charades

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/spillkveld/minispill/internal/session"
	"github.com/spillkveld/minispill/internal/store"
	"github.com/spillkveld/minispill/internal/timer"
)

// DefaultTimerDurationSec is the host countdown length when the creator does
// not choose one.
const DefaultTimerDurationSec = 60

// Config holds configuration for the charades service
type Config struct {
	// Store is the shared document store
	Store store.Store

	// Clock provides local time for timer reduction
	Clock clockwork.Clock

	// Logger for service diagnostics; defaults to a no-op logger
	Logger zerolog.Logger
}

// Answer is the broadcast payload the performing phone displays
type Answer struct {
	Text     string
	ImageURL string
	AudioURL string
	VideoURL string
}

type CreateSessionInput struct {
	// SessionID is the id to create; generated when empty
	SessionID string

	// Answer is the initial broadcast payload
	Answer Answer

	// TimerDurationSec is the host countdown length; defaults to
	// DefaultTimerDurationSec
	TimerDurationSec int
}

type CreateSessionOutput struct {
	SessionID        string
	TimerDurationSec int
}

type SetAnswerInput struct {
	SessionID string
	Answer    Answer
}

type SignalReadyInput struct {
	SessionID string
}

type SignalReadyOutput struct {
	// Started is true when this signal started the host timer; false when a
	// previous signal already had
	Started bool
}

type EndInput struct {
	SessionID string
}

type TeardownInput struct {
	SessionID string
}

type WatchInput struct {
	SessionID string
}

// DerivedState is the pure reduction of one snapshot
type DerivedState struct {
	Phase session.Phase

	Answer Answer

	// PlayerReady is true once the performer has signalled
	PlayerReady bool

	// Timer is the host-observed countdown anchored on the ready signal
	Timer timer.State
}
