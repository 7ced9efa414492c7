package drawing

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/spillkveld/minispill/internal/models"
	"github.com/spillkveld/minispill/internal/session"
	"github.com/spillkveld/minispill/internal/store"
	"github.com/spillkveld/minispill/internal/timer"
)

// Config holds configuration for the drawing service
type Config struct {
	// Store is the shared document store
	Store store.Store

	// Clock provides local time for staleness checks and stroke timestamps
	Clock clockwork.Clock

	// Logger for service diagnostics; defaults to a no-op logger
	Logger zerolog.Logger

	// DisconnectTimeout bounds heartbeat staleness; defaults to
	// heartbeat.DefaultTimeout
	DisconnectTimeout time.Duration
}

type CreateSessionInput struct {
	// SessionID is the id to create; generated when empty
	SessionID string

	// Word is the prompt the drawer must draw
	Word string

	// Difficulty selects the countdown length
	Difficulty models.Difficulty
}

type CreateSessionOutput struct {
	SessionID string

	// TimerDurationSec is the countdown selected by the difficulty
	TimerDurationSec int
}

type JoinInput struct {
	SessionID string

	// PlayerID is the phone's client-generated token; generated when empty
	PlayerID string
}

type JoinOutput struct {
	// PlayerID echoes or assigns the claiming token; the phone persists it to
	// reclaim its slot after a reload
	PlayerID string
}

type ReadyInput struct {
	SessionID string
	PlayerID  string
}

type ReadyOutput struct {
	// Started is true when this call closed the ready barrier
	Started bool
}

type AppendStrokeInput struct {
	SessionID string
	Stroke    models.Stroke
}

type AppendStrokeOutput struct {
	// StrokeCount is the sequence length after the append
	StrokeCount int
}

type ClearStrokesInput struct {
	SessionID string
}

type ResetTimerInput struct {
	SessionID string
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

// DerivedState is the pure reduction of one snapshot. Feeding the same
// snapshot twice yields the same state.
type DerivedState struct {
	Phase session.Phase

	Word       string
	Difficulty models.Difficulty

	// Strokes is sorted by timestamp; renderers replay the whole sequence
	// onto a cleared canvas, so duplicate or reordered snapshots render
	// identically
	Strokes []models.Stroke

	// Timer is the countdown derived from the shared anchor
	Timer timer.State

	// TimerResetAt is the raw reset epoch; UI layers feed it to a
	// timer.ResetTracker to notice restarts between snapshots
	TimerResetAt int64

	// DrawerConnected reflects slot claim plus heartbeat freshness
	DrawerConnected bool

	// DrawerReady is the drawer's ready flag
	DrawerReady bool
}
