package guessword

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/spillkveld/minispill/internal/session"
	"github.com/spillkveld/minispill/internal/store"
)

// DefaultMaxQuestions caps the question counter when the creator does not
// choose a limit.
const DefaultMaxQuestions = 15

// Config holds configuration for the guess-word service
type Config struct {
	// Store is the shared document store
	Store store.Store

	// Clock provides local time for staleness checks
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

	// Word is the first word payload shown to the player
	Word string

	// MaxQuestions caps the counter; defaults to DefaultMaxQuestions
	MaxQuestions int
}

type CreateSessionOutput struct {
	SessionID    string
	MaxQuestions int
}

type JoinInput struct {
	SessionID string
	PlayerID  string
}

type JoinOutput struct {
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

type IncrementQuestionInput struct {
	SessionID string
	PlayerID  string
}

type IncrementQuestionOutput struct {
	// QuestionCount is the counter after the increment, never above the cap
	QuestionCount int

	// Finished is true when the counter has reached the cap
	Finished bool
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

	Word          string
	QuestionCount int
	MaxQuestions  int

	// PlayerConnected reflects slot claim plus heartbeat freshness
	PlayerConnected bool

	// PlayerReady is the player's ready flag
	PlayerReady bool
}
