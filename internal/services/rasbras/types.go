package rasbras

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/spillkveld/minispill/internal/models"
	"github.com/spillkveld/minispill/internal/session"
	"github.com/spillkveld/minispill/internal/store"
	"github.com/spillkveld/minispill/internal/timer"
)

// DefaultTimerDurationSec is the shared round length when the creator does
// not choose one.
const DefaultTimerDurationSec = 60

// Team identifies one of the two participant slots
type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// Config holds configuration for the rasbras service
type Config struct {
	// Store is the shared document store
	Store store.Store

	// Clock provides local time for staleness checks and finish timestamps
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

	// Questions is the fixed set both teams answer
	Questions []models.Question

	// TimerDurationSec is the shared round length; defaults to
	// DefaultTimerDurationSec
	TimerDurationSec int
}

type CreateSessionOutput struct {
	SessionID        string
	TimerDurationSec int
}

type JoinSlotInput struct {
	SessionID string
	Team      Team

	// PlayerID is the phone's client-generated token; generated when empty
	PlayerID string
}

type JoinSlotOutput struct {
	PlayerID string
}

type ReadyInput struct {
	SessionID string
	Team      Team
	PlayerID  string
}

type ReadyOutput struct {
	// Started is true when this call closed the ready barrier
	Started bool
}

type SubmitAnswerInput struct {
	SessionID string
	Team      Team
	PlayerID  string

	// QuestionIndex is the question being answered; submissions for any other
	// index than the team's current one are ignored as duplicates
	QuestionIndex int

	// Choice is the selected answer index
	Choice int
}

type SubmitAnswerOutput struct {
	// Accepted is false when the submission was a stale duplicate
	Accepted bool

	// Correct reports whether the accepted answer matched
	Correct bool

	// CorrectCount is the team's score after the submission
	CorrectCount int

	// Finished is true when the team has completed the question set
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

// TeamState is one team's derived progress
type TeamState struct {
	Claimed   bool
	Connected bool
	Ready     bool

	CurrentQuestionIndex int
	CorrectCount         int

	// FinishedAt is zero while the team is still answering
	FinishedAt int64
}

// DerivedState is the pure reduction of one snapshot. The finished phase is
// reached when both teams are done or the shared timer has expired, whichever
// the observing client sees first; all clients converge because both inputs
// live on the same snapshot.
type DerivedState struct {
	Phase session.Phase

	Questions []models.Question

	TeamA TeamState
	TeamB TeamState

	// Timer is the countdown derived from the shared anchor
	Timer timer.State

	// Outcome is set once Phase is finished
	Outcome *Outcome
}
