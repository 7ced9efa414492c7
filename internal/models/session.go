package models

// Status represents the lifecycle state of a mini-game session.
// Transitions are monotonic: waiting -> playing -> finished.
type Status string

const (
	// StatusWaiting indicates the session is waiting for participants to join and ready up
	StatusWaiting Status = "waiting"

	// StatusPlaying indicates the round is active
	StatusPlaying Status = "playing"

	// StatusFinished indicates the round is over; well-behaved clients stop mutating
	StatusFinished Status = "finished"
)

// CanTransition reports whether moving from one status to another respects
// the monotonic lifecycle. Writing the same status again is allowed so that
// redundant snapshot-driven writes stay idempotent.
func (s Status) CanTransition(to Status) bool {
	if s == to {
		return true
	}
	switch s {
	case StatusWaiting:
		return to == StatusPlaying || to == StatusFinished
	case StatusPlaying:
		return to == StatusFinished
	default:
		return false
	}
}

// GameType identifies which mini-game a session document belongs to
type GameType string

const (
	// GameTypeDrawing is the free-form phone drawing game
	GameTypeDrawing GameType = "drawing"

	// GameTypeGuessWord is the single-player word guessing game
	GameTypeGuessWord GameType = "guessword"

	// GameTypeRasbras is the two-team head-to-head quiz
	GameTypeRasbras GameType = "rasbras"

	// GameTypeCharades is the answer broadcast for charades rounds
	GameTypeCharades GameType = "charades"
)

// Difficulty selects one of the fixed drawing countdown lengths
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Session is the decoded form of a session document. It is a superset of the
// fields used by the four game types; a given document only carries the fields
// its game writes. All timestamps are epoch milliseconds so every client can
// derive elapsed time with plain arithmetic.
type Session struct {
	// ID is the session identifier chosen by the creating main screen
	ID string `json:"sessionId"`

	// GameType identifies the owning mini-game
	GameType GameType `json:"gameType"`

	// Status is the lifecycle state
	Status Status `json:"status"`

	// CreatedAt is the store-assigned creation instant
	CreatedAt int64 `json:"createdAt"`

	// LastHeartbeat is the most recent liveness write from any participant
	LastHeartbeat int64 `json:"lastHeartbeat"`

	// GameStartedAt is the write-once timer anchor; zero until the ready
	// barrier closes
	GameStartedAt int64 `json:"gameStartedAt"`

	// TimerResetAt holds the epoch of the most recent timer reset; observers
	// react to a change in this value, not to its presence
	TimerResetAt int64 `json:"timerResetAt"`

	// TimerDurationSec is the round length in seconds for fixed-duration games
	TimerDurationSec int `json:"timerDuration"`

	// Difficulty is the drawing difficulty that selected TimerDurationSec
	Difficulty Difficulty `json:"difficulty"`

	// Word is the prompt payload for drawing and guess-word rounds
	Word string `json:"word"`

	// Answer fields are the charades broadcast payload
	Answer         string `json:"answer"`
	AnswerImageURL string `json:"answerImageUrl"`
	AnswerAudioURL string `json:"answerAudioUrl"`
	AnswerVideoURL string `json:"answerVideoUrl"`

	// PlayerReady signals that the charades phone wants the host timer started
	PlayerReady bool `json:"playerReady"`

	// PlayerReadyAt is the store-assigned instant of the PlayerReady signal
	PlayerReadyAt int64 `json:"playerReadyAt"`

	// MaxQuestions caps QuestionCount for guess-word rounds
	MaxQuestions int `json:"maxQuestions"`

	// QuestionCount is the monotonically increasing guess-word counter
	QuestionCount int `json:"questionCount"`

	// Questions is the fixed question set both rasbras teams play through
	Questions []Question `json:"questions"`

	// Strokes is the append-only drawing stroke sequence
	Strokes []Stroke `json:"strokes"`

	// Player is the single participant slot for drawing and guess-word
	Player *Slot `json:"player"`

	// PlayerHeartbeat is the single slot's liveness timestamp
	PlayerHeartbeat int64 `json:"playerHeartbeat"`

	// TeamA and TeamB are the rasbras participant slots
	TeamA *Slot `json:"teamA"`
	TeamB *Slot `json:"teamB"`

	// TeamAHeartbeat and TeamBHeartbeat are per-slot liveness timestamps
	TeamAHeartbeat int64 `json:"teamAHeartbeat"`
	TeamBHeartbeat int64 `json:"teamBHeartbeat"`
}
