package rasbras

// RasbrasError is a typed error for quiz-specific failures
type RasbrasError string

// Error implements the error interface
func (e RasbrasError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig        RasbrasError = "config cannot be nil"
	ErrNilStore         RasbrasError = "store cannot be nil"
	ErrNilClock         RasbrasError = "clock cannot be nil"
	ErrNoQuestions      RasbrasError = "question set cannot be empty"
	ErrInvalidTeam      RasbrasError = "team must be A or B"
	ErrNotTeamMember    RasbrasError = "player does not own the team slot"
	ErrNotPlaying       RasbrasError = "round is not in the playing state"
	ErrInvalidChoice    RasbrasError = "answer choice out of range"
	ErrMissingSessionID RasbrasError = "session id is required"
	ErrMissingPlayerID  RasbrasError = "player id is required"
)
