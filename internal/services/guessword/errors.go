package guessword

// GuessWordError is a typed error for guess-word-specific failures
type GuessWordError string

// Error implements the error interface
func (e GuessWordError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig        GuessWordError = "config cannot be nil"
	ErrNilStore         GuessWordError = "store cannot be nil"
	ErrNilClock         GuessWordError = "clock cannot be nil"
	ErrNotPlayer        GuessWordError = "player does not own the slot"
	ErrMissingSessionID GuessWordError = "session id is required"
	ErrMissingPlayerID  GuessWordError = "player id is required"
)
