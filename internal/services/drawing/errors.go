package drawing

// DrawingError is a typed error for drawing-specific failures
type DrawingError string

// Error implements the error interface
func (e DrawingError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig          DrawingError = "config cannot be nil"
	ErrNilStore           DrawingError = "store cannot be nil"
	ErrNilClock           DrawingError = "clock cannot be nil"
	ErrInvalidDifficulty  DrawingError = "unknown difficulty"
	ErrEmptyStroke        DrawingError = "stroke has no points"
	ErrNotDrawer          DrawingError = "player does not own the drawer slot"
	ErrMissingSessionID   DrawingError = "session id is required"
	ErrMissingPlayerID    DrawingError = "player id is required"
)
