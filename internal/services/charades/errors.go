package charades

// CharadesError is a typed error for charades-specific failures
type CharadesError string

// Error implements the error interface
func (e CharadesError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig        CharadesError = "config cannot be nil"
	ErrNilStore         CharadesError = "store cannot be nil"
	ErrNilClock         CharadesError = "clock cannot be nil"
	ErrMissingSessionID CharadesError = "session id is required"
)
