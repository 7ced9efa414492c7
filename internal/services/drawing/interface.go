package drawing

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/spillkveld/minispill/internal/services/drawing Service

import "context"

// Service defines the operations for a drawing round: the main screen creates
// and tears down the session, one phone joins, draws, and the main screen
// replays the strokes.
type Service interface {
	// CreateSession creates a new drawing session document
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// Join claims the drawer slot for a phone client
	Join(ctx context.Context, input *JoinInput) (*JoinOutput, error)

	// Ready marks the drawer ready and starts the round
	Ready(ctx context.Context, input *ReadyInput) (*ReadyOutput, error)

	// AppendStroke appends one complete stroke to the session
	AppendStroke(ctx context.Context, input *AppendStrokeInput) (*AppendStrokeOutput, error)

	// ClearStrokes atomically replaces the stroke sequence with an empty one
	ClearStrokes(ctx context.Context, input *ClearStrokesInput) error

	// ResetTimer restarts the shared countdown for every observer
	ResetTimer(ctx context.Context, input *ResetTimerInput) error

	// End marks the round finished
	End(ctx context.Context, input *EndInput) error

	// Teardown deletes the session document; host only
	Teardown(ctx context.Context, input *TeardownInput) error

	// Watch emits derived state after every snapshot until stopped
	Watch(ctx context.Context, input *WatchInput) (<-chan DerivedState, func(), error)
}
