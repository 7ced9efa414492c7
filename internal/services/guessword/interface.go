package guessword

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/spillkveld/minispill/internal/services/guessword Service

import "context"

// Service defines the operations for a guess-word round: one phone player
// works through words while the main screen mirrors the capped question
// counter.
type Service interface {
	// CreateSession creates a new guess-word session document
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// Join claims the player slot for a phone client
	Join(ctx context.Context, input *JoinInput) (*JoinOutput, error)

	// Ready marks the player ready and starts the round
	Ready(ctx context.Context, input *ReadyInput) (*ReadyOutput, error)

	// IncrementQuestion advances the question counter, clamped to the cap
	IncrementQuestion(ctx context.Context, input *IncrementQuestionInput) (*IncrementQuestionOutput, error)

	// End marks the round finished
	End(ctx context.Context, input *EndInput) error

	// Teardown deletes the session document; host only
	Teardown(ctx context.Context, input *TeardownInput) error

	// Watch emits derived state after every snapshot until stopped
	Watch(ctx context.Context, input *WatchInput) (<-chan DerivedState, func(), error)
}
