package charades

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/spillkveld/minispill/internal/services/charades Service

import "context"

// Service defines the operations for a charades answer view: the main screen
// broadcasts the answer payload, the performing phone reads it and signals
// readiness purely to start the host-observed timer. There is no join barrier.
type Service interface {
	// CreateSession creates a new charades session document
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// SetAnswer replaces the broadcast answer payload
	SetAnswer(ctx context.Context, input *SetAnswerInput) error

	// SignalReady records that the performer wants the host timer started
	SignalReady(ctx context.Context, input *SignalReadyInput) (*SignalReadyOutput, error)

	// End marks the round finished
	End(ctx context.Context, input *EndInput) error

	// Teardown deletes the session document; host only
	Teardown(ctx context.Context, input *TeardownInput) error

	// Watch emits derived state after every snapshot until stopped
	Watch(ctx context.Context, input *WatchInput) (<-chan DerivedState, func(), error)
}
