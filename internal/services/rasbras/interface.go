package rasbras

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/spillkveld/minispill/internal/services/rasbras Service

import "context"

// Service defines the operations for a head-to-head quiz round: two phones
// claim opposing team slots and race through the same fixed question set.
type Service interface {
	// CreateSession creates a new quiz session document
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// JoinSlot claims one of the two team slots for a phone client
	JoinSlot(ctx context.Context, input *JoinSlotInput) (*JoinSlotOutput, error)

	// Ready marks a team ready; the round starts when both teams are ready
	Ready(ctx context.Context, input *ReadyInput) (*ReadyOutput, error)

	// SubmitAnswer scores one answer and advances that team's progress
	SubmitAnswer(ctx context.Context, input *SubmitAnswerInput) (*SubmitAnswerOutput, error)

	// End marks the round finished
	End(ctx context.Context, input *EndInput) error

	// Teardown deletes the session document; host only
	Teardown(ctx context.Context, input *TeardownInput) error

	// Watch emits derived state after every snapshot until stopped
	Watch(ctx context.Context, input *WatchInput) (<-chan DerivedState, func(), error)
}
