package session

import (
	"errors"
	"fmt"

	"github.com/spillkveld/minispill/internal/store"
)

// Shared error taxonomy for all mini-game services. Store-level failures are
// mapped here so page controllers never see storage-specific errors.
var (
	// ErrSessionNotFound means the document is missing or was deleted by the
	// host; terminal and surfaced to the user, never retried
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists means the chosen session id is already taken
	ErrSessionExists = errors.New("session already exists")

	// ErrSlotUnavailable means the slot is owned by a different, still-live
	// player token; surfaced as "team full"
	ErrSlotUnavailable = errors.New("slot is taken by another player")

	// ErrWriteFailed wraps a transient store error on a user-initiated write;
	// surfaced so the user can retry the action
	ErrWriteFailed = errors.New("write failed")

	// ErrSessionFinished means a mutation was attempted on a finished round
	ErrSessionFinished = errors.New("session already finished")
)

// MapStoreError converts a store error into the shared taxonomy. Heartbeat
// writers bypass this and drop errors instead.
func MapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return ErrSessionNotFound
	case errors.Is(err, store.ErrExists):
		return ErrSessionExists
	default:
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
}
