package store

//go:generate mockgen -package=mocks -destination=mocks/mock_store.go github.com/spillkveld/minispill/internal/store Store

import "context"

// SnapshotFunc receives the full current document after every change,
// including the subscriber's own writes. A snapshot with Deleted set means the
// document no longer exists; no further snapshots follow it.
type SnapshotFunc func(*Snapshot)

// Store defines the shared-document primitives the session engine runs on.
// There are no transactions beyond single-document field-level merge; callers
// that mutate a whole collection field (e.g. appending a stroke) must
// read-before-write.
type Store interface {
	// Create writes a new document; ErrExists if the id is taken
	Create(ctx context.Context, id string, fields map[string]any) error

	// Update merges the given fields into an existing document;
	// ErrNotFound if the document is missing
	Update(ctx context.Context, id string, fields map[string]any) error

	// GetOnce reads the full current document
	GetOnce(ctx context.Context, id string) (*Snapshot, error)

	// Subscribe delivers the current document immediately and again on every
	// change until the returned unsubscribe func is called. Subscribing to a
	// missing document fails with ErrNotFound.
	Subscribe(ctx context.Context, id string, fn SnapshotFunc) (func(), error)

	// Delete removes the document and notifies subscribers
	Delete(ctx context.Context, id string) error
}
