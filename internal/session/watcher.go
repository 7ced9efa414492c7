package session

import (
	"context"

	"github.com/spillkveld/minispill/internal/store"
)

// Watch subscribes to a session document and emits the reduced derived state
// after every snapshot. The reducer must be a pure function of the snapshot:
// the store delivers full documents, including the client's own writes and
// possible duplicates, so incremental delta handling is never correct here.
//
// The channel keeps only the most recent state; a slow consumer sees the
// latest snapshot's reduction, never a backlog of stale ones. The channel is
// never closed — a deleted session is reported by the reducer's own terminal
// state, and the stop func releases the subscription.
func Watch[T any](ctx context.Context, st store.Store, id string, reduce func(*store.Snapshot) T) (<-chan T, func(), error) {
	states := make(chan T, 1)

	unsubscribe, err := st.Subscribe(ctx, id, func(snap *store.Snapshot) {
		state := reduce(snap)
		for {
			select {
			case states <- state:
				return
			default:
			}
			// Drop the stale buffered state and retry
			select {
			case <-states:
			default:
			}
		}
	})
	if err != nil {
		return nil, nil, MapStoreError(err)
	}

	return states, unsubscribe, nil
}
