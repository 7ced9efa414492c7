package session

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spillkveld/minispill/internal/models"
	"github.com/spillkveld/minispill/internal/store"
	"github.com/spillkveld/minispill/internal/store/storetest"
)

func TestBarrierClosed(t *testing.T) {
	ready := &models.Slot{PlayerID: "p1", Connected: true, Ready: true}
	connectedOnly := &models.Slot{PlayerID: "p2", Connected: true}
	readyButOffline := &models.Slot{PlayerID: "p3", Ready: true}

	// Single slot
	assert.True(t, BarrierClosed(ready))
	assert.False(t, BarrierClosed(connectedOnly))
	assert.False(t, BarrierClosed(readyButOffline))
	assert.False(t, BarrierClosed(nil))

	// Two slots: the barrier closes only when both are connected and ready
	assert.True(t, BarrierClosed(ready, &models.Slot{PlayerID: "p4", Connected: true, Ready: true}))
	assert.False(t, BarrierClosed(ready, connectedOnly))
	assert.False(t, BarrierClosed(ready, nil))

	// No required slots is not a closed barrier
	assert.False(t, BarrierClosed())
}

func TestStartFieldsWriteOnceAnchor(t *testing.T) {
	// No anchor yet: the starting client writes it
	fields := StartFields(0, store.ServerTimestamp)
	assert.Equal(t, models.StatusPlaying, fields[models.FieldStatus])
	assert.Contains(t, fields, models.FieldGameStartedAt)

	// Anchor already set: a concurrent observer skips the write
	fields = StartFields(1700000000000, store.ServerTimestamp)
	assert.Equal(t, models.StatusPlaying, fields[models.FieldStatus])
	assert.NotContains(t, fields, models.FieldGameStartedAt)
}

func TestCanClaim(t *testing.T) {
	now := time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC)
	timeout := 10 * time.Second
	fresh := now.Add(-2 * time.Second).UnixMilli()
	stale := now.Add(-time.Minute).UnixMilli()

	// Unclaimed slot
	assert.True(t, CanClaim(&models.Slot{}, 0, "p1", now, timeout))
	assert.True(t, CanClaim(nil, 0, "p1", now, timeout))

	// Same token reconnecting
	owned := &models.Slot{PlayerID: "p1", Connected: true}
	assert.True(t, CanClaim(owned, fresh, "p1", now, timeout))

	// A live owner is never evicted, even by a persistent stranger
	assert.False(t, CanClaim(owned, fresh, "p2", now, timeout))

	// A stale owner may be replaced; the heartbeat timeout is the system's
	// definition of gone, connected=true notwithstanding
	assert.True(t, CanClaim(owned, stale, "p2", now, timeout))
}

func TestPhaseOf(t *testing.T) {
	assert.Equal(t, PhaseWaiting, PhaseOf(false, models.StatusWaiting))
	assert.Equal(t, PhasePlaying, PhaseOf(false, models.StatusPlaying))
	assert.Equal(t, PhaseFinished, PhaseOf(false, models.StatusFinished))
	assert.Equal(t, PhaseWaiting, PhaseOf(false, ""))
	assert.Equal(t, PhaseEnded, PhaseOf(true, models.StatusPlaying))
}

func TestPhaseGateHoldsFurthestPhase(t *testing.T) {
	var gate PhaseGate

	assert.Equal(t, PhaseWaiting, gate.Observe(PhaseWaiting))
	assert.Equal(t, PhasePlaying, gate.Observe(PhasePlaying))

	// A late snapshot carrying an earlier status must not walk the UI back
	assert.Equal(t, PhasePlaying, gate.Observe(PhaseWaiting))

	assert.Equal(t, PhaseFinished, gate.Observe(PhaseFinished))
	assert.Equal(t, PhaseFinished, gate.Observe(PhasePlaying))

	// Re-observing the current phase is fine
	assert.Equal(t, PhaseFinished, gate.Observe(PhaseFinished))
}

func TestPhaseGateEndedIsTerminal(t *testing.T) {
	var gate PhaseGate

	assert.Equal(t, PhasePlaying, gate.Observe(PhasePlaying))
	assert.Equal(t, PhaseEnded, gate.Observe(PhaseEnded))

	// Nothing comes back from a deleted session
	assert.Equal(t, PhaseEnded, gate.Observe(PhaseWaiting))
	assert.Equal(t, PhaseEnded, gate.Observe(PhaseFinished))
}

func TestStatusCanTransition(t *testing.T) {
	assert.True(t, models.StatusWaiting.CanTransition(models.StatusPlaying))
	assert.True(t, models.StatusWaiting.CanTransition(models.StatusFinished))
	assert.True(t, models.StatusPlaying.CanTransition(models.StatusFinished))
	assert.True(t, models.StatusPlaying.CanTransition(models.StatusPlaying))

	// Never reversed
	assert.False(t, models.StatusPlaying.CanTransition(models.StatusWaiting))
	assert.False(t, models.StatusFinished.CanTransition(models.StatusPlaying))
	assert.False(t, models.StatusFinished.CanTransition(models.StatusWaiting))
}

func TestMapStoreError(t *testing.T) {
	assert.NoError(t, MapStoreError(nil))
	assert.ErrorIs(t, MapStoreError(store.ErrNotFound), ErrSessionNotFound)
	assert.ErrorIs(t, MapStoreError(store.ErrExists), ErrSessionExists)
	assert.ErrorIs(t, MapStoreError(assert.AnError), ErrWriteFailed)
}

func TestWatchEmitsLatestState(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC))
	st := storetest.New(clock)
	ctx := context.Background()

	require.NoError(t, st.Create(ctx, "test-session-id", map[string]any{
		models.FieldStatus: models.StatusWaiting,
	}))

	reduce := func(snap *store.Snapshot) Phase {
		if snap.Deleted {
			return PhaseEnded
		}
		var sess models.Session
		if err := snap.Decode(&sess); err != nil {
			return PhaseEnded
		}
		return PhaseOf(false, sess.Status)
	}

	states, stop, err := Watch(ctx, st, "test-session-id", reduce)
	require.NoError(t, err)
	defer stop()

	// Initial snapshot
	require.Equal(t, PhaseWaiting, <-states)

	require.NoError(t, st.Update(ctx, "test-session-id", map[string]any{
		models.FieldStatus: models.StatusPlaying,
	}))
	require.Equal(t, PhasePlaying, <-states)

	// A burst of writes keeps only the latest state: the consumer never sees
	// a stale backlog
	require.NoError(t, st.Update(ctx, "test-session-id", map[string]any{
		models.FieldStatus: models.StatusFinished,
	}))
	require.NoError(t, st.Delete(ctx, "test-session-id"))
	require.Equal(t, PhaseEnded, <-states)
}

func TestWatchMissingSession(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC))
	st := storetest.New(clock)

	_, _, err := Watch(context.Background(), st, "missing-session-id", func(snap *store.Snapshot) struct{} {
		return struct{}{}
	})
	require.ErrorIs(t, err, ErrSessionNotFound)
}
