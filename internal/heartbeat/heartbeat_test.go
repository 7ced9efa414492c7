package heartbeat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/spillkveld/minispill/internal/models"
	"github.com/spillkveld/minispill/internal/store"
	"github.com/spillkveld/minispill/internal/store/storetest"
)

func TestAlive(t *testing.T) {
	now := time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC)
	timeout := 10 * time.Second

	// Never beat
	assert.False(t, Alive(0, now, timeout))

	// Fresh beat
	assert.True(t, Alive(now.Add(-2*time.Second).UnixMilli(), now, timeout))

	// Exactly at the bound still counts
	assert.True(t, Alive(now.Add(-timeout).UnixMilli(), now, timeout))

	// Stale beat
	assert.False(t, Alive(now.Add(-timeout-time.Millisecond).UnixMilli(), now, timeout))
}

type BeaterTestSuite struct {
	suite.Suite
	clock *clockwork.FakeClock
	store *storetest.Store
	ctx   context.Context
}

func (s *BeaterTestSuite) SetupTest() {
	s.clock = clockwork.NewFakeClockAt(time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC))
	s.store = storetest.New(s.clock)
	s.ctx = context.Background()

	err := s.store.Create(s.ctx, "test-session-id", map[string]any{
		models.FieldStatus: models.StatusWaiting,
	})
	s.Require().NoError(err)
}

func TestBeaterTestSuite(t *testing.T) {
	suite.Run(t, new(BeaterTestSuite))
}

func (s *BeaterTestSuite) lastHeartbeat() int64 {
	snap, err := s.store.GetOnce(s.ctx, "test-session-id")
	s.Require().NoError(err)

	var sess models.Session
	s.Require().NoError(snap.Decode(&sess))
	return sess.LastHeartbeat
}

func (s *BeaterTestSuite) TestBeatsImmediatelyAndOnInterval() {
	beater, err := NewBeater(&Config{
		Store:     s.store,
		Clock:     s.clock,
		SessionID: "test-session-id",
		Fields:    []string{models.FieldLastHeartbeat, models.FieldPlayerHeartbeat},
		Interval:  2500 * time.Millisecond,
	})
	s.Require().NoError(err)

	start := s.clock.Now().UnixMilli()

	beater.Start(s.ctx)
	defer beater.Stop()

	// The first beat lands without waiting for the interval
	s.Require().Eventually(func() bool {
		return s.lastHeartbeat() == start
	}, 2*time.Second, 5*time.Millisecond)

	// Wait for the ticker to be armed before advancing the fake clock
	s.clock.BlockUntil(1)
	s.clock.Advance(2500 * time.Millisecond)

	s.Require().Eventually(func() bool {
		return s.lastHeartbeat() == start+2500
	}, 2*time.Second, 5*time.Millisecond)
}

func (s *BeaterTestSuite) TestDroppedBeatsSelfHeal() {
	beater, err := NewBeater(&Config{
		Store:     s.store,
		Clock:     s.clock,
		SessionID: "test-session-id",
		Fields:    []string{models.FieldLastHeartbeat},
		Interval:  2500 * time.Millisecond,
	})
	s.Require().NoError(err)

	// Every write fails; the beater must keep running regardless
	s.store.FailUpdates(errors.New("store unavailable"))

	beater.Start(s.ctx)
	s.clock.BlockUntil(1)
	s.clock.Advance(2500 * time.Millisecond)

	// Heal the store; the next tick writes through
	s.store.FailUpdates(nil)
	s.clock.Advance(2500 * time.Millisecond)

	s.Require().Eventually(func() bool {
		return s.lastHeartbeat() != 0
	}, 2*time.Second, 5*time.Millisecond)

	beater.Stop()
}

func (s *BeaterTestSuite) TestStopHaltsBeating() {
	beater, err := NewBeater(&Config{
		Store:     s.store,
		Clock:     s.clock,
		SessionID: "test-session-id",
		Fields:    []string{models.FieldLastHeartbeat},
		Interval:  2500 * time.Millisecond,
	})
	s.Require().NoError(err)

	beater.Start(s.ctx)
	s.clock.BlockUntil(1)
	beater.Stop()

	last := s.lastHeartbeat()
	s.clock.Advance(10 * time.Second)

	// No further beats after Stop
	s.Never(func() bool {
		return s.lastHeartbeat() != last
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func (s *BeaterTestSuite) TestStopWithoutStartReturns() {
	beater, err := NewBeater(&Config{
		Store:     s.store,
		Clock:     s.clock,
		SessionID: "test-session-id",
		Fields:    []string{models.FieldLastHeartbeat},
	})
	s.Require().NoError(err)

	// A beater torn down before it ever started must not wait on a loop that
	// never ran
	stopped := make(chan struct{})
	go func() {
		beater.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		s.FailNow("Stop blocked without a running beat loop")
	}
	s.Zero(s.lastHeartbeat())
}

func (s *BeaterTestSuite) TestConfigValidation() {
	_, err := NewBeater(nil)
	s.Error(err)

	_, err = NewBeater(&Config{Clock: s.clock, SessionID: "x", Fields: []string{"f"}})
	s.Error(err)

	_, err = NewBeater(&Config{Store: s.store, SessionID: "x", Fields: []string{"f"}})
	s.Error(err)

	_, err = NewBeater(&Config{Store: s.store, Clock: s.clock, Fields: []string{"f"}})
	s.Error(err)

	_, err = NewBeater(&Config{Store: s.store, Clock: s.clock, SessionID: "x"})
	s.Error(err)
}

func TestTouchAddsSharedHeartbeat(t *testing.T) {
	fields := Touch(map[string]any{"word": "giraffe"})

	require.Contains(t, fields, models.FieldLastHeartbeat)
	assert.Equal(t, store.ServerTimestamp, fields[models.FieldLastHeartbeat])
	assert.Equal(t, "giraffe", fields["word"])
}
