package charades

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/suite"

	"github.com/spillkveld/minispill/internal/models"
	"github.com/spillkveld/minispill/internal/session"
	"github.com/spillkveld/minispill/internal/store/storetest"
)

type ServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clockwork.FakeClock
	store   *storetest.Store
	service *service
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clockwork.NewFakeClockAt(time.Date(2025, 11, 8, 19, 30, 0, 0, time.UTC))
	s.store = storetest.New(s.clock)

	svc, err := NewService(&Config{
		Store: s.store,
		Clock: s.clock,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceTestSuite) createSession() string {
	output, err := s.service.CreateSession(s.ctx, &CreateSessionInput{
		SessionID: "test-session-id",
		Answer: Answer{
			Text:     "Tarzan",
			ImageURL: "https://cdn.example.com/tarzan.jpg",
		},
	})
	s.Require().NoError(err)
	return output.SessionID
}

func (s *ServiceTestSuite) getSession(id string) *models.Session {
	snap, err := s.store.GetOnce(s.ctx, id)
	s.Require().NoError(err)
	var sess models.Session
	s.Require().NoError(snap.Decode(&sess))
	return &sess
}

func (s *ServiceTestSuite) TestCreateSession() {
	id := s.createSession()

	sess := s.getSession(id)
	s.Equal(models.GameTypeCharades, sess.GameType)
	s.Equal(models.StatusWaiting, sess.Status)
	s.Equal("Tarzan", sess.Answer)
	s.Equal("https://cdn.example.com/tarzan.jpg", sess.AnswerImageURL)
	s.Equal(DefaultTimerDurationSec, sess.TimerDurationSec)
	s.False(sess.PlayerReady)
}

func (s *ServiceTestSuite) TestSetAnswerReplacesWholePayload() {
	id := s.createSession()

	s.Require().NoError(s.service.SetAnswer(s.ctx, &SetAnswerInput{
		SessionID: id,
		Answer:    Answer{Text: "Mamma Mia", AudioURL: "https://cdn.example.com/mamma-mia.mp3"},
	}))

	sess := s.getSession(id)
	s.Equal("Mamma Mia", sess.Answer)
	s.Equal("https://cdn.example.com/mamma-mia.mp3", sess.AnswerAudioURL)
	s.Empty(sess.AnswerImageURL, "fields absent from the new payload are cleared, not kept")
}

func (s *ServiceTestSuite) TestSignalReadyStartsHostTimerOnce() {
	id := s.createSession()

	output, err := s.service.SignalReady(s.ctx, &SignalReadyInput{SessionID: id})
	s.Require().NoError(err)
	s.True(output.Started)

	sess := s.getSession(id)
	s.True(sess.PlayerReady)
	s.Equal(models.StatusPlaying, sess.Status)
	s.Equal(s.clock.Now().UnixMilli(), sess.PlayerReadyAt)
	s.Equal(s.clock.Now().UnixMilli(), sess.GameStartedAt)

	// A double tap later must not restart the host countdown
	anchor := sess.GameStartedAt
	s.clock.Advance(4 * time.Second)
	output, err = s.service.SignalReady(s.ctx, &SignalReadyInput{SessionID: id})
	s.Require().NoError(err)
	s.False(output.Started)
	s.Equal(anchor, s.getSession(id).GameStartedAt)
}

func (s *ServiceTestSuite) TestSignalReadyAfterFinish() {
	id := s.createSession()
	s.Require().NoError(s.service.End(s.ctx, &EndInput{SessionID: id}))

	_, err := s.service.SignalReady(s.ctx, &SignalReadyInput{SessionID: id})
	s.ErrorIs(err, session.ErrSessionFinished)
}

func (s *ServiceTestSuite) TestWatchSeesReadySignalAndCountdown() {
	id := s.createSession()

	states, stop, err := s.service.Watch(s.ctx, &WatchInput{SessionID: id})
	s.Require().NoError(err)
	defer stop()

	state := <-states
	s.Equal(session.PhaseWaiting, state.Phase)
	s.Equal("Tarzan", state.Answer.Text)
	s.False(state.PlayerReady)
	s.False(state.Timer.Running)

	_, err = s.service.SignalReady(s.ctx, &SignalReadyInput{SessionID: id})
	s.Require().NoError(err)

	state = <-states
	s.Equal(session.PhasePlaying, state.Phase)
	s.True(state.PlayerReady)
	s.True(state.Timer.Running)
	s.Equal(time.Duration(DefaultTimerDurationSec)*time.Second, state.Timer.Remaining)
}

func (s *ServiceTestSuite) TestWatchSeesTeardown() {
	id := s.createSession()

	states, stop, err := s.service.Watch(s.ctx, &WatchInput{SessionID: id})
	s.Require().NoError(err)
	defer stop()
	<-states

	s.Require().NoError(s.service.Teardown(s.ctx, &TeardownInput{SessionID: id}))
	state := <-states
	s.Equal(session.PhaseEnded, state.Phase)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
