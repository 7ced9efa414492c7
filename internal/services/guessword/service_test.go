package guessword

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

func (s *ServiceTestSuite) createSession(maxQuestions int) string {
	output, err := s.service.CreateSession(s.ctx, &CreateSessionInput{
		SessionID:    "test-session-id",
		Word:         "fjellrev",
		MaxQuestions: maxQuestions,
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

func (s *ServiceTestSuite) TestCreateSessionDefaultsCap() {
	output, err := s.service.CreateSession(s.ctx, &CreateSessionInput{Word: "fjellrev"})
	s.Require().NoError(err)
	s.Equal(DefaultMaxQuestions, output.MaxQuestions)
	s.NotEmpty(output.SessionID)

	sess := s.getSession(output.SessionID)
	s.Equal(models.GameTypeGuessWord, sess.GameType)
	s.Equal(models.StatusWaiting, sess.Status)
	s.Equal("fjellrev", sess.Word)
	s.Zero(sess.QuestionCount)
}

func (s *ServiceTestSuite) TestJoinAndReadyStartsRound() {
	id := s.createSession(0)

	_, err := s.service.Join(s.ctx, &JoinInput{SessionID: id, PlayerID: "phone-1"})
	s.Require().NoError(err)

	output, err := s.service.Ready(s.ctx, &ReadyInput{SessionID: id, PlayerID: "phone-1"})
	s.Require().NoError(err)
	s.True(output.Started)

	sess := s.getSession(id)
	s.Equal(models.StatusPlaying, sess.Status)
	s.Equal(s.clock.Now().UnixMilli(), sess.GameStartedAt)
}

func (s *ServiceTestSuite) TestJoinOccupiedSlot() {
	id := s.createSession(0)

	_, err := s.service.Join(s.ctx, &JoinInput{SessionID: id, PlayerID: "phone-1"})
	s.Require().NoError(err)

	_, err = s.service.Join(s.ctx, &JoinInput{SessionID: id, PlayerID: "phone-2"})
	s.ErrorIs(err, session.ErrSlotUnavailable)
}

func (s *ServiceTestSuite) TestIncrementIsMonotonicUpToCap() {
	id := s.createSession(3)

	for want := 1; want <= 2; want++ {
		output, err := s.service.IncrementQuestion(s.ctx, &IncrementQuestionInput{SessionID: id})
		s.Require().NoError(err)
		s.Equal(want, output.QuestionCount)
		s.False(output.Finished)
	}

	output, err := s.service.IncrementQuestion(s.ctx, &IncrementQuestionInput{SessionID: id})
	s.Require().NoError(err)
	s.Equal(3, output.QuestionCount)
	s.True(output.Finished)
	s.Equal(models.StatusFinished, s.getSession(id).Status)
}

func (s *ServiceTestSuite) TestIncrementNeverOverflowsCap() {
	id := s.createSession(DefaultMaxQuestions)

	// Question twenty never happens: past the cap every further increment is
	// absorbed and reports finished
	for i := 0; i < 20; i++ {
		output, err := s.service.IncrementQuestion(s.ctx, &IncrementQuestionInput{SessionID: id})
		s.Require().NoError(err)
		s.LessOrEqual(output.QuestionCount, DefaultMaxQuestions)
	}

	sess := s.getSession(id)
	s.Equal(DefaultMaxQuestions, sess.QuestionCount)
	s.Equal(models.StatusFinished, sess.Status)
}

func (s *ServiceTestSuite) TestIncrementRequiresSlotOwnershipWhenTokenGiven() {
	id := s.createSession(0)
	_, err := s.service.Join(s.ctx, &JoinInput{SessionID: id, PlayerID: "phone-1"})
	s.Require().NoError(err)

	_, err = s.service.IncrementQuestion(s.ctx, &IncrementQuestionInput{SessionID: id, PlayerID: "phone-2"})
	s.ErrorIs(err, ErrNotPlayer)
}

func (s *ServiceTestSuite) TestEndThenIncrementReportsFinished() {
	id := s.createSession(0)
	s.Require().NoError(s.service.End(s.ctx, &EndInput{SessionID: id}))

	output, err := s.service.IncrementQuestion(s.ctx, &IncrementQuestionInput{SessionID: id})
	s.Require().NoError(err)
	s.True(output.Finished)
	s.Zero(output.QuestionCount, "a finished round's counter no longer moves")
}

func (s *ServiceTestSuite) TestWatchCountsQuestions() {
	id := s.createSession(0)

	states, stop, err := s.service.Watch(s.ctx, &WatchInput{SessionID: id})
	s.Require().NoError(err)
	defer stop()

	state := <-states
	s.Equal(session.PhaseWaiting, state.Phase)
	s.Equal("fjellrev", state.Word)
	s.Equal(DefaultMaxQuestions, state.MaxQuestions)

	_, err = s.service.IncrementQuestion(s.ctx, &IncrementQuestionInput{SessionID: id})
	s.Require().NoError(err)

	state = <-states
	s.Equal(1, state.QuestionCount)
}

func (s *ServiceTestSuite) TestWatchSeesTeardown() {
	id := s.createSession(0)

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
