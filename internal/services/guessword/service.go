package guessword

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/spillkveld/minispill/internal/heartbeat"
	"github.com/spillkveld/minispill/internal/models"
	"github.com/spillkveld/minispill/internal/session"
	"github.com/spillkveld/minispill/internal/store"
)

// service implements the Service interface
type service struct {
	store             store.Store
	clock             clockwork.Clock
	logger            zerolog.Logger
	disconnectTimeout time.Duration
}

// NewService creates a new guess-word service
func NewService(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Store == nil {
		return nil, ErrNilStore
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	timeout := cfg.DisconnectTimeout
	if timeout <= 0 {
		timeout = heartbeat.DefaultTimeout
	}

	return &service{
		store:             cfg.Store,
		clock:             cfg.Clock,
		logger:            cfg.Logger,
		disconnectTimeout: timeout,
	}, nil
}

// CreateSession creates a new guess-word session document
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, ErrNilConfig
	}

	maxQuestions := input.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	err := s.store.Create(ctx, sessionID, map[string]any{
		models.FieldGameType:      models.GameTypeGuessWord,
		models.FieldStatus:        models.StatusWaiting,
		models.FieldCreatedAt:     store.ServerTimestamp,
		models.FieldLastHeartbeat: store.ServerTimestamp,
		models.FieldWord:          input.Word,
		models.FieldMaxQuestions:  maxQuestions,
		models.FieldQuestionCount: 0,
		models.FieldPlayer:        &models.Slot{},
	})
	if err != nil {
		return nil, session.MapStoreError(err)
	}

	s.logger.Info().Str("session_id", sessionID).Int("max_questions", maxQuestions).Msg("guess-word session created")

	return &CreateSessionOutput{
		SessionID:    sessionID,
		MaxQuestions: maxQuestions,
	}, nil
}

// Join claims the player slot
func (s *service) Join(ctx context.Context, input *JoinInput) (*JoinOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrMissingSessionID
	}

	playerID := input.PlayerID
	if playerID == "" {
		playerID = uuid.New().String()
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.StatusFinished {
		return nil, session.ErrSessionFinished
	}

	if !session.CanClaim(sess.Player, sess.PlayerHeartbeat, playerID, s.clock.Now(), s.disconnectTimeout) {
		return nil, session.ErrSlotUnavailable
	}

	slot := &models.Slot{
		PlayerID:  playerID,
		Connected: true,
		Ready:     sess.Player.OwnedBy(playerID) && sess.Player.Ready,
	}

	err = s.store.Update(ctx, input.SessionID, heartbeat.Touch(map[string]any{
		models.FieldPlayer:          slot,
		models.FieldPlayerHeartbeat: store.ServerTimestamp,
	}))
	if err != nil {
		return nil, session.MapStoreError(err)
	}

	return &JoinOutput{PlayerID: playerID}, nil
}

// Ready marks the player ready and starts the round
func (s *service) Ready(ctx context.Context, input *ReadyInput) (*ReadyOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrMissingSessionID
	}
	if input.PlayerID == "" {
		return nil, ErrMissingPlayerID
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Player.OwnedBy(input.PlayerID) {
		return nil, ErrNotPlayer
	}
	if sess.Status == models.StatusFinished {
		return nil, session.ErrSessionFinished
	}

	slot := &models.Slot{PlayerID: input.PlayerID, Connected: true, Ready: true}

	fields := heartbeat.Touch(map[string]any{
		models.FieldPlayer:          slot,
		models.FieldPlayerHeartbeat: store.ServerTimestamp,
	})

	started := false
	if sess.Status == models.StatusWaiting && session.BarrierClosed(slot) {
		for name, value := range session.StartFields(sess.GameStartedAt, store.ServerTimestamp) {
			fields[name] = value
		}
		started = true
	}

	if err := s.store.Update(ctx, input.SessionID, fields); err != nil {
		return nil, session.MapStoreError(err)
	}

	return &ReadyOutput{Started: started}, nil
}

// IncrementQuestion re-reads the counter, clamps to the cap, and writes back.
// The counter has a single writer in practice, so a lost increment under true
// concurrency is tolerated; the cap is enforced on every write regardless.
func (s *service) IncrementQuestion(ctx context.Context, input *IncrementQuestionInput) (*IncrementQuestionOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrMissingSessionID
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if input.PlayerID != "" && !sess.Player.OwnedBy(input.PlayerID) {
		return nil, ErrNotPlayer
	}
	if sess.Status == models.StatusFinished {
		return &IncrementQuestionOutput{QuestionCount: sess.QuestionCount, Finished: true}, nil
	}

	count := sess.QuestionCount + 1
	if count > sess.MaxQuestions {
		count = sess.MaxQuestions
	}

	fields := heartbeat.Touch(map[string]any{
		models.FieldQuestionCount: count,
	})

	finished := count >= sess.MaxQuestions
	if finished {
		fields[models.FieldStatus] = models.StatusFinished
	}

	if err := s.store.Update(ctx, input.SessionID, fields); err != nil {
		return nil, session.MapStoreError(err)
	}

	return &IncrementQuestionOutput{QuestionCount: count, Finished: finished}, nil
}

// End marks the round finished; already-finished rounds are left alone
func (s *service) End(ctx context.Context, input *EndInput) error {
	if input == nil || input.SessionID == "" {
		return ErrMissingSessionID
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return err
	}
	if sess.Status == models.StatusFinished {
		return nil
	}

	return session.MapStoreError(s.store.Update(ctx, input.SessionID, map[string]any{
		models.FieldStatus: models.StatusFinished,
	}))
}

// Teardown deletes the session document; host only
func (s *service) Teardown(ctx context.Context, input *TeardownInput) error {
	if input == nil || input.SessionID == "" {
		return ErrMissingSessionID
	}
	return session.MapStoreError(s.store.Delete(ctx, input.SessionID))
}

// Watch emits derived state after every snapshot
func (s *service) Watch(ctx context.Context, input *WatchInput) (<-chan DerivedState, func(), error) {
	if input == nil || input.SessionID == "" {
		return nil, nil, ErrMissingSessionID
	}

	gate := &session.PhaseGate{}
	return session.Watch(ctx, s.store, input.SessionID, func(snap *store.Snapshot) DerivedState {
		state := Reduce(snap, s.clock.Now(), s.disconnectTimeout)
		state.Phase = gate.Observe(state.Phase)
		return state
	})
}

// Reduce derives UI state from one snapshot
func Reduce(snap *store.Snapshot, now time.Time, disconnectTimeout time.Duration) DerivedState {
	if snap.Deleted {
		return DerivedState{Phase: session.PhaseEnded}
	}

	var sess models.Session
	if err := snap.Decode(&sess); err != nil {
		return DerivedState{Phase: session.PhaseEnded}
	}

	return DerivedState{
		Phase:           session.PhaseOf(false, sess.Status),
		Word:            sess.Word,
		QuestionCount:   sess.QuestionCount,
		MaxQuestions:    sess.MaxQuestions,
		PlayerConnected: sess.Player.Claimed() && heartbeat.Alive(sess.PlayerHeartbeat, now, disconnectTimeout),
		PlayerReady:     sess.Player != nil && sess.Player.Ready,
	}
}

func (s *service) getSession(ctx context.Context, id string) (*models.Session, error) {
	snap, err := s.store.GetOnce(ctx, id)
	if err != nil {
		return nil, session.MapStoreError(err)
	}

	var sess models.Session
	if err := snap.Decode(&sess); err != nil {
		return nil, session.MapStoreError(err)
	}
	return &sess, nil
}
