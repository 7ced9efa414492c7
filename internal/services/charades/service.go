package charades

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
	"github.com/spillkveld/minispill/internal/timer"
)

// service implements the Service interface
type service struct {
	store  store.Store
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewService creates a new charades service
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

	return &service{
		store:  cfg.Store,
		clock:  cfg.Clock,
		logger: cfg.Logger,
	}, nil
}

// CreateSession creates a new charades session document
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, ErrNilConfig
	}

	duration := input.TimerDurationSec
	if duration <= 0 {
		duration = DefaultTimerDurationSec
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	err := s.store.Create(ctx, sessionID, map[string]any{
		models.FieldGameType:       models.GameTypeCharades,
		models.FieldStatus:         models.StatusWaiting,
		models.FieldCreatedAt:      store.ServerTimestamp,
		models.FieldLastHeartbeat:  store.ServerTimestamp,
		models.FieldTimerDuration:  duration,
		models.FieldAnswer:         input.Answer.Text,
		models.FieldAnswerImageURL: input.Answer.ImageURL,
		models.FieldAnswerAudioURL: input.Answer.AudioURL,
		models.FieldAnswerVideoURL: input.Answer.VideoURL,
		models.FieldPlayerReady:    false,
	})
	if err != nil {
		return nil, session.MapStoreError(err)
	}

	s.logger.Info().Str("session_id", sessionID).Msg("charades session created")

	return &CreateSessionOutput{
		SessionID:        sessionID,
		TimerDurationSec: duration,
	}, nil
}

// SetAnswer replaces the broadcast payload. The phone is a single reader of
// whatever these fields currently hold; no readiness gates the content.
func (s *service) SetAnswer(ctx context.Context, input *SetAnswerInput) error {
	if input == nil || input.SessionID == "" {
		return ErrMissingSessionID
	}

	return session.MapStoreError(s.store.Update(ctx, input.SessionID, map[string]any{
		models.FieldAnswer:         input.Answer.Text,
		models.FieldAnswerImageURL: input.Answer.ImageURL,
		models.FieldAnswerAudioURL: input.Answer.AudioURL,
		models.FieldAnswerVideoURL: input.Answer.VideoURL,
	}))
}

// SignalReady records the performer's go signal. The signal instant doubles
// as the timer anchor, so a second signal must not rewrite it.
func (s *service) SignalReady(ctx context.Context, input *SignalReadyInput) (*SignalReadyOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrMissingSessionID
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.StatusFinished {
		return nil, session.ErrSessionFinished
	}
	if sess.PlayerReady {
		return &SignalReadyOutput{Started: false}, nil
	}

	fields := heartbeat.Touch(map[string]any{
		models.FieldPlayerReady:   true,
		models.FieldPlayerReadyAt: store.ServerTimestamp,
		models.FieldStatus:        models.StatusPlaying,
	})
	for name, value := range session.StartFields(sess.GameStartedAt, store.ServerTimestamp) {
		fields[name] = value
	}

	if err := s.store.Update(ctx, input.SessionID, fields); err != nil {
		return nil, session.MapStoreError(err)
	}

	return &SignalReadyOutput{Started: true}, nil
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
		state := Reduce(snap, s.clock.Now())
		state.Phase = gate.Observe(state.Phase)
		return state
	})
}

// Reduce derives UI state from one snapshot
func Reduce(snap *store.Snapshot, now time.Time) DerivedState {
	if snap.Deleted {
		return DerivedState{Phase: session.PhaseEnded}
	}

	var sess models.Session
	if err := snap.Decode(&sess); err != nil {
		return DerivedState{Phase: session.PhaseEnded}
	}

	duration := time.Duration(sess.TimerDurationSec) * time.Second

	return DerivedState{
		Phase: session.PhaseOf(false, sess.Status),
		Answer: Answer{
			Text:     sess.Answer,
			ImageURL: sess.AnswerImageURL,
			AudioURL: sess.AnswerAudioURL,
			VideoURL: sess.AnswerVideoURL,
		},
		PlayerReady: sess.PlayerReady,
		Timer:       timer.Derive(sess.GameStartedAt, sess.TimerResetAt, duration, now),
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
