package drawing

import (
	"context"
	"sort"
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

// Countdown lengths per difficulty, in seconds. These are read by every
// client from the session payload, never renegotiated mid-round.
var difficultyDurations = map[models.Difficulty]int{
	models.DifficultyEasy:   45,
	models.DifficultyMedium: 60,
	models.DifficultyHard:   90,
}

// service implements the Service interface
type service struct {
	store             store.Store
	clock             clockwork.Clock
	logger            zerolog.Logger
	disconnectTimeout time.Duration
}

// NewService creates a new drawing service
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

// CreateSession creates a new drawing session document
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, ErrNilConfig
	}

	duration, ok := difficultyDurations[input.Difficulty]
	if !ok {
		return nil, ErrInvalidDifficulty
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	err := s.store.Create(ctx, sessionID, map[string]any{
		models.FieldGameType:      models.GameTypeDrawing,
		models.FieldStatus:        models.StatusWaiting,
		models.FieldCreatedAt:     store.ServerTimestamp,
		models.FieldLastHeartbeat: store.ServerTimestamp,
		models.FieldWord:          input.Word,
		models.FieldDifficulty:    input.Difficulty,
		models.FieldTimerDuration: duration,
		models.FieldStrokes:       []models.Stroke{},
		models.FieldPlayer:        &models.Slot{},
	})
	if err != nil {
		return nil, session.MapStoreError(err)
	}

	s.logger.Info().Str("session_id", sessionID).Str("difficulty", string(input.Difficulty)).Msg("drawing session created")

	return &CreateSessionOutput{
		SessionID:        sessionID,
		TimerDurationSec: duration,
	}, nil
}

// Join claims the drawer slot. An unclaimed slot, the same token
// reconnecting, or a stale-heartbeat owner may be claimed; a live owner is
// never evicted.
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
		// A reloaded drawer keeps its ready flag; a fresh claim starts unready
		Ready: sess.Player.OwnedBy(playerID) && sess.Player.Ready,
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

// Ready marks the drawer ready. The drawing barrier has a single slot, so
// readiness immediately starts the round; the anchor write is skipped when a
// concurrent observer already set it.
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
		return nil, ErrNotDrawer
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

// AppendStroke appends one complete stroke. The stroke sequence is a whole
// collection field, so this is a read-before-append; the single-drawer
// discipline makes the lost-update window acceptable.
func (s *service) AppendStroke(ctx context.Context, input *AppendStrokeInput) (*AppendStrokeOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrMissingSessionID
	}
	if len(input.Stroke.Points) == 0 {
		return nil, ErrEmptyStroke
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.StatusFinished {
		return nil, session.ErrSessionFinished
	}

	stroke := input.Stroke
	if stroke.Timestamp == 0 {
		stroke.Timestamp = s.clock.Now().UnixMilli()
	}

	strokes := append(sess.Strokes, stroke)

	err = s.store.Update(ctx, input.SessionID, heartbeat.Touch(map[string]any{
		models.FieldStrokes: strokes,
	}))
	if err != nil {
		return nil, session.MapStoreError(err)
	}

	return &AppendStrokeOutput{StrokeCount: len(strokes)}, nil
}

// ClearStrokes atomically replaces the stroke sequence with an empty one,
// leaving status and timer untouched.
func (s *service) ClearStrokes(ctx context.Context, input *ClearStrokesInput) error {
	if input == nil || input.SessionID == "" {
		return ErrMissingSessionID
	}

	return session.MapStoreError(s.store.Update(ctx, input.SessionID, heartbeat.Touch(map[string]any{
		models.FieldStrokes: []models.Stroke{},
	})))
}

// ResetTimer writes a fresh reset epoch; every observer restarts its local
// countdown when it sees the value change.
func (s *service) ResetTimer(ctx context.Context, input *ResetTimerInput) error {
	if input == nil || input.SessionID == "" {
		return ErrMissingSessionID
	}

	return session.MapStoreError(s.store.Update(ctx, input.SessionID, map[string]any{
		models.FieldTimerResetAt: store.ServerTimestamp,
	}))
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

// Teardown deletes the session document; subscribers see a terminal
// session-ended state.
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

// Reduce derives UI state from one snapshot. It is pure: the same snapshot,
// instant, and timeout always produce the same state.
func Reduce(snap *store.Snapshot, now time.Time, disconnectTimeout time.Duration) DerivedState {
	if snap.Deleted {
		return DerivedState{Phase: session.PhaseEnded}
	}

	var sess models.Session
	if err := snap.Decode(&sess); err != nil {
		return DerivedState{Phase: session.PhaseEnded}
	}

	strokes := make([]models.Stroke, len(sess.Strokes))
	copy(strokes, sess.Strokes)
	sort.SliceStable(strokes, func(i, j int) bool {
		return strokes[i].Timestamp < strokes[j].Timestamp
	})

	duration := time.Duration(sess.TimerDurationSec) * time.Second

	return DerivedState{
		Phase:           session.PhaseOf(false, sess.Status),
		Word:            sess.Word,
		Difficulty:      sess.Difficulty,
		Strokes:         strokes,
		Timer:           timer.Derive(sess.GameStartedAt, sess.TimerResetAt, duration, now),
		TimerResetAt:    sess.TimerResetAt,
		DrawerConnected: sess.Player.Claimed() && heartbeat.Alive(sess.PlayerHeartbeat, now, disconnectTimeout),
		DrawerReady:     sess.Player != nil && sess.Player.Ready,
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
