package rasbras

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
	store             store.Store
	clock             clockwork.Clock
	logger            zerolog.Logger
	disconnectTimeout time.Duration
}

// NewService creates a new rasbras service
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

// CreateSession creates a new quiz session document
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil {
		return nil, ErrNilConfig
	}
	if len(input.Questions) == 0 {
		return nil, ErrNoQuestions
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
		models.FieldGameType:      models.GameTypeRasbras,
		models.FieldStatus:        models.StatusWaiting,
		models.FieldCreatedAt:     store.ServerTimestamp,
		models.FieldLastHeartbeat: store.ServerTimestamp,
		models.FieldQuestions:     input.Questions,
		models.FieldTimerDuration: duration,
		models.FieldTeamA:         &models.Slot{},
		models.FieldTeamB:         &models.Slot{},
	})
	if err != nil {
		return nil, session.MapStoreError(err)
	}

	s.logger.Info().Str("session_id", sessionID).Int("questions", len(input.Questions)).Msg("rasbras session created")

	return &CreateSessionOutput{
		SessionID:        sessionID,
		TimerDurationSec: duration,
	}, nil
}

// JoinSlot claims one team slot. An occupied, live slot owned by a different
// token rejects the join; the caller may pick the other team.
func (s *service) JoinSlot(ctx context.Context, input *JoinSlotInput) (*JoinSlotOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrMissingSessionID
	}
	if input.Team != TeamA && input.Team != TeamB {
		return nil, ErrInvalidTeam
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

	slot, slotHeartbeat := teamSlot(sess, input.Team)
	if !session.CanClaim(slot, slotHeartbeat, playerID, s.clock.Now(), s.disconnectTimeout) {
		return nil, session.ErrSlotUnavailable
	}

	claimed := &models.Slot{
		PlayerID:  playerID,
		Connected: true,
	}
	if slot.OwnedBy(playerID) {
		// Reconnecting client keeps its progress and readiness
		claimed.Ready = slot.Ready
		claimed.CurrentQuestionIndex = slot.CurrentQuestionIndex
		claimed.CorrectCount = slot.CorrectCount
		claimed.FinishedAt = slot.FinishedAt
	}

	err = s.store.Update(ctx, input.SessionID, heartbeat.Touch(map[string]any{
		teamField(input.Team):          claimed,
		teamHeartbeatField(input.Team): store.ServerTimestamp,
	}))
	if err != nil {
		return nil, session.MapStoreError(err)
	}

	return &JoinSlotOutput{PlayerID: playerID}, nil
}

// Ready marks a team ready. Whichever client observes the barrier closing
// writes the playing status; the anchor write is skipped when already set, so
// the race between two ready-signals cannot restart the timer.
func (s *service) Ready(ctx context.Context, input *ReadyInput) (*ReadyOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrMissingSessionID
	}
	if input.Team != TeamA && input.Team != TeamB {
		return nil, ErrInvalidTeam
	}
	if input.PlayerID == "" {
		return nil, ErrMissingPlayerID
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == models.StatusFinished {
		return nil, session.ErrSessionFinished
	}

	slot, _ := teamSlot(sess, input.Team)
	if !slot.OwnedBy(input.PlayerID) {
		return nil, ErrNotTeamMember
	}

	ready := *slot
	ready.Connected = true
	ready.Ready = true

	fields := heartbeat.Touch(map[string]any{
		teamField(input.Team):          &ready,
		teamHeartbeatField(input.Team): store.ServerTimestamp,
	})

	other, _ := teamSlot(sess, otherTeam(input.Team))

	started := false
	if sess.Status == models.StatusWaiting && session.BarrierClosed(&ready, other) {
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

// SubmitAnswer scores one answer against the stored correct index and
// advances the team. A submission for any index other than the team's current
// question is a duplicate (double tap, replayed snapshot) and is ignored.
func (s *service) SubmitAnswer(ctx context.Context, input *SubmitAnswerInput) (*SubmitAnswerOutput, error) {
	if input == nil || input.SessionID == "" {
		return nil, ErrMissingSessionID
	}
	if input.Team != TeamA && input.Team != TeamB {
		return nil, ErrInvalidTeam
	}

	sess, err := s.getSession(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != models.StatusPlaying {
		return nil, ErrNotPlaying
	}

	slot, _ := teamSlot(sess, input.Team)
	if slot == nil || (input.PlayerID != "" && !slot.OwnedBy(input.PlayerID)) {
		return nil, ErrNotTeamMember
	}
	if slot.FinishedAt != 0 || slot.CurrentQuestionIndex >= len(sess.Questions) {
		return &SubmitAnswerOutput{Accepted: false, CorrectCount: slot.CorrectCount, Finished: true}, nil
	}
	if input.QuestionIndex != slot.CurrentQuestionIndex {
		return &SubmitAnswerOutput{Accepted: false, CorrectCount: slot.CorrectCount}, nil
	}

	question := sess.Questions[slot.CurrentQuestionIndex]
	if input.Choice < 0 || input.Choice >= len(question.Choices) {
		return nil, ErrInvalidChoice
	}

	updated := *slot
	correct := input.Choice == question.CorrectIndex
	if correct {
		updated.CorrectCount++
	}
	updated.CurrentQuestionIndex++

	finished := updated.CurrentQuestionIndex >= len(sess.Questions)
	if finished {
		updated.FinishedAt = s.clock.Now().UnixMilli()
	}

	fields := heartbeat.Touch(map[string]any{
		teamField(input.Team):          &updated,
		teamHeartbeatField(input.Team): store.ServerTimestamp,
	})

	// The slot write for the other team belongs to the other phone; only the
	// shared status may be touched here, and only to finish the round.
	other, _ := teamSlot(sess, otherTeam(input.Team))
	if finished && other != nil && other.FinishedAt != 0 {
		fields[models.FieldStatus] = models.StatusFinished
	}

	if err := s.store.Update(ctx, input.SessionID, fields); err != nil {
		return nil, session.MapStoreError(err)
	}

	return &SubmitAnswerOutput{
		Accepted:     true,
		Correct:      correct,
		CorrectCount: updated.CorrectCount,
		Finished:     finished,
	}, nil
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

// Reduce derives UI state from one snapshot. The round counts as finished
// once the document says so, both teams are done, or the shared timer has
// expired; the outcome is computed redundantly on every client from the same
// snapshot fields, so all observers agree.
func Reduce(snap *store.Snapshot, now time.Time, disconnectTimeout time.Duration) DerivedState {
	if snap.Deleted {
		return DerivedState{Phase: session.PhaseEnded}
	}

	var sess models.Session
	if err := snap.Decode(&sess); err != nil {
		return DerivedState{Phase: session.PhaseEnded}
	}

	duration := time.Duration(sess.TimerDurationSec) * time.Second
	countdown := timer.Derive(sess.GameStartedAt, sess.TimerResetAt, duration, now)

	teamA := reduceTeam(sess.TeamA, sess.TeamAHeartbeat, now, disconnectTimeout)
	teamB := reduceTeam(sess.TeamB, sess.TeamBHeartbeat, now, disconnectTimeout)

	phase := session.PhaseOf(false, sess.Status)
	if phase == session.PhasePlaying {
		bothDone := teamA.FinishedAt != 0 && teamB.FinishedAt != 0
		if bothDone || countdown.Expired {
			phase = session.PhaseFinished
		}
	}

	state := DerivedState{
		Phase:     phase,
		Questions: sess.Questions,
		TeamA:     teamA,
		TeamB:     teamB,
		Timer:     countdown,
	}

	if phase == session.PhaseFinished {
		outcome := DetermineWinner(WinnerInput{
			TeamACorrect:    teamA.CorrectCount,
			TeamBCorrect:    teamB.CorrectCount,
			TeamAFinishedAt: teamA.FinishedAt,
			TeamBFinishedAt: teamB.FinishedAt,
			GameStartedAt:   sess.GameStartedAt,
		})
		state.Outcome = &outcome
	}

	return state
}

func reduceTeam(slot *models.Slot, slotHeartbeat int64, now time.Time, timeout time.Duration) TeamState {
	if slot == nil {
		return TeamState{}
	}
	return TeamState{
		Claimed:              slot.Claimed(),
		Connected:            slot.Claimed() && heartbeat.Alive(slotHeartbeat, now, timeout),
		Ready:                slot.Ready,
		CurrentQuestionIndex: slot.CurrentQuestionIndex,
		CorrectCount:         slot.CorrectCount,
		FinishedAt:           slot.FinishedAt,
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

func teamSlot(sess *models.Session, team Team) (*models.Slot, int64) {
	if team == TeamA {
		return sess.TeamA, sess.TeamAHeartbeat
	}
	return sess.TeamB, sess.TeamBHeartbeat
}

func teamField(team Team) string {
	if team == TeamA {
		return models.FieldTeamA
	}
	return models.FieldTeamB
}

func teamHeartbeatField(team Team) string {
	if team == TeamA {
		return models.FieldTeamAHeartbeat
	}
	return models.FieldTeamBHeartbeat
}

func otherTeam(team Team) Team {
	if team == TeamA {
		return TeamB
	}
	return TeamA
}
