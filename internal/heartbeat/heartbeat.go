// Package heartbeat approximates presence over a store with no ephemeral
// connection concept: each connected client periodically rewrites a liveness
// timestamp, and observers treat a stale timestamp as "assume gone".
package heartbeat

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/spillkveld/minispill/internal/models"
	"github.com/spillkveld/minispill/internal/store"
)

const (
	// DefaultInterval is how often a connected client writes its heartbeat
	DefaultInterval = 2500 * time.Millisecond

	// DefaultTimeout is the staleness bound after which observers consider a
	// client gone; 4x the interval absorbs write and propagation jitter
	DefaultTimeout = 10 * time.Second
)

// Alive reports whether a heartbeat written at last (epoch millis) is still
// fresh at now. A zero heartbeat means the client never connected.
func Alive(last int64, now time.Time, timeout time.Duration) bool {
	if last == 0 {
		return false
	}
	return now.Sub(store.Millis(last)) <= timeout
}

// Config holds configuration for a Beater
type Config struct {
	// Store receives the heartbeat writes
	Store store.Store

	// Clock drives the beat ticker
	Clock clockwork.Clock

	// Logger for dropped beats; defaults to a no-op logger
	Logger zerolog.Logger

	// SessionID is the session document to beat on
	SessionID string

	// Fields are the heartbeat field names rewritten on every beat, typically
	// the shared lastHeartbeat plus the client's per-slot field
	Fields []string

	// Interval between beats; defaults to DefaultInterval
	Interval time.Duration
}

// Beater periodically writes server-timestamp heartbeats for one client role.
// Beat failures are liveness noise, not errors: a missed beat self-heals on
// the next tick, so they are logged at debug and dropped.
type Beater struct {
	store     store.Store
	clock     clockwork.Clock
	logger    zerolog.Logger
	sessionID string
	fields    []string
	interval  time.Duration

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewBeater creates a heartbeat writer; Start launches it
func NewBeater(cfg *Config) (*Beater, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Store == nil {
		return nil, errors.New("store cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}
	if cfg.SessionID == "" {
		return nil, errors.New("session id cannot be empty")
	}
	if len(cfg.Fields) == 0 {
		return nil, errors.New("at least one heartbeat field is required")
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Beater{
		store:     cfg.Store,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		sessionID: cfg.SessionID,
		fields:    cfg.Fields,
		interval:  interval,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}, nil
}

// Start writes one immediate beat and then beats on the interval until Stop
// is called or ctx is cancelled. Subsequent calls are no-ops.
func (b *Beater) Start(ctx context.Context) {
	if !b.started.CompareAndSwap(false, true) {
		return
	}
	go b.run(ctx)
}

// Stop halts the beat loop and waits for it to exit; safe to call even when
// Start never ran. The last written heartbeat simply goes stale; observers
// time it out.
func (b *Beater) Stop() {
	b.stopOnce.Do(func() {
		close(b.stop)
	})
	if b.started.Load() {
		<-b.done
	}
}

func (b *Beater) run(ctx context.Context) {
	defer close(b.done)

	ticker := b.clock.NewTicker(b.interval)
	defer ticker.Stop()

	b.beat(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.stop:
			return
		case <-ticker.Chan():
			b.beat(ctx)
		}
	}
}

func (b *Beater) beat(ctx context.Context) {
	fields := make(map[string]any, len(b.fields))
	for _, name := range b.fields {
		fields[name] = store.ServerTimestamp
	}
	if err := b.store.Update(ctx, b.sessionID, fields); err != nil {
		b.logger.Debug().Err(err).Str("session_id", b.sessionID).Msg("heartbeat dropped")
	}
}

// Touch adds the shared heartbeat refresh to a user-initiated write, keeping
// the caller convention that every update also proves liveness.
func Touch(fields map[string]any) map[string]any {
	fields[models.FieldLastHeartbeat] = store.ServerTimestamp
	return fields
}
