package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// Key prefixes for Redis
	sessionKeyPrefix = "session:"
	eventChanPrefix  = "session.events:"

	// Pub/sub payloads
	eventUpdated = "updated"
	eventDeleted = "deleted"
)

// Config holds configuration for the Redis-backed store
type Config struct {
	// Redis client
	RedisClient *redis.Client

	// Clock resolves server-timestamp sentinels; defaults to the real clock
	Clock clockwork.Clock

	// Logger for subscription delivery problems; defaults to a no-op logger
	Logger zerolog.Logger
}

// redisStore implements the Store interface using a Redis hash per document
// and a pub/sub channel per document for snapshot fan-out.
type redisStore struct {
	client *redis.Client
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewRedis creates a new Redis-backed document store
func NewRedis(cfg *Config) (*redisStore, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisStore{
		client: cfg.RedisClient,
		clock:  clock,
		logger: cfg.Logger,
	}, nil
}

// Create writes a new document. The id field doubles as the creation guard:
// HSETNX fails exactly when another client already created the document.
func (r *redisStore) Create(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return errors.New("document id cannot be empty")
	}

	key := sessionKeyPrefix + id

	idJSON, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to encode document id: %w", err)
	}

	created, err := r.client.HSetNX(ctx, key, "sessionId", string(idJSON)).Result()
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	if !created {
		return ErrExists
	}

	encoded, err := encodeFields(fields, r.clock)
	if err != nil {
		return err
	}
	delete(encoded, "sessionId")

	if len(encoded) > 0 {
		if err := r.client.HSet(ctx, key, flatten(encoded)...).Err(); err != nil {
			// Release the id: a document holding only the creation guard would
			// reject every retry with ErrExists.
			if delErr := r.client.Del(ctx, key).Err(); delErr != nil {
				r.logger.Warn().Err(delErr).Str("session_id", id).Msg("failed to clean up partial document")
			}
			return fmt.Errorf("failed to write initial fields: %w", err)
		}
	}

	r.publish(ctx, id, eventUpdated)
	return nil
}

// Update merges the given fields into an existing document
func (r *redisStore) Update(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return errors.New("document id cannot be empty")
	}
	if len(fields) == 0 {
		return nil
	}

	key := sessionKeyPrefix + id

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if exists == 0 {
		return ErrNotFound
	}

	encoded, err := encodeFields(fields, r.clock)
	if err != nil {
		return err
	}

	if err := r.client.HSet(ctx, key, flatten(encoded)...).Err(); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	r.publish(ctx, id, eventUpdated)
	return nil
}

// GetOnce reads the full current document
func (r *redisStore) GetOnce(ctx context.Context, id string) (*Snapshot, error) {
	if id == "" {
		return nil, errors.New("document id cannot be empty")
	}

	values, err := r.client.HGetAll(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}

	fields := make(map[string]json.RawMessage, len(values))
	for name, raw := range values {
		fields[name] = json.RawMessage(raw)
	}

	return &Snapshot{ID: id, Fields: fields}, nil
}

// Subscribe delivers the current document immediately and after every change.
// The callback runs on the subscription goroutine; it must not block for long.
func (r *redisStore) Subscribe(ctx context.Context, id string, fn SnapshotFunc) (func(), error) {
	if id == "" {
		return nil, errors.New("document id cannot be empty")
	}
	if fn == nil {
		return nil, errors.New("snapshot callback cannot be nil")
	}

	// The subscription must be on the wire before the initial read: a write
	// landing between the read and the SUBSCRIBE would otherwise never be
	// delivered. The reverse order only risks a duplicate snapshot, which the
	// idempotent-reducer contract absorbs.
	pubsub := r.client.Subscribe(ctx, eventChanPrefix+id)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	initial, err := r.GetOnce(ctx, id)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	fn(initial)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			_ = pubsub.Close()
		})
	}

	go func() {
		defer unsubscribe()
		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				if msg.Payload == eventDeleted {
					fn(&Snapshot{ID: id, Deleted: true})
					return
				}
				snap, err := r.GetOnce(ctx, id)
				if errors.Is(err, ErrNotFound) {
					fn(&Snapshot{ID: id, Deleted: true})
					return
				}
				if err != nil {
					r.logger.Warn().Err(err).Str("session_id", id).Msg("failed to read document after change")
					continue
				}
				fn(snap)
			}
		}
	}()

	return unsubscribe, nil
}

// Delete removes the document and notifies subscribers
func (r *redisStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("document id cannot be empty")
	}

	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	r.publish(ctx, id, eventDeleted)
	return nil
}

// publish notifies subscribers of a document change. Failures are logged and
// dropped: a missed notification self-heals on the next write.
func (r *redisStore) publish(ctx context.Context, id, event string) {
	if err := r.client.Publish(ctx, eventChanPrefix+id, event).Err(); err != nil {
		r.logger.Warn().Err(err).Str("session_id", id).Msg("failed to publish document event")
	}
}

// flatten converts an encoded field map into the alternating key/value form
// HSET expects.
func flatten(encoded map[string]string) []any {
	pairs := make([]any, 0, len(encoded)*2)
	for name, value := range encoded {
		pairs = append(pairs, name, value)
	}
	return pairs
}
