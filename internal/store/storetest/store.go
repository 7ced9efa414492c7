// Package storetest provides an in-memory Store for service tests: same
// semantics as the Redis store (field merge, full-snapshot fan-out including
// the caller's own writes, delete tombstones) plus fault injection.
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/spillkveld/minispill/internal/store"
)

type document struct {
	fields map[string]json.RawMessage
}

type subscriber struct {
	id string
	fn store.SnapshotFunc
}

// Store is an in-memory implementation of store.Store. Snapshots are
// delivered synchronously from the mutating call, which makes test ordering
// deterministic.
type Store struct {
	mu          sync.Mutex
	clock       clockwork.Clock
	documents   map[string]*document
	subscribers map[int]*subscriber
	nextSub     int

	updateErr error
}

// New creates an empty in-memory store whose server timestamps come from the
// given clock.
func New(clock clockwork.Clock) *Store {
	return &Store{
		clock:       clock,
		documents:   make(map[string]*document),
		subscribers: make(map[int]*subscriber),
	}
}

// FailUpdates makes every subsequent Update return err; nil restores normal
// behavior.
func (s *Store) FailUpdates(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateErr = err
}

// Create writes a new document
func (s *Store) Create(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	if _, ok := s.documents[id]; ok {
		s.mu.Unlock()
		return store.ErrExists
	}

	doc := &document{fields: make(map[string]json.RawMessage)}
	doc.fields["sessionId"] = mustEncode(id)
	if err := s.merge(doc, fields); err != nil {
		s.mu.Unlock()
		return err
	}
	s.documents[id] = doc
	fns := s.snapshotFuncs(id)
	snap := s.snapshotLocked(id)
	s.mu.Unlock()

	deliver(fns, snap)
	return nil
}

// Update merges fields into an existing document
func (s *Store) Update(_ context.Context, id string, fields map[string]any) error {
	s.mu.Lock()
	if s.updateErr != nil {
		err := s.updateErr
		s.mu.Unlock()
		return err
	}
	doc, ok := s.documents[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrNotFound
	}
	if err := s.merge(doc, fields); err != nil {
		s.mu.Unlock()
		return err
	}
	fns := s.snapshotFuncs(id)
	snap := s.snapshotLocked(id)
	s.mu.Unlock()

	deliver(fns, snap)
	return nil
}

// GetOnce reads the full current document
func (s *Store) GetOnce(_ context.Context, id string) (*store.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[id]; !ok {
		return nil, store.ErrNotFound
	}
	return s.snapshotLocked(id), nil
}

// Subscribe registers fn and delivers the current document immediately
func (s *Store) Subscribe(_ context.Context, id string, fn store.SnapshotFunc) (func(), error) {
	s.mu.Lock()
	if _, ok := s.documents[id]; !ok {
		s.mu.Unlock()
		return nil, store.ErrNotFound
	}
	key := s.nextSub
	s.nextSub++
	s.subscribers[key] = &subscriber{id: id, fn: fn}
	snap := s.snapshotLocked(id)
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, key)
			s.mu.Unlock()
		})
	}, nil
}

// Delete removes the document and delivers a tombstone to its subscribers
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.documents, id)
	fns := s.snapshotFuncs(id)
	s.mu.Unlock()

	deliver(fns, &store.Snapshot{ID: id, Deleted: true})
	return nil
}

func (s *Store) merge(doc *document, fields map[string]any) error {
	for name, value := range fields {
		if value == store.ServerTimestamp {
			value = s.clock.Now().UnixMilli()
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode field %q: %w", name, err)
		}
		doc.fields[name] = raw
	}
	return nil
}

func (s *Store) snapshotLocked(id string) *store.Snapshot {
	doc := s.documents[id]
	fields := make(map[string]json.RawMessage, len(doc.fields))
	for name, raw := range doc.fields {
		fields[name] = append(json.RawMessage(nil), raw...)
	}
	return &store.Snapshot{ID: id, Fields: fields}
}

func (s *Store) snapshotFuncs(id string) []store.SnapshotFunc {
	fns := make([]store.SnapshotFunc, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		if sub.id == id {
			fns = append(fns, sub.fn)
		}
	}
	return fns
}

func deliver(fns []store.SnapshotFunc, snap *store.Snapshot) {
	for _, fn := range fns {
		fn(snap)
	}
}

func mustEncode(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
