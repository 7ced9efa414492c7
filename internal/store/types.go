package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("document not found")

	// ErrExists is returned by Create when the id is already taken
	ErrExists = errors.New("document already exists")
)

// serverTimestamp is the sentinel resolved to the store clock at commit time
type serverTimestamp struct{}

// ServerTimestamp marks a field to be assigned the store's wall-clock time,
// in epoch milliseconds, when the write commits.
var ServerTimestamp = serverTimestamp{}

// Snapshot is the full state of one document at a point in time. Fields hold
// the JSON-encoded value of every document field.
type Snapshot struct {
	// ID is the document id
	ID string

	// Fields maps field name to its JSON-encoded value
	Fields map[string]json.RawMessage

	// Deleted indicates the document no longer exists; Fields is empty
	Deleted bool
}

// Decode unmarshals the whole document into v, typically a *models.Session
func (s *Snapshot) Decode(v any) error {
	if s.Deleted {
		return ErrNotFound
	}
	raw, err := json.Marshal(s.Fields)
	if err != nil {
		return fmt.Errorf("failed to assemble document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

// encodeFields resolves ServerTimestamp sentinels against the given clock and
// JSON-encodes every value.
func encodeFields(fields map[string]any, clock clockwork.Clock) (map[string]string, error) {
	encoded := make(map[string]string, len(fields))
	for name, value := range fields {
		if _, ok := value.(serverTimestamp); ok {
			value = clock.Now().UnixMilli()
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %q: %w", name, err)
		}
		encoded[name] = string(raw)
	}
	return encoded, nil
}

// Millis converts a document epoch-millisecond timestamp to time.Time.
// The zero value maps to the zero time.
func Millis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
