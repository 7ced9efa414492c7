package session

import "github.com/spillkveld/minispill/internal/models"

// BarrierClosed reports whether every required slot is simultaneously
// connected and ready. A session with an unclaimed or unready slot never
// leaves waiting.
func BarrierClosed(slots ...*models.Slot) bool {
	if len(slots) == 0 {
		return false
	}
	for _, slot := range slots {
		if slot == nil || !slot.Connected || !slot.Ready {
			return false
		}
	}
	return true
}

// StartFields returns the field updates that close the barrier: the playing
// status plus the write-once timer anchor. Callers pass the current anchor so
// a concurrent observer that already started the game skips the anchor write;
// losing that race is a no-op, not an error.
func StartFields(currentAnchor int64, anchorValue any) map[string]any {
	fields := map[string]any{
		models.FieldStatus: models.StatusPlaying,
	}
	if currentAnchor == 0 {
		fields[models.FieldGameStartedAt] = anchorValue
	}
	return fields
}
