package models

// Slot represents one participant seat on a session document. A slot is
// claimed by writing the phone's client-generated player token into PlayerID;
// the same token lets a reloaded browser reclaim its seat.
type Slot struct {
	// PlayerID is the opaque client-generated token that owns this slot
	PlayerID string `json:"playerId"`

	// Connected is the last self-reported connection state; authoritative
	// liveness comes from the slot's heartbeat timestamp
	Connected bool `json:"connected"`

	// Ready indicates the participant has passed the ready barrier check
	Ready bool `json:"ready"`

	// CurrentQuestionIndex is the next question this slot will answer
	CurrentQuestionIndex int `json:"currentQuestionIndex"`

	// CorrectCount is the number of correct answers so far
	CorrectCount int `json:"correctCount"`

	// FinishedAt is when the slot completed its question set, epoch millis;
	// zero means not finished
	FinishedAt int64 `json:"finishedAt"`
}

// Claimed reports whether any player token owns the slot
func (s *Slot) Claimed() bool {
	return s != nil && s.PlayerID != ""
}

// OwnedBy reports whether the slot is claimed by the given player token
func (s *Slot) OwnedBy(playerID string) bool {
	return s != nil && s.PlayerID != "" && s.PlayerID == playerID
}
