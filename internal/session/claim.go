package session

import (
	"time"

	"github.com/spillkveld/minispill/internal/heartbeat"
	"github.com/spillkveld/minispill/internal/models"
)

// CanClaim decides whether playerID may take the slot. A slot is claimable
// when it is unclaimed, when the same token is reconnecting after a reload,
// or when the current owner's heartbeat has been stale for longer than the
// disconnect timeout. A live owner is never silently evicted.
func CanClaim(slot *models.Slot, slotHeartbeat int64, playerID string, now time.Time, timeout time.Duration) bool {
	if !slot.Claimed() {
		return true
	}
	if slot.OwnedBy(playerID) {
		return true
	}
	return !heartbeat.Alive(slotHeartbeat, now, timeout)
}
