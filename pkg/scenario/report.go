package scenario

import (
	"errors"
	"strings"
)

// ErrControlsNotLocked is returned by Run in strict mode when the guest's
// roll control does not show the waiting marker during the host's turn.
var ErrControlsNotLocked = errors.New("P2 controls not locked")

// Report is what one scenario run observed.
type Report struct {
	RoomCode   string // Code read from the host and typed into the guest
	GuestReady bool   // Guest game instance appeared within GuestTimeout
	PlayerID   any    // gameInstance.myPlayerId on the guest
	TurnIndex  any    // gameInstance.turnIndex on the guest
	DebugErr   error  // Failure reading the guest globals, if any
	RollText   string // Guest roll control text before the host rolled
	Locked     bool   // RollText carries WaitingMarker
	RollSeen   bool   // Guest showed the host's roll within RollSettle
	HostShot   string // Host screenshot path
	PeerShot   string // Guest screenshot path
}

// IsLocked reports whether a roll control text shows the opponent's turn.
// The match is case-sensitive.
func IsLocked(rollText string) bool {
	return strings.Contains(rollText, WaitingMarker)
}

// Verdict is the line printed for the locked-controls check.
func (r *Report) Verdict() string {
	if r.Locked {
		return "P2 controls correctly locked"
	}
	return "FAIL: P2 controls not locked"
}
