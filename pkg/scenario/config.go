package scenario

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"
)

// Selectors and labels the game page is expected to expose.
const (
	ButtonHostGame   = "Host Game"
	ButtonJoinGame   = "Join Game"
	ButtonConnect    = "Connect"
	ButtonStartMulti = "Start Multiplayer"
	ButtonRollDice   = "ROLL DICE"

	SelectorRoomCode  = "#roomCodeDisplay"
	SelectorRoomInput = "#roomInput"
	SelectorRollBtn   = "#rollBtn"

	TextGuestConnected = "Connected! Waiting for Host..."

	// WaitingMarker must appear in the guest's roll control during the host's turn.
	WaitingMarker = "WAITING"

	ExprGameInstance = "typeof gameInstance !== 'undefined'"
	ExprPlayerID     = "gameInstance.myPlayerId"
	ExprTurnIndex    = "gameInstance.turnIndex"
)

// Output file names inside Config.OutputDir.
const (
	HostShotName = "host_view.png"
	PeerShotName = "peer_view.png"
)

// Config configures a scenario run.
type Config struct {
	GameURL      string        // Page both players open
	OutputDir    string        // Directory receiving the screenshots
	GuestTimeout time.Duration // Bound on the guest game instance appearing
	TurnSettle   time.Duration // Bound on the guest roll control updating after start
	RollSettle   time.Duration // Bound on the roll animation finishing
	Quiet        time.Duration // DOM quiet period that counts as settled
	Strict       bool          // Report a FAIL verdict as ErrControlsNotLocked
}

// DefaultConfig returns the configuration for the bundled snake.html.
// GameURL is resolved against the working directory; if that fails the
// relative path is used as is.
func DefaultConfig() Config {
	u, err := GameURL("snake.html")
	if err != nil {
		u = "file://snake.html"
	}
	return Config{
		GameURL:      u,
		OutputDir:    "verification",
		GuestTimeout: 5 * time.Second,
		TurnSettle:   2 * time.Second,
		RollSettle:   3 * time.Second,
		Quiet:        300 * time.Millisecond,
	}
}

// Validate checks that all bounds are usable.
func (c Config) Validate() error {
	if c.GameURL == "" {
		return fmt.Errorf("game URL is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.GuestTimeout <= 0 || c.TurnSettle <= 0 || c.RollSettle <= 0 {
		return fmt.Errorf("wait bounds must be positive")
	}
	if c.Quiet <= 0 {
		return fmt.Errorf("quiet period must be positive, got %v", c.Quiet)
	}
	return nil
}

// GameURL returns the file URL of a local game page.
func GameURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
