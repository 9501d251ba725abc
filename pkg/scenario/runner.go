package scenario

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Run executes the host/guest scenario once.
//
// Bounded waits (guest game instance, settle steps) and the diagnostic read
// of the guest globals are logged when they fail and the run continues. Any
// other failure ends the run with an error. The returned report is non-nil
// whenever the run got as far as creating a room.
func Run(ctx context.Context, cfg Config, host, guest Page, logger *log.Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	if err := host.Navigate(ctx, cfg.GameURL); err != nil {
		return nil, fmt.Errorf("host navigate: %w", err)
	}
	if err := guest.Navigate(ctx, cfg.GameURL); err != nil {
		return nil, fmt.Errorf("guest navigate: %w", err)
	}
	logger.Print("Pages loaded")

	report := &Report{}

	// 1. Host creates game
	if err := host.ClickButton(ctx, ButtonHostGame); err != nil {
		return nil, fmt.Errorf("host game: %w", err)
	}
	if err := host.WaitVisible(ctx, SelectorRoomCode); err != nil {
		return nil, fmt.Errorf("wait room code: %w", err)
	}
	code, err := host.Text(ctx, SelectorRoomCode)
	if err != nil {
		return nil, fmt.Errorf("read room code: %w", err)
	}
	report.RoomCode = code
	logger.Printf("Room Created: %s", code)

	// 2. Guest joins game
	if err := guest.ClickButton(ctx, ButtonJoinGame); err != nil {
		return report, fmt.Errorf("join game: %w", err)
	}
	if err := guest.Fill(ctx, SelectorRoomInput, code); err != nil {
		return report, fmt.Errorf("fill room code: %w", err)
	}
	if err := guest.ClickButton(ctx, ButtonConnect); err != nil {
		return report, fmt.Errorf("connect: %w", err)
	}
	if err := guest.WaitText(ctx, TextGuestConnected); err != nil {
		return report, fmt.Errorf("wait guest connected: %w", err)
	}
	logger.Print("Player 2 Connected")

	// 3. Host starts game
	if err := host.ClickButton(ctx, ButtonStartMulti); err != nil {
		return report, fmt.Errorf("start multiplayer: %w", err)
	}

	err = bounded(ctx, cfg.GuestTimeout, func(ctx context.Context) error {
		return guest.WaitFunc(ctx, ExprGameInstance)
	})
	if err != nil {
		if !isTimeout(err) {
			return report, fmt.Errorf("wait guest game instance: %w", err)
		}
		logger.Print("Timeout waiting for Game Instance on Peer")
	} else {
		report.GuestReady = true
		logger.Print("Game Instance Created on Peer")
	}

	// Give the guest's turn check a chance to update the roll control.
	err = bounded(ctx, cfg.TurnSettle, func(ctx context.Context) error {
		return guest.WaitFunc(ctx, rollTextContains(WaitingMarker))
	})
	if err != nil && !isTimeout(err) {
		return report, fmt.Errorf("wait guest turn lock: %w", err)
	}

	readDebug(ctx, guest, report, logger)

	rollText, err := guest.Text(ctx, SelectorRollBtn)
	if err != nil {
		return report, fmt.Errorf("read guest roll control: %w", err)
	}
	report.RollText = rollText
	report.Locked = IsLocked(rollText)
	logger.Printf("P2 Button Text: '%s'", rollText)
	logger.Print(report.Verdict())

	// 4. Host rolls
	if err := host.ClickButton(ctx, ButtonRollDice); err != nil {
		return report, fmt.Errorf("roll dice: %w", err)
	}
	logger.Print("Host Rolled")

	// The roll animation may not touch the DOM, so first wait for its result
	// to reach the guest.
	err = bounded(ctx, cfg.RollSettle, func(ctx context.Context) error {
		return guest.WaitFunc(ctx, rollLanded(report.TurnIndex, report.Locked))
	})
	if err != nil {
		if !isTimeout(err) {
			return report, fmt.Errorf("wait roll on peer: %w", err)
		}
		logger.Print("Timeout waiting for roll on Peer")
	} else {
		report.RollSeen = true
	}

	settle(ctx, cfg, "host", host, logger)
	settle(ctx, cfg, "peer", guest, logger)

	report.HostShot = filepath.Join(cfg.OutputDir, HostShotName)
	if err := saveScreenshot(ctx, host, report.HostShot); err != nil {
		return report, err
	}
	logger.Printf("Saved screenshot to %s", report.HostShot)

	report.PeerShot = filepath.Join(cfg.OutputDir, PeerShotName)
	if err := saveScreenshot(ctx, guest, report.PeerShot); err != nil {
		return report, err
	}
	logger.Printf("Saved screenshot to %s", report.PeerShot)

	if cfg.Strict && !report.Locked {
		return report, ErrControlsNotLocked
	}
	return report, nil
}

// readDebug records the guest's player id and turn index. Failures are
// logged and kept on the report.
func readDebug(ctx context.Context, guest Page, report *Report, logger *log.Logger) {
	id, err := guest.Eval(ctx, ExprPlayerID)
	if err == nil {
		report.PlayerID = id
		report.TurnIndex, err = guest.Eval(ctx, ExprTurnIndex)
	}
	if err != nil {
		report.DebugErr = err
		logger.Printf("P2 Debug failed: %v", err)
		return
	}
	logger.Printf("P2 Debug: ID=%v, Turn=%v", report.PlayerID, report.TurnIndex)
}

// settle waits, bounded by RollSettle, for the page to stop changing.
func settle(ctx context.Context, cfg Config, role string, p Page, logger *log.Logger) {
	err := bounded(ctx, cfg.RollSettle, func(ctx context.Context) error {
		return p.Settle(ctx, cfg.Quiet)
	})
	if err != nil {
		logger.Printf("%s page did not settle: %v", role, err)
	}
}

func saveScreenshot(ctx context.Context, p Page, filename string) error {
	buf, err := p.Screenshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for screenshot: %w", err)
	}
	if err := os.WriteFile(filename, buf, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot to file: %w", err)
	}
	return nil
}

// bounded runs fn with a deadline d from now.
func bounded(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

// isTimeout reports whether err came from a bounded wait running out.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// rollLanded builds a predicate that holds once the host's roll shows on the
// guest: the turn index moved away from turn, or, when the roll control was
// locked, it no longer shows the waiting marker. With neither signal
// available the predicate stays false and the wait runs to its bound.
func rollLanded(turn any, locked bool) string {
	conds := []string{}
	if locked {
		conds = append(conds, fmt.Sprintf("(function() { const el = document.querySelector(%q); return !!el && !el.innerText.includes(%q); })()",
			SelectorRollBtn, WaitingMarker))
	}
	if b, err := json.Marshal(turn); err == nil && turn != nil {
		conds = append(conds, fmt.Sprintf("(typeof gameInstance !== 'undefined' && gameInstance.turnIndex !== %s)", b))
	}
	if len(conds) == 0 {
		return "false"
	}
	return strings.Join(conds, " || ")
}

// rollTextContains builds a predicate on the roll control's text.
func rollTextContains(marker string) string {
	return fmt.Sprintf(`(function() {
		const el = document.querySelector(%q);
		return !!el && el.innerText.includes(%q);
	})()`, SelectorRollBtn, marker)
}
