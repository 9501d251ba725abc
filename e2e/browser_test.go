//go:build e2e

package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/thesyncim/snakeverify/pkg/scenario"
)

// TestChrome_CanOpenGame verifies the infrastructure the scenario relies on:
// 1. Browser can launch in headless mode
// 2. An isolated tab can open the game from a file URL
// 3. Buttons resolve by their label and page globals can be read
//
// This is a smoke test - it validates infrastructure, not game behavior.
func TestChrome_CanOpenGame(t *testing.T) {
	root := writeFixture(t)
	gameURL, err := scenario.GameURL(filepath.Join(root, "snake.html"))
	if err != nil {
		t.Fatalf("failed to resolve game URL: %v", err)
	}

	var out syncBuffer
	client := newBrowser(t, &out)
	ctx := context.Background()

	tab, err := client.NewTab(ctx, "Host")
	if err != nil {
		t.Fatalf("failed to open tab: %v", err)
	}
	if err := tab.Navigate(ctx, gameURL); err != nil {
		t.Fatalf("failed to navigate: %v", err)
	}

	title, err := tab.Eval(ctx, "document.title")
	if err != nil {
		t.Fatalf("failed to read title: %v", err)
	}
	if title != "Snake Multiplayer" {
		t.Errorf("unexpected page title: got %v", title)
	}

	if err := tab.ClickButton(ctx, scenario.ButtonJoinGame); err != nil {
		t.Fatalf("failed to click %q: %v", scenario.ButtonJoinGame, err)
	}
	if err := tab.WaitVisible(ctx, scenario.SelectorRoomInput); err != nil {
		t.Fatalf("room input not shown: %v", err)
	}
	if err := tab.Fill(ctx, scenario.SelectorRoomInput, "A1B2C3"); err != nil {
		t.Fatalf("failed to fill room input: %v", err)
	}
	value, err := tab.Eval(ctx, "document.querySelector('#roomInput').value")
	if err != nil {
		t.Fatalf("failed to read input: %v", err)
	}
	if value != "A1B2C3" {
		t.Errorf("room input = %v, want A1B2C3", value)
	}

	png, err := tab.Screenshot(ctx)
	if err != nil {
		t.Fatalf("failed to capture screenshot: %v", err)
	}
	if len(png) < 8 || string(png[1:4]) != "PNG" {
		t.Errorf("screenshot is not a PNG (%d bytes)", len(png))
	}
}

// TestChrome_ClickButtonByAccessibleName checks how labels resolve to controls:
// 1. Hidden duplicates are skipped in favour of the visible control
// 2. An exact name wins over a longer label containing it
// 3. Decorated labels match by case-insensitive substring
// 4. role=button elements, submit inputs and aria-labels count as buttons
func TestChrome_ClickButtonByAccessibleName(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "buttons.html")
	if err := os.WriteFile(page, []byte(buttonsPage), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	pageURL, err := scenario.GameURL(page)
	if err != nil {
		t.Fatalf("failed to resolve page URL: %v", err)
	}

	var out syncBuffer
	client := newBrowser(t, &out)
	ctx := context.Background()

	tab, err := client.NewTab(ctx, "Host")
	if err != nil {
		t.Fatalf("failed to open tab: %v", err)
	}
	if err := tab.Navigate(ctx, pageURL); err != nil {
		t.Fatalf("failed to navigate: %v", err)
	}

	for _, name := range []string{
		scenario.ButtonConnect,
		scenario.ButtonRollDice,
		scenario.ButtonHostGame,
		scenario.ButtonJoinGame,
		scenario.ButtonStartMulti,
	} {
		if err := tab.ClickButton(ctx, name); err != nil {
			t.Fatalf("failed to click %q: %v", name, err)
		}
	}

	clicks, err := tab.Eval(ctx, "clicks.join(',')")
	if err != nil {
		t.Fatalf("failed to read clicks: %v", err)
	}
	if want := "connect,roll,host,join,start"; clicks != want {
		t.Errorf("clicks = %v, want %s", clicks, want)
	}
}
