// Multiplayer Verification
//
// Opens snake.html from the working directory in two isolated headless Chrome
// contexts, plays the host/guest handshake, checks that the guest's controls
// are locked during the host's turn, and writes host_view.png and
// peer_view.png to ./verification.
//
// Usage:
//
//	go run ./cmd/verify-multiplayer
//	SNAKEVERIFY_URL=http://localhost:3000/ go run ./cmd/verify-multiplayer
//
// The locked-controls check only prints FAIL unless SNAKEVERIFY_STRICT=true.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/thesyncim/snakeverify/internal/config"
	"github.com/thesyncim/snakeverify/pkg/browser"
	"github.com/thesyncim/snakeverify/pkg/scenario"
)

type env struct {
	Game     string `env:"SNAKEVERIFY_GAME"`
	URL      string `env:"SNAKEVERIFY_URL"`
	Output   string `env:"SNAKEVERIFY_OUTPUT"`
	Headless bool   `env:"SNAKEVERIFY_HEADLESS"`
	Strict   bool   `env:"SNAKEVERIFY_STRICT"`
	Chrome   string `env:"SNAKEVERIFY_CHROME"`
}

func main() {
	logger := log.New(os.Stdout, "", 0)

	cfg := scenario.DefaultConfig()
	e := env{Game: "snake.html", Output: cfg.OutputDir, Headless: true}
	if err := config.ParseEnv(&e); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.OutputDir = e.Output
	cfg.Strict = e.Strict
	cfg.GameURL = e.URL
	if cfg.GameURL == "" {
		u, err := scenario.GameURL(e.Game)
		if err != nil {
			log.Fatalf("Failed to resolve game page: %v", err)
		}
		cfg.GameURL = u
	}

	browserCfg := browser.DefaultBrowserConfig()
	browserCfg.Headless = e.Headless
	browserCfg.Bin = e.Chrome
	browserCfg.Logger = logger

	client, err := browser.NewBrowserClient(browserCfg)
	if err != nil {
		log.Fatalf("Failed to create browser: %v", err)
	}

	ctx := context.Background()
	report, err := run(ctx, client, cfg, logger)
	if cerr := client.Close(); cerr != nil {
		logger.Printf("Browser close error: %v", cerr)
	}

	switch {
	case errors.Is(err, scenario.ErrControlsNotLocked):
		logger.Printf("Strict mode: %v (room %s)", err, report.RoomCode)
		os.Exit(1)
	case err != nil:
		log.Fatalf("Verification aborted: %v", err)
	}
}

func run(ctx context.Context, client *browser.BrowserClient, cfg scenario.Config, logger *log.Logger) (*scenario.Report, error) {
	host, err := client.NewTab(ctx, "Host")
	if err != nil {
		return nil, err
	}
	guest, err := client.NewTab(ctx, "Peer")
	if err != nil {
		return nil, err
	}
	return scenario.Run(ctx, cfg, host, guest, logger)
}
