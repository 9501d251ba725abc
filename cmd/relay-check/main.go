// Relay Check
//
// Smoke-tests a running room relay: creates a room, joins it, round-trips a
// TEST_EVENT over the event stream, then connects two WebRTC peers through a
// room and measures a data channel ping.
//
// Usage:
//
//	go run ./cmd/relay-check
//	RELAY_URL=http://localhost:8080 go run ./cmd/relay-check
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/pion/logging"

	"github.com/thesyncim/snakeverify/internal/config"
	"github.com/thesyncim/snakeverify/pkg/probe"
)

type env struct {
	URL      string        `env:"RELAY_URL"`
	Timeout  time.Duration `env:"RELAY_CHECK_TIMEOUT"`
	SkipRTC  bool          `env:"RELAY_CHECK_SKIP_RTC"`
	PionLogs bool          `env:"RELAY_CHECK_PION_LOGS"`
}

func main() {
	e := env{URL: "http://localhost:3000", Timeout: 30 * time.Second}
	if err := config.ParseEnv(&e); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.Timeout)
	defer cancel()

	c := probe.NewClient(e.URL)

	log.Printf("1. Checking relay at %s", c.BaseURL)
	room, err := probe.Check(ctx, c)
	if err != nil {
		log.Fatalf("FAIL: %v", err)
	}
	log.Printf("PASS: Received %s in room %s", probe.CheckEvent, room)

	if e.SkipRTC {
		return
	}

	log.Print("2. Connecting WebRTC peers through the relay")
	cfg := probe.DefaultHandshakeConfig()
	if e.PionLogs {
		cfg.LogLevel = logging.LogLevelDebug
		cfg.LogWriter = os.Stderr
	}
	rtt, err := probe.Handshake(ctx, c, room, cfg)
	if err != nil {
		log.Fatalf("FAIL: %v", err)
	}
	log.Printf("PASS: Data channel open, ping round trip %v", rtt)
}
