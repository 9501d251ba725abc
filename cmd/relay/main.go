// Snake Room Relay
//
// This server hosts snake.html and relays room messages between players over
// Server-Sent Events. Both players subscribe to /events?room=CODE and publish
// with POST /action; every message is delivered to everyone in the room.
//
// Usage:
//
//	go run ./cmd/relay
//	PORT=8080 RELAY_ROOT=./web go run ./cmd/relay
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thesyncim/snakeverify/cmd/relay/server"
	"github.com/thesyncim/snakeverify/internal/config"
)

type env struct {
	Port      int           `env:"PORT"`
	Root      string        `env:"RELAY_ROOT"`
	Heartbeat time.Duration `env:"RELAY_HEARTBEAT"`
}

func main() {
	cfg := server.DefaultConfig()
	e := env{Port: 3000, Root: cfg.Root, Heartbeat: cfg.Heartbeat}
	if err := config.ParseEnv(&e); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.Addr = fmt.Sprintf(":%d", e.Port)
	cfg.Root = e.Root
	cfg.Heartbeat = e.Heartbeat
	cfg.Logger = log.Default()

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	addr, err := srv.Start()
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Printf("Server running at http://localhost:%d/ (listening on %s)", e.Port, addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
