// Package server provides an importable HTTP server for the multiplayer snake game.
// It serves the game files and relays room messages over Server-Sent Events, so
// E2E tests can start and stop it without running main().
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"
)

// ErrServerClosed is returned by Start once the server has been shut down.
var ErrServerClosed = errors.New("server closed")

// Config holds server configuration options.
type Config struct {
	Addr        string        // Listen address (e.g., ":3000" or ":0" for random port)
	Root        string        // Directory served as static files
	ReadTimeout time.Duration // HTTP read timeout
	Heartbeat   time.Duration // Interval between SSE keep-alive comments
	SendTimeout time.Duration // Max time a broadcast waits on one subscriber
	Logger      *log.Logger   // Defaults to a logger on stderr
}

// DefaultConfig returns a configuration suitable for testing.
// Uses ":0" to bind to a random available port.
func DefaultConfig() Config {
	return Config{
		Addr:        ":0",
		Root:        ".",
		ReadTimeout: 30 * time.Second,
		Heartbeat:   15 * time.Second,
		SendTimeout: time.Second,
	}
}

// Server is an importable HTTP server hosting the game page and room relay.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	hub        *Hub
	addr       string
	logger     *log.Logger
	mu         sync.Mutex
	running    bool
	closed     bool
}

// NewServer creates a new server with the given configuration.
// The server is not started until Start() is called.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Heartbeat <= 0 {
		return nil, fmt.Errorf("heartbeat must be positive, got %v", cfg.Heartbeat)
	}
	if cfg.SendTimeout <= 0 {
		return nil, fmt.Errorf("send timeout must be positive, got %v", cfg.SendTimeout)
	}
	root, err := resolveRoot(cfg.Root)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "relay: ", log.LstdFlags)
	}

	hub := NewHub(cfg.SendTimeout)
	h := &handler{
		hub:       hub,
		root:      root,
		heartbeat: cfg.Heartbeat,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.handleEvents)
	mux.HandleFunc("/action", h.handleAction)
	mux.HandleFunc("/api/create", h.handleCreate)
	mux.HandleFunc("/api/join", h.handleJoin)
	mux.HandleFunc("/api/signal", h.handleSignal)
	mux.HandleFunc("/", h.handleStatic)

	// No WriteTimeout: SSE responses stay open for the lifetime of a subscriber.
	httpServer := &http.Server{
		Addr:        cfg.Addr,
		Handler:     mux,
		ReadTimeout: cfg.ReadTimeout,
	}

	return &Server{
		httpServer: httpServer,
		hub:        hub,
		logger:     logger,
	}, nil
}

// Start begins listening and serving HTTP requests.
// Returns the actual address the server is listening on (useful when port is 0).
// This method is non-blocking - the server runs in a goroutine.
// A server cannot be restarted after Shutdown.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrServerClosed
	}
	if s.running {
		return s.addr, nil
	}

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return "", fmt.Errorf("failed to listen: %w", err)
	}

	s.listener = ln
	s.addr = ln.Addr().String()
	s.running = true

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("serve: %v", err)
		}
	}()

	return s.addr, nil
}

// Shutdown gracefully shuts down the server.
// Open SSE streams are closed first so Shutdown does not wait on them.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false
	s.closed = true
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server is listening on.
// Returns empty string if server is not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Hub returns the room hub backing the relay.
func (s *Server) Hub() *Hub {
	return s.hub
}
