//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/thesyncim/snakeverify/cmd/relay/server"
	"github.com/thesyncim/snakeverify/pkg/browser"
)

// syncBuffer is a bytes.Buffer safe for the console forwarding goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// writeFixture writes the fixture game page into a fresh directory.
func writeFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "snake.html"), []byte(snakePage), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return root
}

// startRelay serves root on a random port and returns its base URL.
func startRelay(t *testing.T, root string) string {
	t.Helper()
	cfg := server.DefaultConfig()
	cfg.Root = root
	cfg.Logger = log.New(io.Discard, "", 0)

	srv, err := server.NewServer(cfg)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	addr, err := srv.Start()
	if err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("server shutdown error: %v", err)
		}
	})

	// The server returns [::]:port format, Chrome needs localhost:port
	_, port, _ := net.SplitHostPort(addr)
	t.Logf("Relay started on %s", addr)
	return "http://localhost:" + port
}

// newBrowser launches Chrome with console output captured in out.
func newBrowser(t *testing.T, out io.Writer) *browser.BrowserClient {
	t.Helper()
	cfg := browser.DefaultBrowserConfig()
	cfg.Logger = log.New(out, "", 0)

	client, err := browser.NewBrowserClient(cfg)
	if err != nil {
		t.Fatalf("failed to create browser: %v", err)
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Errorf("browser close error: %v", err)
		}
	})
	return client
}
