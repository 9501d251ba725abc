// Package browser provides headless Chrome automation for the multiplayer
// verification. It wraps Rod and hands out isolated player tabs.
package browser

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserConfig configures Chrome launch options.
type BrowserConfig struct {
	Headless bool          // Run in headless mode (default: true)
	Timeout  time.Duration // Default operation timeout (default: 30s)
	Bin      string        // Chrome binary; empty lets Rod find or download one
	Logger   *log.Logger   // Receives forwarded page console output
}

// DefaultBrowserConfig returns sensible defaults for E2E testing.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless: true,
		Timeout:  30 * time.Second,
	}
}

// BrowserClient wraps one Rod-controlled Chrome process.
type BrowserClient struct {
	browser *rod.Browser
	timeout time.Duration
	logger  *log.Logger
}

// NewBrowserClient launches Chrome and connects to it.
// The browser is configured with:
//   - No sandbox (for container compatibility)
//   - File URLs allowed to reach each other and the network
//   - Autoplay without user gesture (game sounds)
func NewBrowserClient(cfg BrowserConfig) (*BrowserClient, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("allow-file-access-from-files").
		Set("autoplay-policy", "no-user-gesture-required")
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch Chrome: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to Chrome: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &BrowserClient{
		browser: browser,
		timeout: cfg.Timeout,
		logger:  logger,
	}, nil
}

// NewTab opens a blank page in a fresh incognito context, so tabs share no
// cookies or storage. Console output from the page is forwarded to the
// client's logger as "<role> Console: <text>".
func (c *BrowserClient) NewTab(ctx context.Context, role string) (*Tab, error) {
	incognito, err := c.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create %s context: %w", role, err)
	}

	page, err := incognito.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s page: %w", role, err)
	}

	t := &Tab{role: role, page: page, timeout: c.timeout}
	go page.EachEvent(func(e *proto.RuntimeConsoleAPICalled) {
		c.logger.Printf("%s Console: %s", role, ConsoleText(e.Args))
	})()

	return t, nil
}

// Close cleans up browser resources.
// Always call this (via defer) to prevent orphaned Chrome processes.
func (c *BrowserClient) Close() error {
	if c.browser != nil {
		return c.browser.Close()
	}
	return nil
}
