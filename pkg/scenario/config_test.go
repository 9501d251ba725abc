package scenario

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, strings.HasPrefix(cfg.GameURL, "file://"))
	assert.True(t, strings.HasSuffix(cfg.GameURL, "/snake.html"))
	assert.Equal(t, "verification", cfg.OutputDir)
	assert.Equal(t, 5*time.Second, cfg.GuestTimeout)
	assert.Equal(t, 2*time.Second, cfg.TurnSettle)
	assert.Equal(t, 3*time.Second, cfg.RollSettle)
	assert.False(t, cfg.Strict)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty url", func(c *Config) { c.GameURL = "" }},
		{"empty output", func(c *Config) { c.OutputDir = "" }},
		{"zero guest timeout", func(c *Config) { c.GuestTimeout = 0 }},
		{"negative roll settle", func(c *Config) { c.RollSettle = -time.Second }},
		{"zero quiet", func(c *Config) { c.Quiet = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGameURL(t *testing.T) {
	dir := t.TempDir()
	u, err := GameURL(filepath.Join(dir, "snake.html"))
	require.NoError(t, err)
	assert.Equal(t, "file://"+filepath.ToSlash(filepath.Join(dir, "snake.html")), u)
}

func TestVerdict(t *testing.T) {
	assert.True(t, IsLocked("WAITING..."))
	assert.True(t, IsLocked("⏳ WAITING FOR HOST"))
	assert.False(t, IsLocked("Waiting"))
	assert.False(t, IsLocked(""))

	assert.Equal(t, "P2 controls correctly locked", (&Report{Locked: true}).Verdict())
	assert.Equal(t, "FAIL: P2 controls not locked", (&Report{}).Verdict())
}
