package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"suggestd/internal/rawinput"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, "ESC", cfg.Capture.ExitKey)
	assert.True(t, cfg.Capture.Mouse)
	assert.Equal(t, "CTRL", cfg.Triggers.Key)
	assert.Equal(t, "left", cfg.Triggers.GenerateSide)
	assert.Equal(t, "right", cfg.Triggers.AcceptSide)
	assert.Equal(t, 10, cfg.Injection.DelayMs)
	assert.Equal(t, 10*time.Millisecond, cfg.Injection.Delay())
	assert.True(t, cfg.EventLog.HashChain)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Triggers.GenerateSide = "right"
	cfg.Triggers.AcceptSide = "left"
	cfg.Injection.DelayMs = 25
	cfg.Generator.Command = "autocomplete"
	cfg.Generator.OutputPath = "/tmp/suggestion.txt"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "right", loaded.Triggers.GenerateSide)
	assert.Equal(t, "left", loaded.Triggers.AcceptSide)
	assert.Equal(t, 25, loaded.Injection.DelayMs)
	assert.Equal(t, "autocomplete", loaded.Generator.Command)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
version: 1
capture:
  exit_key: F12
injection:
  delay_ms: 5
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "F12", cfg.Capture.ExitKey)
	assert.Equal(t, 5, cfg.Injection.DelayMs)
	// Unset sections keep defaults.
	assert.Equal(t, "CTRL", cfg.Triggers.Key)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"version":1,"overlay":{"backend":"none"}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "none", cfg.Overlay.Backend)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
version = 1
[triggers]
key = "A"
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a modifier")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SUGGESTD_EVENT_LOG", "/override/events.jsonl")
	t.Setenv("SUGGESTD_LOG_LEVEL", "debug")
	t.Setenv("SUGGESTD_INJECT_DELAY_MS", "42")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "/override/events.jsonl", cfg.EventLog.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 42, cfg.Injection.DelayMs)
}

func TestEnvOverrideBadNumberIgnored(t *testing.T) {
	t.Setenv("SUGGESTD_INJECT_DELAY_MS", "not-a-number")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 10, cfg.Injection.DelayMs)
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad version", func(c *Config) { c.Version = 99 }, "version"},
		{"unknown exit key", func(c *Config) { c.Capture.ExitKey = "NOPE" }, "capture.exit_key"},
		{"non-modifier trigger", func(c *Config) { c.Triggers.Key = "A" }, "triggers.key"},
		{"bad side", func(c *Config) { c.Triggers.GenerateSide = "middle" }, "triggers.generate_side"},
		{"same sides", func(c *Config) { c.Triggers.AcceptSide = "left" }, "must differ"},
		{"bad overlay", func(c *Config) { c.Overlay.Backend = "hologram" }, "overlay.backend"},
		{"empty event log", func(c *Config) { c.EventLog.Path = "" }, "event_log.path"},
		{"bad storage", func(c *Config) { c.Storage.Type = "oracle" }, "storage.type"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidationCollectsMultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capture.ExitKey = "NOPE"
	cfg.EventLog.Path = ""

	err := cfg.Validate()
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 2)
}

func TestParseSide(t *testing.T) {
	assert.Equal(t, rawinput.SideLeft, ParseSide("left"))
	assert.Equal(t, rawinput.SideRight, ParseSide("right"))
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.EventLog.Path = filepath.Join(dir, "logs", "events.jsonl")
	cfg.Logging.FilePath = filepath.Join(dir, "logs", "suggestd.log")
	cfg.Storage.Path = filepath.Join(dir, "db", "history.db")

	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, filepath.Join(dir, "logs"))
	assert.DirExists(t, filepath.Join(dir, "db"))
}

func TestLoaderReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	cfg.Injection.DelayMs = 10
	require.NoError(t, cfg.Save(path))

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	defer loader.Close()

	var reloaded atomic.Int32
	var gotDelay atomic.Int32
	loader.OnChange(func(updated *Config) {
		gotDelay.Store(int32(updated.Injection.DelayMs))
		reloaded.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, loader.Watch(ctx, func(error) {}))

	cfg.Injection.DelayMs = 30
	require.NoError(t, cfg.Save(path))

	require.Eventually(t, func() bool {
		return reloaded.Load() > 0
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, int32(30), gotDelay.Load())
	assert.Equal(t, 30, loader.Config().Injection.DelayMs)
}

func TestLoaderKeepsConfigOnBadReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := DefaultConfig()
	require.NoError(t, cfg.Save(path))

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	defer loader.Close()

	var failures atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, loader.Watch(ctx, func(error) { failures.Add(1) }))

	require.NoError(t, os.WriteFile(path, []byte("this is not toml = ["), 0o644))

	require.Eventually(t, func() bool {
		return failures.Load() > 0
	}, 3*time.Second, 20*time.Millisecond)

	// The previous configuration survives.
	assert.Equal(t, "ESC", loader.Config().Capture.ExitKey)
}
