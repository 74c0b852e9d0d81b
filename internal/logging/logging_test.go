package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"ERROR", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got, tt.input)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelString(LevelDebug))
	assert.Equal(t, "info", LevelString(LevelInfo))
	assert.Equal(t, "warn", LevelString(LevelWarn))
	assert.Equal(t, "error", LevelString(LevelError))
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(&Config{
		Level:     LevelInfo,
		Format:    FormatJSON,
		Output:    "stderr",
		Component: "test",
	})
	require.NoError(t, err)

	// Swap the handler to a captured writer for inspection.
	l.Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: LevelInfo}))
	l.Info("hello", "count", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, float64(3), entry["count"])
}

func TestRedactsTypedContent(t *testing.T) {
	var buf bytes.Buffer

	cfg := &Config{
		Level:  LevelInfo,
		Format: FormatText,
		Output: "stderr",
	}
	l, err := New(cfg)
	require.NoError(t, err)

	redact := cfg.Level > LevelDebug
	opts := &slog.HandlerOptions{
		Level: cfg.Level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if redact && shouldRedact(a.Key) {
				a.Value = slog.StringValue("[REDACTED]")
			}
			return a
		},
	}
	l.Logger = slog.New(slog.NewTextHandler(&buf, opts))

	l.Info("decoded", "char", "a", "code", 65)

	out := buf.String()
	assert.Contains(t, out, "[REDACTED]")
	assert.NotContains(t, out, "char=a")
	assert.Contains(t, out, "code=65")
}

func TestShouldRedact(t *testing.T) {
	assert.True(t, shouldRedact("char"))
	assert.True(t, shouldRedact("text"))
	assert.True(t, shouldRedact("transcript"))
	assert.True(t, shouldRedact("suggestion"))
	assert.True(t, shouldRedact("pending_text"))
	assert.False(t, shouldRedact("charset"))
	assert.False(t, shouldRedact("code"))
	assert.False(t, shouldRedact("count"))
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(&Config{Level: LevelDebug, Format: FormatText, Output: "stderr"})
	require.NoError(t, err)
	l.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	l.WithComponent("chord").Info("ready")
	assert.Contains(t, buf.String(), "component=chord")
}

func TestFileOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suggestd.log")

	l, err := New(&Config{
		Level:      LevelInfo,
		Format:     FormatText,
		Output:     "file",
		FilePath:   path,
		MaxSize:    10,
		MaxBackups: 2,
	})
	require.NoError(t, err)

	l.Info("written to file")
	require.NoError(t, l.Sync())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestRotatorRotatesOnSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	r, err := NewFileRotator(&Config{
		FilePath:   path,
		MaxSize:    0, // every write exceeds the limit
		MaxBackups: 5,
	})
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Write([]byte(strings.Repeat("x", 128) + "\n"))
	require.NoError(t, err)
	_, err = r.Write([]byte("second\n"))
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "app-*.log*"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, "stderr", cfg.Output)
	assert.Equal(t, "suggestd", cfg.Component)
	assert.NotEmpty(t, cfg.FilePath)
}
