// Package config handles configuration loading, validation, and hot reload
// for suggestd.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete daemon configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Capture configuration for the raw input source.
	Capture CaptureConfig `toml:"capture" json:"capture" yaml:"capture"`

	// Triggers configuration for the suggestion workflow keys.
	Triggers TriggerConfig `toml:"triggers" json:"triggers" yaml:"triggers"`

	// Generator configuration for the external suggestion process.
	Generator GeneratorConfig `toml:"generator" json:"generator" yaml:"generator"`

	// Injection configuration for synthetic keystrokes.
	Injection InjectionConfig `toml:"injection" json:"injection" yaml:"injection"`

	// Overlay configuration for suggestion display.
	Overlay OverlayConfig `toml:"overlay" json:"overlay" yaml:"overlay"`

	// EventLog configuration for the transcript.
	EventLog EventLogConfig `toml:"event_log" json:"event_log" yaml:"event_log"`

	// Storage configuration for event history persistence.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// CaptureConfig holds raw input capture configuration.
type CaptureConfig struct {
	// ExitKey stops the daemon when pressed. Symbolic key name.
	ExitKey string `toml:"exit_key" json:"exit_key" yaml:"exit_key"`

	// Mouse enables mouse button capture alongside the keyboard.
	Mouse bool `toml:"mouse" json:"mouse" yaml:"mouse"`
}

// TriggerConfig holds the dual-sided trigger key configuration. The trigger
// key's left and right variants drive the two-phase suggestion workflow.
type TriggerConfig struct {
	// Key is the dual-sided trigger key. Symbolic name, default CTRL.
	Key string `toml:"key" json:"key" yaml:"key"`

	// GenerateSide is the side that requests generation: "left" or "right".
	GenerateSide string `toml:"generate_side" json:"generate_side" yaml:"generate_side"`

	// AcceptSide is the side that accepts the pending suggestion.
	AcceptSide string `toml:"accept_side" json:"accept_side" yaml:"accept_side"`

	// ExtraModifiers are additional keys to monitor for solo presses.
	ExtraModifiers []string `toml:"extra_modifiers" json:"extra_modifiers" yaml:"extra_modifiers"`
}

// GeneratorConfig holds the external generator invocation contract.
type GeneratorConfig struct {
	// Command is the executable to run. The transcript path replaces the
	// "{transcript}" placeholder in Args, or is appended when absent.
	Command string `toml:"command" json:"command" yaml:"command"`

	// Args are the command arguments.
	Args []string `toml:"args" json:"args" yaml:"args"`

	// OutputPath is the file whose first line is the completion.
	OutputPath string `toml:"output_path" json:"output_path" yaml:"output_path"`

	// TimeoutSec bounds the synchronous generator call. 0 means no bound.
	TimeoutSec int `toml:"timeout_sec" json:"timeout_sec" yaml:"timeout_sec"`
}

// InjectionConfig holds synthetic keystroke configuration.
type InjectionConfig struct {
	// DelayMs is the uniform delay between synthetic key transitions.
	DelayMs int `toml:"delay_ms" json:"delay_ms" yaml:"delay_ms"`

	// DryRun records strokes instead of sending them to the OS.
	DryRun bool `toml:"dry_run" json:"dry_run" yaml:"dry_run"`
}

// Delay returns the injection delay as a duration.
func (c InjectionConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// OverlayConfig holds suggestion display configuration.
type OverlayConfig struct {
	// Backend selects the overlay: "console", "notify", "window", "none".
	Backend string `toml:"backend" json:"backend" yaml:"backend"`
}

// EventLogConfig holds transcript configuration.
type EventLogConfig struct {
	// Path is the JSONL transcript file.
	Path string `toml:"path" json:"path" yaml:"path"`

	// HashChain maintains a blake2b chain sidecar for tamper evidence.
	HashChain bool `toml:"hash_chain" json:"hash_chain" yaml:"hash_chain"`
}

// StorageConfig holds event history persistence configuration.
type StorageConfig struct {
	// Type is the storage backend: "sqlite" or "memory".
	Type string `toml:"type" json:"type" yaml:"type"`

	// Path is the SQLite database file (for sqlite).
	Path string `toml:"path" json:"path" yaml:"path"`
}

// LoggingConfig holds daemon logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is "stdout", "stderr", "file", or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file when Output includes "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// Load reads, validates, and env-overrides the configuration at path. The
// format is chosen by extension: .toml (default), .json, .yaml/.yml.
func Load(path string) (*Config, error) {
	cfg, err := loadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration as TOML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}

// ApplyEnvOverrides applies environment variable overrides. Variables are
// prefixed with SUGGESTD_.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("SUGGESTD_EVENT_LOG"); v != "" {
		c.EventLog.Path = v
	}
	if v := os.Getenv("SUGGESTD_GENERATOR_COMMAND"); v != "" {
		c.Generator.Command = v
	}
	if v := os.Getenv("SUGGESTD_GENERATOR_OUTPUT"); v != "" {
		c.Generator.OutputPath = v
	}
	if v := os.Getenv("SUGGESTD_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv("SUGGESTD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SUGGESTD_INJECT_DELAY_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			c.Injection.DelayMs = ms
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// EnsureDirectories creates the directories the daemon writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.EventLog.Path),
		filepath.Dir(c.Logging.FilePath),
	}
	if c.Storage.Type == "sqlite" {
		dirs = append(dirs, filepath.Dir(c.Storage.Path))
	}
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
