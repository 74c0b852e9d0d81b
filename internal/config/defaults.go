package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// PlatformDataDir returns the platform-specific data directory.
//
// Platform paths:
//   - macOS:   ~/Library/Application Support/suggestd/
//   - Linux:   ~/.local/share/suggestd/
//   - Windows: %APPDATA%\suggestd\
//
// Falls back to ~/.suggestd if platform detection fails.
func PlatformDataDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "suggestd")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "suggestd")
		}
		return fallbackDataDir()
	default:
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, "suggestd")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "suggestd")
	}
}

// PlatformConfigPath returns the default configuration file location.
func PlatformConfigPath() string {
	switch runtime.GOOS {
	case "windows", "darwin":
		return filepath.Join(PlatformDataDir(), "config.toml")
	default:
		if cfgHome := os.Getenv("XDG_CONFIG_HOME"); cfgHome != "" {
			return filepath.Join(cfgHome, "suggestd", "config.toml")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "suggestd", "config.toml")
	}
}

func fallbackDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".suggestd")
}

// DefaultConfig returns the default daemon configuration: left Ctrl
// generates, right Ctrl accepts, ESC exits, 10 ms injection delay.
func DefaultConfig() *Config {
	dataDir := PlatformDataDir()
	return &Config{
		Version: Version,
		Capture: CaptureConfig{
			ExitKey: "ESC",
			Mouse:   true,
		},
		Triggers: TriggerConfig{
			Key:          "CTRL",
			GenerateSide: "left",
			AcceptSide:   "right",
		},
		Generator: GeneratorConfig{
			Command:    "",
			OutputPath: filepath.Join(dataDir, "suggestion.txt"),
			TimeoutSec: 60,
		},
		Injection: InjectionConfig{
			DelayMs: 10,
		},
		Overlay: OverlayConfig{
			Backend: "console",
		},
		EventLog: EventLogConfig{
			Path:      filepath.Join(dataDir, "input_events.jsonl"),
			HashChain: true,
		},
		Storage: StorageConfig{
			Type: "sqlite",
			Path: filepath.Join(dataDir, "history.db"),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stderr",
			FilePath: filepath.Join(dataDir, "suggestd.log"),
		},
	}
}
