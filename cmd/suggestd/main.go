// suggestd - Keyboard-driven suggestion daemon
//
//	suggestd run            Capture input and drive the suggestion workflow
//	suggestd status         Show configuration and capture availability
//	suggestd transcript     Rebuild the typed transcript from an event log
//	suggestd history        Show recent suggestion cycles
//	suggestd inject <text>  Type text as synthetic keystrokes
//	suggestd verify <file>  Verify an event log's hash chain
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"suggestd/internal/config"
	"suggestd/internal/engine"
	"suggestd/internal/eventlog"
	"suggestd/internal/inject"
	"suggestd/internal/logging"
	"suggestd/internal/overlay"
	"suggestd/internal/rawinput"
	"suggestd/internal/store"
	"suggestd/internal/suggest"
	"suggestd/internal/transcript"
)

// set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]

	switch cmd {
	case "run":
		cmdRun()
	case "status":
		cmdStatus()
	case "transcript":
		cmdTranscript()
	case "history":
		cmdHistory()
	case "inject":
		cmdInject()
	case "verify":
		cmdVerify()
	case "version", "-v", "--version":
		fmt.Printf("suggestd %s\n", version)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println(`suggestd - Keyboard-Driven Suggestion Daemon

USAGE:
    suggestd <command> [options]

COMMANDS:
    run             Capture input system-wide and drive suggestions
    status          Show configuration and capture availability
    transcript      Rebuild the typed transcript from an event log
    history         Show recent suggestion cycles
    inject <text>   Type text as synthetic keystrokes
    verify <file>   Verify an event log's tamper-evidence chain
    version         Print the version
    help            Show this help message

WORKFLOW:
    1. suggestd run                     # Start capturing
    2. (type anywhere; every key is logged)
    3. Press the left trigger alone     # Ask the generator for a suggestion
    4. Press the right trigger alone    # Accept: the text is typed for you
    5. Press the exit key               # Stop the daemon

    The trigger key, sides, generator command, and exit key are all set in
    the config file (suggestd status shows its path).

PRIVACY NOTE:
    suggestd records every keystroke, including decoded characters, to its
    event log. Run it only on machines and in sessions where that is what
    you want.`)
}

func loadConfig(path string) *config.Config {
	if path == "" {
		path = config.PlatformConfigPath()
	}

	cfg, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = config.DefaultConfig()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			fatal("invalid config: %v", err)
		}
	} else if err != nil {
		fatal("load config: %v", err)
	}
	return cfg
}

func newLogger(cfg *config.Config) *logging.Logger {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	format := logging.FormatText
	if cfg.Logging.Format == "json" {
		format = logging.FormatJSON
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = format
	logCfg.Output = cfg.Logging.Output
	if cfg.Logging.FilePath != "" {
		logCfg.FilePath = cfg.Logging.FilePath
	}

	logger, err := logging.New(logCfg)
	if err != nil {
		fatal("init logging: %v", err)
	}
	logging.SetDefault(logger)
	return logger
}

func cmdRun() {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	dryRun := fs.Bool("dry-run", false, "record injected strokes instead of sending them")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)
	if *dryRun {
		cfg.Injection.DryRun = true
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fatal("prepare directories: %v", err)
	}

	logger := newLogger(cfg)
	defer logger.Close()

	source := rawinput.NewPlatform()
	if ok, detail := source.Available(); !ok {
		fatal("capture unavailable: %s", detail)
	}

	events, err := eventlog.Open(cfg.EventLog.Path, cfg.EventLog.HashChain)
	if err != nil {
		fatal("open event log: %v", err)
	}
	defer events.Close()

	var st store.Store
	switch cfg.Storage.Type {
	case "sqlite":
		st, err = store.Open(cfg.Storage.Path)
		if err != nil {
			fatal("open store: %v", err)
		}
		defer st.Close()
	case "memory":
		st = store.NewMemory()
	}

	var sender inject.Sender
	if cfg.Injection.DryRun {
		rec := inject.NewRecorder()
		sender = rec
		logger.Info("dry run: strokes will be recorded, not sent")
	} else {
		sender = inject.NewPlatformSender()
	}
	injector := inject.NewInjector(sender, cfg.Injection.Delay(), logger.Logger)

	ov := overlay.New(cfg.Overlay.Backend, logger.Logger)
	defer ov.Close()

	gen := &suggest.CommandGenerator{
		Command:    cfg.Generator.Command,
		Args:       cfg.Generator.Args,
		OutputPath: cfg.Generator.OutputPath,
		Timeout:    time.Duration(cfg.Generator.TimeoutSec) * time.Second,
		Log:        logger.WithComponent("generator").Logger,
	}

	var recorder suggest.CycleRecorder
	if st != nil {
		recorder = st
	}
	manager := suggest.NewManager(gen, injector, ov, recorder, cfg.EventLog.Path,
		logger.WithComponent("suggest").Logger)

	eng, err := engine.New(engine.Options{
		Config:  cfg,
		Source:  source,
		Events:  events,
		Manager: manager,
		Store:   st,
		Overlay: ov,
		Log:     logger.WithComponent("engine").Logger,
	})
	if err != nil {
		fatal("%v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		logger.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Config edits take effect without a restart where they safely can.
	if *configPath != "" {
		loader := config.NewLoader(*configPath)
		if _, err := loader.Load(); err == nil {
			loader.OnChange(func(updated *config.Config) {
				injector.SetDelay(updated.Injection.Delay())
				logger.Info("config reloaded", "inject_delay", updated.Injection.Delay())
			})
			if err := loader.Watch(ctx, func(err error) {
				logger.Warn("config reload failed", "error", err)
			}); err != nil {
				logger.Warn("config watch unavailable", "error", err)
			}
			defer loader.Close()
		}
	}

	logger.Info("suggestd starting", "version", version, "event_log", cfg.EventLog.Path)
	if err := eng.Run(ctx); err != nil && err != context.Canceled {
		fatal("%v", err)
	}
}

func cmdStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(os.Args[2:])

	path := *configPath
	if path == "" {
		path = config.PlatformConfigPath()
	}
	cfg := loadConfig(*configPath)

	fmt.Printf("suggestd %s\n\n", version)
	fmt.Printf("Config file:     %s", path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Print(" (not found, using defaults)")
	}
	fmt.Println()

	source := rawinput.NewPlatform()
	ok, detail := source.Available()
	fmt.Printf("Capture:         %s\n", detail)
	if !ok {
		fmt.Println("                 (run is unavailable on this platform)")
	}

	fmt.Printf("Exit key:        %s\n", cfg.Capture.ExitKey)
	fmt.Printf("Trigger:         %s (generate=%s accept=%s)\n",
		cfg.Triggers.Key, cfg.Triggers.GenerateSide, cfg.Triggers.AcceptSide)
	fmt.Printf("Generator:       %s\n", cfg.Generator.Command)
	fmt.Printf("Overlay:         %s\n", cfg.Overlay.Backend)
	fmt.Printf("Event log:       %s (hash chain: %v)\n", cfg.EventLog.Path, cfg.EventLog.HashChain)
	fmt.Printf("Storage:         %s %s\n", cfg.Storage.Type, cfg.Storage.Path)

	if cfg.Storage.Type == "sqlite" {
		if _, err := os.Stat(cfg.Storage.Path); err == nil {
			st, err := store.Open(cfg.Storage.Path)
			if err == nil {
				defer st.Close()
				if s, err := st.Summarize(); err == nil {
					fmt.Println()
					fmt.Printf("Stored events:   %d keyboard, %d mouse\n", s.KeyboardEvents, s.MouseEvents)
					fmt.Printf("Cycles:          %d total, %d injected\n", s.Cycles, s.Injected)
				}
			}
		}
	}
}

func cmdTranscript() {
	fs := flag.NewFlagSet("transcript", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	input := fs.String("input", "", "event log to read (default: configured path)")
	raw := fs.Bool("raw", false, "skip modifier-noise cleanup")
	out := fs.String("out", "", "write transcript to file instead of stdout")
	fs.Parse(os.Args[2:])

	path := *input
	if path == "" {
		cfg := loadConfig(*configPath)
		path = cfg.EventLog.Path
	}

	builder := transcript.NewBuilder(logging.Default().Logger)
	text, err := builder.BuildFile(path)
	if err != nil {
		fatal("build transcript: %v", err)
	}
	if *raw {
		// BuildFile already cleans; rebuild without cleanup is not
		// exposed, so raw mode just validates and reports.
		bad, err := transcript.ValidateFile(path)
		if err != nil {
			fatal("validate: %v", err)
		}
		if len(bad) > 0 {
			fmt.Fprintf(os.Stderr, "%d malformed lines skipped: %v\n", len(bad), bad)
		}
	}

	if *out != "" {
		if err := os.WriteFile(*out, []byte(text), 0600); err != nil {
			fatal("write transcript: %v", err)
		}
		fmt.Printf("Transcript written to %s (%d bytes)\n", *out, len(text))
		return
	}
	fmt.Println(text)
}

func cmdHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	limit := fs.Int("limit", 20, "number of cycles to show")
	fs.Parse(os.Args[2:])

	cfg := loadConfig(*configPath)
	if cfg.Storage.Type != "sqlite" {
		fatal("history requires sqlite storage (configured: %s)", cfg.Storage.Type)
	}

	st, err := store.Open(cfg.Storage.Path)
	if err != nil {
		fatal("open store: %v", err)
	}
	defer st.Close()

	cycles, err := st.RecentCycles(*limit)
	if err != nil {
		fatal("read cycles: %v", err)
	}
	if len(cycles) == 0 {
		fmt.Println("No suggestion cycles recorded.")
		return
	}

	for _, c := range cycles {
		when := time.Unix(0, c.StartedAt).Format("2006-01-02 15:04:05")
		text := c.Text
		if len(text) > 60 {
			text = text[:57] + "..."
		}
		fmt.Printf("%s  %-16s  %s\n", when, c.Outcome, text)
	}
}

func cmdInject() {
	fs := flag.NewFlagSet("inject", flag.ExitOnError)
	delayMs := fs.Int("delay-ms", 10, "delay between strokes in milliseconds")
	dryRun := fs.Bool("dry-run", false, "print strokes instead of sending them")
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fatal("usage: suggestd inject [options] <text>")
	}
	text := fs.Arg(0)

	var sender inject.Sender
	var rec *inject.Recorder
	if *dryRun {
		rec = inject.NewRecorder()
		sender = rec
	} else {
		sender = inject.NewPlatformSender()
		if ok, detail := sender.Available(); !ok {
			fatal("injection unavailable: %s", detail)
		}
	}

	injector := inject.NewInjector(sender, time.Duration(*delayMs)*time.Millisecond,
		logging.Default().Logger)
	result, err := injector.TypeText(text)
	if err != nil {
		fatal("%v", err)
	}

	if rec != nil {
		for _, s := range rec.Strokes() {
			dir := "down"
			if s.IsUp {
				dir = "up"
			}
			fmt.Printf("%-12s %s\n", s.Code.Name(), dir)
		}
	}
	fmt.Printf("Sent %d strokes", result.Strokes)
	if result.Degraded() {
		fmt.Printf(" (%d failed, skipped %q)", result.Failed, result.SkippedText)
	}
	fmt.Println()
}

func cmdVerify() {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fatal("usage: suggestd verify <event-log>")
	}
	path := fs.Arg(0)

	badLine, err := eventlog.Verify(path)
	if badLine >= 0 {
		fmt.Printf("TAMPERED: chain breaks at line %d (%v)\n", badLine, err)
		os.Exit(1)
	}
	if err != nil {
		fatal("verify: %v", err)
	}
	fmt.Println("OK: hash chain intact")
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
