// Package engine wires capture, decoding, chord detection, and the
// suggestion lifecycle into the daemon's event loop. All input events are
// processed on a single goroutine; generation blocks that goroutine the same
// way the hook thread blocks in comparable tools, so no state here needs
// locking.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"suggestd/internal/chord"
	"suggestd/internal/config"
	"suggestd/internal/eventlog"
	"suggestd/internal/keymap"
	"suggestd/internal/rawinput"
	"suggestd/internal/store"
	"suggestd/internal/suggest"
)

// Overlay is the subset of the overlay the engine touches directly. The
// lifecycle manager owns Show; the engine only hides the banner when typing
// resumes past a pending suggestion.
type Overlay interface {
	Hide()
}

// Options collects the engine's dependencies. Store may be nil when history
// persistence is disabled.
type Options struct {
	Config  *config.Config
	Source  rawinput.Source
	Events  *eventlog.Writer
	Manager *suggest.Manager
	Store   store.Store
	Overlay Overlay
	Log     *slog.Logger
}

// Summary reports what a capture session saw.
type Summary struct {
	KeyboardEvents int64
	MouseEvents    int64
	DroppedWrites  int64
}

// Engine is the daemon core.
type Engine struct {
	cfg     *config.Config
	source  rawinput.Source
	events  *eventlog.Writer
	manager *suggest.Manager
	store   store.Store
	overlay Overlay
	log     *slog.Logger

	decoder *keymap.Decoder
	chords  *chord.Detector

	exitKey    rawinput.Key
	triggerKey rawinput.Key
	genSide    rawinput.Side

	runCtx  context.Context
	stopped bool
	summary Summary
}

// New builds an engine from validated configuration. The decoder seeds its
// CapsLock state from the OS so the first decoded letter is already correct.
func New(opts Options) (*Engine, error) {
	if opts.Config == nil {
		return nil, errors.New("engine: config is required")
	}
	if opts.Source == nil || opts.Events == nil || opts.Manager == nil {
		return nil, errors.New("engine: source, event log, and manager are required")
	}
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.Overlay == nil {
		opts.Overlay = nopOverlay{}
	}

	exitKey, ok := rawinput.ParseKey(opts.Config.Capture.ExitKey)
	if !ok {
		return nil, fmt.Errorf("engine: unknown exit key %q", opts.Config.Capture.ExitKey)
	}
	triggerKey, ok := rawinput.ParseKey(opts.Config.Triggers.Key)
	if !ok {
		return nil, fmt.Errorf("engine: unknown trigger key %q", opts.Config.Triggers.Key)
	}

	e := &Engine{
		cfg:        opts.Config,
		source:     opts.Source,
		events:     opts.Events,
		manager:    opts.Manager,
		store:      opts.Store,
		overlay:    opts.Overlay,
		log:        log,
		decoder:    keymap.NewDecoder(rawinput.CapsLockOn()),
		chords:     chord.NewDetector(log),
		exitKey:    exitKey,
		triggerKey: triggerKey,
	}

	e.chords.Monitor(triggerKey)
	for _, name := range opts.Config.Triggers.ExtraModifiers {
		if code, ok := rawinput.ParseKey(name); ok {
			e.chords.Monitor(code)
		}
	}

	genSide := config.ParseSide(opts.Config.Triggers.GenerateSide)
	accSide := config.ParseSide(opts.Config.Triggers.AcceptSide)
	e.genSide = genSide

	e.chords.OnSoloPress(triggerKey, genSide, func(p chord.Press) {
		e.log.Info("generation trigger",
			"key", p.Key.Name(), "side", p.Side.String(), "duration_us", p.Duration())
		e.manager.RequestGeneration(e.runCtx)
	})
	e.chords.OnSoloPress(triggerKey, accSide, func(p chord.Press) {
		e.log.Info("accept trigger",
			"key", p.Key.Name(), "side", p.Side.String(), "duration_us", p.Duration())
		e.manager.AcceptPending()
	})

	return e, nil
}

// Run starts capture and processes events until the exit key is pressed, the
// context is cancelled, or the source closes its channel. The event log is
// flushed per line; Run does not close it.
func (e *Engine) Run(ctx context.Context) error {
	events, err := e.source.Start(ctx)
	if err != nil {
		return fmt.Errorf("engine: start capture: %w", err)
	}
	defer e.source.Stop()

	e.runCtx = ctx
	e.stopped = false

	e.log.Info("capture started",
		"exit_key", e.exitKey.Name(),
		"trigger_key", e.triggerKey.Name(),
		"mouse", e.cfg.Capture.Mouse)

	for !e.stopped {
		select {
		case <-ctx.Done():
			e.manager.Cancel()
			e.logSummary("context cancelled")
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				e.logSummary("source closed")
				return nil
			}
			e.handle(ev)
		}
	}

	e.manager.Cancel()
	e.logSummary("exit key")
	return nil
}

// Summary returns the session counters. Valid after Run returns.
func (e *Engine) Summary() Summary { return e.summary }

func (e *Engine) handle(ev rawinput.Event) {
	switch ev.Type {
	case rawinput.EventKeyboard:
		e.handleKeyboard(ev)
	case rawinput.EventMouse:
		e.handleMouse(ev)
	}
}

func (e *Engine) handleKeyboard(ev rawinput.Event) {
	kb := ev.Keyboard
	e.summary.KeyboardEvents++

	// The decoder ignores everything but Shift and CapsLock; CapsLock is
	// not necessarily a monitored chord key, so this runs before the split.
	e.decoder.UpdateModifiers(kb.Code, kb.IsUp)

	monitored := e.chords.HandleModifier(kb.Code, kb.Side, kb.IsUp, ev.Timestamp, ev.Cursor)
	if !kb.IsUp {
		if !monitored {
			e.chords.NoteKeyDown(kb.Code)
		}
		// Any key-down other than the generation trigger clears the banner
		// but leaves the suggestion acceptable until the next generation
		// request. Modifiers count; only the generation side is exempt so
		// holding it never flickers its own display.
		if (kb.Code != e.triggerKey || kb.Side != e.genSide) &&
			e.manager.State() == suggest.StatePending {
			e.overlay.Hide()
		}
	}

	var charPtr *string
	var char string
	if !kb.IsUp {
		if r, ok := e.decoder.Decode(kb.Code); ok {
			char = string(r)
			charPtr = &char
		}
	}

	if err := e.events.Keyboard(ev.Timestamp, kb.Code.Name(), charPtr, kb.IsUp); err != nil {
		e.noteWriteError("keyboard", err)
	}

	if e.store != nil {
		action := "keydown"
		if kb.IsUp {
			action = "keyup"
		}
		row := &store.KeyEventRow{
			TimestampUs: ev.Timestamp,
			Key:         kb.Code.Name(),
			Char:        char,
			Action:      action,
			CursorX:     ev.Cursor.X,
			CursorY:     ev.Cursor.Y,
		}
		if err := e.store.InsertKeyEvent(row); err != nil {
			e.noteWriteError("store keyboard", err)
		}
	}

	if kb.Code == e.exitKey && !kb.IsUp {
		e.stopped = true
	}
}

func (e *Engine) handleMouse(ev rawinput.Event) {
	if !e.cfg.Capture.Mouse {
		return
	}
	e.summary.MouseEvents++

	button := ev.Mouse.Button.String()
	if err := e.events.Mouse(ev.Timestamp, button, ev.Mouse.IsUp, ev.Cursor.X, ev.Cursor.Y); err != nil {
		e.noteWriteError("mouse", err)
	}

	if e.store != nil {
		action := button + "down"
		if ev.Mouse.IsUp {
			action = button + "up"
		}
		row := &store.MouseEventRow{
			TimestampUs: ev.Timestamp,
			Action:      action,
			CursorX:     ev.Cursor.X,
			CursorY:     ev.Cursor.Y,
		}
		if err := e.store.InsertMouseEvent(row); err != nil {
			e.noteWriteError("store mouse", err)
		}
	}
}

// noteWriteError logs write failures without stopping capture. A full disk
// should degrade the log, not kill the daemon mid-session.
func (e *Engine) noteWriteError(kind string, err error) {
	e.summary.DroppedWrites++
	e.log.Warn("event write failed", "kind", kind, "error", err)
}

func (e *Engine) logSummary(reason string) {
	e.log.Info("capture stopped",
		"reason", reason,
		"keyboard_events", e.summary.KeyboardEvents,
		"mouse_events", e.summary.MouseEvents,
		"dropped_writes", e.summary.DroppedWrites)

	if e.store != nil {
		if s, err := e.store.Summarize(); err == nil {
			e.log.Info("session summary",
				"stored_keyboard", s.KeyboardEvents,
				"stored_mouse", s.MouseEvents,
				"cycles", s.Cycles,
				"injected", s.Injected)
		}
	}
}

type nopOverlay struct{}

func (nopOverlay) Hide() {}
