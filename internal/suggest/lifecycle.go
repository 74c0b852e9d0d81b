// Package suggest owns the suggestion lifecycle: generation on one trigger,
// acceptance and replay on the other.
//
// Exactly one suggestion exists at a time. The state machine is
//
//	Idle → Generating → Pending → Idle   (accept or cancel)
//	       Generating → Idle             (failure or empty result)
//
// Generation is a synchronous call into an external process; while it runs,
// no further input events are processed. That is a deliberate trade-off, not
// a defect: concurrent generation requests are meaningless when only one
// suggestion may be outstanding.
package suggest

import (
	"context"
	"log/slog"

	"suggestd/internal/inject"
)

// State is the lifecycle state of the suggestion slot.
type State int

const (
	StateIdle State = iota
	StateGenerating
	StatePending
	StateConsumed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StatePending:
		return "pending"
	case StateConsumed:
		return "consumed"
	default:
		return "idle"
	}
}

// Generator produces a completion from the transcript file. An empty string
// with a nil error means the generator ran but had nothing to suggest.
type Generator interface {
	Generate(ctx context.Context, transcriptPath string) (string, error)
}

// Injector replays accepted suggestion text as synthetic keystrokes.
type Injector interface {
	TypeText(text string) (inject.Result, error)
}

// Overlay displays the pending suggestion. Calls are fire-and-forget; the
// manager never consults a return value.
type Overlay interface {
	Show(text string)
	Hide()
}

// CycleRecorder persists completed suggestion cycles. Optional.
type CycleRecorder interface {
	RecordCycle(transcriptPath, text, outcome string) error
}

// Manager drives the lifecycle. All methods run on the engine goroutine; the
// single suggestion slot needs no locking until capture and generation are
// ever parallelized.
type Manager struct {
	state   State
	text    string
	logPath string

	gen      Generator
	injector Injector
	overlay  Overlay
	recorder CycleRecorder
	log      *slog.Logger
}

// NewManager creates a lifecycle manager. recorder may be nil.
func NewManager(gen Generator, injector Injector, overlay Overlay, recorder CycleRecorder, logPath string, log *slog.Logger) *Manager {
	return &Manager{
		state:    StateIdle,
		gen:      gen,
		injector: injector,
		overlay:  overlay,
		recorder: recorder,
		logPath:  logPath,
		log:      log,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State { return m.state }

// Pending returns the pending suggestion text, empty unless StatePending.
func (m *Manager) Pending() string {
	if m.state != StatePending {
		return ""
	}
	return m.text
}

// RequestGeneration runs the external generator against the current
// transcript. Any pending suggestion is discarded first, regardless of the
// new request's outcome. Blocks until the generator completes; the first
// completion is authoritative, there is no cancellation of an in-flight call
// beyond ctx's own deadline.
func (m *Manager) RequestGeneration(ctx context.Context) {
	if m.state == StatePending {
		m.log.Info("discarding pending suggestion for new generation", "text", m.text)
		m.record("discarded")
		m.clear()
	}

	m.state = StateGenerating
	m.log.Info("requesting suggestion from generator", "transcript", m.logPath)

	text, err := m.gen.Generate(ctx, m.logPath)
	if err != nil {
		m.log.Error("generator failed, no suggestion", "error", err)
		m.clear()
		return
	}
	if text == "" {
		m.log.Info("generator returned no suggestion")
		m.clear()
		return
	}

	m.text = text
	m.state = StatePending
	m.overlay.Show(text)
	m.log.Info("suggestion ready", "text", text, "chars", len(text))
}

// AcceptPending injects the pending suggestion. When nothing is pending this
// is a no-op: the slot is not mutated and injection is never invoked.
func (m *Manager) AcceptPending() {
	if m.state != StatePending {
		m.log.Info("nothing to accept", "state", m.state.String())
		return
	}

	text := m.text
	m.log.Info("accepting suggestion", "text", text)

	result, err := m.injector.TypeText(text)
	switch {
	case err != nil && result.Strokes == 0:
		m.log.Error("injection failed", "error", err)
		m.record("inject_failed")
	case result.Degraded():
		m.log.Warn("suggestion injected partially",
			"strokes", result.Strokes, "failed", result.Failed,
			"skipped_chars", len(result.SkippedText))
		m.record("injected_partial")
	default:
		m.log.Info("suggestion injected", "chars", len(text))
		m.record("injected")
	}

	m.state = StateConsumed
	m.clear()
	m.overlay.Hide()
}

// Cancel discards a pending suggestion without injecting it.
func (m *Manager) Cancel() {
	if m.state != StatePending {
		return
	}
	m.log.Info("suggestion cancelled", "text", m.text)
	m.record("cancelled")
	m.clear()
	m.overlay.Hide()
}

func (m *Manager) clear() {
	m.text = ""
	m.state = StateIdle
}

func (m *Manager) record(outcome string) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordCycle(m.logPath, m.text, outcome); err != nil {
		m.log.Warn("could not record suggestion cycle", "error", err)
	}
}
