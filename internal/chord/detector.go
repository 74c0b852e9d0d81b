// Package chord classifies modifier key press/release cycles as solo or
// combined.
//
// A solo press is a modifier that goes down and comes back up with no other
// key-down in between; only solo presses fire handlers. Combination detection
// needs no timers: any non-modifier key-down latches a flag on every modifier
// currently held, and the flag is examined and cleared when the modifier is
// released. O(1) per event, no expiry bookkeeping.
package chord

import (
	"log/slog"

	"suggestd/internal/rawinput"
)

// Press describes one completed solo press cycle, handed to the handler.
type Press struct {
	Key        rawinput.Key
	Side       rawinput.Side
	PressedAt  uint64
	ReleasedAt uint64
	PressPos   rawinput.Point
	ReleasePos rawinput.Point
}

// Duration returns the press duration in microseconds.
func (p Press) Duration() uint64 { return p.ReleasedAt - p.PressedAt }

// Handler is invoked on the event-processing goroutine when a monitored
// modifier completes a solo press cycle.
type Handler func(Press)

// handlerKey dispatches on the logical identity of the key: the raw code plus
// the physical side. Left and right variants of one raw code get distinct
// handlers even though they share press state.
type handlerKey struct {
	code rawinput.Key
	side rawinput.Side
}

// keyState is the press state for one monitored raw code. The invariant
// hadInterveningKeys ⇒ isPressed holds between events; both reset on key-up.
//
// Left and right variants that share a raw code also share this state. A
// simultaneous press of both sides therefore aliases; upstream behavior for
// that input is undefined and the detector makes no attempt to repair it
// (see the package tests for the observed outcome).
type keyState struct {
	isPressed          bool
	hadInterveningKeys bool
	pressTimestamp     uint64
	pressPosition      rawinput.Point
}

// Detector tracks the monitored modifier set. All methods must be called
// from the single event-processing goroutine.
type Detector struct {
	states   map[rawinput.Key]*keyState
	handlers map[handlerKey]Handler
	order    []rawinput.Key
	log      *slog.Logger
}

// NewDetector creates a detector monitoring the classic modifiers
// (Ctrl, Shift, Alt).
func NewDetector(log *slog.Logger) *Detector {
	d := &Detector{
		states:   make(map[rawinput.Key]*keyState),
		handlers: make(map[handlerKey]Handler),
		log:      log,
	}
	d.Monitor(rawinput.KeyControl)
	d.Monitor(rawinput.KeyShift)
	d.Monitor(rawinput.KeyAlt)
	return d
}

// Monitor adds a key to the monitored set at runtime. Monitoring a key that
// is already monitored is a no-op.
func (d *Detector) Monitor(code rawinput.Key) {
	if _, ok := d.states[code]; ok {
		return
	}
	d.states[code] = &keyState{}
	d.order = append(d.order, code)
}

// Monitored returns the monitored keys in registration order.
func (d *Detector) Monitored() []rawinput.Key {
	keys := make([]rawinput.Key, len(d.order))
	copy(keys, d.order)
	return keys
}

// OnSoloPress registers the handler fired when code's side variant completes
// a solo press. A second registration for the same (code, side) replaces the
// first.
func (d *Detector) OnSoloPress(code rawinput.Key, side rawinput.Side, h Handler) {
	d.Monitor(code)
	d.handlers[handlerKey{code: code, side: side}] = h
}

// HandleModifier processes a key transition for a possibly-monitored key.
// It returns true when the key is monitored (and therefore consumed here),
// false when the caller should treat it as a regular key.
func (d *Detector) HandleModifier(code rawinput.Key, side rawinput.Side, isUp bool, ts uint64, pos rawinput.Point) bool {
	state, ok := d.states[code]
	if !ok {
		return false
	}

	if !isUp {
		// A second down without an intervening up (auto-repeat, or the
		// shared-state alias) is treated as a fresh press.
		state.isPressed = true
		state.hadInterveningKeys = false
		state.pressTimestamp = ts
		state.pressPosition = pos
		return true
	}

	switch {
	case state.isPressed && !state.hadInterveningKeys:
		press := Press{
			Key:        code,
			Side:       side,
			PressedAt:  state.pressTimestamp,
			ReleasedAt: ts,
			PressPos:   state.pressPosition,
			ReleasePos: pos,
		}
		if h, ok := d.handlers[handlerKey{code: code, side: side}]; ok && h != nil {
			d.log.Debug("solo modifier press",
				"key", code.Name(), "side", side.String(),
				"duration_us", press.Duration())
			h(press)
		} else {
			d.log.Debug("solo modifier press with no handler",
				"key", code.Name(), "side", side.String())
		}
	case state.isPressed && state.hadInterveningKeys:
		d.log.Debug("modifier was part of a combination, handler suppressed",
			"key", code.Name(), "side", side.String())
	}

	state.isPressed = false
	state.hadInterveningKeys = false
	return true
}

// NoteKeyDown must be called for every non-modifier key-down. It marks every
// currently-held monitored modifier as combined. This temporal overlap is the
// only way combinations are detected; no event ever reports "Ctrl+A".
func (d *Detector) NoteKeyDown(code rawinput.Key) {
	for _, mod := range d.order {
		state := d.states[mod]
		if state.isPressed && !state.hadInterveningKeys {
			state.hadInterveningKeys = true
			d.log.Debug("combination detected", "modifier", mod.Name(), "key", code.Name())
		}
	}
}

// IsPressed reports whether a monitored key is currently held. Used by the
// shutdown summary and by tests asserting internal invariants.
func (d *Detector) IsPressed(code rawinput.Key) bool {
	state, ok := d.states[code]
	return ok && state.isPressed
}

// HadInterveningKeys reports the combination latch for a held key.
func (d *Detector) HadInterveningKeys(code rawinput.Key) bool {
	state, ok := d.states[code]
	return ok && state.hadInterveningKeys
}
