// Package rawinput defines the hardware input event model and the platform
// capture sources that produce it.
//
// Events carry Windows virtual-key codes because that is the vocabulary of
// the Raw Input API the daemon captures from and the SendInput API it injects
// through. The decoding and injection packages share the same vocabulary so
// the two directions stay structural mirrors of each other.
//
// Platform support:
//   - Windows: Raw Input API via a hidden message-only window (RIDEV_INPUTSINK)
//   - other platforms: capture is not available; the Simulated source still
//     works everywhere and backs the test suites and replay mode
package rawinput

import (
	"context"
	"errors"
	"fmt"
)

// EventType distinguishes keyboard from mouse events.
type EventType int

const (
	EventKeyboard EventType = iota
	EventMouse
)

// Side identifies the physical side of a dual-sided key (left/right Ctrl,
// Shift, Alt) that shares one virtual-key code. The Raw Input extended-key
// flag is folded into this tagged value at capture time so nothing downstream
// branches on raw flags.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// MouseButton identifies a mouse button.
type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
)

// String returns the lowercase button name used in the event log.
func (b MouseButton) String() string {
	switch b {
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	default:
		return "left"
	}
}

// Point is a cursor position in screen coordinates.
type Point struct {
	X int32
	Y int32
}

// KeyboardData is the keyboard half of an Event.
type KeyboardData struct {
	Code Key
	Side Side
	IsUp bool
}

// MouseData is the mouse half of an Event.
type MouseData struct {
	Button MouseButton
	IsUp   bool
}

// Event is one hardware input event. Timestamps are microseconds on a
// monotonic clock that starts at zero when capture begins, matching the
// transcript format consumed by the generator. An Event is immutable once
// produced by a Source.
type Event struct {
	Timestamp uint64
	Cursor    Point
	Type      EventType
	Keyboard  KeyboardData
	Mouse     MouseData
}

// KeyEvent builds a keyboard event.
func KeyEvent(ts uint64, cursor Point, code Key, side Side, isUp bool) Event {
	return Event{
		Timestamp: ts,
		Cursor:    cursor,
		Type:      EventKeyboard,
		Keyboard:  KeyboardData{Code: code, Side: side, IsUp: isUp},
	}
}

// MouseEvent builds a mouse button event.
func MouseEvent(ts uint64, cursor Point, button MouseButton, isUp bool) Event {
	return Event{
		Timestamp: ts,
		Cursor:    cursor,
		Type:      EventMouse,
		Mouse:     MouseData{Button: button, IsUp: isUp},
	}
}

// String renders the event for debug logs.
func (e Event) String() string {
	switch e.Type {
	case EventMouse:
		dir := "down"
		if e.Mouse.IsUp {
			dir = "up"
		}
		return fmt.Sprintf("[%10dus] mouse %s%s cursor=(%d,%d)",
			e.Timestamp, e.Mouse.Button, dir, e.Cursor.X, e.Cursor.Y)
	default:
		dir := "down"
		if e.Keyboard.IsUp {
			dir = "up"
		}
		return fmt.Sprintf("[%10dus] key %s %s cursor=(%d,%d)",
			e.Timestamp, e.Keyboard.Code.Name(), dir, e.Cursor.X, e.Cursor.Y)
	}
}

// Source delivers hardware events in order. Implementations must deliver all
// events on the channel returned by Events; the engine consumes them on a
// single goroutine.
type Source interface {
	// Start begins capture. The returned channel is closed when capture
	// stops, either via Stop or because ctx was cancelled.
	Start(ctx context.Context) (<-chan Event, error)

	// Stop ends capture and releases platform resources.
	Stop() error

	// Available reports whether capture works on this platform, with a
	// human-readable reason when it does not.
	Available() (bool, string)
}

// ErrNotAvailable is returned when hardware capture isn't supported on this
// platform.
var ErrNotAvailable = errors.New("raw input capture not available on this platform")

// ErrAlreadyRunning is returned when Start is called on a running source.
var ErrAlreadyRunning = errors.New("capture source already running")
