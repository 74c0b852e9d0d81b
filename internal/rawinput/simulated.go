package rawinput

import (
	"context"
	"sync"
)

// Simulated is an in-process Source for tests and replay. Events are emitted
// by the test itself rather than captured from hardware.
type Simulated struct {
	mu      sync.Mutex
	ch      chan Event
	running bool
	clock   uint64
	cursor  Point
}

// NewSimulated creates a simulated source.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Start begins delivering emitted events.
func (s *Simulated) Start(ctx context.Context) (<-chan Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, ErrAlreadyRunning
	}
	s.ch = make(chan Event, 256)
	s.running = true

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return s.ch, nil
}

// Stop closes the event channel.
func (s *Simulated) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	close(s.ch)
	return nil
}

// Running reports whether Start has been called and Stop has not.
func (s *Simulated) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Available always reports true.
func (s *Simulated) Available() (bool, string) {
	return true, "simulated source (for testing and replay)"
}

// MoveCursor sets the cursor position reported with subsequent events.
func (s *Simulated) MoveCursor(x, y int32) {
	s.mu.Lock()
	s.cursor = Point{X: x, Y: y}
	s.mu.Unlock()
}

// EmitKey emits a keyboard event. The simulated clock advances 1000µs per
// event so ordering is always strict.
func (s *Simulated) EmitKey(code Key, side Side, isUp bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.clock += 1000
	s.ch <- KeyEvent(s.clock, s.cursor, code, side, isUp)
}

// EmitMouse emits a mouse button event.
func (s *Simulated) EmitMouse(button MouseButton, isUp bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.clock += 1000
	s.ch <- MouseEvent(s.clock, s.cursor, button, isUp)
}

// Press emits a full down/up cycle for a key.
func (s *Simulated) Press(code Key, side Side) {
	s.EmitKey(code, side, false)
	s.EmitKey(code, side, true)
}

// Click emits a full down/up cycle for a mouse button.
func (s *Simulated) Click(button MouseButton) {
	s.EmitMouse(button, false)
	s.EmitMouse(button, true)
}
