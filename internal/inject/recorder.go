package inject

import (
	"errors"
	"sync"

	"suggestd/internal/rawinput"
)

// Recorder is a Sender that captures strokes instead of injecting them.
// Tests and the daemon's dry-run mode use it.
type Recorder struct {
	mu      sync.Mutex
	strokes []Stroke
	failAt  int // 1-based stroke index that fails; 0 means never
	sent    int
}

// NewRecorder creates a recording sender.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailAt makes the n-th SendKey call (1-based) return an error.
func (r *Recorder) FailAt(n int) {
	r.mu.Lock()
	r.failAt = n
	r.mu.Unlock()
}

// SendKey records the transition.
func (r *Recorder) SendKey(code rawinput.Key, isUp bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent++
	if r.failAt != 0 && r.sent == r.failAt {
		return errors.New("recorder: simulated send failure")
	}
	r.strokes = append(r.strokes, Stroke{Code: code, IsUp: isUp})
	return nil
}

// Available reports true.
func (r *Recorder) Available() (bool, string) {
	return true, "stroke recorder (dry run)"
}

// Strokes returns the recorded transitions.
func (r *Recorder) Strokes() []Stroke {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stroke, len(r.strokes))
	copy(out, r.strokes)
	return out
}

// Reset clears the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.strokes = nil
	r.sent = 0
	r.failAt = 0
	r.mu.Unlock()
}
