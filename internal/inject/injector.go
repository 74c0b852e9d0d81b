package inject

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"suggestd/internal/rawinput"
)

// Sender delivers one synthetic key transition at the OS boundary.
type Sender interface {
	// SendKey injects a key transition into the foreground input stream.
	SendKey(code rawinput.Key, isUp bool) error

	// Available reports whether injection works on this platform.
	Available() (bool, string)
}

// ErrNotInitialized is returned when the injector has no sender.
var ErrNotInitialized = errors.New("inject: injector not initialized")

// Result reports the outcome of one injection call. Injection is never fatal:
// send failures and unmapped characters degrade the result instead of
// aborting it.
type Result struct {
	Strokes     int    // strokes attempted
	Failed      int    // strokes the sender rejected
	SkippedText []rune // characters with no key mapping
}

// Degraded reports whether anything was skipped or failed.
func (r Result) Degraded() bool { return r.Failed > 0 || len(r.SkippedText) > 0 }

// Injector replays encoded strokes through a Sender with a uniform delay
// between transitions. The delay keeps the synthetic input rate inside what
// receiving applications consider plausible typing.
type Injector struct {
	sender Sender
	delay  time.Duration
	log    *slog.Logger

	// sleep is swappable so tests run instantly.
	sleep func(time.Duration)
}

// NewInjector creates an injector. delay applies between every key
// transition and between consecutive characters.
func NewInjector(sender Sender, delay time.Duration, log *slog.Logger) *Injector {
	return &Injector{
		sender: sender,
		delay:  delay,
		log:    log,
		sleep:  time.Sleep,
	}
}

// SetDelay updates the inter-stroke delay. Called from config reload.
func (inj *Injector) SetDelay(delay time.Duration) {
	inj.delay = delay
}

// TypeText encodes text and injects it. Partial injection is possible and is
// surfaced through the degraded Result, never swallowed.
func (inj *Injector) TypeText(text string) (Result, error) {
	if inj.sender == nil {
		return Result{}, ErrNotInitialized
	}

	strokes, skipped := Encode(text)
	result := Result{Strokes: len(strokes), SkippedText: skipped}
	for _, c := range skipped {
		inj.log.Warn("no key mapping for character, skipping", "char", string(c))
	}

	for i, stroke := range strokes {
		if err := inj.sender.SendKey(stroke.Code, stroke.IsUp); err != nil {
			result.Failed++
			inj.log.Error("synthetic key send failed",
				"key", stroke.Code.Name(), "up", stroke.IsUp, "error", err)
			// Keep going: later characters may still land.
		}
		if inj.delay > 0 && i < len(strokes)-1 {
			inj.sleep(inj.delay)
		}
	}

	if result.Failed > 0 {
		return result, fmt.Errorf("inject: %d of %d strokes failed", result.Failed, result.Strokes)
	}
	return result, nil
}
