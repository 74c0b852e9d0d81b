// Package overlay renders the pending suggestion to the user.
//
// The overlay is a pure sink: Show and Hide are fire-and-forget and no
// return value is consulted by the engine. Backends:
//
//	"console"  stderr banner (works everywhere, the default)
//	"notify"   desktop notification over D-Bus (Linux)
//	"window"   borderless always-on-top Gio window
//	"none"     discard
package overlay

import (
	"fmt"
	"log/slog"
	"os"
)

// Overlay displays suggestion text. Implementations must tolerate Show and
// Hide in any order and must never block the caller for long.
type Overlay interface {
	Show(text string)
	Hide()
	Close() error
}

// New returns the overlay for the named backend. Unknown names fall back to
// the console backend with a warning.
func New(backend string, log *slog.Logger) Overlay {
	switch backend {
	case "none":
		return Noop{}
	case "notify":
		o, err := newNotify(log)
		if err != nil {
			log.Warn("notification overlay unavailable, falling back to console", "error", err)
			return Console{}
		}
		return o
	case "window":
		return newWindow(log)
	case "", "console":
		return Console{}
	default:
		log.Warn("unknown overlay backend, using console", "backend", backend)
		return Console{}
	}
}

// Noop discards everything.
type Noop struct{}

func (Noop) Show(string) {}
func (Noop) Hide()       {}

// Close implements Overlay.
func (Noop) Close() error { return nil }

// Console prints a suggestion banner to stderr, matching the original
// console-first workflow.
type Console struct{}

// Show prints the suggestion banner.
func (Console) Show(text string) {
	fmt.Fprintf(os.Stderr, "\n========================================\n")
	fmt.Fprintf(os.Stderr, " SUGGESTION READY:\n")
	fmt.Fprintf(os.Stderr, "   %q\n", text)
	fmt.Fprintf(os.Stderr, "   press the accept trigger to inject\n")
	fmt.Fprintf(os.Stderr, "========================================\n\n")
}

// Hide is a no-op for the console backend; the banner scrolls away.
func (Console) Hide() {}

// Close implements Overlay.
func (Console) Close() error { return nil }
