//go:build !linux

package overlay

import (
	"errors"
	"log/slog"
)

func newNotify(log *slog.Logger) (Overlay, error) {
	return nil, errors.New("notification overlay requires a D-Bus session bus (Linux only)")
}
