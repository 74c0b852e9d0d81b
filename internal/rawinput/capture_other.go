//go:build !windows

package rawinput

import "context"

// stubSource is returned on platforms without a Raw Input equivalent wired
// up. The daemon still runs in replay mode through the Simulated source.
type stubSource struct{}

// NewPlatform returns a stub capture source on non-Windows platforms.
func NewPlatform() Source {
	return stubSource{}
}

func (stubSource) Start(ctx context.Context) (<-chan Event, error) {
	return nil, ErrNotAvailable
}

func (stubSource) Stop() error { return nil }

func (stubSource) Available() (bool, string) {
	return false, "hardware capture is only implemented for Windows Raw Input"
}

// CapsLockOn reports false where the live toggle state cannot be queried.
func CapsLockOn() bool { return false }
