//go:build !windows

package inject

import "suggestd/internal/rawinput"

type stubSender struct{}

// NewPlatformSender returns a stub on platforms without an injection path.
func NewPlatformSender() Sender {
	return stubSender{}
}

func (stubSender) SendKey(code rawinput.Key, isUp bool) error {
	return ErrNotInitialized
}

func (stubSender) Available() (bool, string) {
	return false, "synthetic input is only implemented for Windows SendInput"
}
