//go:build windows

package inject

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"suggestd/internal/rawinput"
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputKeyboard  = 1
	keyeventfKeyUp = 0x0002
)

// keybdInput mirrors the KEYBDINPUT half of the Windows INPUT union. The
// struct is padded out to the size of the largest union member (MOUSEINPUT)
// so SendInput sees the layout it expects on both 386 and amd64.
type keybdInput struct {
	Type      uint32
	_         uint32 // alignment before the union on amd64
	VKey      uint16
	ScanCode  uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
	_         [8]byte // pad to MOUSEINPUT size
}

// WindowsSender injects through SendInput, the same entry point real
// accessibility software uses; receiving applications cannot distinguish
// these events from hardware typing at the message level.
type WindowsSender struct{}

// NewPlatformSender returns the SendInput-backed sender.
func NewPlatformSender() Sender {
	return WindowsSender{}
}

// Available reports true; SendInput needs no special privileges.
func (WindowsSender) Available() (bool, string) {
	return true, "Windows SendInput"
}

// SendKey injects one key transition.
func (WindowsSender) SendKey(code rawinput.Key, isUp bool) error {
	in := keybdInput{
		Type: inputKeyboard,
		VKey: uint16(code),
	}
	if isUp {
		in.Flags = keyeventfKeyUp
	}

	sent, _, err := procSendInput.Call(
		1,
		uintptr(unsafe.Pointer(&in)),
		unsafe.Sizeof(in),
	)
	if sent != 1 {
		return fmt.Errorf("SendInput: %w", err)
	}
	return nil
}
