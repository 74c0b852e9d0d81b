//go:build windows

package rawinput

import (
	"context"
	"runtime"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                     = windows.NewLazySystemDLL("user32.dll")
	procRegisterClassExW       = user32.NewProc("RegisterClassExW")
	procCreateWindowExW        = user32.NewProc("CreateWindowExW")
	procDestroyWindow          = user32.NewProc("DestroyWindow")
	procDefWindowProcW         = user32.NewProc("DefWindowProcW")
	procGetMessageW            = user32.NewProc("GetMessageW")
	procTranslateMessage       = user32.NewProc("TranslateMessage")
	procDispatchMessageW       = user32.NewProc("DispatchMessageW")
	procPostMessageW           = user32.NewProc("PostMessageW")
	procPostQuitMessage        = user32.NewProc("PostQuitMessage")
	procRegisterRawInputDevs   = user32.NewProc("RegisterRawInputDevices")
	procGetRawInputData        = user32.NewProc("GetRawInputData")
	procGetCursorPos           = user32.NewProc("GetCursorPos")
	procGetKeyState            = user32.NewProc("GetKeyState")
)

const (
	wmInput   = 0x00FF
	wmQuitApp = 0x0400 + 1 // WM_USER + 1

	ridevInputSink = 0x00000100
	ridInput       = 0x10000003

	rimTypeMouse    = 0
	rimTypeKeyboard = 1

	riKeyBreak = 0x01
	riKeyE0    = 0x02

	riMouseLeftDown   = 0x0001
	riMouseLeftUp     = 0x0002
	riMouseRightDown  = 0x0004
	riMouseRightUp    = 0x0008
	riMouseMiddleDown = 0x0010
	riMouseMiddleUp   = 0x0020

	usagePageGeneric = 0x01
	usageKeyboard    = 0x06
	usageMouse       = 0x02
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type msg struct {
	Hwnd    windows.HWND
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      Point
}

type rawInputDevice struct {
	UsagePage uint16
	Usage     uint16
	Flags     uint32
	Target    windows.HWND
}

type rawInputHeader struct {
	Type   uint32
	Size   uint32
	Device windows.Handle
	WParam uintptr
}

type rawKeyboard struct {
	MakeCode         uint16
	Flags            uint16
	Reserved         uint16
	VKey             uint16
	Message          uint32
	ExtraInformation uint32
}

type rawMouse struct {
	Flags            uint16
	_                uint16
	ButtonFlags      uint16
	ButtonData       uint16
	RawButtons       uint32
	LastX            int32
	LastY            int32
	ExtraInformation uint32
}

// WindowsSource captures keyboard and mouse events through the Raw Input API.
// A hidden message-only window registered with RIDEV_INPUTSINK receives input
// even while another application has focus, which is what lets the daemon
// observe typing system-wide.
type WindowsSource struct {
	mu      sync.Mutex
	running bool
	hwnd    windows.HWND
	ch      chan Event
	started time.Time
	done    chan struct{}
}

// NewPlatform returns the Raw Input capture source.
func NewPlatform() Source {
	return &WindowsSource{}
}

// Available reports true; Raw Input needs no special privileges.
func (w *WindowsSource) Available() (bool, string) {
	return true, "Windows Raw Input API"
}

// Start creates the message window on a dedicated OS thread and begins
// pumping events into the returned channel. The message loop thread is the
// only producer; consumers see events strictly ordered.
func (w *WindowsSource) Start(ctx context.Context) (<-chan Event, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil, ErrAlreadyRunning
	}

	w.ch = make(chan Event, 512)
	w.done = make(chan struct{})
	w.started = time.Now()
	errCh := make(chan error, 1)

	go w.messageLoop(errCh)

	if err := <-errCh; err != nil {
		close(w.ch)
		return nil, err
	}
	w.running = true

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return w.ch, nil
}

// Stop posts a quit message to the message loop and waits for it to drain.
func (w *WindowsSource) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return nil
	}
	w.running = false
	procPostMessageW.Call(uintptr(w.hwnd), wmQuitApp, 0, 0)
	<-w.done
	close(w.ch)
	return nil
}

func (w *WindowsSource) timestamp() uint64 {
	return uint64(time.Since(w.started).Microseconds())
}

func (w *WindowsSource) cursor() Point {
	var pt Point
	procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	return pt
}

func (w *WindowsSource) messageLoop(errCh chan<- error) {
	// Raw Input delivery is tied to the thread that owns the window.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(w.done)

	className, _ := syscall.UTF16PtrFromString("SuggestdRawInput")
	wc := wndClassEx{
		Size:      uint32(unsafe.Sizeof(wndClassEx{})),
		WndProc:   syscall.NewCallback(w.wndProc),
		ClassName: className,
	}
	if atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		errCh <- err
		return
	}

	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(className)),
		0, 0, 0, 0, 0,
		0, 0, 0, 0,
	)
	if hwnd == 0 {
		errCh <- err
		return
	}
	w.hwnd = windows.HWND(hwnd)
	defer procDestroyWindow.Call(hwnd)

	devices := []rawInputDevice{
		{UsagePage: usagePageGeneric, Usage: usageKeyboard, Flags: ridevInputSink, Target: w.hwnd},
		{UsagePage: usagePageGeneric, Usage: usageMouse, Flags: ridevInputSink, Target: w.hwnd},
	}
	if ok, _, err := procRegisterRawInputDevs.Call(
		uintptr(unsafe.Pointer(&devices[0])),
		uintptr(len(devices)),
		unsafe.Sizeof(devices[0]),
	); ok == 0 {
		errCh <- err
		return
	}
	errCh <- nil

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			return
		}
		if m.Message == wmQuitApp {
			procPostQuitMessage.Call(0)
			return
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (w *WindowsSource) wndProc(hwnd windows.HWND, message uint32, wParam, lParam uintptr) uintptr {
	if message == wmInput {
		w.processRawInput(lParam)
		return 0
	}
	ret, _, _ := procDefWindowProcW.Call(uintptr(hwnd), uintptr(message), wParam, lParam)
	return ret
}

func (w *WindowsSource) processRawInput(hRawInput uintptr) {
	var size uint32
	headerSize := uint32(unsafe.Sizeof(rawInputHeader{}))
	procGetRawInputData.Call(hRawInput, ridInput, 0, uintptr(unsafe.Pointer(&size)), uintptr(headerSize))
	if size == 0 || size > 1024 {
		return
	}

	buf := make([]byte, size)
	got, _, _ := procGetRawInputData.Call(
		hRawInput, ridInput,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
		uintptr(headerSize),
	)
	if uint32(got) != size {
		return
	}

	header := (*rawInputHeader)(unsafe.Pointer(&buf[0]))
	ts := w.timestamp()
	cursor := w.cursor()

	switch header.Type {
	case rimTypeKeyboard:
		kb := (*rawKeyboard)(unsafe.Pointer(&buf[headerSize]))
		side := SideLeft
		if kb.Flags&riKeyE0 != 0 {
			side = SideRight
		}
		isUp := kb.Flags&riKeyBreak != 0
		w.deliver(KeyEvent(ts, cursor, Key(kb.VKey), side, isUp))

	case rimTypeMouse:
		mouse := (*rawMouse)(unsafe.Pointer(&buf[headerSize]))
		switch {
		case mouse.ButtonFlags&riMouseLeftDown != 0:
			w.deliver(MouseEvent(ts, cursor, ButtonLeft, false))
		case mouse.ButtonFlags&riMouseLeftUp != 0:
			w.deliver(MouseEvent(ts, cursor, ButtonLeft, true))
		case mouse.ButtonFlags&riMouseRightDown != 0:
			w.deliver(MouseEvent(ts, cursor, ButtonRight, false))
		case mouse.ButtonFlags&riMouseRightUp != 0:
			w.deliver(MouseEvent(ts, cursor, ButtonRight, true))
		case mouse.ButtonFlags&riMouseMiddleDown != 0:
			w.deliver(MouseEvent(ts, cursor, ButtonMiddle, false))
		case mouse.ButtonFlags&riMouseMiddleUp != 0:
			w.deliver(MouseEvent(ts, cursor, ButtonMiddle, true))
		}
	}
}

func (w *WindowsSource) deliver(e Event) {
	select {
	case w.ch <- e:
	default:
		// Consumer stalled (a blocking generation call); dropping beats
		// deadlocking the window procedure.
	}
}

// CapsLockOn queries the live CapsLock toggle state.
func CapsLockOn() bool {
	const vkCapital = 0x14
	state, _, _ := procGetKeyState.Call(vkCapital)
	return state&0x0001 != 0
}
