//go:build linux

package overlay

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyInterface = "org.freedesktop.Notifications"
)

// notifyOverlay shows the suggestion as a desktop notification through the
// freedesktop Notifications service on the session bus. Replacing the
// previous notification ID keeps at most one suggestion visible.
type notifyOverlay struct {
	conn *dbus.Conn
	log  *slog.Logger

	mu     sync.Mutex
	lastID uint32
}

func newNotify(log *slog.Logger) (Overlay, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &notifyOverlay{conn: conn, log: log}, nil
}

// Show posts or replaces the suggestion notification.
func (n *notifyOverlay) Show(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	obj := n.conn.Object(notifyService, notifyPath)
	call := obj.Call(notifyInterface+".Notify", 0,
		"suggestd",        // app name
		n.lastID,          // replaces id
		"",                // icon
		"Suggestion",      // summary
		text,              // body
		[]string{},        // actions
		map[string]dbus.Variant{
			"urgency": dbus.MakeVariant(byte(0)),
		},
		int32(0), // never expire; Hide closes it
	)
	if call.Err != nil {
		n.log.Warn("notification overlay show failed", "error", call.Err)
		return
	}
	if err := call.Store(&n.lastID); err != nil {
		n.log.Warn("notification overlay id decode failed", "error", err)
	}
}

// Hide closes the current notification, if any.
func (n *notifyOverlay) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastID == 0 {
		return
	}
	obj := n.conn.Object(notifyService, notifyPath)
	if call := obj.Call(notifyInterface+".CloseNotification", 0, n.lastID); call.Err != nil {
		n.log.Debug("notification overlay hide failed", "error", call.Err)
	}
	n.lastID = 0
}

// Close releases the bus connection.
func (n *notifyOverlay) Close() error {
	n.Hide()
	return n.conn.Close()
}
