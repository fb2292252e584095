//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/gridstart/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn   *x11.Connection
	events chan WindowID
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	b := &LinuxBackend{conn: conn, events: make(chan WindowID, 64)}
	go b.forwardDestroyEvents()
	return b, nil
}

func (b *LinuxBackend) forwardDestroyEvents() {
	for id := range b.conn.DestroyEvents() {
		b.events <- WindowID(id)
	}
}

// Disconnect stops the event loop and closes the X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// Windows returns normal top-level client windows.
func (b *LinuxBackend) Windows() ([]WindowID, error) {
	clients, err := b.conn.ClientWindows()
	if err != nil {
		return nil, err
	}

	ids := make([]WindowID, 0, len(clients))
	for _, w := range clients {
		if !b.conn.IsNormalWindow(w) {
			continue
		}
		ids = append(ids, WindowID(w))
	}
	return ids, nil
}

func (b *LinuxBackend) Rect(id WindowID) (Rect, error) {
	g, err := b.conn.WindowGeometry(xproto.Window(id))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}, nil
}

func (b *LinuxBackend) MoveResize(id WindowID, bounds Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(id), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *LinuxBackend) IsValid(id WindowID) bool {
	return id != 0 && b.conn.WindowExists(xproto.Window(id))
}

func (b *LinuxBackend) IsVisible(id WindowID) bool {
	return id != 0 && b.conn.IsViewable(xproto.Window(id))
}

func (b *LinuxBackend) PID(id WindowID) int {
	return b.conn.WindowPID(xproto.Window(id))
}

func (b *LinuxBackend) ClassName(id WindowID) string {
	return b.conn.WindowClass(xproto.Window(id))
}

func (b *LinuxBackend) WindowAt(x, y int) WindowID {
	return WindowID(b.conn.WindowAt(x, y))
}

// Close requests graceful window close via WM_DELETE_WINDOW.
func (b *LinuxBackend) Close(id WindowID) error {
	return b.conn.CloseWindow(xproto.Window(id))
}

// MonitorRect returns the bounds of the monitor at index. When RandR reports
// nothing, a 1920x1080 rect at the origin is returned along with the error.
func (b *LinuxBackend) MonitorRect(index int, fullArea bool) (Rect, error) {
	m, err := b.conn.MonitorByIndex(index, fullArea)
	return Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height}, err
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	wid, err := b.conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

func (b *LinuxBackend) Focus(id WindowID) error {
	return b.conn.FocusWindow(xproto.Window(id))
}

func (b *LinuxBackend) SetAbove(id WindowID, above bool) error {
	return b.conn.SetAbove(xproto.Window(id), above)
}

func (b *LinuxBackend) HideDecorations(id WindowID, title, border bool) error {
	return b.conn.HideDecorations(xproto.Window(id), title, border)
}

func (b *LinuxBackend) WatchDestroy(id WindowID) error {
	return b.conn.WatchDestroy(xproto.Window(id))
}

func (b *LinuxBackend) DestroyEvents() <-chan WindowID {
	return b.events
}
