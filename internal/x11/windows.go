package x11

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Geometry is a window's outer rectangle, decorations included.
type Geometry struct {
	X, Y, Width, Height int
}

// MoveResizeWindow places the window frame at the given outer geometry.
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	// Maximized windows ignore move requests under most WMs.
	c.unmaximizeWindow(windowID)

	win := xwindow.New(c.XUtil, windowID)
	if err := win.WMMoveResize(x, y, width, height); err != nil {
		// Fallback to direct window manipulation
		win.MoveResize(x, y, width, height)
	}
	return nil
}

// WindowGeometry returns the outer geometry of a window in root coordinates.
// It is the counterpart of MoveResizeWindow, so a successful move reads back
// the same position.
func (c *Connection) WindowGeometry(windowID xproto.Window) (Geometry, error) {
	rect, err := xwindow.New(c.XUtil, windowID).DecorGeometry()
	if err != nil {
		return Geometry{}, fmt.Errorf("geometry of window %d: %w", windowID, err)
	}
	return Geometry{X: rect.X(), Y: rect.Y(), Width: rect.Width(), Height: rect.Height()}, nil
}

func (c *Connection) unmaximizeWindow(windowID xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_FULLSCREEN":
			ewmh.WmStateReq(c.XUtil, windowID, ewmh.StateRemove, state)
		}
	}
}

// ClientWindows returns the EWMH client list, falling back to the root's
// mapped children when no compliant WM is running.
func (c *Connection) ClientWindows() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err == nil {
		return clients, nil
	}

	tree, qerr := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if qerr != nil {
		return nil, fmt.Errorf("client list: %w", err)
	}
	return tree.Children, nil
}

// WindowExists reports whether the server still knows the window.
func (c *Connection) WindowExists(windowID xproto.Window) bool {
	_, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	return err == nil
}

// IsViewable reports whether the window is mapped and not hidden/minimized.
func (c *Connection) IsViewable(windowID xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), windowID).Reply()
	if err != nil {
		return false
	}
	if attrs.MapState != xproto.MapStateViewable {
		return false
	}

	states, err := ewmh.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return true
	}
	for _, state := range states {
		if state == "_NET_WM_STATE_HIDDEN" {
			return false
		}
	}
	return true
}

// IsNormalWindow checks if a window is a normal application window
func (c *Connection) IsNormalWindow(windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return true
	}

	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
			return true
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION",
			"_NET_WM_WINDOW_TYPE_TOOLTIP":
			return false
		}
	}

	return len(types) == 0
}

// WindowPID returns _NET_WM_PID, or 0 when the client did not set it.
func (c *Connection) WindowPID(windowID xproto.Window) int {
	pid, err := ewmh.WmPidGet(c.XUtil, windowID)
	if err != nil {
		return 0
	}
	return int(pid)
}

// WindowClass returns the class half of WM_CLASS.
func (c *Connection) WindowClass(windowID xproto.Window) string {
	wmClass, err := icccm.WmClassGet(c.XUtil, windowID)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(wmClass.Class)
}

// WindowAt returns the client window that is visible at the root
// coordinate (x, y), or 0 if only the root is there. Reparenting WMs report
// the frame as the root's child, so the frame subtree is searched for a
// window that appears in the client list.
func (c *Connection) WindowAt(x, y int) xproto.Window {
	reply, err := xproto.TranslateCoordinates(c.XUtil.Conn(), c.Root, c.Root, int16(x), int16(y)).Reply()
	if err != nil || reply.Child == 0 {
		return 0
	}

	clients, err := c.ClientWindows()
	if err != nil {
		return reply.Child
	}
	known := make(map[xproto.Window]struct{}, len(clients))
	for _, w := range clients {
		known[w] = struct{}{}
	}

	if found := c.findClient(reply.Child, known, 3); found != 0 {
		return found
	}
	return reply.Child
}

func (c *Connection) findClient(w xproto.Window, known map[xproto.Window]struct{}, depth int) xproto.Window {
	if _, ok := known[w]; ok {
		return w
	}
	if depth == 0 {
		return 0
	}
	tree, err := xproto.QueryTree(c.XUtil.Conn(), w).Reply()
	if err != nil {
		return 0
	}
	for _, child := range tree.Children {
		if found := c.findClient(child, known, depth-1); found != 0 {
			return found
		}
	}
	return 0
}

// CloseWindow requests graceful window close via WM_DELETE_WINDOW.
func (c *Connection) CloseWindow(windowID xproto.Window) error {
	deleteAtom, err := c.internAtom("WM_DELETE_WINDOW")
	if err != nil {
		return err
	}
	protocolsAtom, err := c.internAtom("WM_PROTOCOLS")
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   protocolsAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{uint32(deleteAtom), 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		windowID,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}
