package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/motif"
)

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// The message is built by hand because ewmh.ActiveWindowReq panics on this
// xgbutil version.
func (c *Connection) FocusWindow(windowID xproto.Window) error {
	atom, err := c.internAtom("_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// SetAbove toggles _NET_WM_STATE_ABOVE (always on top).
func (c *Connection) SetAbove(windowID xproto.Window, above bool) error {
	action := ewmh.StateRemove
	if above {
		action = ewmh.StateAdd
	}
	return ewmh.WmStateReq(c.XUtil, windowID, action, "_NET_WM_STATE_ABOVE")
}

// HideDecorations clears the title bar and/or border through Motif WM hints.
// Most WMs only honour the all-or-nothing form, so hiding the title also
// drops the border unless the WM supports per-flag decorations.
func (c *Connection) HideDecorations(windowID xproto.Window, title, border bool) error {
	if !title && !border {
		return nil
	}

	hints, err := motif.WmHintsGet(c.XUtil, windowID)
	if err != nil {
		hints = &motif.Hints{}
	}

	decor := uint(motif.DecorationAll)
	if hints.Flags&motif.HintDecorations != 0 {
		decor = hints.Decoration
	}
	if decor&motif.DecorationAll != 0 {
		// The all bit inverts the meaning of the others; expand it.
		decor = motif.DecorationBorder | motif.DecorationResizeH | motif.DecorationTitle |
			motif.DecorationMenu | motif.DecorationMinimize | motif.DecorationMaximize
	}
	if title {
		decor &^= motif.DecorationTitle | motif.DecorationMenu | motif.DecorationMinimize | motif.DecorationMaximize
	}
	if border {
		decor &^= motif.DecorationBorder | motif.DecorationResizeH
	}

	hints.Flags |= motif.HintDecorations
	hints.Decoration = decor
	if err := motif.WmHintsSet(c.XUtil, windowID, hints); err != nil {
		return fmt.Errorf("set motif hints on %d: %w", windowID, err)
	}
	return nil
}
