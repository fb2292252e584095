package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WatchDestroy selects StructureNotify on the window and forwards its
// DestroyNotify to DestroyEvents. Callbacks run on the EventLoop goroutine.
func (c *Connection) WatchDestroy(windowID xproto.Window) error {
	if err := xwindow.New(c.XUtil, windowID).Listen(xproto.EventMaskStructureNotify); err != nil {
		return err
	}

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		xevent.Detach(xu, ev.Window)
		select {
		case c.destroyed <- uint32(ev.Window):
		default:
			// Consumer is behind; the periodic audit catches the rest.
		}
	}).Connect(c.XUtil, windowID)
	return nil
}

// DestroyEvents delivers ids of watched windows that were destroyed.
func (c *Connection) DestroyEvents() <-chan uint32 {
	return c.destroyed
}
