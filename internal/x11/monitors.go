package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors retrieves all active monitors using XRandR, in CRTC order
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		// Get output name
		outputName := fmt.Sprintf("Monitor%d", i)
		if len(crtcInfo.Outputs) > 0 {
			outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
			if err == nil {
				outputName = string(outputInfo.Name)
			}
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// fallbackMonitor is used when RandR reports no active outputs.
var fallbackMonitor = Monitor{Name: "fallback", Width: 1920, Height: 1080}

// MonitorByIndex returns the monitor at index in RandR CRTC order. An index
// out of range selects the first monitor. Unless fullArea is set, the
// returned geometry excludes panels and docks.
func (c *Connection) MonitorByIndex(index int, fullArea bool) (Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil || len(monitors) == 0 {
		if err == nil {
			err = fmt.Errorf("no monitors found")
		}
		return fallbackMonitor, err
	}

	mon := monitors[0]
	if index >= 0 && index < len(monitors) {
		mon = monitors[index]
	}
	if fullArea {
		return mon, nil
	}

	if !applyDockStruts(c, &mon) {
		applyWorkArea(c, &mon)
	}
	return mon, nil
}

// applyWorkArea intersects the monitor with _NET_WORKAREA of the current desktop.
func applyWorkArea(c *Connection, monitor *Monitor) {
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	desktop := 0
	if current, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(current) < len(workArea) {
		desktop = int(current)
	}

	wa := workArea[desktop]
	isect := intersectionSize(
		monitor.X, monitor.Y, monitor.X+monitor.Width, monitor.Y+monitor.Height,
		int(wa.X), int(wa.Y), int(wa.X)+int(wa.Width), int(wa.Y)+int(wa.Height),
	)
	if isect.w == 0 || isect.h == 0 {
		return
	}
	monitor.X = max(monitor.X, int(wa.X))
	monitor.Y = max(monitor.Y, int(wa.Y))
	monitor.Width = isect.w
	monitor.Height = isect.h
}

type dockStruts struct {
	left, right, top, bottom int
}

func (s dockStruts) zero() bool {
	return s.left == 0 && s.right == 0 && s.top == 0 && s.bottom == 0
}

// applyDockStruts shrinks the monitor by the struts of dock windows that
// overlap it. It reports false when no dock reserves space on the monitor.
func applyDockStruts(c *Connection, monitor *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootW, rootH := int(rootGeom.Width), int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var struts dockStruts
	for _, windowID := range clients {
		if !isDock(c, windowID) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			struts.add(monitor, rootW, rootH, sp)
			continue
		}
		// Older docks only set _NET_WM_STRUT, which spans the full edge.
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			struts.add(monitor, rootW, rootH, &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			})
		}
	}

	if struts.zero() {
		return false
	}

	monitor.X += struts.left
	monitor.Y += struts.top
	monitor.Width = max(1, monitor.Width-struts.left-struts.right)
	monitor.Height = max(1, monitor.Height-struts.top-struts.bottom)
	return true
}

func isDock(c *Connection, windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// add accumulates the part of each strut edge that overlaps the monitor.
func (s *dockStruts) add(monitor *Monitor, rootW, rootH int, sp *ewmh.WmStrutPartial) {
	mx1, my1 := monitor.X, monitor.Y
	mx2, my2 := monitor.X+monitor.Width, monitor.Y+monitor.Height

	if sp.Top > 0 {
		isect := intersectionSize(mx1, my1, mx2, my2, int(sp.TopStartX), 0, int(sp.TopEndX)+1, int(sp.Top))
		s.top = max(s.top, isect.h)
	}
	if sp.Bottom > 0 {
		isect := intersectionSize(mx1, my1, mx2, my2, int(sp.BottomStartX), rootH-int(sp.Bottom), int(sp.BottomEndX)+1, rootH)
		s.bottom = max(s.bottom, isect.h)
	}
	if sp.Left > 0 {
		isect := intersectionSize(mx1, my1, mx2, my2, 0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY)+1)
		s.left = max(s.left, isect.w)
	}
	if sp.Right > 0 {
		isect := intersectionSize(mx1, my1, mx2, my2, rootW-int(sp.Right), int(sp.RightStartY), rootW, int(sp.RightEndY)+1)
		s.right = max(s.right, isect.w)
	}
}

type intersection struct {
	w, h int
}

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1, y1 := max(ax1, bx1), max(ay1, by1)
	x2, y2 := min(ax2, bx2), min(ay2, by2)
	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}
