package platform

// WindowID is a platform-neutral window identifier. Zero means no window.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point lies inside the rect.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Backend abstracts window-system operations needed to place windows in a grid.
type Backend interface {
	// Windows enumerates top-level client windows.
	Windows() ([]WindowID, error)
	Rect(id WindowID) (Rect, error)
	MoveResize(id WindowID, bounds Rect) error
	IsValid(id WindowID) bool
	IsVisible(id WindowID) bool
	// PID returns the owning process id, or 0 when unknown.
	PID(id WindowID) int
	ClassName(id WindowID) string
	// WindowAt returns the topmost client window covering the point.
	WindowAt(x, y int) WindowID
	// Close asks the window to close. It does not kill the owning process.
	Close(id WindowID) error
	// MonitorRect returns the bounds of the monitor at index. With fullArea
	// false, panels and docks are excluded.
	MonitorRect(index int, fullArea bool) (Rect, error)

	ActiveWindow() (WindowID, error)
	Focus(id WindowID) error
	SetAbove(id WindowID, above bool) error
	HideDecorations(id WindowID, title, border bool) error

	// WatchDestroy subscribes to destruction of id. Notifications arrive on
	// DestroyEvents once EventLoop is running.
	WatchDestroy(id WindowID) error
	DestroyEvents() <-chan WindowID
}
