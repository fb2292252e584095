package grid

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/gridstart/internal/platform"
)

// ErrInvalidConfig is returned by NewEngine for unusable configurations.
var ErrInvalidConfig = errors.New("invalid grid config")

// Policy selects how a free cell is chosen among candidates.
type Policy int

const (
	// PolicyFirstFree picks the lowest eligible index.
	PolicyFirstFree Policy = iota
	// PolicySequential walks a rotating cursor over the cells.
	PolicySequential
)

func (p Policy) String() string {
	switch p {
	case PolicySequential:
		return "sequential"
	default:
		return "first-free"
	}
}

// ParsePolicy accepts "first-free" and "sequential" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first-free", "firstfree", "first_free":
		return PolicyFirstFree, nil
	case "sequential", "seq":
		return PolicySequential, nil
	default:
		return PolicyFirstFree, fmt.Errorf("unknown placement policy %q (want first-free or sequential)", s)
	}
}

const (
	DefaultMaxAttempts = 3

	consoleStep        = 40
	consoleMinHeight   = 100
	consoleHeightSlack = 8
)

// Config is the fixed description of one grid. It does not change for the
// lifetime of an Engine.
type Config struct {
	Rows    int
	Cols    int
	Monitor platform.Rect

	// FitToCell resizes windows to the cell; otherwise they keep their size
	// and are centered in it.
	FitToCell bool
	Policy    Policy

	// ReservedCell is kept for the launcher window. Nil disables it.
	ReservedCell *int

	// EvictionTimeout closes occupants older than this. Zero disables it.
	EvictionTimeout time.Duration

	// MaxAttempts caps failed placements per window.
	MaxAttempts int

	// ConsoleClasses lists window classes whose hosts reject arbitrary
	// heights and need the shrinking retry.
	ConsoleClasses []string

	// SettleDelay is waited after each move before reading the geometry back.
	SettleDelay time.Duration
}

// Cells returns rows*cols.
func (c Config) Cells() int {
	return c.Rows * c.Cols
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Rows, c.Cols)
	}
	if c.Monitor.Empty() {
		return fmt.Errorf("%w: monitor rect %+v has no area", ErrInvalidConfig, c.Monitor)
	}
	if c.Monitor.Width < c.Cols || c.Monitor.Height < c.Rows {
		return fmt.Errorf("%w: monitor %dx%d too small for %dx%d grid", ErrInvalidConfig, c.Monitor.Width, c.Monitor.Height, c.Rows, c.Cols)
	}
	if c.ReservedCell != nil && (*c.ReservedCell < 0 || *c.ReservedCell >= c.Cells()) {
		return fmt.Errorf("%w: reserved cell %d outside 0..%d", ErrInvalidConfig, *c.ReservedCell, c.Cells()-1)
	}
	if c.EvictionTimeout < 0 {
		return fmt.Errorf("%w: negative eviction timeout", ErrInvalidConfig)
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("%w: negative max attempts", ErrInvalidConfig)
	}
	return nil
}

// CellIndex converts a row/column pair to a row-major index.
func (c Config) CellIndex(row, col int) int {
	return row*c.Cols + col
}

// CellPosition converts a row-major index back to row and column.
func (c Config) CellPosition(i int) (row, col int) {
	return i / c.Cols, i % c.Cols
}

// CellRect returns the pixel bounds of cell i.
func (c Config) CellRect(i int) platform.Rect {
	row, col := c.CellPosition(i)
	w := c.Monitor.Width / c.Cols
	h := c.Monitor.Height / c.Rows
	return platform.Rect{
		X:      c.Monitor.X + col*w,
		Y:      c.Monitor.Y + row*h,
		Width:  w,
		Height: h,
	}
}

// CellCenter returns the visual center of cell i.
func (c Config) CellCenter(i int) (x, y int) {
	r := c.CellRect(i)
	return r.X + r.Width/2, r.Y + r.Height/2
}

// centerIn keeps size's width and height, centers them in cell and clamps
// the result to the monitor.
func (c Config) centerIn(cell platform.Rect, w, h int) platform.Rect {
	x := cell.X + (cell.Width-w)/2
	y := cell.Y + (cell.Height-h)/2
	return platform.Rect{
		X:      clamp(x, c.Monitor.X, c.Monitor.Right()-w),
		Y:      clamp(y, c.Monitor.Y, c.Monitor.Bottom()-h),
		Width:  w,
		Height: h,
	}
}

// clamp bounds v to [lo, hi]. If the window is larger than the monitor the
// low edge wins.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

func (c Config) isReserved(i int) bool {
	return c.ReservedCell != nil && *c.ReservedCell == i
}
