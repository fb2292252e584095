package grid

import (
	"time"

	"github.com/1broseidon/gridstart/internal/platform"
)

// CellState is one cell as seen by Snapshot.
type CellState struct {
	Index      int               `json:"index"`
	Row        int               `json:"row"`
	Col        int               `json:"col"`
	Bounds     platform.Rect     `json:"bounds"`
	Reserved   bool              `json:"reserved,omitempty"`
	Occupant   platform.WindowID `json:"occupant,omitempty"`
	FilledAt   *time.Time        `json:"filled_at,omitempty"`
	PixelOwner platform.WindowID `json:"pixel_owner,omitempty"`
}

// Mismatch reports whether something other than the occupant covers the
// cell center.
func (c CellState) Mismatch() bool {
	return c.Occupant != 0 && c.PixelOwner != 0 && c.PixelOwner != c.Occupant
}

// Snapshot is a point-in-time view of the grid for diagnostics.
type Snapshot struct {
	Rows        int               `json:"rows"`
	Cols        int               `json:"cols"`
	Monitor     platform.Rect     `json:"monitor"`
	Policy      string            `json:"policy"`
	Launcher    platform.WindowID `json:"launcher,omitempty"`
	Reserved    *int              `json:"reserved,omitempty"`
	HasBeenFull bool              `json:"has_been_full"`
	Cells       []CellState       `json:"cells"`
	Free        []int             `json:"free"`
	TakenAt     time.Time         `json:"taken_at"`
}

// Snapshot returns every cell with its occupant and the window currently
// covering its center, plus the free cell indices. It does not modify the
// grid.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Rows:        e.cfg.Rows,
		Cols:        e.cfg.Cols,
		Monitor:     e.cfg.Monitor,
		Policy:      e.cfg.Policy.String(),
		Launcher:    e.launcher,
		HasBeenFull: e.hasBeenFull,
		Cells:       make([]CellState, len(e.cells)),
		Free:        []int{},
		TakenAt:     e.now(),
	}
	if e.cfg.ReservedCell != nil {
		r := *e.cfg.ReservedCell
		snap.Reserved = &r
	}

	for i, c := range e.cells {
		row, col := e.cfg.CellPosition(i)
		state := CellState{
			Index:      i,
			Row:        row,
			Col:        col,
			Bounds:     e.cfg.CellRect(i),
			Reserved:   e.cfg.isReserved(i),
			Occupant:   c.occupant,
			PixelOwner: e.pixelOwner(i),
		}
		if !c.empty() {
			at := c.filledAt
			state.FilledAt = &at
		} else {
			snap.Free = append(snap.Free, i)
		}
		snap.Cells[i] = state
	}
	return snap
}
