package grid

import (
	"time"

	"github.com/1broseidon/gridstart/internal/platform"
)

// cell is one grid position. occupant != 0 exactly when filledAt is set.
type cell struct {
	occupant platform.WindowID
	filledAt time.Time
}

func (c cell) empty() bool {
	return c.occupant == 0
}

// The helpers below are called with Engine.mu held. Each leaves the cell
// table and the occupancy index agreeing with each other.

// occupy claims cell i for id, refreshing filledAt.
func (e *Engine) occupy(i int, id platform.WindowID) {
	if prev := e.cells[i].occupant; prev != 0 && prev != id {
		e.dropIndex(prev, i)
	}
	if j, ok := e.index[id]; ok && j != i {
		e.cells[j] = cell{}
	}
	e.cells[i] = cell{occupant: id, filledAt: e.now()}
	e.index[id] = i
	e.updateFull()
	occupiedCells.Set(float64(e.occupiedLocked()))
}

// clear empties cell i and drops the occupant's index entry if it points here.
func (e *Engine) clear(i int) platform.WindowID {
	occ := e.cells[i].occupant
	e.cells[i] = cell{}
	if occ != 0 {
		e.dropIndex(occ, i)
	}
	occupiedCells.Set(float64(e.occupiedLocked()))
	return occ
}

func (e *Engine) dropIndex(id platform.WindowID, i int) {
	if j, ok := e.index[id]; ok && j == i {
		delete(e.index, id)
	}
}

// available applies the availability rule to cell i: empty, a stale
// occupant, or an occupant the index places elsewhere. The last two clear
// the cell.
func (e *Engine) available(i int) bool {
	c := e.cells[i]
	if c.empty() {
		return true
	}

	if !e.adapter.IsValid(c.occupant) || !e.adapter.IsVisible(c.occupant) {
		e.logger.Debug("grid: clearing stale occupant", "cell", i, "window_id", c.occupant)
		e.clear(i)
		evictions.WithLabelValues("stale").Inc()
		return true
	}

	if j, ok := e.index[c.occupant]; ok && j != i {
		e.logger.Debug("grid: clearing stale cross-reference", "cell", i, "window_id", c.occupant, "indexed_cell", j)
		e.cells[i] = cell{}
		occupiedCells.Set(float64(e.occupiedLocked()))
		return true
	}

	return false
}

// updateFull latches hasBeenFull once every non-reserved cell is occupied.
func (e *Engine) updateFull() {
	if e.hasBeenFull {
		return
	}
	ordinary := 0
	for i, c := range e.cells {
		if e.cfg.isReserved(i) {
			continue
		}
		if c.empty() {
			return
		}
		ordinary++
	}
	if ordinary > 0 {
		e.hasBeenFull = true
		e.logger.Debug("grid: filled for the first time")
	}
}

func (e *Engine) occupiedLocked() int {
	n := 0
	for _, c := range e.cells {
		if !c.empty() {
			n++
		}
	}
	return n
}
