package grid

import (
	"github.com/1broseidon/gridstart/internal/platform"
)

// SweepExpired closes the oldest occupant whose cell was filled longer ago
// than the eviction timeout. It evicts at most one window per call, skips
// the reserved cell, and does nothing until the grid has been full once.
func (e *Engine) SweepExpired() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cfg.EvictionTimeout <= 0 || !e.hasBeenFull {
		return -1, false
	}

	now := e.now()
	victim := -1
	for i, c := range e.cells {
		if c.empty() || e.cfg.isReserved(i) {
			continue
		}
		if now.Sub(c.filledAt) <= e.cfg.EvictionTimeout {
			continue
		}
		if victim < 0 || c.filledAt.Before(e.cells[victim].filledAt) {
			victim = i
		}
	}
	if victim < 0 {
		return -1, false
	}

	e.evict(victim, "timeout")
	return victim, true
}

// EvictOldest closes the occupant with the oldest fill time, ignoring the
// reserved cell and the launcher window. It returns the freed cell.
func (e *Engine) EvictOldest() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evictOldest()
}

func (e *Engine) evictOldest() (int, bool) {
	victim := -1
	for i, c := range e.cells {
		if c.empty() || e.cfg.isReserved(i) {
			continue
		}
		if e.launcher != 0 && c.occupant == e.launcher {
			continue
		}
		if victim < 0 || c.filledAt.Before(e.cells[victim].filledAt) {
			victim = i
		}
	}
	if victim < 0 {
		return -1, false
	}

	e.evict(victim, "oldest")
	return victim, true
}

// evict requests the occupant's close and frees the cell regardless of
// whether the close succeeds.
func (e *Engine) evict(i int, reason string) platform.WindowID {
	occ := e.cells[i].occupant
	if err := e.adapter.Close(occ); err != nil {
		e.logger.Warn("grid: close request failed", "window_id", occ, "cell", i, "error", err)
	}
	e.clear(i)
	evictions.WithLabelValues(reason).Inc()
	e.logger.Info("grid: evicted window", "window_id", occ, "cell", i, "reason", reason)
	return occ
}
