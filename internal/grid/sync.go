package grid

// SyncReport summarizes one CheckAndFixSync pass.
type SyncReport struct {
	// MissingIndex counts occupied cells whose occupant had no index entry.
	MissingIndex int `json:"missing_index"`
	// Mismatched counts occupants indexed to a different cell.
	Mismatched int `json:"mismatched"`
	// Dangling counts index entries whose cell does not hold the window.
	Dangling int `json:"dangling"`
	// PixelMismatches counts cells visually covered by another tracked
	// window. These are reported, not corrected.
	PixelMismatches int `json:"pixel_mismatches"`
}

// Corrections is the number of repairs made to the table or index.
func (r SyncReport) Corrections() int {
	return r.MissingIndex + r.Mismatched + r.Dangling
}

// CheckAndFixSync reconciles the cell table and the occupancy index and
// reports what it changed. Running it again without other mutation makes no
// corrections.
func (e *Engine) CheckAndFixSync() SyncReport {
	e.mu.Lock()
	defer e.mu.Unlock()

	var report SyncReport

	// Cells first: every occupant must be indexed to its cell.
	for i, c := range e.cells {
		if c.empty() {
			continue
		}
		j, ok := e.index[c.occupant]
		switch {
		case !ok:
			e.index[c.occupant] = i
			report.MissingIndex++
			e.logger.Warn("grid: sync inserted missing index entry", "window_id", c.occupant, "cell", i)
		case j != i:
			report.Mismatched++
			if j >= 0 && j < len(e.cells) && e.cells[j].occupant == c.occupant {
				// Held twice; the indexed cell wins.
				e.cells[i] = cell{}
				e.logger.Warn("grid: sync cleared duplicate occupancy", "window_id", c.occupant, "cell", i, "indexed_cell", j)
			} else {
				e.index[c.occupant] = i
				e.logger.Warn("grid: sync corrected index entry", "window_id", c.occupant, "cell", i, "was", j)
			}
		}
	}

	// Then the index: drop entries pointing at cells that do not hold them.
	for id, i := range e.index {
		if i >= 0 && i < len(e.cells) && e.cells[i].occupant == id {
			continue
		}
		delete(e.index, id)
		report.Dangling++
		e.logger.Warn("grid: sync removed dangling index entry", "window_id", id, "cell", i)
	}

	for i, c := range e.cells {
		if c.empty() {
			continue
		}
		owner := e.pixelOwner(i)
		if owner == 0 || owner == c.occupant {
			continue
		}
		if _, tracked := e.index[owner]; !tracked {
			continue
		}
		report.PixelMismatches++
		e.logger.Warn("grid: cell visually held by another tracked window",
			"cell", i,
			"occupant", c.occupant,
			"pixel_owner", owner,
		)
	}

	if n := report.Corrections(); n > 0 {
		syncCorrections.Add(float64(n))
		occupiedCells.Set(float64(e.occupiedLocked()))
	}
	return report
}
