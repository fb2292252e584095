package grid

import (
	"github.com/1broseidon/gridstart/internal/platform"
)

// place moves id into cell i and verifies the result. It never touches the
// cell table.
func (e *Engine) place(id platform.WindowID, i int) bool {
	target := e.targetRect(id, i)

	if e.isConsole(id) {
		e.shrinkToFit(id, target)
	} else if err := e.adapter.MoveResize(id, target); err != nil {
		e.logger.Debug("grid: move failed", "window_id", id, "cell", i, "error", err)
		return false
	}
	e.settle()

	got, err := e.adapter.Rect(id)
	if err != nil {
		e.logger.Debug("grid: reading geometry failed", "window_id", id, "error", err)
		return false
	}
	if got.X != target.X || got.Y != target.Y {
		e.logger.Debug("grid: position mismatch",
			"window_id", id,
			"want_x", target.X, "want_y", target.Y,
			"got_x", got.X, "got_y", got.Y,
		)
		return false
	}
	return true
}

// targetRect is the cell itself with FitToCell, otherwise the window's
// current size centered in the cell.
func (e *Engine) targetRect(id platform.WindowID, i int) platform.Rect {
	cellRect := e.cfg.CellRect(i)
	if e.cfg.FitToCell {
		return cellRect
	}
	cur, err := e.adapter.Rect(id)
	if err != nil || cur.Empty() {
		return cellRect
	}
	return e.cfg.centerIn(cellRect, cur.Width, cur.Height)
}

// shrinkToFit handles terminal hosts that snap to character-cell sizes and
// reject the requested height. It retries with smaller heights until the
// position matches and the height is close enough, then leaves the window
// wherever it settled.
func (e *Engine) shrinkToFit(id platform.WindowID, target platform.Rect) {
	req := target
	for {
		if err := e.adapter.MoveResize(id, req); err == nil {
			e.settle()
			got, err := e.adapter.Rect(id)
			if err == nil && got.X == req.X && got.Y == req.Y && abs(got.Height-req.Height) <= consoleHeightSlack {
				return
			}
		}
		if req.Height-consoleStep < consoleMinHeight {
			return
		}
		req.Height -= consoleStep
	}
}

func (e *Engine) settle() {
	if e.cfg.SettleDelay > 0 {
		e.sleep(e.cfg.SettleDelay)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
