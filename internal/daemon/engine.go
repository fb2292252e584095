package daemon

import (
	"sync/atomic"

	"github.com/1broseidon/gridstart/internal/grid"
)

// EngineRef holds the grid engine once the watcher has created it. The
// engine appears lazily with the first eligible window, so readers must
// handle nil.
type EngineRef struct {
	p atomic.Pointer[grid.Engine]
}

// Load returns the engine, or nil before the first window was seen.
func (r *EngineRef) Load() *grid.Engine {
	if r == nil {
		return nil
	}
	return r.p.Load()
}

func (r *EngineRef) store(e *grid.Engine) {
	r.p.Store(e)
}
