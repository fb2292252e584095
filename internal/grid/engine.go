package grid

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/gridstart/internal/platform"
)

// Adapter is the window-system surface the engine needs.
// platform.Backend satisfies it.
type Adapter interface {
	Rect(id platform.WindowID) (platform.Rect, error)
	MoveResize(id platform.WindowID, bounds platform.Rect) error
	IsValid(id platform.WindowID) bool
	IsVisible(id platform.WindowID) bool
	ClassName(id platform.WindowID) string
	WindowAt(x, y int) platform.WindowID
	Close(id platform.WindowID) error
}

// Engine assigns windows to grid cells and reclaims cells. All methods are
// safe for concurrent use; each holds the engine lock for its full duration.
type Engine struct {
	cfg      Config
	adapter  Adapter
	logger   *slog.Logger
	now      func() time.Time
	sleep    func(time.Duration)
	consoles map[string]struct{}

	mu          sync.Mutex
	cells       []cell
	index       map[platform.WindowID]int
	failures    map[platform.WindowID]int
	launcher    platform.WindowID
	cursor      int
	hasBeenFull bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSleep replaces time.Sleep for move settling.
func WithSleep(sleep func(time.Duration)) Option {
	return func(e *Engine) {
		if sleep != nil {
			e.sleep = sleep
		}
	}
}

// WithLauncher designates the launcher window up front.
func WithLauncher(id platform.WindowID) Option {
	return func(e *Engine) {
		e.launcher = id
	}
}

// NewEngine creates an engine with an empty cell table.
func NewEngine(cfg Config, adapter Adapter, opts ...Option) (*Engine, error) {
	if adapter == nil {
		return nil, fmt.Errorf("%w: nil adapter", ErrInvalidConfig)
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ReservedCell != nil {
		r := *cfg.ReservedCell
		cfg.ReservedCell = &r
	}

	e := &Engine{
		cfg:      cfg,
		adapter:  adapter,
		logger:   slog.Default(),
		now:      time.Now,
		sleep:    time.Sleep,
		consoles: make(map[string]struct{}, len(cfg.ConsoleClasses)),
		cells:    make([]cell, cfg.Cells()),
		index:    make(map[platform.WindowID]int),
		failures: make(map[platform.WindowID]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, class := range cfg.ConsoleClasses {
		e.consoles[strings.ToLower(class)] = struct{}{}
	}
	if cfg.ReservedCell != nil && cfg.Cells() == 1 {
		e.logger.Warn("grid: the only cell is reserved, ordinary windows will not be placed")
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// SetLauncher designates the launcher window. It is the only window that
// may take the reserved cell and is never chosen by oldest-cell eviction.
func (e *Engine) SetLauncher(id platform.WindowID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.launcher = id
}

// Launcher returns the designated launcher window, or 0.
func (e *Engine) Launcher() platform.WindowID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.launcher
}

// Assign places id in a cell and returns the cell index. A window that is
// already placed keeps its cell and is not moved. It returns false when the
// window has exhausted its attempts, no cell can be found or freed, or the
// move could not be verified.
func (e *Engine) Assign(id platform.WindowID) (int, bool) {
	if id == 0 {
		return -1, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if i, ok := e.index[id]; ok {
		assignments.WithLabelValues("existing").Inc()
		return i, true
	}
	if e.failures[id] >= e.cfg.MaxAttempts {
		assignments.WithLabelValues("skipped").Inc()
		return -1, false
	}

	target := e.pick(id)
	if target < 0 {
		if e.launcherOwnsReserved(id) {
			// Eviction never frees the reserved cell, so there is nothing to retry.
			assignments.WithLabelValues("none").Inc()
			return -1, false
		}
		freed, ok := e.evictOldest()
		if !ok {
			e.logger.Debug("grid: no cell available", "window_id", id)
			assignments.WithLabelValues("none").Inc()
			return -1, false
		}
		target = freed
	}

	if !e.place(id, target) {
		e.failures[id]++
		e.logger.Info("grid: placement not verified",
			"window_id", id,
			"cell", target,
			"attempt", e.failures[id],
			"max_attempts", e.cfg.MaxAttempts,
		)
		assignments.WithLabelValues("failed").Inc()
		return -1, false
	}

	e.occupy(target, id)
	delete(e.failures, id)
	assignments.WithLabelValues("placed").Inc()
	e.logger.Debug("grid: placed window", "window_id", id, "cell", target)
	return target, true
}

// Release frees the cell held by id, typically after the window was
// destroyed. It reports the freed cell.
func (e *Engine) Release(id platform.WindowID) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.failures, id)

	i, ok := e.index[id]
	if !ok || e.cells[i].occupant != id {
		// Fall back to a scan in case the index lost the entry.
		i, ok = -1, false
		for j, c := range e.cells {
			if c.occupant == id {
				i, ok = j, true
				break
			}
		}
		delete(e.index, id)
	}
	if !ok {
		return -1, false
	}

	e.clear(i)
	evictions.WithLabelValues("destroyed").Inc()
	return i, true
}

// Failures returns the number of failed placements recorded for id.
func (e *Engine) Failures(id platform.WindowID) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failures[id]
}

// CellOf returns the cell holding id.
func (e *Engine) CellOf(id platform.WindowID) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i, ok := e.index[id]
	return i, ok
}

// Occupied returns the number of occupied cells.
func (e *Engine) Occupied() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.occupiedLocked()
}

// HasBeenFull reports whether every ordinary cell has been occupied at once.
func (e *Engine) HasBeenFull() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hasBeenFull
}

func (e *Engine) launcherOwnsReserved(id platform.WindowID) bool {
	return id == e.launcher && e.cfg.ReservedCell != nil
}

// candidates lists the cells id may take, in ascending order.
func (e *Engine) candidates(id platform.WindowID) []int {
	if e.launcherOwnsReserved(id) {
		return []int{*e.cfg.ReservedCell}
	}
	out := make([]int, 0, len(e.cells))
	for i := range e.cells {
		if !e.cfg.isReserved(i) {
			out = append(out, i)
		}
	}
	return out
}

// pick chooses a target cell under the configured policy, or -1.
func (e *Engine) pick(id platform.WindowID) int {
	if e.launcherOwnsReserved(id) {
		r := *e.cfg.ReservedCell
		if e.available(r) {
			return r
		}
		return -1
	}
	if e.cfg.Policy == PolicySequential {
		return e.pickSequential()
	}
	return e.pickFirstFree(id)
}

func (e *Engine) pickFirstFree(id platform.WindowID) int {
	now := e.now()
	for _, i := range e.candidates(id) {
		if !e.available(i) {
			continue
		}
		if e.cfg.EvictionTimeout > 0 {
			if at := e.cells[i].filledAt; !at.IsZero() && now.Sub(at) <= e.cfg.EvictionTimeout {
				continue
			}
		}
		if owner := e.pixelOwner(i); owner != 0 && owner != id {
			if _, tracked := e.index[owner]; tracked {
				e.logger.Debug("grid: cell visually held by tracked window", "cell", i, "owner", owner)
				continue
			}
		}
		return i
	}
	return -1
}

// pickSequential advances the cursor at most one lap and takes the first
// available cell it lands on. Timeout and pixel checks do not apply.
func (e *Engine) pickSequential() int {
	n := len(e.cells)
	for step := 0; step < n; step++ {
		i := e.cursor
		e.cursor = (e.cursor + 1) % n
		if e.cfg.isReserved(i) {
			continue
		}
		if e.available(i) {
			return i
		}
	}
	return -1
}

func (e *Engine) pixelOwner(i int) platform.WindowID {
	x, y := e.cfg.CellCenter(i)
	return e.adapter.WindowAt(x, y)
}

func (e *Engine) isConsole(id platform.WindowID) bool {
	if len(e.consoles) == 0 {
		return false
	}
	_, ok := e.consoles[strings.ToLower(e.adapter.ClassName(id))]
	return ok
}
