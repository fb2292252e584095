package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/1broseidon/gridstart/internal/config"
	"github.com/1broseidon/gridstart/internal/grid"
	"github.com/1broseidon/gridstart/internal/platform"
	catrate "github.com/joeycumines/go-catrate"
)

// Platform is the window-system surface the watcher drives.
type Platform interface {
	grid.Adapter
	Windows() ([]platform.WindowID, error)
	PID(id platform.WindowID) int
	MonitorRect(index int, fullArea bool) (platform.Rect, error)
	ActiveWindow() (platform.WindowID, error)
	Focus(id platform.WindowID) error
	WatchDestroy(id platform.WindowID) error
}

// ProcessTree lists a process and its live descendants.
// *proctree.Tracker satisfies it.
type ProcessTree interface {
	Tree(root int) ([]int, error)
	Alive(pid int) bool
}

var (
	// ErrProcessTreeExited is returned by Run when every tracked process is gone.
	ErrProcessTreeExited = errors.New("process tree exited")
	// ErrNoGrid is returned by grid queries before the first window appeared.
	ErrNoGrid = errors.New("no grid yet")
)

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Config *config.Config
	// Follow keeps placing windows of child processes after the launcher
	// window; without it the watcher stops once the launcher is placed.
	Follow bool
	// FollowForever keeps running after the process tree has exited.
	FollowForever bool
	// RetainLauncherFocus gives focus back to the window that was active
	// before launch after every placement.
	RetainLauncherFocus bool
	// RetainParentFocus focuses the launcher window when the watcher stops.
	RetainParentFocus bool
	// OnPlaced runs after a window got its cell for the first time.
	OnPlaced func(ctx context.Context, id platform.WindowID, cell int)
	Logger   *slog.Logger
}

// Status is a summary of the watcher for diagnostics.
type Status struct {
	RootPID     int               `json:"root_pid"`
	TrackedPIDs []int             `json:"tracked_pids"`
	Launcher    platform.WindowID `json:"launcher,omitempty"`
	Placed      int               `json:"placed"`
	Occupied    int               `json:"occupied"`
	Cells       int               `json:"cells"`
	Follow      bool              `json:"follow"`
	Forever     bool              `json:"follow_forever"`
	StartedAt   time.Time         `json:"started_at"`
	Polls       int               `json:"polls"`
}

// Watcher is the poll loop: it finds windows of the launched process tree
// and hands them to the grid engine.
type Watcher struct {
	cfg      WatcherConfig
	platform Platform
	tree     ProcessTree
	logger   *slog.Logger
	engine   EngineRef
	warn     *catrate.Limiter

	mu        sync.Mutex
	existing  map[platform.WindowID]struct{}
	home      platform.WindowID
	root      int
	tracked   map[int]struct{}
	placed    int
	polls     int
	startedAt time.Time
}

// NewWatcher creates a watcher. Call SnapshotExisting before launching the
// program so its windows can be told apart from ones already open.
func NewWatcher(cfg WatcherConfig, p Platform, tree ProcessTree) *Watcher {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Config == nil {
		cfg.Config = config.DefaultConfig()
	}
	return &Watcher{
		cfg:      cfg,
		platform: p,
		tree:     tree,
		logger:   logger,
		// At most three warnings per window per minute.
		warn:     catrate.NewLimiter(map[time.Duration]int{time.Minute: 3}),
		existing: make(map[platform.WindowID]struct{}),
		tracked:  make(map[int]struct{}),
	}
}

// SnapshotExisting records the windows that are open right now. They are
// never placed. It also remembers the active window for focus retention.
func (w *Watcher) SnapshotExisting() error {
	ids, err := w.platform.Windows()
	if err != nil {
		return fmt.Errorf("snapshot windows: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, id := range ids {
		w.existing[id] = struct{}{}
	}
	if active, err := w.platform.ActiveWindow(); err == nil {
		w.home = active
	}
	w.logger.Debug("watcher: snapshot taken", "windows", len(ids), "home", w.home)
	return nil
}

// Engine returns the engine reference shared with the bridge and diagnostics.
func (w *Watcher) Engine() *EngineRef {
	return &w.engine
}

// Run polls until ctx is cancelled, the process tree exits (unless
// FollowForever) or, without Follow, the launcher window has been placed.
func (w *Watcher) Run(ctx context.Context, rootPID int) error {
	w.mu.Lock()
	w.root = rootPID
	w.startedAt = time.Now()
	w.mu.Unlock()

	interval := w.cfg.Config.PollInterval()
	w.logger.Info("watcher started", "root_pid", rootPID, "interval", interval, "follow", w.cfg.Follow, "follow_forever", w.cfg.FollowForever)
	defer w.finish()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := w.tick(ctx)
		if err != nil || done {
			return err
		}

		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tick runs one poll. It reports done when the watcher should stop.
func (w *Watcher) tick(ctx context.Context) (done bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("watcher panic recovered", "error", r)
		}
	}()

	alive, err := w.refreshTracked()
	if err != nil {
		w.logger.Warn("watcher: failed to read process tree", "error", err)
	}
	if !alive && !w.cfg.FollowForever {
		w.logger.Info("watcher: process tree exited")
		return true, ErrProcessTreeExited
	}

	candidates, err := w.candidates()
	if err != nil {
		w.logger.Warn("watcher: failed to list windows", "error", err)
		return false, nil
	}

	if len(candidates) > 0 {
		if err := w.ensureEngine(candidates); err != nil {
			return true, err
		}
	}

	engine := w.engine.Load()
	if engine == nil {
		return false, nil
	}

	for _, id := range candidates {
		if !w.cfg.Follow && id != engine.Launcher() {
			continue
		}
		w.assign(ctx, engine, id)
	}

	if cell, ok := engine.SweepExpired(); ok {
		w.logger.Info("watcher: timed out occupant evicted", "cell", cell)
	}

	if !w.cfg.Follow {
		if _, ok := engine.CellOf(engine.Launcher()); ok {
			return true, nil
		}
	}
	return false, nil
}

// refreshTracked updates the tracked pid set from the process tree. Pids
// seen once stay tracked, so children reparented after the root exited are
// still followed. It reports whether any tracked process is alive.
func (w *Watcher) refreshTracked() (bool, error) {
	w.mu.Lock()
	root := w.root
	w.polls++
	w.mu.Unlock()

	pids, err := w.tree.Tree(root)
	if err != nil {
		// Assume alive; the next poll will tell.
		return true, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, pid := range pids {
		w.tracked[pid] = struct{}{}
	}
	if len(pids) > 0 {
		return true, nil
	}
	for pid := range w.tracked {
		if w.tree.Alive(pid) {
			return true, nil
		}
	}
	return false, nil
}

// candidates returns new, visible, allowed windows owned by a tracked
// process, the launcher first.
func (w *Watcher) candidates() ([]platform.WindowID, error) {
	ids, err := w.platform.Windows()
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]platform.WindowID, 0, len(ids))
	for _, id := range ids {
		if _, old := w.existing[id]; old {
			continue
		}
		pid := w.platform.PID(id)
		if _, ok := w.tracked[pid]; !ok || pid == 0 {
			continue
		}
		if !w.platform.IsVisible(id) {
			continue
		}
		if class := w.platform.ClassName(id); w.cfg.Config.Denied(class) {
			w.logger.Debug("watcher: skipping denied class", "window_id", id, "class", class)
			continue
		}
		out = append(out, id)
	}

	launcher := platform.WindowID(0)
	if e := w.engine.Load(); e != nil {
		launcher = e.Launcher()
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i] == launcher) != (out[j] == launcher) {
			return out[i] == launcher
		}
		return out[i] < out[j]
	})
	return out, nil
}

// ensureEngine creates the engine and picks the launcher window on the
// first poll that sees a candidate.
func (w *Watcher) ensureEngine(candidates []platform.WindowID) error {
	engine := w.engine.Load()
	if engine == nil {
		monitor, err := w.platform.MonitorRect(w.cfg.Config.Grid.Monitor, w.cfg.Config.Grid.FullArea)
		if err != nil {
			w.logger.Warn("watcher: monitor lookup failed, using fallback", "error", err, "monitor", monitor)
		}
		engine, err = grid.NewEngine(w.cfg.Config.EngineConfig(monitor), w.platform, grid.WithLogger(w.logger))
		if err != nil {
			return fmt.Errorf("create grid: %w", err)
		}
		w.engine.store(engine)
		w.logger.Info("grid created",
			"rows", w.cfg.Config.Grid.Rows,
			"cols", w.cfg.Config.Grid.Cols,
			"monitor", monitor,
		)
	}

	if engine.Launcher() != 0 {
		return nil
	}

	w.mu.Lock()
	root := w.root
	w.mu.Unlock()

	launcher := candidates[0]
	for _, id := range candidates {
		if w.platform.PID(id) == root {
			launcher = id
			break
		}
	}
	engine.SetLauncher(launcher)
	w.logger.Info("watcher: launcher window found", "window_id", launcher)
	return nil
}

func (w *Watcher) assign(ctx context.Context, engine *grid.Engine, id platform.WindowID) {
	if _, placed := engine.CellOf(id); placed {
		return
	}

	cell, ok := engine.Assign(id)
	if !ok {
		if engine.Failures(id) > 0 {
			if _, allowed := w.warn.Allow(id); allowed {
				w.logger.Warn("watcher: window could not be placed", "window_id", id, "attempts", engine.Failures(id))
			}
		}
		return
	}

	w.mu.Lock()
	w.placed++
	home := w.home
	w.mu.Unlock()

	w.logger.Info("window placed", "window_id", id, "cell", cell)
	if err := w.platform.WatchDestroy(id); err != nil {
		w.logger.Debug("watcher: destroy subscription failed", "window_id", id, "error", err)
	}
	if w.cfg.OnPlaced != nil {
		w.cfg.OnPlaced(ctx, id, cell)
	}
	if w.cfg.RetainLauncherFocus && home != 0 {
		if err := w.platform.Focus(home); err != nil {
			w.logger.Debug("watcher: refocus failed", "window_id", home, "error", err)
		}
	}
}

func (w *Watcher) finish() {
	engine := w.engine.Load()
	if !w.cfg.RetainParentFocus || engine == nil || engine.Launcher() == 0 {
		return
	}
	if err := w.platform.Focus(engine.Launcher()); err != nil {
		w.logger.Debug("watcher: focusing launcher failed", "error", err)
	}
}

// TrackedPIDs returns every pid the watcher has seen in the tree.
func (w *Watcher) TrackedPIDs() []int {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]int, 0, len(w.tracked))
	for pid := range w.tracked {
		out = append(out, pid)
	}
	sort.Ints(out)
	return out
}

// Status returns a summary for diagnostics.
func (w *Watcher) Status() Status {
	pids := w.TrackedPIDs()

	w.mu.Lock()
	st := Status{
		RootPID:     w.root,
		TrackedPIDs: pids,
		Placed:      w.placed,
		Follow:      w.cfg.Follow,
		Forever:     w.cfg.FollowForever,
		StartedAt:   w.startedAt,
		Polls:       w.polls,
		Cells:       w.cfg.Config.Grid.Rows * w.cfg.Config.Grid.Cols,
	}
	w.mu.Unlock()

	if e := w.engine.Load(); e != nil {
		st.Launcher = e.Launcher()
		st.Occupied = e.Occupied()
	}
	return st
}

// Snapshot returns the current grid.
func (w *Watcher) Snapshot() (grid.Snapshot, error) {
	e := w.engine.Load()
	if e == nil {
		return grid.Snapshot{}, ErrNoGrid
	}
	return e.Snapshot(), nil
}

// CheckSync runs a repair pass on demand.
func (w *Watcher) CheckSync() (grid.SyncReport, error) {
	e := w.engine.Load()
	if e == nil {
		return grid.SyncReport{}, ErrNoGrid
	}
	return e.CheckAndFixSync(), nil
}
