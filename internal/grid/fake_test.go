package grid

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/1broseidon/gridstart/internal/platform"
)

type fakeWindow struct {
	rect    platform.Rect
	valid   bool
	visible bool
	class   string
	// stuck windows ignore move requests.
	stuck bool
	// maxHeight > 0 clamps requested heights, like a terminal host would.
	maxHeight int
}

type fakeAdapter struct {
	mu       sync.Mutex
	windows  map[platform.WindowID]*fakeWindow
	pixels   map[[2]int]platform.WindowID
	calls    int
	moves    map[platform.WindowID][]platform.Rect
	closed   []platform.WindowID
	closeErr error
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		windows: make(map[platform.WindowID]*fakeWindow),
		pixels:  make(map[[2]int]platform.WindowID),
		moves:   make(map[platform.WindowID][]platform.Rect),
	}
}

// add registers a visible 200x100 window at a position no cell uses.
func (f *fakeAdapter) add(id platform.WindowID) *fakeWindow {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := &fakeWindow{
		rect:    platform.Rect{X: -5000, Y: -5000, Width: 200, Height: 100},
		valid:   true,
		visible: true,
	}
	f.windows[id] = w
	return w
}

func (f *fakeAdapter) window(id platform.WindowID) *fakeWindow {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.windows[id]
}

func (f *fakeAdapter) setPixel(x, y int, id platform.WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pixels[[2]int{x, y}] = id
}

func (f *fakeAdapter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeAdapter) moveCount(id platform.WindowID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.moves[id])
}

func (f *fakeAdapter) Rect(id platform.WindowID) (platform.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	w, ok := f.windows[id]
	if !ok || !w.valid {
		return platform.Rect{}, errors.New("no such window")
	}
	return w.rect, nil
}

func (f *fakeAdapter) MoveResize(id platform.WindowID, r platform.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	w, ok := f.windows[id]
	if !ok || !w.valid {
		return errors.New("no such window")
	}
	f.moves[id] = append(f.moves[id], r)
	if w.stuck {
		return nil
	}
	if w.maxHeight > 0 && r.Height > w.maxHeight {
		r.Height = w.maxHeight
	}
	w.rect = r
	return nil
}

func (f *fakeAdapter) IsValid(id platform.WindowID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	w, ok := f.windows[id]
	return ok && w.valid
}

func (f *fakeAdapter) IsVisible(id platform.WindowID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	w, ok := f.windows[id]
	return ok && w.valid && w.visible
}

func (f *fakeAdapter) ClassName(id platform.WindowID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if w, ok := f.windows[id]; ok {
		return w.class
	}
	return ""
}

func (f *fakeAdapter) WindowAt(x, y int) platform.WindowID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.pixels[[2]int{x, y}]
}

func (f *fakeAdapter) Close(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.closed = append(f.closed, id)
	if w, ok := f.windows[id]; ok {
		w.valid = false
	}
	return f.closeErr
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMonitor() platform.Rect {
	return platform.Rect{X: 0, Y: 0, Width: 1000, Height: 800}
}

func newTestEngine(t *testing.T, cfg Config, adapter Adapter, clock *fakeClock, opts ...Option) *Engine {
	t.Helper()
	if cfg.Monitor.Empty() {
		cfg.Monitor = testMonitor()
	}
	if cfg.Rows == 0 {
		cfg.Rows = 2
	}
	if cfg.Cols == 0 {
		cfg.Cols = 2
	}
	base := []Option{WithLogger(quietLogger()), WithSleep(func(time.Duration) {})}
	if clock != nil {
		base = append(base, WithClock(clock.Now))
	}
	e, err := NewEngine(cfg, adapter, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// checkConsistent fails the test if the cell table and the index disagree.
func checkConsistent(t *testing.T, e *Engine) {
	t.Helper()
	e.mu.Lock()
	defer e.mu.Unlock()

	for id, i := range e.index {
		if i < 0 || i >= len(e.cells) {
			t.Fatalf("index entry %d -> %d out of range", id, i)
		}
		if e.cells[i].occupant != id {
			t.Fatalf("index says %d in cell %d, cell holds %d", id, i, e.cells[i].occupant)
		}
	}
	for i, c := range e.cells {
		if (c.occupant != 0) != !c.filledAt.IsZero() {
			t.Fatalf("cell %d: occupant %d with filledAt %v", i, c.occupant, c.filledAt)
		}
		if c.occupant == 0 {
			continue
		}
		if j, ok := e.index[c.occupant]; !ok || j != i {
			t.Fatalf("cell %d holds %d but index has (%d, %v)", i, c.occupant, j, ok)
		}
	}
}

func intPtr(v int) *int { return &v }
