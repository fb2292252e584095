package daemon

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/1broseidon/gridstart/internal/config"
	"github.com/1broseidon/gridstart/internal/platform"
)

var errGone = errors.New("window gone")

type fakeWindow struct {
	pid   int
	class string
	rect  platform.Rect
	valid bool
}

type fakePlatform struct {
	mu      sync.Mutex
	windows map[platform.WindowID]*fakeWindow
	active  platform.WindowID
	focused []platform.WindowID
	watched []platform.WindowID
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{windows: make(map[platform.WindowID]*fakeWindow)}
}

func (f *fakePlatform) add(id platform.WindowID, pid int, class string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows[id] = &fakeWindow{
		pid:   pid,
		class: class,
		rect:  platform.Rect{X: -5000, Y: -5000, Width: 200, Height: 100},
		valid: true,
	}
}

func (f *fakePlatform) remove(id platform.WindowID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.windows, id)
}

func (f *fakePlatform) Windows() ([]platform.WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]platform.WindowID, 0, len(f.windows))
	for id := range f.windows {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakePlatform) Rect(id platform.WindowID) (platform.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[id]
	if !ok {
		return platform.Rect{}, errGone
	}
	return w.rect, nil
}

func (f *fakePlatform) MoveResize(id platform.WindowID, bounds platform.Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[id]
	if !ok {
		return errGone
	}
	w.rect = bounds
	return nil
}

func (f *fakePlatform) IsValid(id platform.WindowID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.windows[id]
	return ok && w.valid
}

func (f *fakePlatform) IsVisible(id platform.WindowID) bool {
	return f.IsValid(id)
}

func (f *fakePlatform) ClassName(id platform.WindowID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[id]; ok {
		return w.class
	}
	return ""
}

func (f *fakePlatform) PID(id platform.WindowID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.windows[id]; ok {
		return w.pid
	}
	return 0
}

func (f *fakePlatform) WindowAt(x, y int) platform.WindowID {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, w := range f.windows {
		if w.rect.Contains(x, y) {
			return id
		}
	}
	return 0
}

func (f *fakePlatform) Close(id platform.WindowID) error {
	f.remove(id)
	return nil
}

func (f *fakePlatform) MonitorRect(int, bool) (platform.Rect, error) {
	return platform.Rect{Width: 1000, Height: 800}, nil
}

func (f *fakePlatform) ActiveWindow() (platform.WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, nil
}

func (f *fakePlatform) Focus(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.focused = append(f.focused, id)
	return nil
}

func (f *fakePlatform) WatchDestroy(id platform.WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.watched = append(f.watched, id)
	return nil
}

type fakeTree struct {
	mu    sync.Mutex
	pids  []int
	alive map[int]bool
}

func (t *fakeTree) set(pids ...int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pids = pids
}

func (t *fakeTree) Tree(int) ([]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]int(nil), t.pids...), nil
}

func (t *fakeTree) Alive(pid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alive[pid]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Grid.SettleDelayMs = 0
	cfg.PollIntervalMs = 10
	return cfg
}
