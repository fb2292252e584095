// Package effects runs the cosmetic follow-ups to a placement: decoration
// hiding, a brief always-on-top flash and a shake.
package effects

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/gridstart/internal/platform"
)

// Mover is the window surface effects need.
type Mover interface {
	Rect(id platform.WindowID) (platform.Rect, error)
	MoveResize(id platform.WindowID, bounds platform.Rect) error
	SetAbove(id platform.WindowID, above bool) error
	HideDecorations(id platform.WindowID, title, border bool) error
}

// Options selects the effects applied to each placed window.
type Options struct {
	HideTitleBar   bool
	HideBorder     bool
	FlashTopmost   time.Duration
	ShakeDuration  time.Duration
	ShakeIntensity int
}

// Enabled reports whether any effect is configured.
func (o Options) Enabled() bool {
	return o.HideTitleBar || o.HideBorder || o.FlashTopmost > 0 || o.ShakeDuration > 0
}

const shakeStep = 50 * time.Millisecond

// Runner starts effects on their own goroutines. Effects never touch the
// grid engine. Wait joins them at shutdown.
type Runner struct {
	mover  Mover
	opts   Options
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) bool

	wg sync.WaitGroup
}

// NewRunner creates a Runner.
func NewRunner(mover Mover, opts Options, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{mover: mover, opts: opts, logger: logger, sleep: sleepCtx}
}

// Apply runs the configured effects for a freshly placed window. Decorations
// are changed synchronously; flash and shake run in the background.
func (r *Runner) Apply(ctx context.Context, id platform.WindowID) {
	if r == nil || !r.opts.Enabled() {
		return
	}

	if r.opts.HideTitleBar || r.opts.HideBorder {
		if err := r.mover.HideDecorations(id, r.opts.HideTitleBar, r.opts.HideBorder); err != nil {
			r.logger.Debug("effects: hide decorations failed", "window_id", id, "error", err)
		}
	}
	if r.opts.FlashTopmost > 0 {
		r.Go(func() { r.flash(ctx, id) })
	}
	if r.opts.ShakeDuration > 0 {
		r.Go(func() { r.shake(ctx, id) })
	}
}

// Go runs fn on a tracked goroutine.
func (r *Runner) Go(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("effects: panic recovered", "panic", rec)
			}
		}()
		fn()
	}()
}

// Wait blocks until every started effect has finished.
func (r *Runner) Wait() {
	if r != nil {
		r.wg.Wait()
	}
}

func (r *Runner) flash(ctx context.Context, id platform.WindowID) {
	if err := r.mover.SetAbove(id, true); err != nil {
		r.logger.Debug("effects: flash failed", "window_id", id, "error", err)
		return
	}
	r.sleep(ctx, r.opts.FlashTopmost)
	// Always drop the state, even on cancellation.
	if err := r.mover.SetAbove(id, false); err != nil {
		r.logger.Debug("effects: unflash failed", "window_id", id, "error", err)
	}
}

// shake nudges the window left, right, up and down in turn, then puts it
// back where it started.
func (r *Runner) shake(ctx context.Context, id platform.WindowID) {
	origin, err := r.mover.Rect(id)
	if err != nil {
		return
	}
	defer func() {
		if err := r.mover.MoveResize(id, origin); err != nil {
			r.logger.Debug("effects: restore after shake failed", "window_id", id, "error", err)
		}
	}()

	d := r.opts.ShakeIntensity
	offsets := [][2]int{{-d, 0}, {d, 0}, {0, -d}, {0, d}}
	deadline := time.Now().Add(r.opts.ShakeDuration)
	for step := 0; time.Now().Before(deadline); step++ {
		off := offsets[step%len(offsets)]
		next := origin
		next.X += off[0]
		next.Y += off[1]
		if err := r.mover.MoveResize(id, next); err != nil {
			return
		}
		if !r.sleep(ctx, shakeStep) {
			return
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
