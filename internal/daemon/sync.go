package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/gridstart/internal/platform"
	"golang.org/x/time/rate"
)

// StateSynchronizer turns destroy notifications into grid releases. A
// repair pass follows each release, throttled so a burst of closing
// windows does not audit the table once per window.
type StateSynchronizer struct {
	engine  *EngineRef
	logger  *slog.Logger
	limiter *rate.Limiter
}

// NewStateSynchronizer creates a new state synchronizer.
func NewStateSynchronizer(engine *EngineRef, logger *slog.Logger) *StateSynchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateSynchronizer{
		engine:  engine,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
}

// Run consumes destroy notifications until ctx is cancelled or events is
// closed.
func (s *StateSynchronizer) Run(ctx context.Context, events <-chan platform.WindowID) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-events:
			if !ok {
				return
			}
			s.HandleWindowClosed(id)
		}
	}
}

// HandleWindowClosed is called when a tracked window is destroyed. It frees
// the window's cell. Unknown windows are ignored.
func (s *StateSynchronizer) HandleWindowClosed(id platform.WindowID) {
	engine := s.engine.Load()
	if engine == nil {
		return
	}

	cell, ok := engine.Release(id)
	if !ok {
		return
	}
	s.logger.Info("window closed, cell released", "window_id", id, "cell", cell)

	if !s.limiter.Allow() {
		return
	}
	if report := engine.CheckAndFixSync(); report.Corrections() > 0 {
		s.logger.Info("sync: drift corrected after close", "corrections", report.Corrections())
	}
}
