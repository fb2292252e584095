package daemon

import (
	"context"
	"log/slog"
	"time"
)

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically audits the grid against the window system and
// repairs drift the event path missed.
type Reconciler struct {
	interval time.Duration
	engine   *EngineRef
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler with the given configuration.
func NewReconciler(cfg ReconcilerConfig, engine *EngineRef) *Reconciler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		interval: interval,
		engine:   engine,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			r.reconcile()
		}
	}
}

// reconcile performs a single reconciliation pass.
func (r *Reconciler) reconcile() {
	// Recover from panics to prevent crashing the daemon
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("reconciler panic recovered", "error", err)
		}
	}()

	engine := r.engine.Load()
	if engine == nil {
		return
	}

	report := engine.CheckAndFixSync()
	if n := report.Corrections(); n > 0 {
		r.logger.Info("reconciler: grid drift corrected",
			"missing", report.MissingIndex,
			"mismatched", report.Mismatched,
			"dangling", report.Dangling,
			"corrections", n)
	}
	if report.PixelMismatches > 0 {
		r.logger.Debug("reconciler: pixel mismatches", "cells", report.PixelMismatches)
	}
}

// ReconcileNow triggers an immediate reconciliation (useful for testing).
func (r *Reconciler) ReconcileNow() {
	r.reconcile()
}
