package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/gridstart/internal/config"
	"github.com/1broseidon/gridstart/internal/daemon"
	"github.com/1broseidon/gridstart/internal/effects"
	"github.com/1broseidon/gridstart/internal/ipc"
	"github.com/1broseidon/gridstart/internal/launch"
	"github.com/1broseidon/gridstart/internal/observe"
	"github.com/1broseidon/gridstart/internal/platform"
	"github.com/1broseidon/gridstart/internal/proctree"
	"github.com/1broseidon/gridstart/internal/runtimepath"
)

func runLaunch(args []string) int {
	var opts launchOptions
	fs := newLaunchFlagSet(&opts)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: gridstart [run] [options] <program|url> [args...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Launch a program and place its windows into grid cells.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "missing program or url")
		fs.Usage()
		return 2
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := opts.apply(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	if err := launchAndTile(cfg, &opts, fs.Arg(0), fs.Args()[1:], logger); err != nil {
		logger.Error("gridstart failed", "error", err)
		return 1
	}
	return 0
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	level, _ := config.ParseLogLevel(cfg.LogLevel)
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

func launchAndTile(cfg *config.Config, opts *launchOptions, target string, args []string, logger *slog.Logger) error {
	backend, err := platform.NewLinuxBackendFromDisplay()
	if err != nil {
		return fmt.Errorf("connect to display: %w", err)
	}
	defer backend.Disconnect()
	go backend.EventLoop()

	tracker, err := proctree.NewTracker()
	if err != nil {
		return err
	}

	runner := effects.NewRunner(backend, effects.Options{
		HideTitleBar:   cfg.Effects.HideTitleBar,
		HideBorder:     cfg.Effects.HideBorder,
		FlashTopmost:   time.Duration(cfg.Effects.FlashTopmostMs) * time.Millisecond,
		ShakeDuration:  time.Duration(cfg.Effects.ShakeDurationMs) * time.Millisecond,
		ShakeIntensity: cfg.Effects.ShakeIntensity,
	}, logger)
	defer runner.Wait()

	watcher := daemon.NewWatcher(daemon.WatcherConfig{
		Config:              cfg,
		Follow:              opts.followChildren(),
		FollowForever:       opts.followForever,
		RetainLauncherFocus: opts.retainLauncher,
		RetainParentFocus:   opts.retainParent,
		OnPlaced: func(ctx context.Context, id platform.WindowID, _ int) {
			runner.Apply(ctx, id)
		},
		Logger: logger,
	}, backend, tracker)
	if err := watcher.SnapshotExisting(); err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := sigCtx, context.CancelFunc(func() {})
	if d := opts.timeoutDuration(); d > 0 {
		ctx, cancel = context.WithTimeout(sigCtx, d)
	}
	defer cancel()

	proc, err := launch.New(logger).Start(ctx, target, args)
	if err != nil {
		return err
	}
	// Reap the child so it does not linger as a zombie.
	go proc.Wait()

	socketPath, err := runtimepath.SocketPath(os.Getpid())
	if err != nil {
		return err
	}
	server := ipc.NewServer(socketPath, watcher, logger)
	if err := server.Start(); err != nil {
		logger.Warn("IPC disabled", "error", err)
	} else {
		defer server.Stop()
	}

	engine := watcher.Engine()
	go daemon.NewStateSynchronizer(engine, logger).Run(ctx, backend.DestroyEvents())
	if interval := cfg.AuditInterval(); interval > 0 {
		go daemon.NewReconciler(daemon.ReconcilerConfig{Interval: interval, Logger: logger}, engine).Run(ctx)
	}
	if cfg.MetricsListen != "" {
		go func() {
			if err := observe.Serve(ctx, cfg.MetricsListen, watcher, logger); err != nil {
				logger.Warn("debug server failed", "error", err)
			}
		}()
	}

	err = watcher.Run(ctx, proc.PID)
	switch {
	case sigCtx.Err() != nil:
		logger.Info("interrupted")
		if !opts.keepOpen {
			killTracked(tracker, watcher.TrackedPIDs(), logger)
		}
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, daemon.ErrProcessTreeExited):
		return nil
	}
	return err
}

func killTracked(tracker *proctree.Tracker, pids []int, logger *slog.Logger) {
	alive := pids[:0]
	for _, pid := range pids {
		if pid != os.Getpid() && tracker.Alive(pid) {
			alive = append(alive, pid)
		}
	}
	if len(alive) == 0 {
		return
	}
	logger.Info("stopping launched processes", "pids", alive)
	if err := launch.KillTree(alive); err != nil {
		logger.Warn("failed to stop some processes", "error", err)
	}
}
