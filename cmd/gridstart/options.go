package main

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/1broseidon/gridstart/internal/config"
	"github.com/1broseidon/gridstart/internal/grid"
)

var errBadGeometry = errors.New("expected ROWSxCOLS or ROWSxCOLSmMONITOR")

// geometry is the parsed value of -g.
type geometry struct {
	Rows, Cols int
	Monitor    int
	HasMonitor bool
}

// parseGeometry parses "2x3" or "2x3m1".
func parseGeometry(s string) (geometry, error) {
	var geom geometry
	s = strings.ToLower(strings.TrimSpace(s))

	dims, mon, hasMon := strings.Cut(s, "m")
	rows, cols, ok := strings.Cut(dims, "x")
	if !ok {
		return geom, fmt.Errorf("grid %q: %w", s, errBadGeometry)
	}

	var err error
	if geom.Rows, err = strconv.Atoi(rows); err != nil || geom.Rows < 1 {
		return geom, fmt.Errorf("grid %q: %w", s, errBadGeometry)
	}
	if geom.Cols, err = strconv.Atoi(cols); err != nil || geom.Cols < 1 {
		return geom, fmt.Errorf("grid %q: %w", s, errBadGeometry)
	}
	if hasMon {
		if geom.Monitor, err = strconv.Atoi(mon); err != nil || geom.Monitor < 0 {
			return geom, fmt.Errorf("grid %q: %w", s, errBadGeometry)
		}
		geom.HasMonitor = true
	}
	return geom, nil
}

// parseCellRef parses "ROW,COL".
func parseCellRef(s string) (config.CellRef, error) {
	r, c, ok := strings.Cut(s, ",")
	if !ok {
		return config.CellRef{}, fmt.Errorf("cell %q: expected ROW,COL", s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return config.CellRef{}, fmt.Errorf("cell %q: %w", s, err)
	}
	col, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return config.CellRef{}, fmt.Errorf("cell %q: %w", s, err)
	}
	return config.CellRef{Row: row, Col: col}, nil
}

// launchOptions holds the flags of the launch command.
type launchOptions struct {
	grid            string
	follow          bool
	followForever   bool
	timeout         int
	flashTopmost    int
	hideTitleBar    bool
	hideBorder      bool
	shakeDuration   int
	fitGrid         bool
	reserveParent   bool
	assignParent    string
	placement       string
	fullArea        bool
	retainParent    bool
	retainLauncher  bool
	keepOpen        bool
	configPath      string
	verbose         bool
	metricsListen   string
	evictionTimeout int
}

func newLaunchFlagSet(opts *launchOptions) *flag.FlagSet {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)

	fs.StringVar(&opts.grid, "g", "", "Grid as ROWSxCOLS, optionally with mMONITOR (e.g. 2x3m1)")
	fs.StringVar(&opts.grid, "grid", "", "Same as -g")
	fs.BoolVar(&opts.follow, "f", false, "Also place windows of child processes")
	fs.BoolVar(&opts.follow, "follow", false, "Same as -f")
	fs.BoolVar(&opts.followForever, "F", false, "Keep following after the launched process exits")
	fs.BoolVar(&opts.followForever, "follow-forever", false, "Same as -F")
	fs.IntVar(&opts.timeout, "t", 0, "Stop following after SECONDS (0 = no limit)")
	fs.IntVar(&opts.timeout, "timeout", 0, "Same as -t")
	fs.IntVar(&opts.flashTopmost, "flash-topmost", 0, "Keep each placed window on top for MS milliseconds")
	fs.BoolVar(&opts.hideTitleBar, "hide-title-bar", false, "Remove title bars of placed windows")
	fs.BoolVar(&opts.hideBorder, "hide-border", false, "Remove borders of placed windows")
	fs.IntVar(&opts.shakeDuration, "shake-duration", 0, "Shake each placed window for MS milliseconds")
	fs.BoolVar(&opts.fitGrid, "fit-grid", false, "Resize windows to fill their cell")
	fs.BoolVar(&opts.reserveParent, "reserve-parent-cell", false, "Reserve a cell for the launcher window (default 0,0)")
	fs.StringVar(&opts.assignParent, "assign-parent-cell", "", "Reserve cell ROW,COL for the launcher window")
	fs.StringVar(&opts.placement, "placement", "", "Placement policy: first-free or sequential")
	fs.BoolVar(&opts.fullArea, "full-area", false, "Use the whole monitor, ignoring panels and docks")
	fs.BoolVar(&opts.retainParent, "retain-parent-focus", false, "Focus the launcher window when done")
	fs.BoolVar(&opts.retainLauncher, "retain-launcher-focus", false, "Keep focus on this terminal while placing")
	fs.BoolVar(&opts.keepOpen, "keep-open", false, "Do not kill the launched processes on Ctrl+C")
	fs.IntVar(&opts.evictionTimeout, "eviction-timeout", -1, "Seconds after which an occupant may be replaced (0 = never)")
	fs.StringVar(&opts.metricsListen, "metrics-listen", "", "Serve /metrics, /healthz and /grid on ADDR")
	fs.StringVar(&opts.configPath, "config", "", "Config file path (default: ~/.config/gridstart/config.yaml)")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	return fs
}

// apply overlays explicitly given flags onto cfg and validates the result.
func (o *launchOptions) apply(cfg *config.Config) error {
	if o.grid != "" {
		geom, err := parseGeometry(o.grid)
		if err != nil {
			return err
		}
		cfg.Grid.Rows, cfg.Grid.Cols = geom.Rows, geom.Cols
		if geom.HasMonitor {
			cfg.Grid.Monitor = geom.Monitor
		}
	}
	if o.placement != "" {
		if _, err := grid.ParsePolicy(o.placement); err != nil {
			return err
		}
		cfg.Grid.Placement = o.placement
	}
	if o.fitGrid {
		cfg.Grid.FitToCell = true
	}
	if o.fullArea {
		cfg.Grid.FullArea = true
	}
	if o.reserveParent {
		cfg.Grid.ReserveLauncherCell = true
	}
	if o.assignParent != "" {
		cell, err := parseCellRef(o.assignParent)
		if err != nil {
			return err
		}
		cfg.Grid.ReserveLauncherCell = true
		cfg.Grid.LauncherCell = cell
	}
	if o.evictionTimeout >= 0 {
		cfg.Grid.EvictionTimeoutSeconds = o.evictionTimeout
	}
	if o.flashTopmost > 0 {
		cfg.Effects.FlashTopmostMs = o.flashTopmost
	}
	if o.shakeDuration > 0 {
		cfg.Effects.ShakeDurationMs = o.shakeDuration
	}
	if o.hideTitleBar {
		cfg.Effects.HideTitleBar = true
	}
	if o.hideBorder {
		cfg.Effects.HideBorder = true
	}
	if o.metricsListen != "" {
		cfg.MetricsListen = o.metricsListen
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg.Validate()
}

// follow reports whether child windows are placed. Following forever
// implies following.
func (o *launchOptions) followChildren() bool {
	return o.follow || o.followForever
}

func (o *launchOptions) timeoutDuration() time.Duration {
	if o.timeout <= 0 {
		return 0
	}
	return time.Duration(o.timeout) * time.Second
}
