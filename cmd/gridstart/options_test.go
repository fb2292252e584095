package main

import (
	"errors"
	"testing"

	"github.com/1broseidon/gridstart/internal/config"
)

func TestParseGeometry(t *testing.T) {
	tests := []struct {
		in      string
		want    geometry
		wantErr bool
	}{
		{in: "2x2", want: geometry{Rows: 2, Cols: 2}},
		{in: "3X4", want: geometry{Rows: 3, Cols: 4}},
		{in: "2x3m1", want: geometry{Rows: 2, Cols: 3, Monitor: 1, HasMonitor: true}},
		{in: " 1x1m0 ", want: geometry{Rows: 1, Cols: 1, HasMonitor: true}},
		{in: "2", wantErr: true},
		{in: "0x2", wantErr: true},
		{in: "2x", wantErr: true},
		{in: "2x2m", wantErr: true},
		{in: "axb", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseGeometry(tt.in)
		if tt.wantErr {
			if !errors.Is(err, errBadGeometry) {
				t.Fatalf("parseGeometry(%q): expected geometry error, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseGeometry(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("parseGeometry(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseCellRef(t *testing.T) {
	got, err := parseCellRef("1, 2")
	if err != nil {
		t.Fatalf("parseCellRef: %v", err)
	}
	if got != (config.CellRef{Row: 1, Col: 2}) {
		t.Fatalf("unexpected cell %+v", got)
	}
	for _, bad := range []string{"1", "a,1", "1,b"} {
		if _, err := parseCellRef(bad); err == nil {
			t.Fatalf("parseCellRef(%q): expected error", bad)
		}
	}
}

func parseLaunch(t *testing.T, args ...string) (*launchOptions, []string) {
	t.Helper()
	var opts launchOptions
	fs := newLaunchFlagSet(&opts)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return &opts, fs.Args()
}

func TestLaunchFlagsOverrideConfig(t *testing.T) {
	opts, rest := parseLaunch(t,
		"-g", "3x2m1", "-F", "--fit-grid", "--assign-parent-cell", "2,1",
		"--placement", "sequential", "--shake-duration", "300", "-v",
		"firefox", "--new-window",
	)
	if len(rest) != 2 || rest[0] != "firefox" || rest[1] != "--new-window" {
		t.Fatalf("unexpected program args %v", rest)
	}

	cfg := config.DefaultConfig()
	if err := opts.apply(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	g := cfg.Grid
	if g.Rows != 3 || g.Cols != 2 || g.Monitor != 1 || !g.FitToCell || g.Placement != "sequential" {
		t.Fatalf("unexpected grid %+v", g)
	}
	if !g.ReserveLauncherCell || g.LauncherCell != (config.CellRef{Row: 2, Col: 1}) {
		t.Fatalf("unexpected launcher cell %+v", g)
	}
	if cfg.Effects.ShakeDurationMs != 300 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected effects/log level %+v %q", cfg.Effects, cfg.LogLevel)
	}
	if !opts.followChildren() {
		t.Fatalf("-F must imply following child windows")
	}
}

func TestLaunchFlagsKeepConfigWhenUnset(t *testing.T) {
	opts, _ := parseLaunch(t, "app")

	cfg := config.DefaultConfig()
	cfg.Grid.EvictionTimeoutSeconds = 5
	cfg.Grid.Placement = "sequential"
	if err := opts.apply(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Grid.EvictionTimeoutSeconds != 5 || cfg.Grid.Placement != "sequential" {
		t.Fatalf("unset flags must not override the config: %+v", cfg.Grid)
	}
	if opts.followChildren() || opts.timeoutDuration() != 0 {
		t.Fatalf("unexpected defaults %+v", opts)
	}
}

func TestLaunchFlagsRejectOutOfGridParentCell(t *testing.T) {
	opts, _ := parseLaunch(t, "-g", "2x2", "--assign-parent-cell", "2,0", "app")
	if err := opts.apply(config.DefaultConfig()); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLaunchFlagsRejectUnknownPlacement(t *testing.T) {
	opts, _ := parseLaunch(t, "--placement", "random", "app")
	if err := opts.apply(config.DefaultConfig()); err == nil {
		t.Fatalf("expected error for unknown placement")
	}
}
