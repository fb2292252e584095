package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/1broseidon/gridstart/internal/grid"
	"github.com/1broseidon/gridstart/internal/platform"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.PollInterval() != 2*time.Second {
		t.Fatalf("expected 2s poll interval, got %v", cfg.PollInterval())
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("expected no source file, got %q", res.File)
	}
	if res.Config.Grid.Rows != 2 || res.Config.Grid.Cols != 2 {
		t.Fatalf("expected 2x2 default grid, got %dx%d", res.Config.Grid.Rows, res.Config.Grid.Cols)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Grid.Placement != "first-free" {
		t.Fatalf("expected first-free placement, got %q", res.Config.Grid.Placement)
	}
}

func TestLoadFromPath_OverridesKeepOtherDefaults(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		"grid:",
		"  rows: 3",
		"  cols: 4",
		"  placement: sequential",
		"  reserve_launcher_cell: true",
		"  launcher_cell: {row: 2, col: 3}",
		"  eviction_timeout_seconds: 0",
		"effects:",
		"  flash_topmost_ms: 250",
		"class_denylist: Foo",
		"",
	}, "\n"))

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Grid.Rows != 3 || cfg.Grid.Cols != 4 {
		t.Fatalf("expected 3x4, got %dx%d", cfg.Grid.Rows, cfg.Grid.Cols)
	}
	if cfg.Effects.ShakeIntensity != 10 {
		t.Fatalf("expected default shake intensity 10, got %d", cfg.Effects.ShakeIntensity)
	}
	if cfg.Effects.FlashTopmostMs != 250 {
		t.Fatalf("expected flash 250, got %d", cfg.Effects.FlashTopmostMs)
	}
	if len(cfg.ClassDenylist) != 1 || cfg.ClassDenylist[0] != "Foo" {
		t.Fatalf("expected scalar denylist to become [Foo], got %v", cfg.ClassDenylist)
	}

	ec := cfg.EngineConfig(platform.Rect{Width: 1600, Height: 900})
	if ec.Policy != grid.PolicySequential {
		t.Fatalf("expected sequential policy, got %v", ec.Policy)
	}
	if ec.ReservedCell == nil || *ec.ReservedCell != 11 {
		t.Fatalf("expected reserved cell 11, got %v", ec.ReservedCell)
	}
	if err := ec.Validate(); err != nil {
		t.Fatalf("engine config: %v", err)
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "grid:\n  rowz: 3\n"))
	if err == nil {
		t.Fatalf("expected unknown key error")
	}
	if !strings.Contains(err.Error(), "rowz") {
		t.Fatalf("expected error to mention rowz, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
	}{
		{"zero rows", "grid:\n  rows: 0\n", "grid"},
		{"bad placement", "grid:\n  placement: spiral\n", "grid.placement"},
		{"launcher cell outside", "grid:\n  reserve_launcher_cell: true\n  launcher_cell: {row: 5, col: 0}\n", "grid.launcher_cell"},
		{"fast poll", "poll_interval_ms: 1\n", "poll_interval_ms"},
		{"bad level", "log_level: loud\n", "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromPath(writeConfig(t, tt.body))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("expected validation error at %q, got %v", tt.path, err)
			}
		})
	}
}

func TestDenied(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		class string
		want  bool
	}{
		{"NVOpenGLPbuffer", true},
		{"wgpu Device Class 0x1", true},
		{"wgpu", false},
		{"firefox", false},
	}
	for _, tt := range tests {
		if got := cfg.Denied(tt.class); got != tt.want {
			t.Fatalf("Denied(%q) = %v, want %v", tt.class, got, tt.want)
		}
	}
}

func TestSaveToRoundTripsThroughLoader(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Grid.Rows = 4
	cfg.MetricsListen = "127.0.0.1:9464"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Grid.Rows != 4 || res.Config.MetricsListen != "127.0.0.1:9464" {
		t.Fatalf("unexpected config after reload: %+v", res.Config)
	}
}

func TestDefaultConfigPath_HonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != filepath.Join(dir, "gridstart", "config.yaml") {
		t.Fatalf("unexpected path %q", path)
	}
}
