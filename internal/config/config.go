package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/1broseidon/gridstart/internal/grid"
	"github.com/1broseidon/gridstart/internal/platform"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// CellRef addresses a grid cell by row and column.
type CellRef struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

// GridConfig describes the grid a launch tiles into.
type GridConfig struct {
	Rows      int  `yaml:"rows"`
	Cols      int  `yaml:"cols"`
	Monitor   int  `yaml:"monitor"`
	FullArea  bool `yaml:"full_area"`   // Ignore panels/docks
	FitToCell bool `yaml:"fit_to_cell"` // Resize windows to the cell
	// Placement is "first-free" or "sequential".
	Placement              string  `yaml:"placement"`
	ReserveLauncherCell    bool    `yaml:"reserve_launcher_cell"`
	LauncherCell           CellRef `yaml:"launcher_cell"`
	EvictionTimeoutSeconds int     `yaml:"eviction_timeout_seconds"` // 0 = never
	MaxAttempts            int     `yaml:"max_attempts"`
	SettleDelayMs          int     `yaml:"settle_delay_ms"`
}

// EffectsConfig configures what happens to a window after it is placed.
type EffectsConfig struct {
	ShakeDurationMs int  `yaml:"shake_duration_ms"` // 0 = off
	ShakeIntensity  int  `yaml:"shake_intensity"`   // Pixels per step
	FlashTopmostMs  int  `yaml:"flash_topmost_ms"`  // 0 = off
	HideTitleBar    bool `yaml:"hide_title_bar"`
	HideBorder      bool `yaml:"hide_border"`
}

// Config is the effective gridstart configuration.
type Config struct {
	Grid                 GridConfig    `yaml:"grid"`
	PollIntervalMs       int           `yaml:"poll_interval_ms"`
	AuditIntervalSeconds int           `yaml:"audit_interval_seconds"`
	ClassDenylist        ClassList     `yaml:"class_denylist"`
	ConsoleClasses       ClassList     `yaml:"console_classes"`
	Effects              EffectsConfig `yaml:"effects"`
	LogLevel             string        `yaml:"log_level"`
	// MetricsListen enables the debug HTTP server when set, e.g. "127.0.0.1:9464".
	MetricsListen string `yaml:"metrics_listen"`
}

// ValidationError points at the offending key.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalid, e.Err}
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			Rows:          2,
			Cols:          2,
			Placement:     "first-free",
			MaxAttempts:   grid.DefaultMaxAttempts,
			SettleDelayMs: 100,
		},
		PollIntervalMs:       2000,
		AuditIntervalSeconds: 30,
		// GPU helper surfaces that show up as top-level windows.
		ClassDenylist:  ClassList{"NVOpenGLPbuffer", "wgpu Device Class*"},
		ConsoleClasses: defaultConsoleClasses(),
		Effects: EffectsConfig{
			ShakeIntensity: 10,
		},
		LogLevel: "info",
	}
}

// Terminal emulators snap their height to whole text rows.
func defaultConsoleClasses() ClassList {
	return ClassList{
		"Alacritty",
		"kitty",
		"com.mitchellh.ghostty",
		"Gnome-terminal",
		"gnome-terminal-server",
		"Tilix",
		"XTerm",
		"UXTerm",
		"konsole",
		"Terminator",
		"URxvt",
		"st-256color",
		"org.wezfurlong.wezterm",
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	g := c.Grid
	if g.Rows < 1 || g.Cols < 1 {
		return &ValidationError{Path: "grid", Err: fmt.Errorf("rows and cols must be >= 1, got %dx%d", g.Rows, g.Cols)}
	}
	if g.Monitor < 0 {
		return &ValidationError{Path: "grid.monitor", Err: fmt.Errorf("monitor must be >= 0")}
	}
	if _, err := grid.ParsePolicy(g.Placement); err != nil {
		return &ValidationError{Path: "grid.placement", Err: err}
	}
	if g.ReserveLauncherCell {
		if g.LauncherCell.Row < 0 || g.LauncherCell.Row >= g.Rows || g.LauncherCell.Col < 0 || g.LauncherCell.Col >= g.Cols {
			return &ValidationError{Path: "grid.launcher_cell", Err: fmt.Errorf("cell %d,%d is outside the %dx%d grid", g.LauncherCell.Row, g.LauncherCell.Col, g.Rows, g.Cols)}
		}
	}
	if g.EvictionTimeoutSeconds < 0 {
		return &ValidationError{Path: "grid.eviction_timeout_seconds", Err: fmt.Errorf("must be >= 0")}
	}
	if g.MaxAttempts < 1 {
		return &ValidationError{Path: "grid.max_attempts", Err: fmt.Errorf("must be >= 1")}
	}
	if g.SettleDelayMs < 0 {
		return &ValidationError{Path: "grid.settle_delay_ms", Err: fmt.Errorf("must be >= 0")}
	}
	if c.PollIntervalMs < 50 {
		return &ValidationError{Path: "poll_interval_ms", Err: fmt.Errorf("must be >= 50")}
	}
	if c.AuditIntervalSeconds < 0 {
		return &ValidationError{Path: "audit_interval_seconds", Err: fmt.Errorf("must be >= 0")}
	}
	if c.Effects.ShakeDurationMs < 0 || c.Effects.FlashTopmostMs < 0 || c.Effects.ShakeIntensity < 0 {
		return &ValidationError{Path: "effects", Err: fmt.Errorf("durations and intensity must be >= 0")}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	return nil
}

// PollInterval is the window discovery period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// AuditInterval is the period of the sync repair pass. Zero disables it.
func (c *Config) AuditInterval() time.Duration {
	return time.Duration(c.AuditIntervalSeconds) * time.Second
}

// EngineConfig builds the grid engine configuration for a monitor rect.
func (c *Config) EngineConfig(monitor platform.Rect) grid.Config {
	g := c.Grid
	policy, _ := grid.ParsePolicy(g.Placement)

	out := grid.Config{
		Rows:            g.Rows,
		Cols:            g.Cols,
		Monitor:         monitor,
		FitToCell:       g.FitToCell,
		Policy:          policy,
		EvictionTimeout: time.Duration(g.EvictionTimeoutSeconds) * time.Second,
		MaxAttempts:     g.MaxAttempts,
		ConsoleClasses:  append([]string(nil), c.ConsoleClasses...),
		SettleDelay:     time.Duration(g.SettleDelayMs) * time.Millisecond,
	}
	if g.ReserveLauncherCell {
		idx := g.LauncherCell.Row*g.Cols + g.LauncherCell.Col
		out.ReservedCell = &idx
	}
	return out
}

// Denied reports whether a window class is on the denylist. Entries ending
// in '*' match by prefix.
func (c *Config) Denied(class string) bool {
	for _, entry := range c.ClassDenylist {
		if prefix, ok := strings.CutSuffix(entry, "*"); ok {
			if strings.HasPrefix(class, prefix) {
				return true
			}
			continue
		}
		if class == entry {
			return true
		}
	}
	return false
}

// ParseLogLevel maps a config level name to a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warn, error")
	}
}

// Save writes the configuration to the default config path.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration as YAML to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
