package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ClassList supports either:
//
//	class_denylist: "NVOpenGLPbuffer"
//
// or:
//
//	class_denylist:
//	  - "NVOpenGLPbuffer"
//	  - "wgpu Device Class*"
type ClassList []string

func (l *ClassList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = ClassList{}
			return nil
		}
		*l = ClassList{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make(ClassList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("class entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("class list must be a string or list of strings")
	}
}

// Raw* mirror the config with pointer fields so an absent key keeps its
// default and an explicit zero overrides it.

type RawCellRef struct {
	Row *int `yaml:"row"`
	Col *int `yaml:"col"`
}

type RawGridConfig struct {
	Rows                   *int        `yaml:"rows"`
	Cols                   *int        `yaml:"cols"`
	Monitor                *int        `yaml:"monitor"`
	FullArea               *bool       `yaml:"full_area"`
	FitToCell              *bool       `yaml:"fit_to_cell"`
	Placement              *string     `yaml:"placement"`
	ReserveLauncherCell    *bool       `yaml:"reserve_launcher_cell"`
	LauncherCell           *RawCellRef `yaml:"launcher_cell"`
	EvictionTimeoutSeconds *int        `yaml:"eviction_timeout_seconds"`
	MaxAttempts            *int        `yaml:"max_attempts"`
	SettleDelayMs          *int        `yaml:"settle_delay_ms"`
}

type RawEffectsConfig struct {
	ShakeDurationMs *int  `yaml:"shake_duration_ms"`
	ShakeIntensity  *int  `yaml:"shake_intensity"`
	FlashTopmostMs  *int  `yaml:"flash_topmost_ms"`
	HideTitleBar    *bool `yaml:"hide_title_bar"`
	HideBorder      *bool `yaml:"hide_border"`
}

type RawConfig struct {
	Grid                 *RawGridConfig    `yaml:"grid"`
	PollIntervalMs       *int              `yaml:"poll_interval_ms"`
	AuditIntervalSeconds *int              `yaml:"audit_interval_seconds"`
	ClassDenylist        *ClassList        `yaml:"class_denylist"`
	ConsoleClasses       *ClassList        `yaml:"console_classes"`
	Effects              *RawEffectsConfig `yaml:"effects"`
	LogLevel             *string           `yaml:"log_level"`
	MetricsListen        *string           `yaml:"metrics_listen"`
}

// apply copies every set field onto cfg.
func (r RawConfig) apply(cfg *Config) {
	if g := r.Grid; g != nil {
		setInt(&cfg.Grid.Rows, g.Rows)
		setInt(&cfg.Grid.Cols, g.Cols)
		setInt(&cfg.Grid.Monitor, g.Monitor)
		setBool(&cfg.Grid.FullArea, g.FullArea)
		setBool(&cfg.Grid.FitToCell, g.FitToCell)
		setString(&cfg.Grid.Placement, g.Placement)
		setBool(&cfg.Grid.ReserveLauncherCell, g.ReserveLauncherCell)
		if g.LauncherCell != nil {
			setInt(&cfg.Grid.LauncherCell.Row, g.LauncherCell.Row)
			setInt(&cfg.Grid.LauncherCell.Col, g.LauncherCell.Col)
		}
		setInt(&cfg.Grid.EvictionTimeoutSeconds, g.EvictionTimeoutSeconds)
		setInt(&cfg.Grid.MaxAttempts, g.MaxAttempts)
		setInt(&cfg.Grid.SettleDelayMs, g.SettleDelayMs)
	}
	setInt(&cfg.PollIntervalMs, r.PollIntervalMs)
	setInt(&cfg.AuditIntervalSeconds, r.AuditIntervalSeconds)
	if r.ClassDenylist != nil {
		cfg.ClassDenylist = append(ClassList{}, (*r.ClassDenylist)...)
	}
	if r.ConsoleClasses != nil {
		cfg.ConsoleClasses = append(ClassList{}, (*r.ConsoleClasses)...)
	}
	if e := r.Effects; e != nil {
		setInt(&cfg.Effects.ShakeDurationMs, e.ShakeDurationMs)
		setInt(&cfg.Effects.ShakeIntensity, e.ShakeIntensity)
		setInt(&cfg.Effects.FlashTopmostMs, e.FlashTopmostMs)
		setBool(&cfg.Effects.HideTitleBar, e.HideTitleBar)
		setBool(&cfg.Effects.HideBorder, e.HideBorder)
	}
	setString(&cfg.LogLevel, r.LogLevel)
	setString(&cfg.MetricsListen, r.MetricsListen)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
