// Package config handles loading and saving pertview configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/pertview/config.yaml
//   - State:  ~/.local/state/pertview/ (view state cache)
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ScheduleConfig holds the engine parameters a user may tune.
type ScheduleConfig struct {
	// DefaultDurationHours substitutes for issues without an estimate.
	DefaultDurationHours float64 `yaml:"default_duration_hours,omitempty"`
	// RowGap is the vertical spacing between node boxes in a lane.
	RowGap int `yaml:"row_gap,omitempty"`
}

// FocusConfig holds defaults for the focused subgraph mode.
type FocusConfig struct {
	Direction string `yaml:"direction,omitempty"` // upstream, downstream, both
	Depth     int    `yaml:"depth,omitempty"`     // clamped to [1,10] by the engine
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	DefaultView string `yaml:"default_view,omitempty"` // pert, gantt
	Theme       string `yaml:"theme,omitempty"`
}

// Config is the top-level configuration for pertview.
type Config struct {
	Schedule ScheduleConfig `yaml:"schedule,omitempty"`
	Focus    FocusConfig    `yaml:"focus,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Schedule: ScheduleConfig{
			DefaultDurationHours: 8,
			RowGap:               2,
		},
		Focus: FocusConfig{
			Direction: "both",
			Depth:     2,
		},
		UI: UIConfig{
			DefaultView: "pert",
		},
	}
}

// ConfigDir returns the XDG config directory for pertview.
// PERTVIEW_CONFIG_DIR overrides the lookup entirely, for tests and scripting.
func ConfigDir() string {
	if dir := os.Getenv("PERTVIEW_CONFIG_DIR"); dir != "" {
		return dir
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "pertview")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pertview")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file, returning defaults when it does not exist.
// Missing fields are filled in from defaults so partial files stay valid.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes the config to the default location, creating directories as
// needed.
func (c Config) Save() error {
	return c.SaveTo(ConfigPath())
}

// SaveTo writes the config to an explicit path.
func (c Config) SaveTo(path string) error {
	if path == "" {
		return fmt.Errorf("no config path available")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Schedule.DefaultDurationHours <= 0 {
		c.Schedule.DefaultDurationHours = def.Schedule.DefaultDurationHours
	}
	if c.Schedule.RowGap < 1 {
		c.Schedule.RowGap = def.Schedule.RowGap
	}
	switch c.Focus.Direction {
	case "upstream", "downstream", "both":
	default:
		c.Focus.Direction = def.Focus.Direction
	}
	if c.Focus.Depth < 1 {
		c.Focus.Depth = def.Focus.Depth
	}
	if c.UI.DefaultView == "" {
		c.UI.DefaultView = def.UI.DefaultView
	}
}
