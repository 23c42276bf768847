package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds every termcore setting.
type Config struct {
	Font     FontConfig     `toml:"font" yaml:"font"`
	Helper   HelperConfig   `toml:"helper" yaml:"helper"`
	Behavior BehaviorConfig `toml:"behavior" yaml:"behavior"`
	Theme    ThemeConfig    `toml:"theme" yaml:"theme"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `toml:"metrics" yaml:"metrics"`
}

// FontConfig is the cell geometry in pixels.
type FontConfig struct {
	CellWidth  int `toml:"cell_width" yaml:"cell_width"`
	CellHeight int `toml:"cell_height" yaml:"cell_height"`
}

// HelperSet names the commands for one locality by media type. Empty
// entries fall back to the platform opener.
type HelperSet struct {
	General string `toml:"general" yaml:"general"`
	Video   string `toml:"video" yaml:"video"`
	Image   string `toml:"image" yaml:"image"`
}

// HelperConfig is the external helper table.
type HelperConfig struct {
	Email string    `toml:"email" yaml:"email"`
	URL   HelperSet `toml:"url" yaml:"url"`
	Local HelperSet `toml:"local" yaml:"local"`
	// Inline shows media links in a popup instead of running a helper.
	Inline bool `toml:"inline" yaml:"inline"`
}

// BehaviorConfig controls widget behavior.
type BehaviorConfig struct {
	WordSeparators    string `toml:"wordsep" yaml:"wordsep"`
	Scrollback        int    `toml:"scrollback" yaml:"scrollback"`
	JumpOnChange      bool   `toml:"jump_on_change" yaml:"jump_on_change"`
	JumpOnKeypress    bool   `toml:"jump_on_keypress" yaml:"jump_on_keypress"`
	LinkDragThreshold int    `toml:"link_drag_threshold" yaml:"link_drag_threshold"`
}

// ThemeConfig selects colors and asset locations.
type ThemeConfig struct {
	Name       string `toml:"name" yaml:"name"`
	Foreground string `toml:"foreground" yaml:"foreground"`
	Background string `toml:"background" yaml:"background"`
	// Palette overrides indexed colors, keyed by decimal index.
	Palette map[string]string `toml:"palette" yaml:"palette"`
	ObjLib  []string          `toml:"objlib" yaml:"objlib"`
	DataDir string            `toml:"data_dir" yaml:"data_dir"`
	// Debug starts widgets with debug rendering on.
	Debug bool `toml:"debug" yaml:"debug"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" yaml:"enabled"`
	Addr      string `toml:"addr" yaml:"addr"`
	Namespace string `toml:"namespace" yaml:"namespace"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Font: FontConfig{CellWidth: 8, CellHeight: 16},
		Behavior: BehaviorConfig{
			WordSeparators:    " '\"()[]{}<>=*!#$&;,|`\\",
			Scrollback:        2000,
			JumpOnChange:      true,
			JumpOnKeypress:    true,
			LinkDragThreshold: 16,
		},
		Theme: ThemeConfig{
			Name: "default",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr:      "127.0.0.1:9464",
			Namespace: "termcore",
		},
	}
}

// Validate reports every setting outside its range.
func (c *Config) Validate() error {
	var errs []error
	if c.Font.CellWidth < 1 {
		errs = append(errs, &ValidationError{"font.cell_width", c.Font.CellWidth, "must be at least 1"})
	}
	if c.Font.CellHeight < 1 {
		errs = append(errs, &ValidationError{"font.cell_height", c.Font.CellHeight, "must be at least 1"})
	}
	if c.Behavior.Scrollback < 0 {
		errs = append(errs, &ValidationError{"behavior.scrollback", c.Behavior.Scrollback, "must not be negative"})
	}
	if c.Behavior.LinkDragThreshold < 0 {
		errs = append(errs, &ValidationError{"behavior.link_drag_threshold", c.Behavior.LinkDragThreshold, "must not be negative"})
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		errs = append(errs, &ValidationError{"logging.format", c.Logging.Format, "must be text or json"})
	}
	for k := range c.Theme.Palette {
		if _, err := strconv.Atoi(k); err != nil {
			errs = append(errs, &ValidationError{"theme.palette", k, "keys must be color indexes"})
		}
	}
	return errors.Join(errs...)
}

// PaletteOverrides returns the palette overrides with parsed indexes.
// Keys that are not numbers are skipped.
func (c *Config) PaletteOverrides() map[int]string {
	out := make(map[int]string, len(c.Theme.Palette))
	for k, v := range c.Theme.Palette {
		if i, err := strconv.Atoi(k); err == nil {
			out[i] = v
		}
	}
	return out
}

// DefaultPath returns the user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "termcore", "config.toml")
}
