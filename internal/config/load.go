package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "TERMCORE_"

// Load builds a Config from the defaults, then each file in order, then
// the environment. Missing files are skipped; an empty path is ignored.
func Load(paths ...string) (*Config, error) {
	cfg := Default()
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := LoadFile(cfg, p); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes path over cfg, leaving settings the file does not
// name untouched. A file that does not exist is not an error.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Decode(cfg, path, data)
}

// Decode parses data over cfg using the decoder for path's extension.
func Decode(cfg *Config, path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return decodeTOML(cfg, path, data)
	case ".yaml", ".yml":
		return decodeYAML(cfg, path, data)
	}
	return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
}

func decodeTOML(cfg *Config, path string, data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		pe := &ParseError{Path: path, Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

func decodeYAML(cfg *Config, path string, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &ParseError{Path: path, Err: err}
	}
	return nil
}

// envSetters maps each environment variable, without the prefix, to the
// setting it overrides.
var envSetters = map[string]func(c *Config, v string) error{
	"LOG_LEVEL":            func(c *Config, v string) error { c.Logging.Level = v; return nil },
	"LOG_FORMAT":           func(c *Config, v string) error { c.Logging.Format = v; return nil },
	"LOG_FILE":             func(c *Config, v string) error { c.Logging.File = v; return nil },
	"THEME":                func(c *Config, v string) error { c.Theme.Name = v; return nil },
	"DATA_DIR":             func(c *Config, v string) error { c.Theme.DataDir = v; return nil },
	"OBJLIB":               func(c *Config, v string) error { c.Theme.ObjLib = filepath.SplitList(v); return nil },
	"WORDSEP":              func(c *Config, v string) error { c.Behavior.WordSeparators = v; return nil },
	"SCROLLBACK":           intSetter(func(c *Config) *int { return &c.Behavior.Scrollback }),
	"LINK_DRAG_THRESHOLD":  intSetter(func(c *Config) *int { return &c.Behavior.LinkDragThreshold }),
	"JUMP_ON_CHANGE":       boolSetter(func(c *Config) *bool { return &c.Behavior.JumpOnChange }),
	"JUMP_ON_KEYPRESS":     boolSetter(func(c *Config) *bool { return &c.Behavior.JumpOnKeypress }),
	"CELL_WIDTH":           intSetter(func(c *Config) *int { return &c.Font.CellWidth }),
	"CELL_HEIGHT":          intSetter(func(c *Config) *int { return &c.Font.CellHeight }),
	"HELPER_EMAIL":         func(c *Config, v string) error { c.Helper.Email = v; return nil },
	"HELPER_INLINE":        boolSetter(func(c *Config) *bool { return &c.Helper.Inline }),
	"HELPER_URL_GENERAL":   func(c *Config, v string) error { c.Helper.URL.General = v; return nil },
	"HELPER_URL_VIDEO":     func(c *Config, v string) error { c.Helper.URL.Video = v; return nil },
	"HELPER_URL_IMAGE":     func(c *Config, v string) error { c.Helper.URL.Image = v; return nil },
	"HELPER_LOCAL_GENERAL": func(c *Config, v string) error { c.Helper.Local.General = v; return nil },
	"HELPER_LOCAL_VIDEO":   func(c *Config, v string) error { c.Helper.Local.Video = v; return nil },
	"HELPER_LOCAL_IMAGE":   func(c *Config, v string) error { c.Helper.Local.Image = v; return nil },
	"METRICS_ENABLED":      boolSetter(func(c *Config) *bool { return &c.Metrics.Enabled }),
	"METRICS_ADDR":         func(c *Config, v string) error { c.Metrics.Addr = v; return nil },
	"DEBUG":                boolSetter(func(c *Config) *bool { return &c.Theme.Debug }),
}

func intSetter(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// ApplyEnv applies TERMCORE_* overrides found through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	var errs []error
	for name, set := range envSetters {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(cfg, v); err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
		}
	}
	return errors.Join(errs...)
}
