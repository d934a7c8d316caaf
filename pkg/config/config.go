// Package config holds the layout constants and application settings for
// numberline.
//
// # Layout Constants
//
// [Layout] groups the constants the layout pass depends on:
//
//   - BulletWidth: bullet marker plus margin, added to the measured text width
//   - MaxTextWidth: bound passed to the text metrics provider
//   - MinTickSpacing: floor for the pixel distance between header ticks
//   - VerticalSpacing: gap inserted between cascaded rows
//   - BulletLeftOffset, ItemXPadding: cosmetic left-edge correction applied
//     by sinks only; they never take part in collision detection
//
// # Files
//
// Settings may be read from a TOML file:
//
//	[layout]
//	max_text_width = 200
//	strategy = "shelf"
//	scale = 2
//
//	[store]
//	dsn = "redis://localhost:6379/0"
//
// Missing keys keep their defaults. Flags override file values.
package config

import (
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/numberline/pkg/errors"
)

const appName = "numberline"

// Default layout constants, in pixels.
const (
	DefaultBulletWidth      = 16.0
	DefaultMaxTextWidth     = 150.0
	DefaultMinTickSpacing   = 50.0
	DefaultVerticalSpacing  = 4.0
	DefaultBulletLeftOffset = -6.0
	DefaultItemXPadding     = 4.0
	DefaultFontSize         = 12.0
	DefaultLineHeight       = 16.0
)

// Layout holds the constants consumed by the item builder, the layout engine
// and the sinks.
type Layout struct {
	BulletWidth      float64 `toml:"bullet_width" json:"bullet_width"`
	MaxTextWidth     float64 `toml:"max_text_width" json:"max_text_width"`
	MinTickSpacing   float64 `toml:"min_tick_spacing" json:"min_tick_spacing"`
	VerticalSpacing  float64 `toml:"vertical_spacing" json:"vertical_spacing"`
	BulletLeftOffset float64 `toml:"bullet_left_offset" json:"bullet_left_offset"`
	ItemXPadding     float64 `toml:"item_x_padding" json:"item_x_padding"`
	FontSize         float64 `toml:"font_size" json:"font_size"`
	LineHeight       float64 `toml:"line_height" json:"line_height"`
}

// DefaultLayout returns the pixel constants used by the SVG and PNG sinks.
func DefaultLayout() Layout {
	return Layout{
		BulletWidth:      DefaultBulletWidth,
		MaxTextWidth:     DefaultMaxTextWidth,
		MinTickSpacing:   DefaultMinTickSpacing,
		VerticalSpacing:  DefaultVerticalSpacing,
		BulletLeftOffset: DefaultBulletLeftOffset,
		ItemXPadding:     DefaultItemXPadding,
		FontSize:         DefaultFontSize,
		LineHeight:       DefaultLineHeight,
	}
}

// Terminal returns constants measured in terminal cells, for the
// interactive viewer. One row of text is one cell high.
func Terminal() Layout {
	return Layout{
		BulletWidth:    2,
		MaxTextWidth:   24,
		MinTickSpacing: 10,
		FontSize:       1,
		LineHeight:     1,
	}
}

// Validate reports the first constant that would make a layout pass
// meaningless. Offsets may be negative; sizes may not.
func (l Layout) Validate() error {
	checks := []struct {
		name     string
		value    float64
		positive bool
	}{
		{"bullet_width", l.BulletWidth, false},
		{"max_text_width", l.MaxTextWidth, true},
		{"min_tick_spacing", l.MinTickSpacing, true},
		{"vertical_spacing", l.VerticalSpacing, false},
		{"font_size", l.FontSize, true},
		{"line_height", l.LineHeight, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return errors.New(errors.ErrCodeInvalidConfiguration, "%s must be finite", c.name)
		}
		if c.positive && c.value <= 0 {
			return errors.New(errors.ErrCodeInvalidConfiguration, "%s must be positive, got %v", c.name, c.value)
		}
		if !c.positive && c.value < 0 {
			return errors.New(errors.ErrCodeInvalidConfiguration, "%s cannot be negative, got %v", c.name, c.value)
		}
	}
	return nil
}

// Store selects the item repository backend.
type Store struct {
	// DSN is "memory:", a redis:// or mongodb:// URL, or a dataset file path.
	DSN string `toml:"dsn"`
}

// Server configures the HTTP rendering surface.
type Server struct {
	Addr string `toml:"addr"`
}

// Cache configures the rendered-artifact cache.
type Cache struct {
	Dir      string   `toml:"dir"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis"`
	Disabled bool     `toml:"disabled"`
}

// Config is the complete application configuration.
type Config struct {
	Layout   Layout `toml:"layout"`
	Strategy string `toml:"strategy"`
	Scale    int    `toml:"scale"`
	Store    Store  `toml:"store"`
	Server   Server `toml:"server"`
	Cache    Cache  `toml:"cache"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Layout:   DefaultLayout(),
		Strategy: "cascade",
		Scale:    1,
		Store:    Store{DSN: "memory:"},
		Server:   Server{Addr: ":8080"},
		Cache:    Cache{TTL: Duration(24 * time.Hour)},
	}
}

// Load reads a TOML file on top of [Default]. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "read config %s", path)
	}
	if err := Decode(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse config %s", path)
	}
	return cfg, nil
}

// Decode parses TOML into cfg, leaving fields absent from data untouched,
// and validates the layout constants.
func Decode(data []byte, cfg *Config) error {
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return err
	}
	return cfg.Layout.Validate()
}

// DefaultPath returns $XDG_CONFIG_HOME/numberline/config.toml (or
// ~/.config/numberline/config.toml) when that file exists, and "" otherwise.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	path := filepath.Join(dir, appName, "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Duration is a time.Duration that decodes from TOML strings like "12h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
