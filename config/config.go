// Package config loads layoutpdf settings from TOML.
//
// Values are layered: Default first, then a file, then whatever the caller
// overrides (typically command-line flags). A minimal file looks like:
//
//	[render]
//	dpi = 150
//
//	[store]
//	driver = "sqlite"
//	path = "templates.db"
//	redis_addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/lvillar/layoutpdf"
	"github.com/lvillar/layoutpdf/geometry"
	"github.com/lvillar/layoutpdf/history"
	"github.com/lvillar/layoutpdf/units"
)

// Store drivers.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Config is the full configuration.
type Config struct {
	Editor Editor `toml:"editor"`
	Render Render `toml:"render"`
	Store  Store  `toml:"store"`
	Log    Log    `toml:"log"`
}

// Editor configures editing sessions.
type Editor struct {
	DPI             float64 `toml:"dpi"`
	Grid            float64 `toml:"grid"` // 0 disables grid snapping
	GuideThreshold  float64 `toml:"guide_threshold"`
	HistoryCapacity int     `toml:"history_capacity"`
}

// Font registers a TrueType file under a family and style ("", "B", "I",
// "BI").
type Font struct {
	Family string `toml:"family"`
	Style  string `toml:"style"`
	File   string `toml:"file"`
}

// Render configures PDF output.
type Render struct {
	DPI         float64 `toml:"dpi"`
	Concurrency int     `toml:"concurrency"` // 0 means GOMAXPROCS
	Compress    bool    `toml:"compress"`
	BaseDir     string  `toml:"base_dir"` // resolves relative image paths
	Fonts       []Font  `toml:"fonts"`
}

// Store selects the template repository.
type Store struct {
	Driver        string   `toml:"driver"`
	Path          string   `toml:"path"`
	RedisAddr     string   `toml:"redis_addr"` // empty disables caching
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	CacheTTL      Duration `toml:"cache_ttl"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string such as "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: Editor{
			DPI:             units.EditorDPI,
			GuideThreshold:  geometry.DefaultThreshold,
			HistoryCapacity: history.DefaultCapacity,
		},
		Render: Render{
			DPI:      units.EditorDPI,
			Compress: true,
		},
		Store: Store{
			Driver:   DriverFile,
			Path:     "templates",
			CacheTTL: Duration{10 * time.Minute},
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file is not an error when
// optional is true.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && optional {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		names := make([]string, len(keys))
		for i, k := range keys {
			names[i] = k.String()
		}
		return cfg, layoutpdf.Errorf("config.Load", layoutpdf.ErrInvalidParam, "%s: unknown keys %s", path, strings.Join(names, ", "))
	}
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over the defaults.
func Parse(text string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(text, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings no component can work with.
func (c Config) Validate() error {
	const op = "config.Validate"
	switch {
	case c.Editor.DPI <= 0:
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "editor.dpi must be positive, got %g", c.Editor.DPI)
	case c.Render.DPI <= 0:
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "render.dpi must be positive, got %g", c.Render.DPI)
	case c.Editor.Grid < 0:
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "editor.grid must not be negative")
	case c.Editor.GuideThreshold < 0:
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "editor.guide_threshold must not be negative")
	case c.Editor.HistoryCapacity < 0:
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "editor.history_capacity must not be negative")
	case c.Render.Concurrency < 0:
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "render.concurrency must not be negative")
	case c.Store.CacheTTL.Duration < 0:
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "store.cache_ttl must not be negative")
	}
	switch c.Store.Driver {
	case DriverFile, DriverSQLite:
	default:
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Path == "" {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "store.path is empty")
	}
	for _, f := range c.Render.Fonts {
		if f.Family == "" || f.File == "" {
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "font entries need family and file")
		}
		switch f.Style {
		case "", "B", "I", "BI":
		default:
			return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "font %q has style %q", f.Family, f.Style)
		}
	}
	if _, err := c.Log.ParseLevel(); err != nil {
		return layoutpdf.Errorf(op, layoutpdf.ErrInvalidParam, "log.level: %v", err)
	}
	return nil
}

// ParseLevel returns the configured log level.
func (l Log) ParseLevel() (log.Level, error) {
	if l.Level == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(l.Level)
}
