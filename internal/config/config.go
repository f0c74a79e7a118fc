// Package config loads the cuelane project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/daviddao/cuelane/internal/interval"
	"github.com/daviddao/cuelane/internal/zoom"
)

// Config is the project file. Every field has a default; a missing file is
// the same as an empty one.
type Config struct {
	ZoomMode         string `toml:"zoom_mode" yaml:"zoom_mode"`
	ZoomLevels       []int  `toml:"zoom_levels" yaml:"zoom_levels"`
	InitialZoomLevel int    `toml:"initial_zoom_level" yaml:"initial_zoom_level"`
	MaxScaleFactor   int    `toml:"max_scale_factor" yaml:"max_scale_factor"`

	SampleRate  int     `toml:"sample_rate" yaml:"sample_rate"`
	Duration    float64 `toml:"duration" yaml:"duration"`
	MarkerWidth int     `toml:"marker_width" yaml:"marker_width"`

	IntervalColor   string   `toml:"interval_color" yaml:"interval_color"`
	RandomizeColors bool     `toml:"randomize_colors" yaml:"randomize_colors"`
	Palette         []string `toml:"palette" yaml:"palette"`
	IDScheme        string   `toml:"id_scheme" yaml:"id_scheme"`
	IDPrefix        string   `toml:"id_prefix" yaml:"id_prefix"`
	Editing         bool     `toml:"editing" yaml:"editing"`

	LogLevel string `toml:"log_level" yaml:"log_level"`
	LogFile  string `toml:"log_file" yaml:"log_file"`

	// Intervals seeds the store. Entries are loose maps so that any extra
	// keys survive as interval extension fields.
	Intervals []map[string]any `toml:"intervals" yaml:"intervals"`
}

// Default returns the built-in configuration: stepped zoom from ten cells
// per second down to one, over two minutes of 44.1 kHz media.
func Default() *Config {
	return &Config{
		ZoomMode:         "stepped",
		ZoomLevels:       []int{4410, 11025, 22050, 44100},
		InitialZoomLevel: 1,
		MaxScaleFactor:   4410,
		SampleRate:       44100,
		Duration:         120,
		MarkerWidth:      1,
		IntervalColor:    interval.DefaultColor,
		Palette:          append([]string(nil), interval.DefaultPalette...),
		IDScheme:         "counter",
		IDPrefix:         interval.DefaultIDPrefix,
		Editing:          true,
		LogLevel:         "info",
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. path may be empty or name a file that does not
// exist; defaults apply then. Files ending in .yaml or .yml are YAML,
// everything else TOML.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown key %q", undecoded[0].String())
		}
		return nil
	}
}

// applyEnv applies CUELANE_* overrides (env > file > default).
func applyEnv(cfg *Config) error {
	if mode := os.Getenv("CUELANE_ZOOM_MODE"); mode != "" {
		cfg.ZoomMode = mode
	}
	if level := os.Getenv("CUELANE_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if rate := os.Getenv("CUELANE_SAMPLE_RATE"); rate != "" {
		n, err := strconv.Atoi(rate)
		if err != nil {
			return fmt.Errorf("CUELANE_SAMPLE_RATE=%q: %w", rate, err)
		}
		cfg.SampleRate = n
	}
	return nil
}

// Validate checks every field and the seed intervals.
func (c *Config) Validate() error {
	if _, err := zoom.ParseMode(c.ZoomMode); err != nil {
		return fmt.Errorf("zoom_mode: %w", err)
	}
	if len(c.ZoomLevels) == 0 {
		return errors.New("zoom_levels: must not be empty")
	}
	for i, l := range c.ZoomLevels {
		if l <= 0 {
			return fmt.Errorf("zoom_levels[%d]: must be positive, got %d", i, l)
		}
	}
	if c.InitialZoomLevel < 0 || c.InitialZoomLevel >= len(c.ZoomLevels) {
		return fmt.Errorf("initial_zoom_level: %d out of range [0, %d]", c.InitialZoomLevel, len(c.ZoomLevels)-1)
	}
	if c.MaxScaleFactor <= 0 {
		return fmt.Errorf("max_scale_factor: must be positive, got %d", c.MaxScaleFactor)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate: must be positive, got %d", c.SampleRate)
	}
	if c.Duration < 0 {
		return fmt.Errorf("duration: must not be negative, got %g", c.Duration)
	}
	if c.MarkerWidth < 1 {
		return fmt.Errorf("marker_width: must be at least 1, got %d", c.MarkerWidth)
	}
	if c.RandomizeColors && len(c.Palette) == 0 {
		return errors.New("palette: must not be empty when randomize_colors is set")
	}
	switch c.IDScheme {
	case "counter", "uuid":
	default:
		return fmt.Errorf("id_scheme: want counter or uuid, got %q", c.IDScheme)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	opts, err := c.IntervalOptions()
	if err != nil {
		return err
	}
	// Dry-run the seed intervals so ordering and duplicate ids fail here.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := interval.NewStore(interval.WithLogger(quiet)).Add(opts...); err != nil {
		return fmt.Errorf("intervals: %w", err)
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// IntervalOptions parses the seed intervals.
func (c *Config) IntervalOptions() ([]interval.Options, error) {
	out := make([]interval.Options, 0, len(c.Intervals))
	for i, m := range c.Intervals {
		o, err := interval.ParseOptions(m)
		if err != nil {
			return nil, fmt.Errorf("intervals[%d]: %w", i, err)
		}
		out = append(out, o)
	}
	return out, nil
}

// StoreOptions translates the id and color settings for interval.NewStore.
func (c *Config) StoreOptions() []interval.StoreOption {
	gen := interval.CounterIDs(c.IDPrefix)
	if c.IDScheme == "uuid" {
		gen = interval.UUIDIDs(c.IDPrefix)
	}
	return []interval.StoreOption{
		interval.WithIDGenerator(gen),
		interval.WithDefaultColor(c.IntervalColor),
		interval.WithPalette(c.Palette, c.RandomizeColors),
	}
}

// ZoomConfig translates the zoom settings for zoom.New.
func (c *Config) ZoomConfig() zoom.Config {
	return zoom.Config{
		Mode:           c.ZoomMode,
		Levels:         c.ZoomLevels,
		InitialLevel:   c.InitialZoomLevel,
		MaxScaleFactor: c.MaxScaleFactor,
	}
}
