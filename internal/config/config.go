// Package config loads the visualizer settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/olivier-w/zalgoplayer/internal/glyph"
	"github.com/olivier-w/zalgoplayer/internal/spectrum"
)

// Config represents the main configuration
type Config struct {
	Media    string         `yaml:"media"`
	Player   PlayerConfig   `yaml:"player"`
	Display  DisplayConfig  `yaml:"display"`
	Analyser AnalyserConfig `yaml:"analyser"`
	Spring   SpringConfig   `yaml:"spring"`
	Style    StyleConfig    `yaml:"style"`
	LogFile  string         `yaml:"log_file"`
}

// PlayerConfig contains playback settings
type PlayerConfig struct {
	Volume   float64 `yaml:"volume"`
	Autoplay bool    `yaml:"autoplay"`
	Loop     bool    `yaml:"loop"`
}

// DisplayConfig describes the glyph bar
type DisplayConfig struct {
	Columns           int    `yaml:"columns"`
	MaxCharsPerColumn int    `yaml:"max_chars_per_column"`
	Mode              string `yaml:"mode"`        // top, bottom, mirror
	GlyphTable        string `yaml:"glyph_table"` // standard, classic
	RefreshRateMs     int    `yaml:"refresh_rate_ms"`
	FPS               int    `yaml:"fps"`
	Seed              uint64 `yaml:"seed"` // 0 means random
}

// AnalyserConfig mirrors the browser AnalyserNode knobs
type AnalyserConfig struct {
	SmoothingTimeConstant float64 `yaml:"smoothing_time_constant"`
	MinDecibels           float64 `yaml:"min_decibels"`
	MaxDecibels           float64 `yaml:"max_decibels"`
}

// SpringConfig enables eased bar motion
type SpringConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
}

// StyleConfig is passed through to the terminal renderer untouched.
type StyleConfig struct {
	Foreground string `yaml:"foreground"`
	Background string `yaml:"background"`
	Bold       bool   `yaml:"bold"`
	PaddingTop int    `yaml:"padding_top"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Volume:   0.8,
			Autoplay: true,
		},
		Display: DisplayConfig{
			Columns:           64,
			MaxCharsPerColumn: 12,
			Mode:              "top",
			GlyphTable:        "standard",
			RefreshRateMs:     3,
			FPS:               60,
		},
		Analyser: AnalyserConfig{
			SmoothingTimeConstant: 0.8,
			MinDecibels:           -100,
			MaxDecibels:           -30,
		},
		Spring: SpringConfig{
			Frequency: 8,
			Damping:   0.6,
		},
		Style: StyleConfig{
			Foreground: "#E0E0E0",
			PaddingTop: 6,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is
// not an error when optional is set.
func Load(path string, optional bool) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// FrameInterval is the render cadence. The requested refresh rate is only
// advisory: frames never come faster than the display rate allows.
func (d DisplayConfig) FrameInterval() time.Duration {
	frame := time.Second / time.Duration(max(d.FPS, 1))
	return max(frame, time.Duration(d.RefreshRateMs)*time.Millisecond)
}

// Mode parses the configured glyph mode.
func (c *Config) Mode() (glyph.Mode, error) {
	return glyph.ParseMode(c.Display.Mode)
}

// Table parses the configured glyph table.
func (c *Config) Table() (glyph.Table, error) {
	return glyph.ParseTable(c.Display.GlyphTable)
}

// Validate reports the first setting that would keep the player from
// starting.
func (c *Config) Validate() error {
	if c.Media == "" {
		return errors.New("no media given")
	}
	if err := spectrum.ValidateAnalysisSize(spectrum.AnalysisSize(c.Display.Columns)); err != nil {
		return fmt.Errorf("display.columns %d: %w", c.Display.Columns, err)
	}
	if c.Display.MaxCharsPerColumn < 0 {
		return fmt.Errorf("display.max_chars_per_column must not be negative, got %d", c.Display.MaxCharsPerColumn)
	}
	mode, err := c.Mode()
	if err != nil {
		return fmt.Errorf("display.mode: %w", err)
	}
	table, err := c.Table()
	if err != nil {
		return fmt.Errorf("display.glyph_table: %w", err)
	}
	if !table.Supports(mode) {
		return fmt.Errorf("display.mode %s: %w in the %s glyph table", mode, glyph.ErrUnsupportedMode, table)
	}
	if c.Display.FPS <= 0 {
		return fmt.Errorf("display.fps must be positive, got %d", c.Display.FPS)
	}
	if c.Display.RefreshRateMs < 0 {
		return fmt.Errorf("display.refresh_rate_ms must not be negative, got %d", c.Display.RefreshRateMs)
	}
	if c.Player.Volume < 0 || c.Player.Volume > 1 {
		return fmt.Errorf("player.volume must be within [0, 1], got %v", c.Player.Volume)
	}
	a := c.Analyser
	if a.SmoothingTimeConstant < 0 || a.SmoothingTimeConstant > 1 {
		return fmt.Errorf("analyser.smoothing_time_constant must be within [0, 1], got %v", a.SmoothingTimeConstant)
	}
	if a.MinDecibels >= a.MaxDecibels {
		return fmt.Errorf("analyser.min_decibels (%v) must be below max_decibels (%v)", a.MinDecibels, a.MaxDecibels)
	}
	if c.Spring.Enabled && (c.Spring.Frequency <= 0 || c.Spring.Damping < 0) {
		return fmt.Errorf("spring needs a positive frequency and non-negative damping")
	}
	return nil
}
