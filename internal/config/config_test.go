package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olivier-w/zalgoplayer/internal/glyph"
	"github.com/olivier-w/zalgoplayer/internal/spectrum"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Media = "song.ogg"
	return cfg
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zalgo.yaml")
	data := []byte("media: valkyries.ogg\ndisplay:\n  columns: 128\n  mode: mirror\nspring:\n  enabled: true\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Media != "valkyries.ogg" || cfg.Display.Columns != 128 || cfg.Display.Mode != "mirror" {
		t.Fatalf("expected file values applied, got %+v", cfg.Display)
	}
	if cfg.Display.MaxCharsPerColumn != 12 || cfg.Display.FPS != 60 {
		t.Fatalf("expected untouched defaults kept, got %+v", cfg.Display)
	}
	if !cfg.Spring.Enabled || cfg.Spring.Frequency != 8 {
		t.Fatalf("expected spring enabled with default frequency, got %+v", cfg.Spring)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	if _, err := Load(path, true); err != nil {
		t.Fatalf("expected optional missing file to load defaults, got %v", err)
	}
	if _, err := Load(path, false); err == nil {
		t.Fatal("expected error for required missing file")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zalgo.yaml")
	if err := os.WriteFile(path, []byte("display:\n  colums: 64\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path, false); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zalgo.yaml")
	cfg := validConfig()
	cfg.Display.Mode = "bottom"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Display.Mode != "bottom" || loaded.Media != "song.ogg" {
		t.Fatalf("expected saved values, got %+v", loaded)
	}
}

func TestValidateColumns(t *testing.T) {
	for _, cols := range []int{0, 8, 15, 1 << 15} {
		cfg := validConfig()
		cfg.Display.Columns = cols
		err := cfg.Validate()
		if !errors.Is(err, spectrum.ErrInvalidAnalysisSize) {
			t.Fatalf("columns %d: expected ErrInvalidAnalysisSize, got %v", cols, err)
		}
	}
}

func TestValidateUnsupportedModeForTable(t *testing.T) {
	cfg := validConfig()
	cfg.Display.Mode = "bottom"
	cfg.Display.GlyphTable = "classic"
	if err := cfg.Validate(); !errors.Is(err, glyph.ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"media":     func(c *Config) { c.Media = "" },
		"max chars": func(c *Config) { c.Display.MaxCharsPerColumn = -1 },
		"mode":      func(c *Config) { c.Display.Mode = "diagonal" },
		"table":     func(c *Config) { c.Display.GlyphTable = "fancy" },
		"fps":       func(c *Config) { c.Display.FPS = 0 },
		"refresh":   func(c *Config) { c.Display.RefreshRateMs = -3 },
		"volume":    func(c *Config) { c.Player.Volume = 1.5 },
		"smoothing": func(c *Config) { c.Analyser.SmoothingTimeConstant = 2 },
		"decibels":  func(c *Config) { c.Analyser.MinDecibels = 0; c.Analyser.MaxDecibels = -10 },
		"spring":    func(c *Config) { c.Spring.Enabled = true; c.Spring.Frequency = 0 },
	}
	for name, mutate := range cases {
		cfg := validConfig()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestFrameIntervalIsBoundedByFPS(t *testing.T) {
	d := DisplayConfig{FPS: 60, RefreshRateMs: 3}
	if got := d.FrameInterval(); got != time.Second/60 {
		t.Fatalf("expected display-rate interval, got %v", got)
	}
	d.RefreshRateMs = 50
	if got := d.FrameInterval(); got != 50*time.Millisecond {
		t.Fatalf("expected requested 50ms interval, got %v", got)
	}
}

func TestModeAndTableParse(t *testing.T) {
	cfg := validConfig()
	cfg.Display.Mode = "BOTH"
	mode, err := cfg.Mode()
	if err != nil || mode != glyph.Mirror {
		t.Fatalf("expected mirror, got %v (%v)", mode, err)
	}
	if _, err := cfg.Table(); err != nil {
		t.Fatalf("expected standard table, got %v", err)
	}
	if !strings.Contains(cfg.Display.GlyphTable, "standard") {
		t.Fatalf("expected default glyph table standard, got %q", cfg.Display.GlyphTable)
	}
}
