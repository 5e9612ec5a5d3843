// Package render drives the spectrum-to-glyph pipeline in step with playback.
package render

import (
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/olivier-w/zalgoplayer/internal/glyph"
	"github.com/olivier-w/zalgoplayer/internal/spectrum"
)

// State is the playback state of a Controller.
type State uint8

const (
	Idle State = iota
	AwaitingSetup
	ReadyPaused
	ReadyPlaying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingSetup:
		return "awaiting setup"
	case ReadyPaused:
		return "paused"
	case ReadyPlaying:
		return "playing"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Analysis yields frequency snapshots from an attached audio graph.
type Analysis interface {
	// CaptureMagnitudes returns exactly bucketCount byte magnitudes.
	CaptureMagnitudes(bucketCount int) ([]uint8, error)
}

// AudioSource builds the analysis graph for the playing media.
type AudioSource interface {
	AttachSource() (Analysis, error)
}

// AudioSourceFunc adapts a function to AudioSource.
type AudioSourceFunc func() (Analysis, error)

func (f AudioSourceFunc) AttachSource() (Analysis, error) { return f() }

// Config describes one visualizer.
type Config struct {
	Columns           int
	MaxCharsPerColumn int
	Mode              glyph.Mode
	Table             glyph.Table

	// Rand seeds glyph sampling; nil picks a random seed.
	Rand *rand.Rand
	// Spring, when set, eases intensities between frames.
	Spring *spectrum.Spring
	// OnFrame is called with every published frame.
	OnFrame func(frame string)
}

// Stats counts tick outcomes.
type Stats struct {
	Rendered int
	Skipped  int
	LastErr  error
}

// Controller owns the analysis graph handle, the scheduling handle and the
// glyph generator for one player. All methods must be called from the
// goroutine that runs the Scheduler's frames.
type Controller struct {
	columns  int
	maxChars int
	gen      *glyph.Generator
	spring   *spectrum.Spring
	onFrame  func(string)
	sched    Scheduler

	state    State
	wantPlay bool
	closed   bool
	analysis Analysis
	frame    FrameID

	base    string
	counts  []float64
	output  string
	stats   Stats
	skipRun int
}

// New validates cfg and builds the palette up front, so an unsupported mode
// or column count fails here rather than on the first frame.
func New(cfg Config, sched Scheduler) (*Controller, error) {
	if sched == nil {
		return nil, fmt.Errorf("%w: nil scheduler", ErrInvalidConfiguration)
	}
	if err := spectrum.ValidateAnalysisSize(spectrum.AnalysisSize(cfg.Columns)); err != nil {
		return nil, fmt.Errorf("%w: %d columns: %w", ErrInvalidConfiguration, cfg.Columns, err)
	}
	if cfg.MaxCharsPerColumn < 0 {
		return nil, fmt.Errorf("%w: negative max characters per column %d", ErrInvalidConfiguration, cfg.MaxCharsPerColumn)
	}
	palette, err := glyph.NewPalette(cfg.Mode, cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	base := glyph.Placeholder(cfg.Columns)
	return &Controller{
		columns:  cfg.Columns,
		maxChars: cfg.MaxCharsPerColumn,
		gen:      glyph.NewGenerator(palette, cfg.Rand),
		spring:   cfg.Spring,
		onFrame:  cfg.OnFrame,
		sched:    sched,
		state:    Idle,
		frame:    NoFrame,
		base:     base,
		counts:   make([]float64, cfg.Columns),
		output:   base,
	}, nil
}

// Attach runs the one-time analysis graph setup. It is a no-op once a graph
// exists. A play signal received before setup takes effect when it completes.
func (c *Controller) Attach(src AudioSource) error {
	if c.closed {
		return ErrClosed
	}
	if c.analysis != nil {
		return nil
	}
	if src == nil {
		return ErrSourceUnavailable
	}

	c.state = AwaitingSetup
	analysis, err := src.AttachSource()
	if err == nil && analysis == nil {
		err = ErrSourceUnavailable
	}
	if err != nil {
		c.state = Idle
		return fmt.Errorf("attaching audio source: %w", err)
	}

	c.analysis = analysis
	c.state = ReadyPaused
	log.Printf("render: analysis graph ready (%d columns, %s mode)", c.columns, c.gen.Palette().Mode())
	if c.wantPlay {
		c.Play()
	}
	return nil
}

// Play handles the media play signal.
func (c *Controller) Play() {
	if c.closed {
		return
	}
	c.wantPlay = true
	if c.state == Idle || c.state == AwaitingSetup {
		return
	}
	c.state = ReadyPlaying
	if c.frame == NoFrame {
		c.frame = c.sched.RequestFrame(c.tick)
	}
}

// Pause handles the media pause signal and cancels the pending tick.
func (c *Controller) Pause() {
	c.wantPlay = false
	if c.state == ReadyPlaying {
		c.state = ReadyPaused
	}
	c.cancel()
}

// Close cancels any pending tick. Signals after Close are ignored.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.cancel()
	c.closed = true
	c.wantPlay = false
}

// ResetSmoothing drops eased column heights so the next frame starts from
// rest. Call it when the playback position jumps.
func (c *Controller) ResetSmoothing() {
	if c.spring != nil {
		c.spring.Reset()
	}
}

func (c *Controller) cancel() {
	if c.frame == NoFrame {
		return
	}
	c.sched.CancelFrame(c.frame)
	c.frame = NoFrame
}

func (c *Controller) tick() {
	c.frame = NoFrame
	if c.closed {
		return
	}

	if err := c.renderFrame(); err != nil {
		c.stats.Skipped++
		c.stats.LastErr = err
		c.skipRun++
		if c.skipRun == 1 {
			log.Printf("render: skipping frame: %v", err)
		}
	} else if c.skipRun > 0 {
		log.Printf("render: recovered after %d skipped frames", c.skipRun)
		c.skipRun = 0
	}

	if c.state == ReadyPlaying && c.frame == NoFrame {
		c.frame = c.sched.RequestFrame(c.tick)
	}
}

func (c *Controller) renderFrame() error {
	if c.analysis == nil {
		return ErrSourceUnavailable
	}
	mags, err := c.analysis.CaptureMagnitudes(c.columns)
	if err != nil {
		return fmt.Errorf("capturing magnitudes: %w", err)
	}
	if len(mags) != c.columns {
		return fmt.Errorf("%w: %d magnitudes for %d columns", glyph.ErrInvalidInput, len(mags), c.columns)
	}

	counts := spectrum.NormalizeInto(c.counts, mags, c.maxChars)
	if c.spring != nil {
		counts = c.spring.Step(counts)
	}
	out, err := c.gen.Enhance(c.base, counts)
	if err != nil {
		return err
	}

	c.output = out
	c.stats.Rendered++
	if c.onFrame != nil {
		c.onFrame(out)
	}
	return nil
}

func (c *Controller) State() State { return c.state }

// Frame returns the most recently published frame.
func (c *Controller) Frame() string { return c.output }

// Scheduled returns the pending tick handle, or NoFrame.
func (c *Controller) Scheduled() FrameID { return c.frame }

func (c *Controller) Columns() int     { return c.columns }
func (c *Controller) Mode() glyph.Mode { return c.gen.Palette().Mode() }
func (c *Controller) Stats() Stats     { return c.stats }
