package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/olivier-w/zalgoplayer/internal/analyser"
	"github.com/olivier-w/zalgoplayer/internal/config"
	"github.com/olivier-w/zalgoplayer/internal/media"
	"github.com/olivier-w/zalgoplayer/internal/player"
	"github.com/olivier-w/zalgoplayer/internal/render"
	"github.com/olivier-w/zalgoplayer/internal/spectrum"
	"github.com/olivier-w/zalgoplayer/internal/ui"
)

var (
	Version = "dev"

	flags struct {
		config     string
		columns    int
		maxChars   int
		mode       string
		glyphTable string
		fps        int
		refreshMs  int
		seed       uint64
		spring     bool
		volume     float64
		loop       bool
		noAutoplay bool
		log        string
		writeCfg   string
	}
)

var rootCmd = &cobra.Command{
	Use:   "zalgoplayer [file or url]",
	Short: "Play audio with a combining-mark spectrum visualizer",
	Long: `zalgoplayer plays a local file or http(s) URL and renders its frequency
spectrum as a row of placeholder characters stacked with Unicode combining
marks. Louder bands grow taller stacks.

Supported formats: ` + media.SupportedExtsList(),
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    run,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flags.config, "config", "c", "", "YAML config file")
	f.IntVar(&flags.columns, "columns", 0, "number of spectrum columns (16..16384)")
	f.IntVar(&flags.maxChars, "max-chars", 0, "maximum combining marks per column")
	f.StringVarP(&flags.mode, "mode", "m", "", "mark placement: top, bottom or mirror")
	f.StringVar(&flags.glyphTable, "glyph-table", "", "mark table: standard or classic")
	f.IntVar(&flags.fps, "fps", 0, "render frames per second")
	f.IntVar(&flags.refreshMs, "refresh-ms", 0, "minimum milliseconds between frames")
	f.Uint64Var(&flags.seed, "seed", 0, "glyph sampling seed (0 picks one at random)")
	f.BoolVar(&flags.spring, "spring", false, "ease column heights between frames")
	f.Float64Var(&flags.volume, "volume", -1, "initial volume (0..1)")
	f.BoolVar(&flags.loop, "loop", false, "restart the track when it ends")
	f.BoolVar(&flags.noAutoplay, "no-autoplay", false, "start paused")
	f.StringVarP(&flags.log, "log", "l", "", "write debug logs to file (empty disables)")
	f.StringVar(&flags.writeCfg, "write-config", "", "write the effective config to file and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.Load(configPath(), flags.config == "")
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, args)
	if flags.writeCfg != "" {
		if err := config.Save(cfg, flags.writeCfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", flags.writeCfg)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "debug")
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	src, err := media.Resolve(ctx, cfg.Media)
	stop()
	if err != nil {
		return err
	}
	defer src.Cleanup()

	meta := player.ReadMetadata(src.Path)
	p, err := player.New(src.Path, player.Options{Volume: cfg.Player.Volume})
	if err != nil {
		return fmt.Errorf("creating player: %w", err)
	}
	defer p.Close()
	log.Printf("playing %s (%s)", src.Path, p.Duration())

	frames := render.NewFrameQueue()
	ctrl, err := newController(cfg, frames)
	if err != nil {
		return err
	}

	analysis := analyser.NewSource(p, analyser.Options{
		SmoothingTimeConstant: cfg.Analyser.SmoothingTimeConstant,
		MinDecibels:           cfg.Analyser.MinDecibels,
		MaxDecibels:           cfg.Analyser.MaxDecibels,
	})
	attach := render.AudioSourceFunc(func() (render.Analysis, error) {
		node, err := analysis.Attach()
		if err != nil {
			return nil, err
		}
		if err := node.SetFFTSize(spectrum.AnalysisSize(cfg.Display.Columns)); err != nil {
			return nil, err
		}
		return node, nil
	})

	model := ui.New(p, ctrl, frames, attach, ui.Options{
		Metadata:      meta,
		Autoplay:      cfg.Player.Autoplay,
		Repeat:        cfg.Player.Loop,
		FrameInterval: cfg.Display.FrameInterval(),
		Style:         cfg.Style,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}

func newController(cfg *config.Config, frames *render.FrameQueue) (*render.Controller, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}
	table, err := cfg.Table()
	if err != nil {
		return nil, err
	}

	rc := render.Config{
		Columns:           cfg.Display.Columns,
		MaxCharsPerColumn: cfg.Display.MaxCharsPerColumn,
		Mode:              mode,
		Table:             table,
	}
	if seed := cfg.Display.Seed; seed != 0 {
		rc.Rand = rand.New(rand.NewPCG(seed, seed))
	}
	if cfg.Spring.Enabled {
		rc.Spring = spectrum.NewSpring(cfg.Display.FPS, cfg.Spring.Frequency, cfg.Spring.Damping, float64(cfg.Display.MaxCharsPerColumn))
	}
	return render.New(rc, frames)
}

func configPath() string {
	if flags.config != "" {
		return flags.config
	}
	return "zalgoplayer.yaml"
}

// applyFlags overlays explicitly set flags on the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Media = args[0]
	}
	set := cmd.Flags().Changed
	if set("columns") {
		cfg.Display.Columns = flags.columns
	}
	if set("max-chars") {
		cfg.Display.MaxCharsPerColumn = flags.maxChars
	}
	if set("mode") {
		cfg.Display.Mode = flags.mode
	}
	if set("glyph-table") {
		cfg.Display.GlyphTable = flags.glyphTable
	}
	if set("fps") {
		cfg.Display.FPS = flags.fps
	}
	if set("refresh-ms") {
		cfg.Display.RefreshRateMs = flags.refreshMs
	}
	if set("seed") {
		cfg.Display.Seed = flags.seed
	}
	if set("spring") {
		cfg.Spring.Enabled = flags.spring
	}
	if set("volume") {
		cfg.Player.Volume = flags.volume
	}
	if set("loop") {
		cfg.Player.Loop = flags.loop
	}
	if flags.noAutoplay {
		cfg.Player.Autoplay = false
	}
	if set("log") {
		cfg.LogFile = flags.log
	}
}
