// ribbon draws a scrolling, twisting ribbon in the terminal. Press t to
// straighten it, b to release it, and click to choose where the pull
// originates.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/olivier-w/ribbon/internal/config"
	"github.com/olivier-w/ribbon/internal/frame"
	"github.com/olivier-w/ribbon/internal/ribbon"
	"github.com/olivier-w/ribbon/internal/segment"
	"github.com/olivier-w/ribbon/internal/settings"
	"github.com/olivier-w/ribbon/internal/stage"
	"github.com/olivier-w/ribbon/internal/tween"
	"github.com/olivier-w/ribbon/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type overrides struct {
	seed       int64
	fps        int
	decay      string
	speed      float64
	noDestruct bool
}

func run(args []string) error {
	var configPath string
	var logOutput string
	var o overrides

	flagSet := pflag.NewFlagSet("ribbon", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to a YAML or JSONC config file (default: $"+config.EnvVar+")")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON debug log records to this file")
	flagSet.Int64Var(&o.seed, "seed", 0, "seed for segment lengths (overrides config)")
	flagSet.IntVar(&o.fps, "fps", 0, "render frames per second (overrides config)")
	flagSet.StringVar(&o.decay, "decay", "", "pull decay law: flat or spread (overrides config)")
	flagSet.Float64Var(&o.speed, "speed", 0, "idle scroll speed in screen units per frame (overrides config)")
	flagSet.BoolVar(&o.noDestruct, "no-destruct", false, "never trim segments that scroll off screen")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg, err := config.Load(config.Path(configPath))
	if err != nil {
		return err
	}
	applyOverrides(cfg, flagSet, o)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog, err := openLogger(logOutput)
	if err != nil {
		return err
	}
	defer closeLog()

	opts, err := cfg.RibbonOptions()
	if err != nil {
		return err
	}

	dims := cfg.Dimensions()
	st := stage.New(dims, 80, 22)
	frames := frame.New()
	driver := tween.NewDriver()
	factory := segment.NewFactory(cfg.SegmentParams(), cfg.Seed)
	r := ribbon.New(settings.Settings{Dimensions: dims, Stage: st}, factory, frames, driver, opts)
	logger.Info("ribbon started",
		"viewport", fmt.Sprintf("%gx%g", dims.Width, dims.Height),
		"segments", r.Len(),
		"decay", r.Decay.String(),
		"seed", cfg.Seed,
	)

	model := ui.New(r, frames, driver, st, cfg.Viewport.FPS, logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := program.Run(); err != nil {
		return err
	}
	r.DetachFromRenderFrame()
	logger.Info("ribbon stopped", "frames", frames.Frames())
	return nil
}

func applyOverrides(cfg *config.Config, flagSet *pflag.FlagSet, o overrides) {
	if flagSet.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flagSet.Changed("fps") {
		cfg.Viewport.FPS = o.fps
	}
	if flagSet.Changed("decay") {
		cfg.Ribbon.Decay = o.decay
	}
	if flagSet.Changed("speed") {
		cfg.Ribbon.IdleSpeed = o.speed
	}
	if o.noDestruct {
		cfg.Ribbon.CanDestruct = false
	}
}

// openLogger returns a JSON logger writing to path, or a discarding logger
// when path is empty. The TUI owns the terminal, so logs never go to stderr.
func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output: %w", err)
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), func() { file.Close() }, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `ribbon: a scrolling ribbon you can pull straight.

Usage:
  ribbon [flags]

Keys:
  t        straighten (ease in over the transition duration)
  b        release back to the wave
  click    set the pull point under the cursor
  c        clear the pull point
  d        toggle the pull decay law (flat, spread)
  +/-      change scroll speed, 0 resets
  space    pause or resume
  q        quit

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
