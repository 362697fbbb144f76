package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/gogpu/life"
	"github.com/gogpu/life/internal/gpu"
)

// options are the command line settings.
type options struct {
	config  life.Config
	shaders gpu.ShaderFormat
	cpu     bool
	verbose bool
	lang    string
}

// parseFlags parses args (without the program name) into options.
func parseFlags(args []string, output io.Writer) (options, error) {
	fs := flag.NewFlagSet("gglife", flag.ContinueOnError)
	fs.SetOutput(output)

	var (
		gridW   = fs.Int("grid-width", life.DefaultGridWidth, "grid width in cells")
		gridH   = fs.Int("grid-height", life.DefaultGridHeight, "grid height in cells")
		live    = fs.String("live", "#ffffff", "live cell color (#rgb, #rrggbb or #rrggbbaa)")
		dead    = fs.String("dead", "#000000", "dead cell color")
		seed    = fs.Uint64("seed", 1, "random seed for the initial grid")
		frames  = fs.Int("frames", life.DefaultFramesInFlight, "frames in flight")
		steps   = fs.Int("steps", 1, "generations per frame")
		offsetX = fs.Float64("offset-x", 0, "horizontal offset of the grid in [-1,1]")
		offsetY = fs.Float64("offset-y", 0, "vertical offset of the grid in [-1,1]")
		scale   = fs.Float64("scale", 1, "grid zoom factor")
		workers = fs.Int("workers", 0, "host simulator workers (0 = GOMAXPROCS)")
		spirv   = fs.Bool("spirv", false, "compile shaders to SPIR-V with naga")
		cpu     = fs.Bool("cpu", false, "simulate on the CPU and only composite on the GPU")
		verbose = fs.Bool("v", false, "verbose logging")
		lang    = fs.String("lang", "en", "language for number formatting")
	)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	liveColor, err := life.ParseHex(*live)
	if err != nil {
		return options{}, fmt.Errorf("-live: %w", err)
	}
	deadColor, err := life.ParseHex(*dead)
	if err != nil {
		return options{}, fmt.Errorf("-dead: %w", err)
	}

	cfg, err := life.NewConfig(
		life.WithGridSize(*gridW, *gridH),
		life.WithColors(liveColor, deadColor),
		life.WithSeed(*seed),
		life.WithFramesInFlight(*frames),
		life.WithStepsPerFrame(*steps),
		life.WithTransform(life.ViewportTransform{
			OffsetX:     float32(clamp(*offsetX, -1, 1)),
			OffsetY:     float32(clamp(*offsetY, -1, 1)),
			Scale:       float32(clamp(*scale, life.MinScale, life.MaxScale)),
			AspectRatio: 1,
		}),
		life.WithWorkers(*workers),
	)
	if err != nil {
		return options{}, err
	}

	opts := options{config: cfg, cpu: *cpu, verbose: *verbose, lang: *lang}
	if *spirv {
		opts.shaders = gpu.ShaderSPIRV
	}
	return opts, nil
}

// logger returns the structured logger for the verbosity setting.
func (o options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
