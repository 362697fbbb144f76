package life

import (
	"fmt"
	"runtime"
)

// Defaults for a Config built with no options.
const (
	DefaultGridWidth      = 1024
	DefaultGridHeight     = 1024
	DefaultFramesInFlight = 2
	MaxFramesInFlight     = 8
)

// Config is the programmatic configuration of a simulation session.
type Config struct {
	Width          int
	Height         int
	LiveColor      RGBA
	DeadColor      RGBA
	Seed           uint64
	Transform      ViewportTransform
	FramesInFlight int
	StepsPerFrame  int
	Workers        int
}

// Option configures a Config.
//
// Example:
//
//	cfg, err := life.NewConfig(
//	    life.WithGridSize(512, 512),
//	    life.WithColors(life.RGB(0, 1, 0), life.RGB(0, 0, 0)),
//	)
type Option func(*Config)

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		Width:          DefaultGridWidth,
		Height:         DefaultGridHeight,
		LiveColor:      DefaultLiveColor,
		DeadColor:      DefaultDeadColor,
		Seed:           1,
		Transform:      IdentityTransform(),
		FramesInFlight: DefaultFramesInFlight,
		StepsPerFrame:  1,
		Workers:        runtime.GOMAXPROCS(0),
	}
}

// NewConfig applies opts over DefaultConfig and validates the result.
func NewConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithGridSize sets the grid dimensions.
func WithGridSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithColors sets the live and dead cell colors.
func WithColors(live, dead RGBA) Option {
	return func(c *Config) {
		c.LiveColor = live
		c.DeadColor = dead
	}
}

// WithSeed sets the seed of the initial random grids.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithTransform sets the initial viewport transform.
func WithTransform(t ViewportTransform) Option {
	return func(c *Config) {
		c.Transform = t
	}
}

// WithFramesInFlight sets how many frames may be queued on the GPU.
func WithFramesInFlight(n int) Option {
	return func(c *Config) {
		c.FramesInFlight = n
	}
}

// WithStepsPerFrame sets how many generations are computed per frame.
// Zero means the simulation only advances on explicit requests.
func WithStepsPerFrame(n int) Option {
	return func(c *Config) {
		c.StepsPerFrame = n
	}
}

// WithWorkers sets the worker count of the host simulator.
// Zero or negative selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Config) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		c.Workers = n
	}
}

// Validate checks every field.
func (c Config) Validate() error {
	if err := ValidateGridSize(c.Width, c.Height); err != nil {
		return err
	}
	if err := c.LiveColor.Validate(); err != nil {
		return fmt.Errorf("live color: %w", err)
	}
	if err := c.DeadColor.Validate(); err != nil {
		return fmt.Errorf("dead color: %w", err)
	}
	if err := c.Transform.Validate(); err != nil {
		return err
	}
	if c.FramesInFlight < 1 || c.FramesInFlight > MaxFramesInFlight {
		return fmt.Errorf("%w: %d (must be in [1, %d])",
			ErrInvalidFramesInFlight, c.FramesInFlight, MaxFramesInFlight)
	}
	if c.StepsPerFrame < 0 {
		return fmt.Errorf("life: steps per frame must not be negative, got %d", c.StepsPerFrame)
	}
	return nil
}
