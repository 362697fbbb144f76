package life

import (
	"errors"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if cfg.Width != DefaultGridWidth || cfg.Height != DefaultGridHeight {
		t.Errorf("size = %dx%d, want %dx%d", cfg.Width, cfg.Height, DefaultGridWidth, DefaultGridHeight)
	}
	if cfg.FramesInFlight != DefaultFramesInFlight {
		t.Errorf("FramesInFlight = %d, want %d", cfg.FramesInFlight, DefaultFramesInFlight)
	}
	if cfg.Transform != IdentityTransform() {
		t.Errorf("Transform = %+v, want identity", cfg.Transform)
	}
}

func TestNewConfigOptions(t *testing.T) {
	xf := ViewportTransform{OffsetX: 0.1, Scale: 2, AspectRatio: 1}
	cfg, err := NewConfig(
		WithGridSize(37, 41),
		WithColors(RGB(0, 1, 0), RGB(0, 0, 0.2)),
		WithSeed(99),
		WithTransform(xf),
		WithFramesInFlight(3),
		WithStepsPerFrame(2),
		WithWorkers(0),
	)
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if cfg.Width != 37 || cfg.Height != 41 || cfg.Seed != 99 || cfg.FramesInFlight != 3 || cfg.StepsPerFrame != 2 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Transform != xf || cfg.LiveColor != RGB(0, 1, 0) {
		t.Errorf("unexpected transform or colors %+v", cfg)
	}
	if cfg.Workers <= 0 {
		t.Errorf("Workers = %d, want GOMAXPROCS", cfg.Workers)
	}
}

func TestNewConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
		want error
	}{
		{"zero width", WithGridSize(0, 10), ErrInvalidGridSize},
		{"huge height", WithGridSize(10, MaxGridDimension+1), ErrInvalidGridSize},
		{"bad live color", WithColors(RGBA{R: 2, A: 1}, DefaultDeadColor), ErrInvalidColor},
		{"zero scale", WithTransform(ViewportTransform{AspectRatio: 1}), ErrInvalidTransform},
		{"no frames", WithFramesInFlight(0), ErrInvalidFramesInFlight},
		{"too many frames", WithFramesInFlight(MaxFramesInFlight + 1), ErrInvalidFramesInFlight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewConfig(tt.opt); !errors.Is(err, tt.want) {
				t.Errorf("NewConfig() error = %v, want %v", err, tt.want)
			}
		})
	}
}
