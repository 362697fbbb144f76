//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/life"
)

// Surface hands out presentable targets. Acquire may block until an image
// is available; Present queues the image once token's work is done.
type Surface interface {
	Acquire() (Target, error)
	Present(token Token) error
}

// StepSource produces the simulation image.
type StepSource interface {
	Step(live, dead life.RGBA) (Token, error)
	OutputView() hal.TextureView
}

// FrameCompositor draws the simulation image and the overlay into a target.
type FrameCompositor interface {
	Composite(target Target, sim hal.TextureView, xf life.ViewportTransform,
		rect life.Viewport, overlay OverlayProvider, after Token) (Token, error)
}

// FrameState is the per-frame input of a FrameLoop.
type FrameState struct {
	Transform  life.ViewportTransform
	Viewport   life.Viewport
	Live, Dead life.RGBA
	// Steps is the number of generations to advance. Zero re-composites
	// the last image, which is how a paused session renders.
	Steps int
}

// FrameLoop drives one frame at a time:
//
//	Acquire -> Step (xSteps) -> Composite(after step) -> Present
//
// Each stage is chained to the previous one by its completion token, so the
// host only blocks when a ring slot comes back around and inside Acquire.
type FrameLoop struct {
	surface Surface
	source  StepSource
	comp    FrameCompositor
	overlay OverlayProvider

	frames uint64
	steps  uint64
}

// NewFrameLoop creates a frame loop. overlay may be nil.
func NewFrameLoop(surface Surface, source StepSource, comp FrameCompositor, overlay OverlayProvider) *FrameLoop {
	return &FrameLoop{surface: surface, source: source, comp: comp, overlay: overlay}
}

// Frames returns the number of presented frames.
func (f *FrameLoop) Frames() uint64 { return f.frames }

// Steps returns the number of simulation steps issued.
func (f *FrameLoop) Steps() uint64 { return f.steps }

// Frame renders and presents one frame. A zero-sized target (a minimized
// window) skips the frame without stepping.
func (f *FrameLoop) Frame(state FrameState) error {
	target, err := f.surface.Acquire()
	if errors.Is(err, ErrEmptyTarget) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("frame: acquire: %w", err)
	}
	if target.Width == 0 || target.Height == 0 {
		return nil
	}

	var after Token
	for range state.Steps {
		t, err := f.source.Step(state.Live, state.Dead)
		if err != nil {
			return fmt.Errorf("frame: step: %w", err)
		}
		after = t
		f.steps++
	}

	token, err := f.comp.Composite(target, f.source.OutputView(), state.Transform, state.Viewport, f.overlay, after)
	if err != nil {
		return fmt.Errorf("frame: composite: %w", err)
	}
	if r, ok := f.overlay.(interface{ Retain(Token) }); ok {
		r.Retain(token)
	}
	if err := f.surface.Present(token); err != nil {
		return fmt.Errorf("frame: present: %w", err)
	}
	f.frames++
	return nil
}
