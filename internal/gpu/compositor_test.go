//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/life"
)

func newTestCompositor(t *testing.T, dev *Device) *Compositor {
	t.Helper()
	c, err := NewCompositor(dev, CompositorConfig{FramesInFlight: 2})
	if err != nil {
		t.Fatalf("NewCompositor failed: %v", err)
	}
	t.Cleanup(c.Destroy)
	return c
}

func testOverlayList(w, h uint32) *CommandList {
	rec := NewCommandRecorder(w, h)
	rec.SetPipeline(nil)
	rec.SetBindGroup(0, nil, nil)
	rec.Draw(3, 1, 0, 0)
	return rec.Finish()
}

func TestEncodeSegments(t *testing.T) {
	dev := newTestDevice(t)
	c := newTestCompositor(t, dev)
	target := Target{Width: 800, Height: 600}

	tests := []struct {
		name string
		rect life.Viewport
		list *CommandList
		want []string
	}{
		{
			name: "sub-rect then full target overlay",
			rect: life.Viewport{X: 100, Y: 0, Width: 700, Height: 600},
			list: testOverlayList(800, 600),
			want: []string{
				"viewport 100 0 700 600 0 1",
				"scissor 100 0 700 600",
				"pipeline",
				"bindgroup 0",
				"vertex 0 0",
				"index 0",
				"drawindexed 6 1 0 0 0",
				"viewport 0 0 800 600 0 1",
				"scissor 0 0 800 600",
				"pipeline",
				"bindgroup 0",
				"draw 3 1 0 0",
			},
		},
		{
			name: "viewport clamped to target",
			rect: life.Viewport{X: -50, Y: 200, Width: 300, Height: 1000},
			want: []string{
				"viewport 0 200 250 400 0 1",
				"scissor 0 200 250 400",
				"pipeline",
				"bindgroup 0",
				"vertex 0 0",
				"index 0",
				"drawindexed 6 1 0 0 0",
			},
		},
		{
			name: "fractional viewport rounds scissor outward",
			rect: life.Viewport{X: 10.5, Y: 20.25, Width: 100, Height: 50.5},
			want: []string{
				"viewport 10.5 20.25 100 50.5 0 1",
				"scissor 10 20 101 51",
				"pipeline",
				"bindgroup 0",
				"vertex 0 0",
				"index 0",
				"drawindexed 6 1 0 0 0",
			},
		},
		{
			name: "empty viewport still draws overlay",
			rect: life.Viewport{X: 900, Y: 0, Width: 100, Height: 100},
			list: testOverlayList(800, 600),
			want: []string{
				"viewport 0 0 800 600 0 1",
				"scissor 0 0 800 600",
				"pipeline",
				"bindgroup 0",
				"draw 3 1 0 0",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass := &recordingPass{}
			c.encodeSegments(pass, target, nil, tt.rect, tt.list)
			assertCalls(t, pass.calls, tt.want)
		})
	}
}

func TestComposite(t *testing.T) {
	dev := newTestDevice(t)
	c := newTestCompositor(t, dev)
	sim := newTestSimulation(t, dev, 32, 32)
	target := newTestTarget(t, dev, 320, 240)

	var calls int
	overlay := OverlayFunc(func(w, h uint32) (*CommandList, error) {
		calls++
		if w != 320 || h != 240 {
			t.Errorf("overlay asked for %dx%d, want 320x240", w, h)
		}
		return testOverlayList(w, h), nil
	})
	rect := life.FullViewport(320, 240)
	xf := life.IdentityTransform()
	xf.AspectRatio = rect.AspectRatio()

	// Four frames through a two-slot ring.
	for i := range 4 {
		step, err := sim.Step(life.DefaultLiveColor, life.DefaultDeadColor)
		if err != nil {
			t.Fatalf("Step failed: %v", err)
		}
		tok, err := c.Composite(target, sim.OutputView(), xf, rect, overlay, step)
		if err != nil {
			t.Fatalf("Composite %d failed: %v", i, err)
		}
		if tok.Seq() <= step.Seq() {
			t.Errorf("composite token %d not after step token %d", tok.Seq(), step.Seq())
		}
	}
	if c.Frames() != 4 {
		t.Errorf("Frames() = %d, want 4", c.Frames())
	}
	if calls != 4 {
		t.Errorf("overlay called %d times, want 4", calls)
	}

	// A nil overlay is allowed.
	if _, err := c.Composite(target, sim.OutputView(), xf, rect, nil, Token{}); err != nil {
		t.Errorf("Composite without overlay failed: %v", err)
	}
}

func TestComposite_Errors(t *testing.T) {
	dev := newTestDevice(t)
	c := newTestCompositor(t, dev)
	sim := newTestSimulation(t, dev, 8, 8)
	target := newTestTarget(t, dev, 64, 64)
	rect := life.FullViewport(64, 64)
	xf := life.IdentityTransform()

	if _, err := c.Composite(Target{}, sim.OutputView(), xf, rect, nil, Token{}); !errors.Is(err, ErrEmptyTarget) {
		t.Errorf("empty target error = %v, want ErrEmptyTarget", err)
	}

	bad := xf
	bad.Scale = 0
	if _, err := c.Composite(target, sim.OutputView(), bad, rect, nil, Token{}); !errors.Is(err, life.ErrInvalidTransform) {
		t.Errorf("invalid transform error = %v, want ErrInvalidTransform", err)
	}

	errOverlay := errors.New("overlay failed")
	failing := OverlayFunc(func(uint32, uint32) (*CommandList, error) { return nil, errOverlay })
	if _, err := c.Composite(target, sim.OutputView(), xf, rect, failing, Token{}); !errors.Is(err, errOverlay) {
		t.Errorf("overlay error = %v, want %v", err, errOverlay)
	}

	foreign := Token{sub: &submission{timeline: NewTimeline(dev.Device, dev.Queue), seq: 1}}
	if _, err := c.Composite(target, sim.OutputView(), xf, rect, nil, foreign); !errors.Is(err, ErrTokenOrder) {
		t.Errorf("foreign token error = %v, want ErrTokenOrder", err)
	}

	c.Destroy()
	if _, err := c.Composite(target, sim.OutputView(), xf, rect, nil, Token{}); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Composite after Destroy error = %v, want ErrDestroyed", err)
	}
}

func TestCompositorSPIRV(t *testing.T) {
	if _, err := CompileShaderToSPIRV(quadShaderSource); err != nil {
		t.Fatalf("naga cannot compile the quad shader: %v", err)
	}
	dev := newTestDevice(t)
	c, err := NewCompositor(dev, CompositorConfig{ShaderFormat: ShaderSPIRV})
	if err != nil {
		t.Fatalf("NewCompositor(SPIR-V) failed: %v", err)
	}
	c.Destroy()
}
