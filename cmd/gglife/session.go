package main

import (
	"fmt"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"golang.org/x/text/language"

	"github.com/gogpu/life"
	"github.com/gogpu/life/internal/gpu"
	"github.com/gogpu/life/internal/hud"
)

// session owns the GPU pipeline of one window.
type session struct {
	opts options

	dev     *gpu.Device
	sim     *gpu.Simulation
	host    *gpu.HostSource
	hostSim *life.Simulator
	comp    *gpu.Compositor
	overlay *gpu.OverlayRenderer
	hud     *hud.HUD
	surface *windowSurface
	loop    *gpu.FrameLoop

	paused bool
	drag   hud.Drag
}

func newSession(opts options) *session {
	return &session{opts: opts}
}

func (s *session) ready() bool { return s.loop != nil }

// init creates the pipeline on the application's device.
func (s *session) init(provider gpucontext.DeviceProvider) error {
	cfg := s.opts.config
	dev, err := gpu.DeviceFromProvider(provider)
	if err != nil {
		return err
	}
	s.dev = dev

	tag, err := language.Parse(s.opts.lang)
	if err != nil {
		tag = language.English
	}
	h, err := hud.New(tag)
	if err != nil {
		return err
	}
	s.hud = h

	var source gpu.StepSource
	if s.opts.cpu {
		hostSim, err := life.NewSimulator(cfg.Width, cfg.Height, cfg.Workers)
		if err != nil {
			return err
		}
		hostSim.Reset(cfg.Seed)
		s.hostSim = hostSim
		host, err := gpu.NewHostSource(dev, hostSim)
		if err != nil {
			return err
		}
		s.host = host
		source = host
	} else {
		sim, err := gpu.NewSimulation(dev, gpu.SimulationConfig{
			Width:          uint32(cfg.Width),  //nolint:gosec // validated by life.Config
			Height:         uint32(cfg.Height), //nolint:gosec // validated by life.Config
			Seed:           cfg.Seed,
			FramesInFlight: cfg.FramesInFlight,
			ShaderFormat:   s.opts.shaders,
		})
		if err != nil {
			return err
		}
		s.sim = sim
		source = sim
	}

	format := provider.SurfaceFormat()
	comp, err := gpu.NewCompositor(dev, gpu.CompositorConfig{
		TargetFormat:   format,
		FramesInFlight: cfg.FramesInFlight,
		ShaderFormat:   s.opts.shaders,
	})
	if err != nil {
		return err
	}
	s.comp = comp

	overlay, err := gpu.NewOverlayRenderer(dev, format, s.opts.shaders, s.hud)
	if err != nil {
		return err
	}
	s.overlay = overlay

	s.surface = &windowSurface{timeline: dev.Timeline()}
	s.loop = gpu.NewFrameLoop(s.surface, source, s.comp, s.overlay)
	life.Logger().Info("session started",
		"grid_width", cfg.Width, "grid_height", cfg.Height,
		"cpu", s.opts.cpu, "shaders", s.opts.shaders, "format", format)
	return nil
}

// frame renders one frame into the window.
func (s *session) frame(dc *gogpu.Context) error {
	cfg := s.opts.config
	s.surface.dc = dc

	w, h := dc.Width(), dc.Height()
	if w <= 0 || h <= 0 {
		return nil
	}
	sw, _ := dc.SurfaceSize()
	scale := float64(sw) / float64(w)

	vp := hud.Viewport(float64(w), float64(h), scale)
	state := gpu.FrameState{
		Transform: hud.Transform(cfg.Transform, vp),
		Viewport:  vp,
		Live:      cfg.LiveColor,
		Dead:      cfg.DeadColor,
	}
	if !s.paused {
		state.Steps = cfg.StepsPerFrame
	}

	s.hud.SetState(hud.State{
		Transform:   state.Transform,
		Live:        cfg.LiveColor,
		Dead:        cfg.DeadColor,
		Generation:  s.generation() + uint64(state.Steps), //nolint:gosec // steps are non-negative
		Population:  s.population(),
		GridWidth:   cfg.Width,
		GridHeight:  cfg.Height,
		Paused:      s.paused,
		ScaleFactor: scale,
	})
	if err := s.loop.Frame(state); err != nil {
		return err
	}
	return nil
}

// togglePause flips the pause state and reports whether it is now paused.
func (s *session) togglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// press starts a slider drag at the logical window point (x, y) and
// reports whether the transform changed.
func (s *session) press(x, y float64) bool {
	xf, ok := s.drag.Press(s.opts.config.Transform, x, y)
	s.opts.config.Transform = xf
	return ok
}

// move follows an active slider drag.
func (s *session) move(x float64) bool {
	xf, ok := s.drag.Move(s.opts.config.Transform, x)
	s.opts.config.Transform = xf
	return ok
}

func (s *session) release() { s.drag.Release() }

func (s *session) generation() uint64 {
	if s.sim != nil {
		return s.sim.Generation()
	}
	if s.hostSim != nil {
		return s.hostSim.Generation()
	}
	return 0
}

// population is only known on the host path.
func (s *session) population() int {
	if s.hostSim == nil {
		return -1
	}
	return s.hostSim.Current().Population()
}

// close releases the pipeline in reverse creation order.
func (s *session) close() {
	if s.overlay != nil {
		s.overlay.Destroy()
		s.overlay = nil
	}
	if s.comp != nil {
		s.comp.Destroy()
		s.comp = nil
	}
	if s.sim != nil {
		s.sim.Destroy()
		s.sim = nil
	}
	if s.host != nil {
		s.host.Destroy()
		s.host = nil
	}
	if s.hostSim != nil {
		s.hostSim.Close()
		s.hostSim = nil
	}
	if s.dev != nil {
		s.dev.Close()
		s.dev = nil
	}
	s.loop = nil
}

// windowSurface targets the swapchain image of the current draw callback.
// The application presents after the callback returns, so Present waits
// for the frame on the host.
type windowSurface struct {
	dc       *gogpu.Context
	timeline *gpu.Timeline
}

func (w *windowSurface) Acquire() (gpu.Target, error) {
	if w.dc == nil {
		return gpu.Target{}, gpu.ErrEmptyTarget
	}
	sv := w.dc.SurfaceView()
	if sv == nil {
		return gpu.Target{}, gpu.ErrEmptyTarget
	}
	view := sv.HalTextureView()
	if view == nil {
		return gpu.Target{}, fmt.Errorf("surface view has no HAL texture view")
	}
	width, height := w.dc.SurfaceSize()
	if width == 0 || height == 0 {
		return gpu.Target{}, gpu.ErrEmptyTarget
	}
	return gpu.Target{View: view, Width: width, Height: height}, nil
}

func (w *windowSurface) Present(t gpu.Token) error {
	return w.timeline.Wait(t)
}
