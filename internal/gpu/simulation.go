//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/life"
	"github.com/gogpu/life/internal/parallel"
)

// copyPitchAlignment is the required row alignment of buffer/texture copies.
const copyPitchAlignment = 256

// SimulationConfig configures a Simulation.
type SimulationConfig struct {
	Width, Height  uint32
	Seed           uint64
	FramesInFlight int
	ShaderFormat   ShaderFormat
}

// Simulation advances the automaton on the GPU and renders it into a
// sampleable RGBA8 texture.
//
// It owns a pair of u32 grid buffers used as ping-pong buffers: bind group k
// reads grid k and writes grid 1-k, and the active index selects which one
// a step uses. One step records two compute passes in a single submission:
//
//	pass 1 (update):   grid[Read] -> grid[Write]
//	pass 2 (colorize): grid[Write] -> color buffer -> output texture
//
// and swaps the active index afterwards. The per-dispatch parameters live in
// per-frame ring slots so a step never rewrites parameters an in-flight
// submission may still read.
//
// Simulation is not safe for concurrent use.
type Simulation struct {
	device   hal.Device
	queue    hal.Queue
	timeline *Timeline

	width, height uint32
	rowPitch      uint32
	dispatch      parallel.Dispatch

	shader       hal.ShaderModule
	gridLayout   hal.BindGroupLayout
	paramsLayout hal.BindGroupLayout
	pipeLayout   hal.PipelineLayout
	pipeline     hal.ComputePipeline

	grids      [2]hal.Buffer
	gridGroups [2]hal.BindGroup
	pixels     hal.Buffer
	output     hal.Texture
	outputView hal.TextureView
	outputUsed bool

	slots *Ring[stepSlot]

	active     life.PingPong
	generation uint64
	destroyed  bool
}

// stepSlot holds the parameter uniforms of one in-flight step.
type stepSlot struct {
	params [2]hal.Buffer
	groups [2]hal.BindGroup
	token  Token
}

// NewSimulation validates the grid size, allocates every GPU resource and
// randomizes both grids with cfg.Seed. Any failure is fatal: the resources
// created so far are released and the error is returned.
func NewSimulation(dev *Device, cfg SimulationConfig) (*Simulation, error) {
	if dev == nil || dev.Device == nil || dev.Queue == nil {
		return nil, ErrNilDevice
	}
	if err := life.ValidateGridSize(int(cfg.Width), int(cfg.Height)); err != nil {
		return nil, err
	}
	if cfg.FramesInFlight <= 0 {
		cfg.FramesInFlight = life.DefaultFramesInFlight
	}

	rowBytes := (cfg.Width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	s := &Simulation{
		device:   dev.Device,
		queue:    dev.Queue,
		timeline: dev.Timeline(),
		width:    cfg.Width,
		height:   cfg.Height,
		rowPitch: rowBytes / 4,
		dispatch: parallel.NewDispatch(int(cfg.Width), int(cfg.Height)),
	}

	if err := s.createPipeline(cfg.ShaderFormat); err != nil {
		s.Destroy()
		return nil, err
	}
	if err := s.createResources(); err != nil {
		s.Destroy()
		return nil, err
	}
	slots, err := NewRing(cfg.FramesInFlight, s.initSlot, s.destroySlot)
	if err != nil {
		s.Destroy()
		return nil, fmt.Errorf("simulation: create step slots: %w", err)
	}
	s.slots = slots

	if err := s.writeGrids(cfg.Seed); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("simulation: %w", err)
	}
	slogger().Info("gpu: simulation created",
		"width", cfg.Width, "height", cfg.Height,
		"workgroups", s.dispatch.Count(), "frames_in_flight", cfg.FramesInFlight)
	return s, nil
}

func (s *Simulation) createPipeline(format ShaderFormat) error {
	shader, err := createShaderModule(s.device, "life_shader", lifeShaderSource, format)
	if err != nil {
		return err
	}
	s.shader = shader

	gridLayout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "life_grid_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create life grid layout: %w", err)
	}
	s.gridLayout = gridLayout

	paramsLayout, err := s.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "life_params_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return fmt.Errorf("create life params layout: %w", err)
	}
	s.paramsLayout = paramsLayout

	pipeLayout, err := s.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "life_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{s.gridLayout, s.paramsLayout},
	})
	if err != nil {
		return fmt.Errorf("create life pipeline layout: %w", err)
	}
	s.pipeLayout = pipeLayout

	pipeline, err := s.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "life_pipeline",
		Layout:  s.pipeLayout,
		Compute: hal.ComputeState{Module: s.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create life compute pipeline: %w", err)
	}
	s.pipeline = pipeline
	return nil
}

func (s *Simulation) createResources() error {
	gridSize := uint64(s.width) * uint64(s.height) * 4
	for i := range s.grids {
		buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("life_grid_%d", i),
			Size:  gridSize,
			Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst | gputypes.BufferUsageCopySrc,
		})
		if err != nil {
			return fmt.Errorf("create grid buffer %d: %w", i, err)
		}
		s.grids[i] = buf
	}

	pixelSize := uint64(s.rowPitch) * uint64(s.height) * 4
	pixels, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "life_pixels",
		Size:  pixelSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create pixel buffer: %w", err)
	}
	s.pixels = pixels

	output, outputView, err := createTexture2D(s.device, "life_output", s.width, s.height,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	s.output = output
	s.outputView = outputView

	// Bind group k reads grid k and writes grid 1-k.
	for k := range s.gridGroups {
		bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  fmt.Sprintf("life_grid_group_%d", k),
			Layout: s.gridLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: s.grids[k].NativeHandle(), Offset: 0, Size: gridSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: s.grids[1-k].NativeHandle(), Offset: 0, Size: gridSize}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: s.pixels.NativeHandle(), Offset: 0, Size: pixelSize}},
			},
		})
		if err != nil {
			return fmt.Errorf("create grid bind group %d: %w", k, err)
		}
		s.gridGroups[k] = bg
	}

	slogger().Debug("gpu: simulation buffers",
		"grid_bytes", gridSize, "pixel_bytes", pixelSize, "row_pitch", s.rowPitch)
	return nil
}

func (s *Simulation) initSlot(i int, slot *stepSlot) error {
	for phase := range slot.params {
		buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("life_params_%d_%d", i, phase),
			Size:  life.SimParamsSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			s.destroySlot(slot)
			return fmt.Errorf("create params buffer: %w", err)
		}
		slot.params[phase] = buf

		bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  fmt.Sprintf("life_params_group_%d_%d", i, phase),
			Layout: s.paramsLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: buf.NativeHandle(), Offset: 0, Size: life.SimParamsSize}},
			},
		})
		if err != nil {
			s.destroySlot(slot)
			return fmt.Errorf("create params bind group: %w", err)
		}
		slot.groups[phase] = bg
	}
	return nil
}

func (s *Simulation) destroySlot(slot *stepSlot) {
	_ = s.timeline.Wait(slot.token)
	for i := range slot.groups {
		if slot.groups[i] != nil {
			s.device.DestroyBindGroup(slot.groups[i])
			slot.groups[i] = nil
		}
		if slot.params[i] != nil {
			s.device.DestroyBuffer(slot.params[i])
			slot.params[i] = nil
		}
	}
}

// Size returns the grid dimensions.
func (s *Simulation) Size() (width, height uint32) { return s.width, s.height }

// Active returns the ping-pong index: Read() is the grid holding the most
// recently computed generation.
func (s *Simulation) Active() life.PingPong { return s.active }

// Generation returns the number of steps since the last reset.
func (s *Simulation) Generation() uint64 { return s.generation }

// Dispatch returns the workgroup grid of one phase.
func (s *Simulation) Dispatch() parallel.Dispatch { return s.dispatch }

// OutputView returns the sampled view of the output image.
func (s *Simulation) OutputView() hal.TextureView { return s.outputView }

// Step advances one generation and colorizes it. Both phases are recorded
// in one submission, phase 2 strictly after phase 1. The returned token
// signals when the output image holds the new generation.
func (s *Simulation) Step(live, dead life.RGBA) (Token, error) {
	if s.destroyed {
		return Token{}, ErrDestroyed
	}
	src := s.active.Read()
	token, err := s.submit("life_step", gridGroupUpdate(src), live, dead, true)
	if err != nil {
		return Token{}, err
	}
	s.active = s.active.Swap()
	s.generation++
	return token, nil
}

// Colorize reruns only the colorize phase over the current grid. The grid
// is not modified, so repeated calls produce the same image.
func (s *Simulation) Colorize(live, dead life.RGBA) (Token, error) {
	if s.destroyed {
		return Token{}, ErrDestroyed
	}
	return s.submit("life_colorize", gridGroupColorize(s.active.Read()), live, dead, false)
}

// gridGroupUpdate selects the bind group whose input is the current grid.
func gridGroupUpdate(current int) int { return current }

// gridGroupColorize selects the bind group whose output binding is the
// current grid, which is what the colorize phase reads.
func gridGroupColorize(current int) int { return current ^ 1 }

func (s *Simulation) submit(label string, group int, live, dead life.RGBA, update bool) (Token, error) {
	_, slot := s.slots.Next()
	if err := s.timeline.Wait(slot.token); err != nil {
		return Token{}, fmt.Errorf("simulation: reuse step slot: %w", err)
	}
	slot.token = Token{}

	for phase := range slot.params {
		p := life.SimParams{
			LiveColor: live,
			DeadColor: dead,
			Phase:     life.Phase(phase),
			Width:     s.width,
			Height:    s.height,
			RowPitch:  s.rowPitch,
		}
		if err := s.queue.WriteBuffer(slot.params[phase], 0, p.Bytes()); err != nil {
			return Token{}, fmt.Errorf("simulation: write %s params: %w", life.Phase(phase), err)
		}
	}

	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return Token{}, fmt.Errorf("simulation: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		encoder.DiscardEncoding()
		return Token{}, fmt.Errorf("simulation: begin encoding: %w", err)
	}

	gx, gy := uint32(s.dispatch.GroupsX), uint32(s.dispatch.GroupsY) //nolint:gosec // bounded by MaxGridDimension
	if update {
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "life_update"})
		pass.SetPipeline(s.pipeline)
		pass.SetBindGroup(0, s.gridGroups[group], nil)
		pass.SetBindGroup(1, slot.groups[life.PhaseUpdate], nil)
		pass.Dispatch(gx, gy, 1)
		pass.End()
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "life_colorize"})
	pass.SetPipeline(s.pipeline)
	pass.SetBindGroup(0, s.gridGroups[group], nil)
	pass.SetBindGroup(1, slot.groups[life.PhaseColorize], nil)
	pass.Dispatch(gx, gy, 1)
	pass.End()

	s.encodeOutputCopy(encoder)

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return Token{}, fmt.Errorf("simulation: end encoding: %w", err)
	}
	token, err := s.timeline.Submit(cmdBuf)
	if err != nil {
		return Token{}, fmt.Errorf("simulation: %w", err)
	}
	slot.token = token
	slogger().Debug("gpu: simulation submitted", "label", label, "seq", token.Seq(),
		"workgroups_x", gx, "workgroups_y", gy)
	return token, nil
}

// encodeOutputCopy moves the colorized pixels into the sampled texture.
func (s *Simulation) encodeOutputCopy(encoder hal.CommandEncoder) {
	oldUsage := gputypes.TextureUsageTextureBinding
	if !s.outputUsed {
		oldUsage = gputypes.TextureUsage(0)
		s.outputUsed = true
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.output,
		Usage: hal.TextureUsageTransition{
			OldUsage: oldUsage,
			NewUsage: gputypes.TextureUsageCopyDst,
		},
	}})
	encoder.CopyBufferToTexture(s.pixels, s.output, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: s.rowPitch * 4, RowsPerImage: s.height},
		TextureBase:  hal.ImageCopyTexture{Texture: s.output, MipLevel: 0},
		Size:         hal.Extent3D{Width: s.width, Height: s.height, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.output,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopyDst,
			NewUsage: gputypes.TextureUsageTextureBinding,
		},
	}})
}

// Reset waits for in-flight steps, refills both grids with independent
// random cells and makes grid 0 current. The output image keeps its old
// contents until the next Step.
func (s *Simulation) Reset(seed uint64) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if err := s.drain(); err != nil {
		return fmt.Errorf("simulation: reset: %w", err)
	}
	if err := s.writeGrids(seed); err != nil {
		return fmt.Errorf("simulation: reset: %w", err)
	}
	slogger().Info("gpu: simulation reset", "seed", seed)
	return nil
}

// Load replaces the current grid with g and clears the scratch grid.
func (s *Simulation) Load(g *life.Grid) error {
	if s.destroyed {
		return ErrDestroyed
	}
	if uint32(g.Width()) != s.width || uint32(g.Height()) != s.height { //nolint:gosec // grid sizes are validated
		return fmt.Errorf("%w: got %dx%d, want %dx%d",
			life.ErrGridMismatch, g.Width(), g.Height(), s.width, s.height)
	}
	if err := s.drain(); err != nil {
		return fmt.Errorf("simulation: load: %w", err)
	}
	s.active = 0
	s.generation = 0
	if err := s.queue.WriteBuffer(s.grids[s.active.Read()], 0, g.Bytes()); err != nil {
		return fmt.Errorf("simulation: load grid: %w", err)
	}
	if err := s.queue.WriteBuffer(s.grids[s.active.Write()], 0, make([]byte, len(g.Cells())*4)); err != nil {
		return fmt.Errorf("simulation: clear scratch grid: %w", err)
	}
	return nil
}

func (s *Simulation) writeGrids(seed uint64) error {
	rng := life.NewRand(seed)
	cells := make([]life.Cell, int(s.width)*int(s.height))
	for i := range s.grids {
		life.FillRandom(rng, cells)
		if err := s.queue.WriteBuffer(s.grids[i], 0, life.EncodeCells(cells)); err != nil {
			return fmt.Errorf("write grid %d: %w", i, err)
		}
	}
	s.active = 0
	s.generation = 0
	return nil
}

// drain waits for every in-flight step.
func (s *Simulation) drain() error {
	var firstErr error
	if s.slots == nil {
		return nil
	}
	s.slots.Each(func(_ int, slot *stepSlot) {
		if err := s.timeline.Wait(slot.token); err != nil && firstErr == nil {
			firstErr = err
		}
		slot.token = Token{}
	})
	return firstErr
}

// Destroy waits for in-flight work and releases all resources.
// Safe to call more than once.
func (s *Simulation) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	if err := s.drain(); err != nil {
		slogger().Warn("gpu: simulation destroy: wait failed", "err", err)
	}
	if s.slots != nil {
		s.slots.Each(func(_ int, slot *stepSlot) { s.destroySlot(slot) })
		s.slots = nil
	}
	for i := range s.gridGroups {
		if s.gridGroups[i] != nil {
			s.device.DestroyBindGroup(s.gridGroups[i])
			s.gridGroups[i] = nil
		}
	}
	if s.outputView != nil {
		s.device.DestroyTextureView(s.outputView)
		s.outputView = nil
	}
	if s.output != nil {
		s.device.DestroyTexture(s.output)
		s.output = nil
	}
	if s.pixels != nil {
		s.device.DestroyBuffer(s.pixels)
		s.pixels = nil
	}
	for i := range s.grids {
		if s.grids[i] != nil {
			s.device.DestroyBuffer(s.grids[i])
			s.grids[i] = nil
		}
	}
	if s.pipeline != nil {
		s.device.DestroyComputePipeline(s.pipeline)
		s.pipeline = nil
	}
	if s.pipeLayout != nil {
		s.device.DestroyPipelineLayout(s.pipeLayout)
		s.pipeLayout = nil
	}
	if s.paramsLayout != nil {
		s.device.DestroyBindGroupLayout(s.paramsLayout)
		s.paramsLayout = nil
	}
	if s.gridLayout != nil {
		s.device.DestroyBindGroupLayout(s.gridLayout)
		s.gridLayout = nil
	}
	if s.shader != nil {
		s.device.DestroyShaderModule(s.shader)
		s.shader = nil
	}
}
