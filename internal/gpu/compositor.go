//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/life"
)

// clearColor is the background outside the simulation viewport.
var clearColor = gputypes.Color{R: 0, G: 0, B: 0, A: 1}

// CompositorConfig configures a Compositor.
type CompositorConfig struct {
	// TargetFormat is the color format of the presented image.
	// Zero selects BGRA8Unorm, the usual swapchain format.
	TargetFormat   gputypes.TextureFormat
	FramesInFlight int
	ShaderFormat   ShaderFormat
}

// Target is a color attachment to composite into, typically the acquired
// swapchain image.
type Target struct {
	View          hal.TextureView
	Width, Height uint32
}

// Compositor produces one frame per call in a single render pass with two
// ordered segments: the simulation quad drawn inside the viewport
// sub-rectangle, then the overlay commands over the full target. The pass
// clears the target before the first segment and stores the result.
//
// The quad geometry is static. The viewport transform uniform and its bind
// group live in per-frame ring slots.
//
// Compositor is not safe for concurrent use.
type Compositor struct {
	device   hal.Device
	queue    hal.Queue
	timeline *Timeline
	format   gputypes.TextureFormat

	shader     hal.ShaderModule
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler
	vertices   hal.Buffer
	indices    hal.Buffer

	slots     *Ring[frameSlot]
	frames    uint64
	destroyed bool
}

type frameSlot struct {
	uniform   hal.Buffer
	bindGroup hal.BindGroup
	token     Token
}

// NewCompositor creates the quad pipeline and uploads the static geometry.
func NewCompositor(dev *Device, cfg CompositorConfig) (*Compositor, error) {
	if dev == nil || dev.Device == nil || dev.Queue == nil {
		return nil, ErrNilDevice
	}
	if cfg.TargetFormat == 0 {
		cfg.TargetFormat = gputypes.TextureFormatBGRA8Unorm
	}
	if cfg.FramesInFlight <= 0 {
		cfg.FramesInFlight = life.DefaultFramesInFlight
	}
	c := &Compositor{
		device:   dev.Device,
		queue:    dev.Queue,
		timeline: dev.Timeline(),
		format:   cfg.TargetFormat,
	}
	if err := c.createPipeline(cfg.ShaderFormat); err != nil {
		c.Destroy()
		return nil, err
	}
	if err := c.createGeometry(); err != nil {
		c.Destroy()
		return nil, err
	}
	slots, err := NewRing(cfg.FramesInFlight, c.initSlot, c.destroySlot)
	if err != nil {
		c.Destroy()
		return nil, fmt.Errorf("compositor: create frame slots: %w", err)
	}
	c.slots = slots
	slogger().Info("gpu: compositor created", "format", cfg.TargetFormat, "frames_in_flight", cfg.FramesInFlight)
	return c, nil
}

func (c *Compositor) createPipeline(format ShaderFormat) error {
	shader, err := createShaderModule(c.device, "quad_shader", quadShaderSource, format)
	if err != nil {
		return err
	}
	c.shader = shader

	layout, err := c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "quad_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create quad layout: %w", err)
	}
	c.layout = layout

	pipeLayout, err := c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "quad_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.layout},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline layout: %w", err)
	}
	c.pipeLayout = pipeLayout

	// float32x2 position at location(0), float32x2 texcoord at location(1).
	vertexLayout := []gputypes.VertexBufferLayout{
		{
			ArrayStride: life.QuadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
			},
		},
	}

	pipeline, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "quad_pipeline",
		Layout: c.pipeLayout,
		Vertex: hal.VertexState{
			Module:     c.shader,
			EntryPoint: "vs_main",
			Buffers:    vertexLayout,
		},
		Fragment: &hal.FragmentState{
			Module:     c.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{Format: c.format, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
	})
	if err != nil {
		return fmt.Errorf("create quad pipeline: %w", err)
	}
	c.pipeline = pipeline

	sampler, err := createLinearSampler(c.device, "quad_sampler")
	if err != nil {
		return err
	}
	c.sampler = sampler
	return nil
}

func (c *Compositor) createGeometry() error {
	vb := life.QuadVertexBytes()
	vertices, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quad_vertices",
		Size:  uint64(len(vb)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create quad vertex buffer: %w", err)
	}
	c.vertices = vertices
	if err := c.queue.WriteBuffer(vertices, 0, vb); err != nil {
		return fmt.Errorf("write quad vertices: %w", err)
	}

	ib := life.QuadIndexBytes()
	indices, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "quad_indices",
		Size:  uint64(len(ib)),
		Usage: gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create quad index buffer: %w", err)
	}
	c.indices = indices
	if err := c.queue.WriteBuffer(indices, 0, ib); err != nil {
		return fmt.Errorf("write quad indices: %w", err)
	}
	return nil
}

func (c *Compositor) initSlot(i int, slot *frameSlot) error {
	buf, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("quad_uniform_%d", i),
		Size:  life.ViewportTransformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create quad uniform: %w", err)
	}
	slot.uniform = buf
	return nil
}

func (c *Compositor) destroySlot(slot *frameSlot) {
	_ = c.timeline.Wait(slot.token)
	if slot.bindGroup != nil {
		c.device.DestroyBindGroup(slot.bindGroup)
		slot.bindGroup = nil
	}
	if slot.uniform != nil {
		c.device.DestroyBuffer(slot.uniform)
		slot.uniform = nil
	}
}

// Frames returns the number of frames composited.
func (c *Compositor) Frames() uint64 { return c.frames }

// Composite records and submits one frame into target. The simulation image
// is drawn through xf inside rect, which is clamped to the target; an empty
// rect skips the quad. overlay may be nil. The submission is ordered after
// the after token, typically the step that produced sim.
func (c *Compositor) Composite(target Target, sim hal.TextureView, xf life.ViewportTransform,
	rect life.Viewport, overlay OverlayProvider, after Token) (Token, error) {
	if c.destroyed {
		return Token{}, ErrDestroyed
	}
	if target.View == nil || target.Width == 0 || target.Height == 0 {
		return Token{}, ErrEmptyTarget
	}
	if err := xf.Validate(); err != nil {
		return Token{}, err
	}
	if err := c.timeline.After(after); err != nil {
		return Token{}, fmt.Errorf("compositor: %w", err)
	}

	var list *CommandList
	if overlay != nil {
		l, err := overlay.Overlay(target.Width, target.Height)
		if err != nil {
			return Token{}, fmt.Errorf("compositor: overlay: %w", err)
		}
		list = l
	}

	_, slot := c.slots.Next()
	if err := c.timeline.Wait(slot.token); err != nil {
		return Token{}, fmt.Errorf("compositor: reuse frame slot: %w", err)
	}
	slot.token = Token{}
	if err := c.queue.WriteBuffer(slot.uniform, 0, xf.Bytes()); err != nil {
		return Token{}, fmt.Errorf("compositor: write transform: %w", err)
	}
	if err := c.bindSource(slot, sim); err != nil {
		return Token{}, err
	}

	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "composite_encoder"})
	if err != nil {
		return Token{}, fmt.Errorf("compositor: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("composite"); err != nil {
		encoder.DiscardEncoding()
		return Token{}, fmt.Errorf("compositor: begin encoding: %w", err)
	}
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "composite_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       target.View,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: clearColor,
			},
		},
	})
	c.encodeSegments(rp, target, slot.bindGroup, rect, list)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return Token{}, fmt.Errorf("compositor: end encoding: %w", err)
	}
	token, err := c.timeline.Submit(cmdBuf)
	if err != nil {
		return Token{}, fmt.Errorf("compositor: %w", err)
	}
	slot.token = token
	c.frames++
	return token, nil
}

// bindSource rebuilds the slot bind group for the current simulation view.
func (c *Compositor) bindSource(slot *frameSlot, sim hal.TextureView) error {
	if slot.bindGroup != nil {
		c.device.DestroyBindGroup(slot.bindGroup)
		slot.bindGroup = nil
	}
	bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "quad_bind_group",
		Layout: c.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: slot.uniform.NativeHandle(), Offset: 0, Size: life.ViewportTransformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: sim.NativeHandle()}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: c.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		return fmt.Errorf("compositor: create bind group: %w", err)
	}
	slot.bindGroup = bg
	return nil
}

// encodeSegments records the two segments of the composite pass. Segment
// one draws the quad restricted to rect; segment two replays the overlay
// over the whole target.
func (c *Compositor) encodeSegments(rp PassEncoder, target Target, bg hal.BindGroup, rect life.Viewport, list *CommandList) {
	vp := rect.Clamp(target.Width, target.Height)
	if !vp.Empty() {
		sx, sy, sw, sh := vp.Scissor()
		rp.SetViewport(vp.X, vp.Y, vp.Width, vp.Height, 0, 1)
		rp.SetScissorRect(sx, sy, sw, sh)
		rp.SetPipeline(c.pipeline)
		rp.SetBindGroup(0, bg, nil)
		rp.SetVertexBuffer(0, c.vertices, 0)
		rp.SetIndexBuffer(c.indices, gputypes.IndexFormatUint16, 0)
		rp.DrawIndexed(uint32(len(life.QuadIndices)), 1, 0, 0, 0)
	}

	if list.Len() > 0 {
		rp.SetViewport(0, 0, float32(target.Width), float32(target.Height), 0, 1)
		rp.SetScissorRect(0, 0, target.Width, target.Height)
		list.Execute(rp)
	}
}

// Destroy waits for in-flight frames and releases all resources.
func (c *Compositor) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.slots != nil {
		c.slots.Each(func(_ int, slot *frameSlot) { c.destroySlot(slot) })
		c.slots = nil
	}
	if c.indices != nil {
		c.device.DestroyBuffer(c.indices)
		c.indices = nil
	}
	if c.vertices != nil {
		c.device.DestroyBuffer(c.vertices)
		c.vertices = nil
	}
	if c.sampler != nil {
		c.device.DestroySampler(c.sampler)
		c.sampler = nil
	}
	if c.pipeline != nil {
		c.device.DestroyRenderPipeline(c.pipeline)
		c.pipeline = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.layout != nil {
		c.device.DestroyBindGroupLayout(c.layout)
		c.layout = nil
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
}
