//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// OverlaySource draws the overlay layer on the host. Images are
// premultiplied RGBA of exactly width x height with row 0 at the top.
type OverlaySource interface {
	Render(width, height uint32) (*image.RGBA, error)
}

// OverlayRenderer is an OverlayProvider that uploads a host-drawn image
// and records a full-target blended draw of it. The texture follows the
// target size and is recreated when the target is resized.
//
// OverlayRenderer is not safe for concurrent use.
type OverlayRenderer struct {
	device   hal.Device
	queue    hal.Queue
	timeline *Timeline
	source   OverlaySource

	shader     hal.ShaderModule
	layout     hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	sampler    hal.Sampler

	texture   *ImageTexture
	bindGroup hal.BindGroup

	// last is the most recent frame that sampled texture.
	last Token
}

// NewOverlayRenderer creates the overlay pipeline for targets of format.
func NewOverlayRenderer(dev *Device, format gputypes.TextureFormat, shaders ShaderFormat, source OverlaySource) (*OverlayRenderer, error) {
	if dev == nil || dev.Device == nil || dev.Queue == nil {
		return nil, ErrNilDevice
	}
	if format == 0 {
		format = gputypes.TextureFormatBGRA8Unorm
	}
	o := &OverlayRenderer{
		device:   dev.Device,
		queue:    dev.Queue,
		timeline: dev.Timeline(),
		source:   source,
	}
	if err := o.createPipeline(format, shaders); err != nil {
		o.Destroy()
		return nil, err
	}
	return o, nil
}

func (o *OverlayRenderer) createPipeline(format gputypes.TextureFormat, shaders ShaderFormat) error {
	shader, err := createShaderModule(o.device, "overlay_shader", overlayShaderSource, shaders)
	if err != nil {
		return err
	}
	o.shader = shader

	layout, err := o.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "overlay_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create overlay layout: %w", err)
	}
	o.layout = layout

	pipeLayout, err := o.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "overlay_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{o.layout},
	})
	if err != nil {
		return fmt.Errorf("create overlay pipeline layout: %w", err)
	}
	o.pipeLayout = pipeLayout

	blend := gputypes.BlendStatePremultiplied()
	pipeline, err := o.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "overlay_pipeline",
		Layout: o.pipeLayout,
		Vertex: hal.VertexState{
			Module:     o.shader,
			EntryPoint: "vs_main",
		},
		Fragment: &hal.FragmentState{
			Module:     o.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{Format: format, Blend: &blend, WriteMask: gputypes.ColorWriteMaskAll},
			},
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
	})
	if err != nil {
		return fmt.Errorf("create overlay pipeline: %w", err)
	}
	o.pipeline = pipeline

	sampler, err := createLinearSampler(o.device, "overlay_sampler")
	if err != nil {
		return err
	}
	o.sampler = sampler
	return nil
}

// Overlay renders the source at the target size, uploads it and returns
// the commands that draw it. A nil source yields an empty list.
func (o *OverlayRenderer) Overlay(width, height uint32) (*CommandList, error) {
	if o.pipeline == nil {
		return nil, ErrDestroyed
	}
	rec := NewCommandRecorder(width, height)
	if o.source == nil {
		return rec.Finish(), nil
	}
	img, err := o.source.Render(width, height)
	if err != nil {
		return nil, err
	}
	if err := o.ensureTexture(width, height); err != nil {
		return nil, err
	}
	if err := o.texture.UploadRGBA(img); err != nil {
		return nil, err
	}

	rec.SetPipeline(o.pipeline)
	rec.SetBindGroup(0, o.bindGroup, nil)
	rec.Draw(3, 1, 0, 0)
	return rec.Finish(), nil
}

// Retain records the frame that samples the current overlay texture.
// The texture is not destroyed before that frame completes.
func (o *OverlayRenderer) Retain(t Token) { o.last = t }

func (o *OverlayRenderer) ensureTexture(width, height uint32) error {
	if o.texture != nil {
		if w, h := o.texture.Size(); w == width && h == height {
			return nil
		}
		if err := o.releaseTexture(); err != nil {
			return err
		}
	}
	tex, err := NewImageTexture(o.device, o.queue, "overlay_texture", width, height)
	if err != nil {
		return err
	}
	bg, err := o.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "overlay_bind_group",
		Layout: o.layout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: tex.View().NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: o.sampler.NativeHandle()}},
		},
	})
	if err != nil {
		tex.Destroy()
		return fmt.Errorf("create overlay bind group: %w", err)
	}
	o.texture = tex
	o.bindGroup = bg
	slogger().Debug("gpu: overlay texture created", "width", width, "height", height)
	return nil
}

func (o *OverlayRenderer) releaseTexture() error {
	if err := o.timeline.Wait(o.last); err != nil {
		return fmt.Errorf("overlay: release texture: %w", err)
	}
	o.last = Token{}
	if o.bindGroup != nil {
		o.device.DestroyBindGroup(o.bindGroup)
		o.bindGroup = nil
	}
	if o.texture != nil {
		o.texture.Destroy()
		o.texture = nil
	}
	return nil
}

// Destroy waits for the last frame that used the overlay and releases all
// resources.
func (o *OverlayRenderer) Destroy() {
	if err := o.releaseTexture(); err != nil {
		slogger().Warn("gpu: overlay destroy: wait failed", "err", err)
	}
	if o.sampler != nil {
		o.device.DestroySampler(o.sampler)
		o.sampler = nil
	}
	if o.pipeline != nil {
		o.device.DestroyRenderPipeline(o.pipeline)
		o.pipeline = nil
	}
	if o.pipeLayout != nil {
		o.device.DestroyPipelineLayout(o.pipeLayout)
		o.pipeLayout = nil
	}
	if o.layout != nil {
		o.device.DestroyBindGroupLayout(o.layout)
		o.layout = nil
	}
	if o.shader != nil {
		o.device.DestroyShaderModule(o.shader)
		o.shader = nil
	}
}
