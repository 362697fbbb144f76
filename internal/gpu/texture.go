//go:build !nogpu

package gpu

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// createTexture2D creates an RGBA8 2D texture with a full view.
func createTexture2D(device hal.Device, label string, width, height uint32, usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create texture %s: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create texture view %s: %w", label, err)
	}
	return tex, view, nil
}

// createLinearSampler creates the clamp-to-edge linear sampler shared by
// the quad and overlay pipelines.
func createLinearSampler(device hal.Device, label string) (hal.Sampler, error) {
	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeLinear,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler %s: %w", label, err)
	}
	return sampler, nil
}

// ImageTexture is a sampled RGBA8 texture filled from host images.
type ImageTexture struct {
	device hal.Device
	queue  hal.Queue
	label  string

	texture hal.Texture
	view    hal.TextureView
	width   uint32
	height  uint32
}

// NewImageTexture creates an empty width x height texture.
func NewImageTexture(device hal.Device, queue hal.Queue, label string, width, height uint32) (*ImageTexture, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrEmptyTarget, label, width, height)
	}
	tex, view, err := createTexture2D(device, label, width, height,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return nil, err
	}
	return &ImageTexture{
		device: device, queue: queue, label: label,
		texture: tex, view: view, width: width, height: height,
	}, nil
}

// View returns the sampled view.
func (t *ImageTexture) View() hal.TextureView { return t.view }

// Size returns the texture dimensions.
func (t *ImageTexture) Size() (width, height uint32) { return t.width, t.height }

// Upload copies img into the texture. img must match the texture size.
// Queue writes are ordered with submissions, so an upload never changes
// what an earlier submitted frame samples.
func (t *ImageTexture) Upload(pix []byte, stride int, bounds image.Rectangle) error {
	if t.texture == nil {
		return ErrDestroyed
	}
	if uint32(bounds.Dx()) != t.width || uint32(bounds.Dy()) != t.height { //nolint:gosec // bounds come from images of texture size
		return fmt.Errorf("gpu: upload %s: image %dx%d, texture %dx%d",
			t.label, bounds.Dx(), bounds.Dy(), t.width, t.height)
	}
	rowBytes := int(t.width) * 4
	data := pix
	if stride != rowBytes {
		data = make([]byte, rowBytes*int(t.height))
		for y := range int(t.height) {
			copy(data[y*rowBytes:(y+1)*rowBytes], pix[y*stride:y*stride+rowBytes])
		}
	}
	err := t.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.texture, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(rowBytes), RowsPerImage: t.height}, //nolint:gosec // row bytes fit uint32
		&hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	)
	if err != nil {
		return fmt.Errorf("gpu: upload %s: %w", t.label, err)
	}
	return nil
}

// UploadNRGBA uploads a straight-alpha image.
func (t *ImageTexture) UploadNRGBA(img *image.NRGBA) error {
	return t.Upload(img.Pix, img.Stride, img.Bounds())
}

// UploadRGBA uploads a premultiplied image.
func (t *ImageTexture) UploadRGBA(img *image.RGBA) error {
	return t.Upload(img.Pix, img.Stride, img.Bounds())
}

// Destroy releases the texture. Safe to call more than once.
func (t *ImageTexture) Destroy() {
	if t.view != nil {
		t.device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.texture != nil {
		t.device.DestroyTexture(t.texture)
		t.texture = nil
	}
}
