//go:build !nogpu

package gpu

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/life"
)

// HostSource is a StepSource backed by the host simulator. Every step is
// computed on the CPU and the colorized image is uploaded to a texture, so
// the GPU only composites. Used for debugging shader issues.
type HostSource struct {
	sim     *life.Simulator
	texture *ImageTexture
}

// NewHostSource wraps sim and allocates a texture of its size.
func NewHostSource(dev *Device, sim *life.Simulator) (*HostSource, error) {
	if dev == nil || dev.Device == nil || dev.Queue == nil {
		return nil, ErrNilDevice
	}
	w, h := sim.Size()
	tex, err := NewImageTexture(dev.Device, dev.Queue, "host_output", uint32(w), uint32(h)) //nolint:gosec // grid sizes are validated
	if err != nil {
		return nil, err
	}
	return &HostSource{sim: sim, texture: tex}, nil
}

// Step advances the host grid and uploads the new image. Queue writes are
// ordered ahead of later submissions, so the zero token is returned.
func (s *HostSource) Step(live, dead life.RGBA) (Token, error) {
	s.sim.Step(live, dead)
	if err := s.texture.UploadNRGBA(s.sim.Image()); err != nil {
		return Token{}, err
	}
	return Token{}, nil
}

// OutputView returns the uploaded image.
func (s *HostSource) OutputView() hal.TextureView { return s.texture.View() }

// Simulator returns the wrapped simulator.
func (s *HostSource) Simulator() *life.Simulator { return s.sim }

// Destroy releases the texture.
func (s *HostSource) Destroy() { s.texture.Destroy() }
