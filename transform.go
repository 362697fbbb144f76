package life

import (
	"encoding/binary"
	"fmt"
	"math"
)

// ViewportTransformSize is the byte size of the transform uniform.
const ViewportTransformSize = 16

// Scale limits used by the HUD slider.
const (
	MinScale = 0.1
	MaxScale = 50
)

// ViewportTransform places the simulation quad inside the viewport:
//
//	pos = Scale * (local * (1, AspectRatio)) + (OffsetX, OffsetY)
type ViewportTransform struct {
	OffsetX     float32
	OffsetY     float32
	Scale       float32
	AspectRatio float32
}

// IdentityTransform maps the quad onto [-1,1]x[-1,1].
func IdentityTransform() ViewportTransform {
	return ViewportTransform{Scale: 1, AspectRatio: 1}
}

// Validate rejects non-positive or non-finite scale and aspect ratio.
func (t ViewportTransform) Validate() error {
	if !(t.Scale > 0) || math.IsInf(float64(t.Scale), 0) {
		return fmt.Errorf("%w: scale %v", ErrInvalidTransform, t.Scale)
	}
	if !(t.AspectRatio > 0) || math.IsInf(float64(t.AspectRatio), 0) {
		return fmt.Errorf("%w: aspect ratio %v", ErrInvalidTransform, t.AspectRatio)
	}
	return nil
}

// Apply maps a quad-local position to clip space, as the vertex stage does.
func (t ViewportTransform) Apply(local [2]float32) [2]float32 {
	return [2]float32{
		t.Scale*local[0] + t.OffsetX,
		t.Scale*(local[1]*t.AspectRatio) + t.OffsetY,
	}
}

// Bytes encodes t as offsetX, offsetY, scale, aspectRatio.
func (t ViewportTransform) Bytes() []byte {
	buf := make([]byte, ViewportTransformSize)
	putFloat32(buf[0:], t.OffsetX)
	putFloat32(buf[4:], t.OffsetY)
	putFloat32(buf[8:], t.Scale)
	putFloat32(buf[12:], t.AspectRatio)
	return buf
}

// DecodeViewportTransform is the inverse of Bytes.
func DecodeViewportTransform(buf []byte) ViewportTransform {
	f := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	return ViewportTransform{OffsetX: f(0), OffsetY: f(4), Scale: f(8), AspectRatio: f(12)}
}

// Rect is a rectangle in logical (unscaled) units.
type Rect struct {
	X, Y, Width, Height float64
}

// Viewport is a rectangle in device pixels, the active viewport state of
// the simulation draw.
type Viewport struct {
	X, Y, Width, Height float32
}

// CalculateViewport converts an available area in logical units to device
// pixels using the display scale factor.
func CalculateViewport(available Rect, scaleFactor float64) Viewport {
	if scaleFactor <= 0 {
		scaleFactor = 1
	}
	return Viewport{
		X:      float32(available.X * scaleFactor),
		Y:      float32(available.Y * scaleFactor),
		Width:  float32(available.Width * scaleFactor),
		Height: float32(available.Height * scaleFactor),
	}
}

// FullViewport covers the whole target.
func FullViewport(width, height uint32) Viewport {
	return Viewport{Width: float32(width), Height: float32(height)}
}

// Clamp intersects v with the target rectangle [0,width]x[0,height].
// A viewport entirely outside the target comes back empty.
func (v Viewport) Clamp(width, height uint32) Viewport {
	x0 := clampf(v.X, 0, float32(width))
	y0 := clampf(v.Y, 0, float32(height))
	x1 := clampf(v.X+v.Width, 0, float32(width))
	y1 := clampf(v.Y+v.Height, 0, float32(height))
	if x1 <= x0 || y1 <= y0 {
		return Viewport{X: x0, Y: y0}
	}
	return Viewport{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Empty reports whether v has no area.
func (v Viewport) Empty() bool {
	return !(v.Width > 0 && v.Height > 0)
}

// AspectRatio returns Width/Height, or 1 for an empty viewport.
func (v Viewport) AspectRatio() float32 {
	if v.Empty() {
		return 1
	}
	return v.Width / v.Height
}

// Scissor returns v rounded outward to whole pixels.
func (v Viewport) Scissor() (x, y, w, h uint32) {
	if v.Empty() {
		return uint32(v.X), uint32(v.Y), 0, 0
	}
	x0 := math.Floor(float64(v.X))
	y0 := math.Floor(float64(v.Y))
	x1 := math.Ceil(float64(v.X + v.Width))
	y1 := math.Ceil(float64(v.Y + v.Height))
	return uint32(x0), uint32(y0), uint32(x1 - x0), uint32(y1 - y0)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
