package hud

import (
	"math"

	"github.com/gogpu/life"
)

// PanelWidth is the width of the control panel in logical units. The
// simulation uses the rest of the window to the right of it.
const PanelWidth = 200

// Panel layout in logical units.
const (
	margin      = 12
	titleSize   = 16
	labelSize   = 12
	rowHeight   = 38
	trackHeight = 4
	knobRadius  = 6
	swatchSize  = 22
)

// AvailableRect returns the area left for the simulation in a window of
// width x height logical units.
func AvailableRect(width, height float64) life.Rect {
	return life.Rect{
		X:      PanelWidth,
		Y:      0,
		Width:  math.Max(0, width-PanelWidth),
		Height: math.Max(0, height),
	}
}

// Viewport returns the simulation viewport in device pixels for a window
// of width x height logical units at the given display scale.
func Viewport(width, height, scaleFactor float64) life.Viewport {
	return life.CalculateViewport(AvailableRect(width, height), scaleFactor)
}

// Transform returns xf with its aspect ratio taken from vp.
func Transform(xf life.ViewportTransform, vp life.Viewport) life.ViewportTransform {
	xf.AspectRatio = vp.AspectRatio()
	return xf
}

// Slider is a horizontal value slider.
type Slider struct {
	Label    string
	Value    float64
	Min, Max float64
}

// Fraction returns the knob position in [0,1].
func (s Slider) Fraction() float64 {
	if !(s.Max > s.Min) {
		return 0
	}
	f := (s.Value - s.Min) / (s.Max - s.Min)
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Sliders returns the transform controls of the panel.
func Sliders(xf life.ViewportTransform) []Slider {
	return []Slider{
		{Label: "Offset X", Value: float64(xf.OffsetX), Min: -1, Max: 1},
		{Label: "Offset Y", Value: float64(xf.OffsetY), Min: -1, Max: 1},
		{Label: "Scale", Value: float64(xf.Scale), Min: life.MinScale, Max: life.MaxScale},
	}
}

// Slider rows start below the title; each track is centred in its row
// below the label.
const (
	sliderTop   = margin + titleSize + margin
	sliderCount = 3
	trackWidth  = PanelWidth - 2*margin
)

func sliderTrackY(i int) float64 {
	return float64(sliderTop + i*rowHeight + labelSize + margin)
}

// SliderAt returns the index of the slider whose track is under the
// logical point (x, y).
func SliderAt(x, y float64) (int, bool) {
	if x < margin-knobRadius || x > PanelWidth-margin+knobRadius {
		return 0, false
	}
	for i := range sliderCount {
		if math.Abs(y-sliderTrackY(i)) <= 2*knobRadius {
			return i, true
		}
	}
	return 0, false
}

// ValueAt maps a logical x on the track to a value in [Min, Max].
func (s Slider) ValueAt(x float64) float64 {
	f := (x - margin) / trackWidth
	f = math.Min(math.Max(f, 0), 1)
	return s.Min + f*(s.Max-s.Min)
}

// SetSlider returns xf with slider i set to v, clamped to its range.
func SetSlider(xf life.ViewportTransform, i int, v float64) life.ViewportTransform {
	sliders := Sliders(xf)
	if i < 0 || i >= len(sliders) || math.IsNaN(v) {
		return xf
	}
	sl := sliders[i]
	v = math.Min(math.Max(v, sl.Min), sl.Max)
	switch i {
	case 0:
		xf.OffsetX = float32(v)
	case 1:
		xf.OffsetY = float32(v)
	case 2:
		xf.Scale = float32(v)
	}
	return xf
}

// Drag tracks a pointer drag on one slider. The zero Drag is idle.
type Drag struct {
	index  int
	active bool
}

// Active reports whether a slider is being dragged.
func (d *Drag) Active() bool { return d.active }

// Press starts a drag if (x, y) is on a slider and moves its knob to x.
func (d *Drag) Press(xf life.ViewportTransform, x, y float64) (life.ViewportTransform, bool) {
	i, ok := SliderAt(x, y)
	if !ok {
		return xf, false
	}
	d.index, d.active = i, true
	return d.Move(xf, x)
}

// Move follows the pointer while a drag is active. The pointer may leave
// the track; the value stays clamped.
func (d *Drag) Move(xf life.ViewportTransform, x float64) (life.ViewportTransform, bool) {
	if !d.active {
		return xf, false
	}
	return SetSlider(xf, d.index, Sliders(xf)[d.index].ValueAt(x)), true
}

// Release ends the drag.
func (d *Drag) Release() { d.active = false }
