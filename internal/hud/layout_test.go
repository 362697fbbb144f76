package hud

import (
	"math"
	"testing"

	"github.com/gogpu/life"
)

func TestAvailableRect(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		want          life.Rect
	}{
		{"default window", 700, 500, life.Rect{X: PanelWidth, Width: 500, Height: 500}},
		{"narrower than panel", 150, 300, life.Rect{X: PanelWidth, Width: 0, Height: 300}},
		{"zero", 0, 0, life.Rect{X: PanelWidth}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AvailableRect(tt.width, tt.height); got != tt.want {
				t.Errorf("AvailableRect(%v, %v) = %+v, want %+v", tt.width, tt.height, got, tt.want)
			}
		})
	}
}

func TestViewportScaled(t *testing.T) {
	vp := Viewport(700, 500, 2)
	want := life.Viewport{X: 400, Y: 0, Width: 1000, Height: 1000}
	if vp != want {
		t.Errorf("Viewport(700, 500, 2) = %+v, want %+v", vp, want)
	}

	// A non-positive scale factor is treated as 1.
	if vp := Viewport(700, 500, 0); vp.Width != 500 {
		t.Errorf("Viewport with scale 0 width = %v, want 500", vp.Width)
	}
}

func TestTransformAspect(t *testing.T) {
	xf := life.ViewportTransform{OffsetX: 0.5, Scale: 2, AspectRatio: 1}
	got := Transform(xf, life.Viewport{Width: 600, Height: 300})
	if got.AspectRatio != 2 {
		t.Errorf("AspectRatio = %v, want 2", got.AspectRatio)
	}
	if got.OffsetX != 0.5 || got.Scale != 2 {
		t.Errorf("Transform changed other fields: %+v", got)
	}

	// Empty viewport falls back to 1.
	if got := Transform(xf, life.Viewport{}); got.AspectRatio != 1 {
		t.Errorf("empty viewport AspectRatio = %v, want 1", got.AspectRatio)
	}
}

func TestSliderFraction(t *testing.T) {
	tests := []struct {
		s    Slider
		want float64
	}{
		{Slider{Value: 0, Min: -1, Max: 1}, 0.5},
		{Slider{Value: -1, Min: -1, Max: 1}, 0},
		{Slider{Value: 1, Min: -1, Max: 1}, 1},
		{Slider{Value: 5, Min: -1, Max: 1}, 1},
		{Slider{Value: -5, Min: -1, Max: 1}, 0},
		{Slider{Value: math.NaN(), Min: -1, Max: 1}, 0},
		{Slider{Value: 1, Min: 1, Max: 1}, 0},
	}
	for _, tt := range tests {
		if got := tt.s.Fraction(); got != tt.want {
			t.Errorf("%+v.Fraction() = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestSliders(t *testing.T) {
	sl := Sliders(life.ViewportTransform{OffsetX: -0.5, OffsetY: 0.25, Scale: 3})
	if len(sl) != 3 {
		t.Fatalf("got %d sliders, want 3", len(sl))
	}
	if sl[0].Value != -0.5 || sl[1].Value != 0.25 || sl[2].Value != 3 {
		t.Errorf("slider values = %v %v %v", sl[0].Value, sl[1].Value, sl[2].Value)
	}
	if sl[2].Min != life.MinScale || sl[2].Max != life.MaxScale {
		t.Errorf("scale range = [%v, %v]", sl[2].Min, sl[2].Max)
	}
}

func TestSliderAt(t *testing.T) {
	mid := float64(PanelWidth) / 2
	for i := range sliderCount {
		got, ok := SliderAt(mid, sliderTrackY(i))
		if !ok || got != i {
			t.Errorf("SliderAt(track %d) = %d, %v", i, got, ok)
		}
	}

	misses := []struct {
		name string
		x, y float64
	}{
		{"title", mid, margin},
		{"right of panel", PanelWidth + 50, sliderTrackY(0)},
		{"left of track", 0, sliderTrackY(1)},
		{"between tracks", mid, sliderTrackY(0) + rowHeight/2},
		{"below sliders", mid, sliderTrackY(sliderCount-1) + rowHeight},
	}
	for _, tt := range misses {
		if i, ok := SliderAt(tt.x, tt.y); ok {
			t.Errorf("%s: SliderAt(%v, %v) hit slider %d", tt.name, tt.x, tt.y, i)
		}
	}
}

func TestSliderValueAt(t *testing.T) {
	s := Slider{Min: -1, Max: 1}
	tests := []struct {
		x, want float64
	}{
		{margin, -1},
		{margin + trackWidth, 1},
		{margin + trackWidth/2, 0},
		{-100, -1},
		{PanelWidth + 100, 1},
	}
	for _, tt := range tests {
		if got := s.ValueAt(tt.x); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("ValueAt(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}

	// ValueAt inverts the knob position drawn by Fraction.
	sc := Sliders(life.IdentityTransform())[2]
	x := margin + sc.Fraction()*trackWidth
	if got := sc.ValueAt(x); math.Abs(got-1) > 1e-9 {
		t.Errorf("scale ValueAt(knob) = %v, want 1", got)
	}
}

func TestSetSlider(t *testing.T) {
	xf := life.IdentityTransform()
	xf = SetSlider(xf, 0, 0.5)
	xf = SetSlider(xf, 1, -2)
	xf = SetSlider(xf, 2, 100)
	want := life.ViewportTransform{OffsetX: 0.5, OffsetY: -1, Scale: life.MaxScale, AspectRatio: 1}
	if xf != want {
		t.Errorf("SetSlider result = %+v, want %+v", xf, want)
	}
	if got := SetSlider(xf, 3, 0); got != xf {
		t.Errorf("SetSlider out of range changed %+v to %+v", xf, got)
	}
	if got := SetSlider(xf, 0, math.NaN()); got != xf {
		t.Errorf("SetSlider(NaN) changed %+v to %+v", xf, got)
	}
}

func TestDrag(t *testing.T) {
	var d Drag
	xf := life.IdentityTransform()

	if _, ok := d.Move(xf, margin); ok {
		t.Error("Move without Press should not change the transform")
	}
	if _, ok := d.Press(xf, PanelWidth+10, sliderTrackY(0)); ok || d.Active() {
		t.Error("Press outside the panel started a drag")
	}

	// Press the right end of the Offset X track, then drag past the left end.
	xf, ok := d.Press(xf, margin+trackWidth, sliderTrackY(0))
	if !ok || !d.Active() {
		t.Fatal("Press on Offset X track did not start a drag")
	}
	if xf.OffsetX != 1 {
		t.Errorf("OffsetX after press = %v, want 1", xf.OffsetX)
	}
	xf, ok = d.Move(xf, -50)
	if !ok || xf.OffsetX != -1 {
		t.Errorf("OffsetX after drag = %v (%v), want -1", xf.OffsetX, ok)
	}
	if xf.OffsetY != 0 || xf.Scale != 1 {
		t.Errorf("drag changed other sliders: %+v", xf)
	}

	d.Release()
	if d.Active() {
		t.Error("drag still active after Release")
	}
	if _, ok := d.Move(xf, margin); ok {
		t.Error("Move after Release changed the transform")
	}
}
