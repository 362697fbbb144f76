package main

import (
	"bytes"
	"testing"

	"github.com/gogpu/life"
	"github.com/gogpu/life/internal/hud"
)

// trackY scans the panel for the vertical centre of slider i.
func trackY(t *testing.T, i int) float64 {
	t.Helper()
	var hits []float64
	for y := 0.0; y < 400; y++ {
		if got, ok := hud.SliderAt(hud.PanelWidth/2, y); ok && got == i {
			hits = append(hits, y)
		}
	}
	if len(hits) == 0 {
		t.Fatalf("slider %d not found in panel", i)
	}
	return (hits[0] + hits[len(hits)-1]) / 2
}

func TestSessionSliderDrag(t *testing.T) {
	opts, err := parseFlags(nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseFlags failed: %v", err)
	}
	s := newSession(opts)

	if s.press(hud.PanelWidth+100, 100) {
		t.Error("press on the grid area changed the transform")
	}
	if s.move(0) {
		t.Error("move without a drag changed the transform")
	}

	// Drag the scale knob to the far right of the panel.
	if !s.press(hud.PanelWidth/2, trackY(t, 2)) {
		t.Fatal("press on the scale track did not start a drag")
	}
	if !s.move(hud.PanelWidth * 2) {
		t.Fatal("move during a drag did not update the transform")
	}
	s.release()
	if got := s.opts.config.Transform.Scale; got != life.MaxScale {
		t.Errorf("Scale after drag = %v, want %v", got, float32(life.MaxScale))
	}
	if s.move(0) {
		t.Error("move after release changed the transform")
	}
	if got := s.opts.config.Transform.OffsetX; got != 0 {
		t.Errorf("OffsetX = %v, want 0", got)
	}
}
