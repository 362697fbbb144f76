package hud

import (
	"image"
	"testing"

	"golang.org/x/text/language"

	"github.com/gogpu/life"
)

func newTestHUD(t *testing.T) *HUD {
	t.Helper()
	h, err := New(language.English)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return h
}

func TestFormatCount(t *testing.T) {
	h := newTestHUD(t)
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1024, "1,024"},
		{1048576, "1,048,576"},
	}
	for _, tt := range tests {
		if got := h.FormatCount(tt.n); got != tt.want {
			t.Errorf("FormatCount(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDefaultState(t *testing.T) {
	h := newTestHUD(t)
	s := h.State()
	if s.Transform != life.IdentityTransform() {
		t.Errorf("default transform = %+v", s.Transform)
	}
	if s.Population != -1 {
		t.Errorf("default population = %d, want -1", s.Population)
	}

	s.Generation = 12
	h.SetState(s)
	if h.State().Generation != 12 {
		t.Error("SetState did not update the state")
	}
}

func TestRender(t *testing.T) {
	h := newTestHUD(t)
	h.SetState(State{
		Transform:  life.IdentityTransform(),
		Live:       life.DefaultLiveColor,
		Dead:       life.DefaultDeadColor,
		Generation: 1234,
		Population: 56789,
		GridWidth:  1024,
		GridHeight: 1024,
		Paused:     true,
	})

	img, err := h.Render(700, 500)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 700, 500) {
		t.Fatalf("bounds = %v, want 700x500", img.Bounds())
	}

	// The panel is nearly opaque, the simulation area fully transparent.
	if a := img.RGBAAt(PanelWidth/2, 490).A; a < 200 {
		t.Errorf("panel alpha = %d, want >= 200", a)
	}
	if c := img.RGBAAt(600, 250); c.A != 0 {
		t.Errorf("simulation area pixel = %v, want transparent", c)
	}
}

func TestRenderScaled(t *testing.T) {
	h := newTestHUD(t)
	s := h.State()
	s.ScaleFactor = 2
	h.SetState(s)

	img, err := h.Render(1400, 1000)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	// The panel doubles in width.
	if a := img.RGBAAt(PanelWidth*2-5, 990).A; a < 200 {
		t.Errorf("scaled panel alpha = %d, want >= 200", a)
	}
	if c := img.RGBAAt(PanelWidth*2+5, 990); c.A != 0 {
		t.Errorf("pixel right of scaled panel = %v, want transparent", c)
	}
}

func TestRenderZeroSize(t *testing.T) {
	h := newTestHUD(t)
	if _, err := h.Render(0, 10); err == nil {
		t.Error("Render(0, 10) should fail")
	}
}
