// Package hud draws the control panel overlay of the Game of Life window.
//
// The panel is rasterized on the host with gg into a premultiplied RGBA
// image the size of the render target. Everything outside the panel is
// transparent, so the simulation shows through when the image is blended
// over it.
package hud

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/life"
)

// ErrFontLoad is returned when the panel font cannot be parsed.
var ErrFontLoad = errors.New("hud: failed to load font")

// State is what the panel shows.
type State struct {
	Transform  life.ViewportTransform
	Live, Dead life.RGBA
	Generation uint64
	// Population is the live cell count, or -1 when unknown.
	Population int
	GridWidth  int
	GridHeight int
	Paused     bool
	// ScaleFactor is the display scale, 1 when zero.
	ScaleFactor float64
}

// HUD renders the panel. It is safe to update the state from one goroutine
// while another renders.
type HUD struct {
	source  *text.FontSource
	printer *message.Printer

	mu    sync.Mutex
	state State
	faces map[float64]text.Face
}

// New loads the panel font and creates a HUD that formats numbers for tag.
func New(tag language.Tag) (*HUD, error) {
	source, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFontLoad, err)
	}
	life.Logger().Debug("hud: font loaded", "font", source.Name(), "lang", tag.String())
	return &HUD{
		source:  source,
		printer: message.NewPrinter(tag),
		state:   State{Transform: life.IdentityTransform(), Population: -1},
		faces:   make(map[float64]text.Face),
	}, nil
}

// SetState replaces the displayed state.
func (h *HUD) SetState(s State) {
	h.mu.Lock()
	h.state = s
	h.mu.Unlock()
}

// State returns the displayed state.
func (h *HUD) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// FormatCount formats n with the grouping of the HUD language.
func (h *HUD) FormatCount(n int64) string {
	return h.printer.Sprintf("%d", n)
}

// Render draws the panel into a width x height premultiplied image.
func (h *HUD) Render(width, height uint32) (*image.RGBA, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("hud: render %dx%d", width, height)
	}
	s := h.State()
	scale := s.ScaleFactor
	if scale <= 0 {
		scale = 1
	}

	dc := gg.NewContext(int(width), int(height))
	defer func() { _ = dc.Close() }()
	dc.Clear()

	p := painter{dc: dc, s: scale, hud: h}
	if err := p.panel(float64(height)); err != nil {
		return nil, err
	}
	y := p.title(margin, "Game of Life")
	for _, sl := range Sliders(s.Transform) {
		var err error
		if y, err = p.slider(y, sl); err != nil {
			return nil, err
		}
	}
	y, err := p.swatches(y, s.Live, s.Dead)
	if err != nil {
		return nil, err
	}
	y = p.label(y, "Grid: "+h.FormatCount(int64(s.GridWidth))+" x "+h.FormatCount(int64(s.GridHeight)))
	y = p.label(y, "Generation: "+h.FormatCount(int64(s.Generation))) //nolint:gosec // display only
	if s.Population >= 0 {
		y = p.label(y, "Population: "+h.FormatCount(int64(s.Population)))
	}
	if s.Paused {
		p.label(y, "Paused (space to resume)")
	}

	return toRGBA(dc.Image()), nil
}

func (h *HUD) face(size float64) text.Face {
	h.mu.Lock()
	defer h.mu.Unlock()
	f, ok := h.faces[size]
	if !ok {
		f = h.source.Face(size)
		h.faces[size] = f
	}
	return f
}

// toRGBA converts a gg image to premultiplied RGBA.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, b.Min, xdraw.Src)
	return dst
}

// painter draws panel widgets in logical units scaled by s.
type painter struct {
	dc  *gg.Context
	s   float64
	hud *HUD
}

func (p painter) panel(height float64) error {
	p.dc.SetRGBA(0.08, 0.08, 0.1, 0.92)
	p.dc.DrawRectangle(0, 0, PanelWidth*p.s, height)
	return p.dc.Fill()
}

func (p painter) title(y float64, s string) float64 {
	p.dc.SetFont(p.hud.face(titleSize * p.s))
	p.dc.SetRGBA(1, 1, 1, 1)
	p.dc.DrawString(s, margin*p.s, (y+titleSize)*p.s)
	return y + titleSize + margin
}

func (p painter) label(y float64, s string) float64 {
	p.dc.SetFont(p.hud.face(labelSize * p.s))
	p.dc.SetRGBA(0.85, 0.85, 0.85, 1)
	p.dc.DrawString(s, margin*p.s, (y+labelSize)*p.s)
	return y + labelSize + margin/2
}

func (p painter) slider(y float64, sl Slider) (float64, error) {
	p.dc.SetFont(p.hud.face(labelSize * p.s))
	p.dc.SetRGBA(0.85, 0.85, 0.85, 1)
	p.dc.DrawString(sl.Label, margin*p.s, (y+labelSize)*p.s)
	p.dc.DrawStringAnchored(fmt.Sprintf("%.2f", sl.Value), (PanelWidth-margin)*p.s, (y+labelSize)*p.s, 1, 0)

	trackY := y + labelSize + margin
	trackW := float64(PanelWidth - 2*margin)
	p.dc.SetRGBA(0.3, 0.3, 0.35, 1)
	p.dc.DrawRoundedRectangle(margin*p.s, (trackY-trackHeight/2)*p.s, trackW*p.s, trackHeight*p.s, trackHeight/2*p.s)
	if err := p.dc.Fill(); err != nil {
		return y, err
	}

	knobX := margin + sl.Fraction()*trackW
	p.dc.SetRGBA(0.35, 0.6, 1, 1)
	p.dc.DrawCircle(knobX*p.s, trackY*p.s, knobRadius*p.s)
	if err := p.dc.Fill(); err != nil {
		return y, err
	}
	return y + rowHeight, nil
}

func (p painter) swatches(y float64, live, dead life.RGBA) (float64, error) {
	x := float64(margin)
	for _, sw := range []struct {
		label string
		c     life.RGBA
	}{{"Live", live}, {"Dead", dead}} {
		p.dc.SetRGBA(float64(sw.c.R), float64(sw.c.G), float64(sw.c.B), float64(sw.c.A))
		p.dc.DrawRoundedRectangle(x*p.s, y*p.s, swatchSize*p.s, swatchSize*p.s, 3*p.s)
		if err := p.dc.Fill(); err != nil {
			return y, err
		}
		p.dc.SetRGBA(0.6, 0.6, 0.6, 1)
		p.dc.SetLineWidth(p.s)
		p.dc.DrawRoundedRectangle(x*p.s, y*p.s, swatchSize*p.s, swatchSize*p.s, 3*p.s)
		if err := p.dc.Stroke(); err != nil {
			return y, err
		}
		p.dc.SetFont(p.hud.face(labelSize * p.s))
		p.dc.SetRGBA(0.85, 0.85, 0.85, 1)
		p.dc.DrawString(sw.label+" "+sw.c.Hex(), (x+swatchSize+6)*p.s, (y+swatchSize-6)*p.s)
		y += swatchSize + margin/2
	}
	return y + margin/2, nil
}
