package life

import (
	"fmt"
	"image/color"
	"math"
)

// RGBA is a straight-alpha color with float32 components in [0, 1].
// It is laid out exactly like a WGSL vec4<f32>.
type RGBA struct {
	R, G, B, A float32
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// Default cell colors.
var (
	DefaultLiveColor = RGB(1, 1, 1)
	DefaultDeadColor = RGB(0, 0, 0)
)

// ParseHex parses "#rgb", "#rgba", "#rrggbb" or "#rrggbbaa" (the leading
// '#' is optional).
func ParseHex(s string) (RGBA, error) {
	hex := s
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	digits := make([]uint32, len(hex))
	for i := 0; i < len(hex); i++ {
		v, ok := hexDigit(hex[i])
		if !ok {
			return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		digits[i] = v
	}

	var r, g, b, a uint32
	a = 255
	switch len(hex) {
	case 3:
		r, g, b = digits[0]*17, digits[1]*17, digits[2]*17
	case 4:
		r, g, b, a = digits[0]*17, digits[1]*17, digits[2]*17, digits[3]*17
	case 6:
		r, g, b = digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5]
	case 8:
		r, g, b = digits[0]<<4|digits[1], digits[2]<<4|digits[3], digits[4]<<4|digits[5]
		a = digits[6]<<4 | digits[7]
	default:
		return RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	return RGBA{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}, nil
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c - 'a' + 10), true
	case 'A' <= c && c <= 'F':
		return uint32(c - 'A' + 10), true
	default:
		return 0, false
	}
}

// Validate reports whether every component lies in [0, 1].
func (c RGBA) Validate() error {
	for _, v := range [4]float32{c.R, c.G, c.B, c.A} {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: component %v outside [0, 1]", ErrInvalidColor, v)
		}
	}
	return nil
}

// NRGBA converts the color to 8 bits per channel the way an rgba8unorm
// storage write does: clamp, scale by 255, round to nearest.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: unorm8(c.R), G: unorm8(c.G), B: unorm8(c.B), A: unorm8(c.A)}
}

// Hex returns the color as "#rrggbbaa".
func (c RGBA) Hex() string {
	n := c.NRGBA()
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A)
}

// Premultiply returns the color with RGB scaled by alpha.
func (c RGBA) Premultiply() RGBA {
	return RGBA{R: c.R * c.A, G: c.G * c.A, B: c.B * c.A, A: c.A}
}

func unorm8(v float32) uint8 {
	if v <= 0 || v != v {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}
