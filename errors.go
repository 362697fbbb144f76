package life

import "errors"

// Configuration errors.
var (
	// ErrInvalidGridSize is returned when a grid dimension is zero or
	// exceeds MaxGridDimension.
	ErrInvalidGridSize = errors.New("life: invalid grid size")

	// ErrInvalidColor is returned when a color string cannot be parsed or a
	// component is outside [0, 1].
	ErrInvalidColor = errors.New("life: invalid color")

	// ErrInvalidFramesInFlight is returned when the frames-in-flight count
	// is outside [1, MaxFramesInFlight].
	ErrInvalidFramesInFlight = errors.New("life: invalid frames in flight")

	// ErrInvalidTransform is returned for a non-positive scale or aspect ratio.
	ErrInvalidTransform = errors.New("life: invalid viewport transform")

	// ErrGridMismatch is returned when two grids of different sizes are
	// combined.
	ErrGridMismatch = errors.New("life: grid size mismatch")
)
