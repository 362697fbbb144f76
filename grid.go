package life

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"
)

// MaxGridDimension bounds either grid dimension. 8192 keeps one grid buffer
// at 256 MiB, the default max storage buffer binding size.
const MaxGridDimension = 8192

// Grid is a width x height row-major array of cells with a fixed boundary:
// coordinates outside the grid read as Dead.
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid returns an all-dead grid.
func NewGrid(width, height int) (*Grid, error) {
	if err := ValidateGridSize(width, height); err != nil {
		return nil, err
	}
	return &Grid{width: width, height: height, cells: make([]Cell, width*height)}, nil
}

// ValidateGridSize checks that both dimensions are in [1, MaxGridDimension].
func ValidateGridSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxGridDimension || height > MaxGridDimension {
		return fmt.Errorf("%w: %dx%d (each side must be in [1, %d])",
			ErrInvalidGridSize, width, height, MaxGridDimension)
	}
	return nil
}

// ParseGrid builds a grid from rows of '#'/'O' (alive) and '.' (dead).
// All rows must have the same length.
func ParseGrid(rows ...string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidGridSize)
	}
	g, err := NewGrid(len(rows[0]), len(rows))
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrGridMismatch, y, len(row), g.width)
		}
		for x := 0; x < len(row); x++ {
			if row[x] == '#' || row[x] == 'O' {
				g.cells[y*g.width+x] = Alive
			}
		}
	}
	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Cells exposes the backing slice in row-major order.
func (g *Grid) Cells() []Cell { return g.cells }

// At returns the cell at (x, y), or Dead when out of range.
func (g *Grid) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return Dead
	}
	return g.cells[y*g.width+x]
}

// Set stores c at (x, y). Out-of-range writes are ignored.
func (g *Grid) Set(x, y int, c Cell) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	g.cells[y*g.width+x] = c
}

// Neighbors counts live cells among the eight neighbours of (x, y).
func (g *Grid) Neighbors(x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if g.At(x+dx, y+dy) == Alive {
				n++
			}
		}
	}
	return n
}

// Population returns the number of live cells.
func (g *Grid) Population() int {
	n := 0
	for _, c := range g.cells {
		if c == Alive {
			n++
		}
	}
	return n
}

// Randomize assigns every cell Alive or Dead with equal probability.
func (g *Grid) Randomize(rng *rand.Rand) {
	FillRandom(rng, g.cells)
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{width: g.width, height: g.height, cells: make([]Cell, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

// Equal reports whether both grids have the same size and cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.width != o.width || g.height != o.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

// Bytes encodes the cells as little-endian u32 values, the layout of the
// device grid buffers.
func (g *Grid) Bytes() []byte {
	return EncodeCells(g.cells)
}

// String renders the grid with '#' for alive and '.' for dead cells.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow((g.width + 1) * g.height)
	for y := range g.height {
		for x := range g.width {
			if g.cells[y*g.width+x] == Alive {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// NewRand returns a deterministic generator for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// FillRandom fills cells with uniformly random Alive/Dead values.
func FillRandom(rng *rand.Rand, cells []Cell) {
	for i := range cells {
		cells[i] = Cell(rng.IntN(2))
	}
}

// EncodeCells encodes cells as little-endian u32 values.
func EncodeCells(cells []Cell) []byte {
	buf := make([]byte, 4*len(cells))
	for i, c := range cells {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(c))
	}
	return buf
}

// DecodeCells is the inverse of EncodeCells. Trailing bytes are ignored.
func DecodeCells(buf []byte) []Cell {
	cells := make([]Cell, len(buf)/4)
	for i := range cells {
		cells[i] = Cell(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return cells
}

// Next returns the following generation computed cell by cell, without
// tiling. It is the reference the tiled simulators are checked against.
func (g *Grid) Next() *Grid {
	n := &Grid{width: g.width, height: g.height, cells: make([]Cell, len(g.cells))}
	for y := range g.height {
		for x := range g.width {
			n.cells[y*g.width+x] = NextState(g.At(x, y), g.Neighbors(x, y))
		}
	}
	return n
}
