package life

import (
	"fmt"
	"image"

	"github.com/gogpu/life/internal/parallel"
)

// Simulator is the host reference of the GPU engine. It runs the same
// two-phase step over 8x8 workgroups: phase update reads the grid at
// Active().Read() and writes the other one, phase colorize reads the grid
// just written and fills the output image, then the roles swap.
//
// Workgroups of one phase run concurrently on a worker pool; the phases of
// a step are strictly ordered. Simulator is not safe for concurrent use.
type Simulator struct {
	width, height int
	grids         [2][]Cell
	active        PingPong
	image         *image.NRGBA
	dispatch      parallel.Dispatch
	pool          *parallel.WorkerPool
	generation    uint64
}

// NewSimulator allocates an all-dead simulator. workers <= 0 selects
// GOMAXPROCS; workers == 1 runs on the calling goroutine.
func NewSimulator(width, height, workers int) (*Simulator, error) {
	if err := ValidateGridSize(width, height); err != nil {
		return nil, err
	}
	s := &Simulator{
		width:    width,
		height:   height,
		image:    image.NewNRGBA(image.Rect(0, 0, width, height)),
		dispatch: parallel.NewDispatch(width, height),
	}
	s.grids[0] = make([]Cell, width*height)
	s.grids[1] = make([]Cell, width*height)
	if workers != 1 {
		s.pool = parallel.NewWorkerPool(workers)
	}
	return s, nil
}

// Close stops the worker pool.
func (s *Simulator) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Size returns the grid dimensions.
func (s *Simulator) Size() (width, height int) { return s.width, s.height }

// Active returns the ping-pong index.
func (s *Simulator) Active() PingPong { return s.active }

// Generation returns the number of steps since the last reset.
func (s *Simulator) Generation() uint64 { return s.generation }

// Image returns the output image. Its contents are undefined after Reset
// until the next Step or Colorize.
func (s *Simulator) Image() *image.NRGBA { return s.image }

// Reset fills both grids with independent random cells and makes grid 0
// current. Dimensions are unchanged.
func (s *Simulator) Reset(seed uint64) {
	rng := NewRand(seed)
	FillRandom(rng, s.grids[0])
	FillRandom(rng, s.grids[1])
	s.active = 0
	s.generation = 0
	Logger().Debug("life: host simulator reset", "seed", seed, "width", s.width, "height", s.height)
}

// Load copies g into the current grid and clears the scratch grid.
func (s *Simulator) Load(g *Grid) error {
	if g.Width() != s.width || g.Height() != s.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d",
			ErrGridMismatch, g.Width(), g.Height(), s.width, s.height)
	}
	copy(s.grids[s.active.Read()], g.Cells())
	clear(s.grids[s.active.Write()])
	s.generation = 0
	return nil
}

// Current returns a copy of the most recently computed grid.
func (s *Simulator) Current() *Grid {
	return s.Grid(s.active.Read())
}

// Grid returns a copy of grid i (0 or 1).
func (s *Simulator) Grid(i int) *Grid {
	g := &Grid{width: s.width, height: s.height, cells: make([]Cell, len(s.grids[i&1]))}
	copy(g.cells, s.grids[i&1])
	return g
}

// Step advances one generation and colorizes it.
func (s *Simulator) Step(live, dead RGBA) {
	src, dst := s.grids[s.active.Read()], s.grids[s.active.Write()]
	s.run(SimParams{Phase: PhaseUpdate}, src, dst)
	s.run(SimParams{LiveColor: live, DeadColor: dead, Phase: PhaseColorize}, dst, nil)
	s.active = s.active.Swap()
	s.generation++
}

// Colorize reruns only the colorize phase over the current grid.
func (s *Simulator) Colorize(live, dead RGBA) {
	s.run(SimParams{LiveColor: live, DeadColor: dead, Phase: PhaseColorize}, s.grids[s.active.Read()], nil)
}

func (s *Simulator) run(p SimParams, src, dst []Cell) {
	w, h := s.width, s.height
	live, dead := p.LiveColor.NRGBA(), p.DeadColor.NRGBA()

	s.dispatch.Run(s.pool, func(x0, y0, x1, y1 int) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				idx := y*w + x
				switch p.Phase {
				case PhaseUpdate:
					dst[idx] = NextState(src[idx], countNeighbors(src, w, h, x, y))
				case PhaseColorize:
					c := dead
					if src[idx] == Alive {
						c = live
					}
					s.image.SetNRGBA(x, y, c)
				}
			}
		}
	})
}

func countNeighbors(cells []Cell, w, h, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		ny := y + dy
		if ny < 0 || ny >= h {
			continue
		}
		for dx := -1; dx <= 1; dx++ {
			nx := x + dx
			if (dx == 0 && dy == 0) || nx < 0 || nx >= w {
				continue
			}
			if cells[ny*w+nx] == Alive {
				n++
			}
		}
	}
	return n
}
