package life

// Cell is one automaton unit. It is a uint32 so the host layout matches the
// device's array<u32> grid buffers.
type Cell uint32

// Cell states.
const (
	Dead  Cell = 0
	Alive Cell = 1
)

// String returns "alive" or "dead".
func (c Cell) String() string {
	if c == Alive {
		return "alive"
	}
	return "dead"
}

// NextState applies the B3/S23 rule to a cell with n live neighbours.
func NextState(c Cell, n int) Cell {
	if n == 3 || (n == 2 && c == Alive) {
		return Alive
	}
	return Dead
}
