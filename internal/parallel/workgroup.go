// Package parallel runs compute-style dispatches on the host.
//
// A Dispatch divides a width x height domain into 8x8 workgroups, the same
// tiling the GPU life shader uses. Edge workgroups are clipped to the domain
// when a dimension is not a multiple of the workgroup size, mirroring the
// in-shader bounds guard. Workgroups are independent and run on a
// WorkerPool.
package parallel

// WorkgroupSize is the side of a square workgroup in cells.
const WorkgroupSize = 8

// Workgroup identifies one workgroup by its column and row.
type Workgroup struct {
	X, Y int
}

// Dispatch describes the workgroup grid covering a domain.
type Dispatch struct {
	// GroupsX and GroupsY are the workgroup counts, rounded up.
	GroupsX, GroupsY int

	// Width and Height are the domain size in cells.
	Width, Height int
}

// NewDispatch covers a width x height domain with ceil(width/8) x
// ceil(height/8) workgroups. Non-positive sizes produce an empty dispatch.
func NewDispatch(width, height int) Dispatch {
	if width <= 0 || height <= 0 {
		return Dispatch{}
	}
	return Dispatch{
		GroupsX: (width + WorkgroupSize - 1) / WorkgroupSize,
		GroupsY: (height + WorkgroupSize - 1) / WorkgroupSize,
		Width:   width,
		Height:  height,
	}
}

// Count returns the total number of workgroups.
func (d Dispatch) Count() int {
	return d.GroupsX * d.GroupsY
}

// Bounds returns the cells covered by g after clipping: [x0,x1) x [y0,y1).
func (d Dispatch) Bounds(g Workgroup) (x0, y0, x1, y1 int) {
	x0 = g.X * WorkgroupSize
	y0 = g.Y * WorkgroupSize
	x1 = min(x0+WorkgroupSize, d.Width)
	y1 = min(y0+WorkgroupSize, d.Height)
	return x0, y0, x1, y1
}

// Workgroups lists all workgroups in row-major order.
func (d Dispatch) Workgroups() []Workgroup {
	groups := make([]Workgroup, 0, d.Count())
	for gy := range d.GroupsY {
		for gx := range d.GroupsX {
			groups = append(groups, Workgroup{X: gx, Y: gy})
		}
	}
	return groups
}

// Run invokes fn once per workgroup with its clipped bounds and waits for
// all of them. A nil pool runs everything on the calling goroutine.
func (d Dispatch) Run(pool *WorkerPool, fn func(x0, y0, x1, y1 int)) {
	groups := d.Workgroups()
	if pool == nil {
		for _, g := range groups {
			fn(d.Bounds(g))
		}
		return
	}
	work := make([]func(), len(groups))
	for i, g := range groups {
		work[i] = func() { fn(d.Bounds(g)) }
	}
	pool.ExecuteAll(work)
}
