//go:build !nogpu

package gpu

// Ring hands out a fixed number of per-frame slots in rotation. It is sized
// to the frames-in-flight count: a slot comes back around only after
// FramesInFlight-1 other frames were issued, and its owner waits on the
// token the slot carried before touching its resources.
type Ring[T any] struct {
	slots []T
	next  int
	laps  uint64
}

// NewRing allocates n slots, initialising each with init. If init fails the
// slots created so far are passed to cleanup.
func NewRing[T any](n int, init func(i int, slot *T) error, cleanup func(slot *T)) (*Ring[T], error) {
	if n <= 0 {
		return nil, ErrRingExhausted
	}
	r := &Ring[T]{slots: make([]T, n)}
	for i := range r.slots {
		if err := init(i, &r.slots[i]); err != nil {
			if cleanup != nil {
				for j := 0; j < i; j++ {
					cleanup(&r.slots[j])
				}
			}
			return nil, err
		}
	}
	return r, nil
}

// Next returns the slot for the coming frame and advances the ring.
func (r *Ring[T]) Next() (index int, slot *T) {
	index = r.next
	r.next++
	if r.next == len(r.slots) {
		r.next = 0
		r.laps++
	}
	return index, &r.slots[index]
}

// Len returns the number of slots.
func (r *Ring[T]) Len() int { return len(r.slots) }

// Laps returns how many times the ring has wrapped around.
func (r *Ring[T]) Laps() uint64 { return r.laps }

// Each calls fn for every slot in index order.
func (r *Ring[T]) Each(fn func(i int, slot *T)) {
	for i := range r.slots {
		fn(i, &r.slots[i])
	}
}
