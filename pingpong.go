package life

// PingPong is the one-bit active index of a double-buffered grid pair.
// Read is the grid the next step reads; the step writes the other one and
// then calls Swap, so the grid just written becomes the next read source.
type PingPong uint8

// Read returns the index of the most recently completed grid.
func (p PingPong) Read() int { return int(p & 1) }

// Write returns the index of the scratch grid.
func (p PingPong) Write() int { return int(p&1) ^ 1 }

// Swap returns the index after a completed step.
func (p PingPong) Swap() PingPong { return (p ^ 1) & 1 }
