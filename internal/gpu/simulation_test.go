//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/life"
)

func newTestSimulation(t *testing.T, dev *Device, w, h uint32) *Simulation {
	t.Helper()
	sim, err := NewSimulation(dev, SimulationConfig{Width: w, Height: h, Seed: 1, FramesInFlight: 2})
	if err != nil {
		t.Fatalf("NewSimulation failed: %v", err)
	}
	t.Cleanup(sim.Destroy)
	return sim
}

func TestNewSimulation(t *testing.T) {
	dev := newTestDevice(t)
	sim := newTestSimulation(t, dev, 37, 41)

	if w, h := sim.Size(); w != 37 || h != 41 {
		t.Errorf("Size() = %dx%d, want 37x41", w, h)
	}
	if sim.Active().Read() != 0 {
		t.Errorf("initial Active().Read() = %d, want 0", sim.Active().Read())
	}
	if sim.Generation() != 0 {
		t.Errorf("initial Generation() = %d", sim.Generation())
	}
	if sim.OutputView() == nil {
		t.Error("OutputView() is nil")
	}
	d := sim.Dispatch()
	if d.GroupsX != 5 || d.GroupsY != 6 {
		t.Errorf("dispatch = %dx%d, want 5x6", d.GroupsX, d.GroupsY)
	}
	// Copy rows are padded to 256 bytes: 37*4 = 148 -> 256 -> 64 texels.
	if sim.rowPitch != 64 {
		t.Errorf("rowPitch = %d, want 64", sim.rowPitch)
	}
}

func TestNewSimulation_Errors(t *testing.T) {
	if _, err := NewSimulation(nil, SimulationConfig{Width: 8, Height: 8}); !errors.Is(err, ErrNilDevice) {
		t.Errorf("nil device error = %v, want ErrNilDevice", err)
	}

	dev := newTestDevice(t)
	sizes := []struct{ w, h uint32 }{
		{0, 8},
		{8, 0},
		{life.MaxGridDimension + 1, 8},
	}
	for _, s := range sizes {
		_, err := NewSimulation(dev, SimulationConfig{Width: s.w, Height: s.h})
		if !errors.Is(err, life.ErrInvalidGridSize) {
			t.Errorf("NewSimulation(%dx%d) error = %v, want ErrInvalidGridSize", s.w, s.h, err)
		}
	}
}

// The noop backend records dispatches but cannot run compute shaders, so
// these tests cover buffers, bindings and submission order only. The
// neighbour count and B3/S23 rule of life.wgsl are checked against the
// host mirror in life.Simulator's tests.
func TestSimulationStepSwapsGrids(t *testing.T) {
	dev := newTestDevice(t)
	sim := newTestSimulation(t, dev, 16, 16)

	// Three steps cycle through a two-slot ring, so slot reuse waits are
	// exercised too.
	want := []int{1, 0, 1}
	var last Token
	for i, read := range want {
		tok, err := sim.Step(life.DefaultLiveColor, life.DefaultDeadColor)
		if err != nil {
			t.Fatalf("Step %d failed: %v", i, err)
		}
		if tok.Seq() <= last.Seq() {
			t.Errorf("step %d token seq %d not after %d", i, tok.Seq(), last.Seq())
		}
		last = tok
		if got := sim.Active().Read(); got != read {
			t.Errorf("after step %d Active().Read() = %d, want %d", i+1, got, read)
		}
	}
	if sim.Generation() != 3 {
		t.Errorf("Generation() = %d, want 3", sim.Generation())
	}
}

func TestSimulationColorizeKeepsGrid(t *testing.T) {
	dev := newTestDevice(t)
	sim := newTestSimulation(t, dev, 16, 16)

	if _, err := sim.Colorize(life.DefaultLiveColor, life.DefaultDeadColor); err != nil {
		t.Fatalf("Colorize failed: %v", err)
	}
	if sim.Active().Read() != 0 || sim.Generation() != 0 {
		t.Error("Colorize must not advance the simulation")
	}
}

func TestSimulationGridGroups(t *testing.T) {
	for current := range 2 {
		// The update phase reads the current grid.
		if g := gridGroupUpdate(current); g != current {
			t.Errorf("update group for grid %d = %d", current, g)
		}
		// The colorize-only pass binds the current grid as its output
		// binding, which is what the colorize phase reads.
		if g := gridGroupColorize(current); 1-g != current {
			t.Errorf("colorize group for grid %d writes grid %d", current, 1-g)
		}
	}
}

func TestSimulationReset(t *testing.T) {
	dev := newTestDevice(t)
	sim := newTestSimulation(t, dev, 16, 16)

	for range 3 {
		if _, err := sim.Step(life.DefaultLiveColor, life.DefaultDeadColor); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
	if err := sim.Reset(42); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if sim.Active().Read() != 0 {
		t.Errorf("Active().Read() after reset = %d, want 0", sim.Active().Read())
	}
	if sim.Generation() != 0 {
		t.Errorf("Generation() after reset = %d, want 0", sim.Generation())
	}
	if w, h := sim.Size(); w != 16 || h != 16 {
		t.Errorf("Reset changed size to %dx%d", w, h)
	}
	sim.slots.Each(func(i int, slot *stepSlot) {
		if slot.token.Pending() {
			t.Errorf("slot %d still pending after reset", i)
		}
	})
}

func TestSimulationLoad(t *testing.T) {
	dev := newTestDevice(t)
	sim := newTestSimulation(t, dev, 3, 3)

	blinker, err := life.ParseGrid(
		"...",
		"###",
		"...",
	)
	if err != nil {
		t.Fatalf("ParseGrid failed: %v", err)
	}
	if _, err := sim.Step(life.DefaultLiveColor, life.DefaultDeadColor); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if err := sim.Load(blinker); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if sim.Active().Read() != 0 || sim.Generation() != 0 {
		t.Error("Load should restart at generation 0 on grid 0")
	}

	wrong, _ := life.NewGrid(4, 3)
	if err := sim.Load(wrong); !errors.Is(err, life.ErrGridMismatch) {
		t.Errorf("Load(4x3) error = %v, want ErrGridMismatch", err)
	}
}

func TestSimulationDestroy(t *testing.T) {
	dev := newTestDevice(t)
	sim, err := NewSimulation(dev, SimulationConfig{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("NewSimulation failed: %v", err)
	}
	if _, err := sim.Step(life.DefaultLiveColor, life.DefaultDeadColor); err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	sim.Destroy()
	sim.Destroy()

	if _, err := sim.Step(life.DefaultLiveColor, life.DefaultDeadColor); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Step after Destroy error = %v, want ErrDestroyed", err)
	}
	if err := sim.Reset(1); !errors.Is(err, ErrDestroyed) {
		t.Errorf("Reset after Destroy error = %v, want ErrDestroyed", err)
	}
	if sim.OutputView() != nil {
		t.Error("OutputView should be nil after Destroy")
	}
}

func TestSimulationSPIRV(t *testing.T) {
	if _, err := CompileShaderToSPIRV(lifeShaderSource); err != nil {
		t.Skipf("naga cannot compile the life shader: %v", err)
	}
	dev := newTestDevice(t)
	sim, err := NewSimulation(dev, SimulationConfig{Width: 8, Height: 8, ShaderFormat: ShaderSPIRV})
	if err != nil {
		t.Fatalf("NewSimulation(SPIR-V) failed: %v", err)
	}
	sim.Destroy()
}
