// Package life runs Conway's Game of Life on the GPU and composites the
// result with an overlay into a presented frame.
//
// # Overview
//
// The package holds the data model shared by the host and the device: cells
// and grids, the ping-pong index of the double-buffered grid pair, the
// per-dispatch simulation parameters, the viewport transform uniform and the
// quad geometry the simulation image is drawn on. It also carries a host
// reference simulator that runs the same tiled two-phase algorithm as the
// compute shader.
//
// The GPU engine and the frame compositor live in internal/gpu; the overlay
// HUD lives in internal/hud; cmd/gglife wires everything into a gogpu window.
//
// # Quick Start
//
//	cfg, err := life.NewConfig(
//	    life.WithGridSize(256, 256),
//	    life.WithSeed(42),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sim, err := life.NewSimulator(cfg.Width, cfg.Height, cfg.Workers)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sim.Close()
//	sim.Reset(cfg.Seed)
//	sim.Step(cfg.LiveColor, cfg.DeadColor)
//
// # Rule and boundary
//
// A dead cell becomes alive with exactly three live neighbours; a live cell
// survives with two or three. Neighbours outside the grid count as dead.
//
// # Coordinate System
//
// Grids are row-major with (0,0) at the first element. The quad spans
// [-1,1] in normalized device coordinates with texture coordinate (0,0) at
// (-1,-1).
package life

// Version information
const (
	// Version is the current version of the module.
	Version = "0.3.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 3

	// VersionPatch is the patch version
	VersionPatch = 0
)
