//go:build !nogpu

// Package gpu runs the Game of Life pipeline on a WebGPU device.
//
// It is built on the gogpu/wgpu HAL (Pure Go, zero CGO) and compiles its
// WGSL shaders either directly or to SPIR-V through naga.
//
// # Architecture Overview
//
// A frame flows through three stages on one queue:
//
//	Simulation.Step -> Compositor.Composite -> Surface.Present
//
// Key components:
//
//   - Simulation: double-buffered compute step (update, then colorize)
//   - Compositor: one render pass, simulation quad then overlay
//   - OverlayRenderer: host-drawn overlay uploaded and replayed as a CommandList
//   - FrameLoop: acquire, step, composite and present, chained by tokens
//   - Ring: per-frame slots sized to the frames-in-flight count
//   - Timeline/Token: completion tokens keyed by queue submission index
//
// # Simulation
//
// The grid lives in two u32 storage buffers. One step records two compute
// passes in a single submission:
//
//	update:   grid[Read]  -> grid[Write]       (B3/S23, dead outside the grid)
//	colorize: grid[Write] -> pixels -> output  (live/dead color per cell)
//
// and then swaps the ping-pong index. Workgroups are 8x8; partial tiles at
// the right and bottom edges are guarded in the shader.
//
// # Compositing
//
// The compositor clears the target and draws the simulation image on a quad
// placed by a ViewportTransform:
//
//	pos = scale * (local * (1, aspectRatio)) + offset
//
// with viewport and scissor set to the simulation sub-rectangle. The overlay
// segment then resets them to the full target and replays the overlay
// CommandList unmodified.
//
// # Synchronization
//
// Every submission is tracked by its queue submission index, exposed as a
// Token and completed once PollCompleted reaches it. Later stages are
// ordered after earlier ones by queue order; the host waits only when a
// ring slot is reused, so at most FramesInFlight frames are queued.
package gpu
