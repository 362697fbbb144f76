//go:build !nogpu

package gpu

import "errors"

// GPU pipeline errors.
var (
	// ErrNilDevice is returned when a constructor is given a nil device or queue.
	ErrNilDevice = errors.New("gpu: nil device or queue")

	// ErrNoAdapter is returned when no GPU adapter is available.
	ErrNoAdapter = errors.New("gpu: no GPU adapter found")

	// ErrProvider is returned when a device provider does not expose HAL types.
	ErrProvider = errors.New("gpu: provider does not expose hal.Device and hal.Queue")

	// ErrSubmitTimeout is returned when a submission does not complete in time.
	// The device is considered lost.
	ErrSubmitTimeout = errors.New("gpu: submission timed out")

	// ErrDestroyed is returned when an operation is attempted after Destroy.
	ErrDestroyed = errors.New("gpu: resource already destroyed")

	// ErrTokenOrder is returned when a stage is chained after a token that
	// was not submitted on the same timeline.
	ErrTokenOrder = errors.New("gpu: completion token from a foreign or future submission")

	// ErrEmptyTarget is returned when the acquired target has zero size.
	ErrEmptyTarget = errors.New("gpu: target has zero size")
)

// ErrRingExhausted is returned for a ring with no slots.
var ErrRingExhausted = errors.New("gpu: ring allocator has no slots")
