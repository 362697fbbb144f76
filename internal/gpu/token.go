//go:build !nogpu

package gpu

import (
	"fmt"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// defaultSubmitTimeout bounds every completion wait. A submission that does
// not complete in time means the device is lost.
const defaultSubmitTimeout = 5 * time.Second

// Completion polling backs off from pollMin to pollMax between checks.
const (
	pollMin = 50 * time.Microsecond
	pollMax = time.Millisecond
)

// Token represents one enqueued submission. It is returned as soon as the
// work is queued; Timeline.Wait blocks until the GPU has finished it.
// Copies of a Token share the submission, so any holder may wait on it and
// the command buffer is released exactly once.
//
// The zero Token is already complete.
type Token struct {
	sub *submission
}

type submission struct {
	timeline *Timeline
	seq      uint64
	index    uint64 // queue submission index
	cmdBuf   hal.CommandBuffer
	done     bool
}

// Seq returns the submission sequence number, 0 for the zero Token.
func (t Token) Seq() uint64 {
	if t.sub == nil {
		return 0
	}
	return t.sub.seq
}

// Pending reports whether the submission has not been waited on yet.
func (t Token) Pending() bool { return t.sub != nil && !t.sub.done }

// Timeline orders submissions on one queue. All stages of a frame submit
// through the same Timeline, so queue order is the dependency chain:
// a stage submitted after a token's submission runs after it on the GPU.
//
// Timeline is not safe for concurrent use.
type Timeline struct {
	device  hal.Device
	queue   hal.Queue
	seq     uint64
	timeout time.Duration
}

// NewTimeline creates a timeline on a device queue.
func NewTimeline(device hal.Device, queue hal.Queue) *Timeline {
	return &Timeline{device: device, queue: queue, timeout: defaultSubmitTimeout}
}

// Submitted returns the sequence number of the last submission.
func (tl *Timeline) Submitted() uint64 { return tl.seq }

// Submit enqueues cmdBuf and returns its token.
// The command buffer is owned by the token from here on.
func (tl *Timeline) Submit(cmdBuf hal.CommandBuffer) (Token, error) {
	index, err := tl.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		tl.device.FreeCommandBuffer(cmdBuf)
		return Token{}, fmt.Errorf("submit: %w", err)
	}
	tl.seq++
	return Token{sub: &submission{timeline: tl, seq: tl.seq, index: index, cmdBuf: cmdBuf}}, nil
}

// After checks that t was submitted on this timeline, so work submitted
// next is ordered after it.
func (tl *Timeline) After(t Token) error {
	if t.sub == nil {
		return nil
	}
	if t.sub.timeline != tl {
		return ErrTokenOrder
	}
	if t.sub.seq > tl.seq {
		return fmt.Errorf("%w: token %d, last submission %d", ErrTokenOrder, t.sub.seq, tl.seq)
	}
	return nil
}

// Wait blocks until the queue reports t's submission index as completed,
// then releases its command buffer. Waiting on a zero or already completed
// token returns nil.
func (tl *Timeline) Wait(t Token) error {
	sub := t.sub
	if sub == nil || sub.done {
		return nil
	}
	deadline := time.Now().Add(tl.timeout)
	backoff := pollMin
	for tl.queue.PollCompleted() < sub.index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrSubmitTimeout, sub.seq, tl.timeout)
		}
		time.Sleep(backoff)
		backoff = min(backoff*2, pollMax)
	}
	tl.release(sub)
	return nil
}

func (tl *Timeline) release(sub *submission) {
	sub.done = true
	if sub.cmdBuf != nil {
		tl.device.FreeCommandBuffer(sub.cmdBuf)
		sub.cmdBuf = nil
	}
}
