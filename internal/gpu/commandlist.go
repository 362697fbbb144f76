//go:build !nogpu

package gpu

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// PassEncoder is the subset of hal.RenderPassEncoder the compositor and
// command lists record into.
type PassEncoder interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64)
	SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64)
	SetViewport(x, y, width, height, minDepth, maxDepth float32)
	SetScissorRect(x, y, width, height uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
}

var _ PassEncoder = (hal.RenderPassEncoder)(nil)

type commandOp uint8

const (
	opSetPipeline commandOp = iota
	opSetBindGroup
	opSetVertexBuffer
	opSetIndexBuffer
	opSetScissorRect
	opDraw
	opDrawIndexed
)

type command struct {
	op        commandOp
	pipeline  hal.RenderPipeline
	bindGroup hal.BindGroup
	buffer    hal.Buffer
	format    gputypes.IndexFormat
	offsets   []uint32
	offset    uint64
	index     uint32
	args      [4]uint32
	base      int32
}

// CommandList is an immutable sequence of render-pass commands recorded
// ahead of time for one render target size. The compositor replays it
// unmodified inside the overlay segment of its render pass, the
// equivalent of executing a secondary command buffer.
type CommandList struct {
	width, height uint32
	cmds          []command
}

// Size returns the target dimensions the list was recorded for.
func (l *CommandList) Size() (width, height uint32) { return l.width, l.height }

// Len returns the number of recorded commands.
func (l *CommandList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.cmds)
}

// Execute replays the commands onto pass in recording order.
// A nil list records nothing.
func (l *CommandList) Execute(pass PassEncoder) {
	if l == nil {
		return
	}
	for i := range l.cmds {
		c := &l.cmds[i]
		switch c.op {
		case opSetPipeline:
			pass.SetPipeline(c.pipeline)
		case opSetBindGroup:
			pass.SetBindGroup(c.index, c.bindGroup, c.offsets)
		case opSetVertexBuffer:
			pass.SetVertexBuffer(c.index, c.buffer, c.offset)
		case opSetIndexBuffer:
			pass.SetIndexBuffer(c.buffer, c.format, c.offset)
		case opSetScissorRect:
			pass.SetScissorRect(c.args[0], c.args[1], c.args[2], c.args[3])
		case opDraw:
			pass.Draw(c.args[0], c.args[1], c.args[2], c.args[3])
		case opDrawIndexed:
			pass.DrawIndexed(c.args[0], c.args[1], c.args[2], c.base, c.args[3])
		}
	}
}

// CommandRecorder builds a CommandList.
//
//	rec := gpu.NewCommandRecorder(w, h)
//	rec.SetPipeline(p)
//	rec.SetBindGroup(0, bg, nil)
//	rec.Draw(3, 1, 0, 0)
//	list := rec.Finish()
type CommandRecorder struct {
	list *CommandList
}

// NewCommandRecorder starts a list for a target of the given size.
func NewCommandRecorder(width, height uint32) *CommandRecorder {
	return &CommandRecorder{list: &CommandList{width: width, height: height}}
}

func (r *CommandRecorder) add(c command) { r.list.cmds = append(r.list.cmds, c) }

// SetPipeline records a pipeline change.
func (r *CommandRecorder) SetPipeline(p hal.RenderPipeline) {
	r.add(command{op: opSetPipeline, pipeline: p})
}

// SetBindGroup records a bind group change.
func (r *CommandRecorder) SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32) {
	r.add(command{op: opSetBindGroup, index: index, bindGroup: group, offsets: append([]uint32(nil), offsets...)})
}

// SetVertexBuffer records a vertex buffer binding.
func (r *CommandRecorder) SetVertexBuffer(slot uint32, buffer hal.Buffer, offset uint64) {
	r.add(command{op: opSetVertexBuffer, index: slot, buffer: buffer, offset: offset})
}

// SetIndexBuffer records an index buffer binding.
func (r *CommandRecorder) SetIndexBuffer(buffer hal.Buffer, format gputypes.IndexFormat, offset uint64) {
	r.add(command{op: opSetIndexBuffer, buffer: buffer, format: format, offset: offset})
}

// SetScissorRect records a scissor change.
func (r *CommandRecorder) SetScissorRect(x, y, width, height uint32) {
	r.add(command{op: opSetScissorRect, args: [4]uint32{x, y, width, height}})
}

// Draw records a non-indexed draw.
func (r *CommandRecorder) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	r.add(command{op: opDraw, args: [4]uint32{vertexCount, instanceCount, firstVertex, firstInstance}})
}

// DrawIndexed records an indexed draw.
func (r *CommandRecorder) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	r.add(command{op: opDrawIndexed, args: [4]uint32{indexCount, instanceCount, firstIndex, firstInstance}, base: baseVertex})
}

// Finish returns the recorded list. The recorder must not be used again.
func (r *CommandRecorder) Finish() *CommandList {
	l := r.list
	r.list = nil
	return l
}

// OverlayProvider produces the overlay commands for a target size.
type OverlayProvider interface {
	Overlay(width, height uint32) (*CommandList, error)
}

// OverlayFunc adapts a function to OverlayProvider.
type OverlayFunc func(width, height uint32) (*CommandList, error)

// Overlay calls f.
func (f OverlayFunc) Overlay(width, height uint32) (*CommandList, error) { return f(width, height) }
