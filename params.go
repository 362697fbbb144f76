package life

import (
	"encoding/binary"
	"math"
)

// Phase selects what one compute dispatch does.
type Phase int32

// Compute phases, in the order a step runs them.
const (
	PhaseUpdate   Phase = 0
	PhaseColorize Phase = 1
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseUpdate:
		return "update"
	case PhaseColorize:
		return "colorize"
	default:
		return "unknown"
	}
}

// SimParamsSize is the size of the device-side parameter block:
// two vec4<f32>, one i32 and three u32.
const SimParamsSize = 48

// SimParams are the per-dispatch parameters of the life shader.
// Width and Height let the shader discard invocations of partial tail
// tiles. RowPitch is the row length, in pixels, of the colorize output.
type SimParams struct {
	LiveColor RGBA
	DeadColor RGBA
	Phase     Phase
	Width     uint32
	Height    uint32
	RowPitch  uint32
}

// Bytes encodes p in the shader's uniform layout.
func (p SimParams) Bytes() []byte {
	buf := make([]byte, SimParamsSize)
	putRGBA(buf[0:], p.LiveColor)
	putRGBA(buf[16:], p.DeadColor)
	binary.LittleEndian.PutUint32(buf[32:], uint32(p.Phase))
	binary.LittleEndian.PutUint32(buf[36:], p.Width)
	binary.LittleEndian.PutUint32(buf[40:], p.Height)
	binary.LittleEndian.PutUint32(buf[44:], p.RowPitch)
	return buf
}

func putRGBA(buf []byte, c RGBA) {
	putFloat32(buf[0:], c.R)
	putFloat32(buf[4:], c.G)
	putFloat32(buf[8:], c.B)
	putFloat32(buf[12:], c.A)
}

func putFloat32(buf []byte, v float32) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
}
