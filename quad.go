package life

import "encoding/binary"

// QuadVertex is one corner of the simulation quad.
type QuadVertex struct {
	Position [2]float32
	TexCoord [2]float32
}

// QuadVertexStride is the byte stride of QuadVertex in the vertex buffer.
const QuadVertexStride = 16

// QuadVertices are the four corners of the unit quad.
var QuadVertices = [4]QuadVertex{
	{Position: [2]float32{-1, -1}, TexCoord: [2]float32{0, 0}},
	{Position: [2]float32{-1, 1}, TexCoord: [2]float32{0, 1}},
	{Position: [2]float32{1, 1}, TexCoord: [2]float32{1, 1}},
	{Position: [2]float32{1, -1}, TexCoord: [2]float32{1, 0}},
}

// QuadIndices form the two triangles of the quad.
var QuadIndices = [6]uint16{0, 2, 1, 0, 3, 2}

// QuadVertexBytes encodes QuadVertices for a vertex buffer.
func QuadVertexBytes() []byte {
	buf := make([]byte, len(QuadVertices)*QuadVertexStride)
	for i, v := range QuadVertices {
		off := i * QuadVertexStride
		putFloat32(buf[off:], v.Position[0])
		putFloat32(buf[off+4:], v.Position[1])
		putFloat32(buf[off+8:], v.TexCoord[0])
		putFloat32(buf[off+12:], v.TexCoord[1])
	}
	return buf
}

// QuadIndexBytes encodes QuadIndices as uint16 values.
func QuadIndexBytes() []byte {
	buf := make([]byte, 2*len(QuadIndices))
	for i, idx := range QuadIndices {
		binary.LittleEndian.PutUint16(buf[2*i:], idx)
	}
	return buf
}
