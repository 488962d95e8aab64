package gpu

import (
	"encoding/binary"

	"github.com/chewxy/math32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/redact/region"
)

// quadVertexStride is the byte stride per vertex. Layout per vertex:
//
//	position  (vec2<f32>) = 8 bytes  (location 0)
//	tex_coord (vec2<f32>) = 8 bytes  (location 1)
const quadVertexStride = 16

// quadBytes is the size of one quad's four vertices.
const quadBytes = 4 * quadVertexStride

// quadUniformSize is the byte size of QuadUniforms: alpha plus padding.
const quadUniformSize = 16

// quadIndices is the shared index list for two triangles per quad.
var quadIndices = [6]uint16{0, 1, 2, 0, 2, 3}

// fullScreenQuad covers the whole render target.
var fullScreenQuad = region.Quad{X0: -1, Y0: -1, X1: 1, Y1: 1}

// quadVertexLayout returns the vertex buffer layout matching VertexInput
// in redaction.wgsl.
func quadVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: quadVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0}, // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1}, // tex_coord
			},
		},
	}
}

// appendQuad appends the four vertices of q to dst. Vertex order is
// top-left, top-right, bottom-right, bottom-left with texture coordinates
// (0,0), (1,0), (1,1), (0,1).
func appendQuad(dst []byte, q region.Quad) []byte {
	var v [quadBytes]byte
	putVertex(v[0:], q.X0, q.Y0, 0, 0)
	putVertex(v[16:], q.X1, q.Y0, 1, 0)
	putVertex(v[32:], q.X1, q.Y1, 1, 1)
	putVertex(v[48:], q.X0, q.Y1, 0, 1)
	return append(dst, v[:]...)
}

func putVertex(b []byte, x, y, u, v float32) {
	binary.LittleEndian.PutUint32(b[0:], math32.Float32bits(x))
	binary.LittleEndian.PutUint32(b[4:], math32.Float32bits(y))
	binary.LittleEndian.PutUint32(b[8:], math32.Float32bits(u))
	binary.LittleEndian.PutUint32(b[12:], math32.Float32bits(v))
}

// indexBytes encodes quadIndices as little-endian uint16.
func indexBytes() []byte {
	b := make([]byte, 2*len(quadIndices))
	for i, idx := range quadIndices {
		binary.LittleEndian.PutUint16(b[2*i:], idx)
	}
	return b
}

// uniformBytes encodes QuadUniforms for the given alpha.
func uniformBytes(alpha float32) []byte {
	b := make([]byte, quadUniformSize)
	binary.LittleEndian.PutUint32(b, math32.Float32bits(alpha))
	return b
}
