package scene

import (
	"encoding/binary"
	stdmath "math"

	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// Unit cube as 6 quads with per-face normals. Each face lists its
// corners bottom-left, bottom-right, top-right, top-left, wound
// counter-clockwise when viewed from outside.
var cubeFacePositions = [6][4]math.Vec3{
	{{X: -1, Y: -1, Z: +1}, {X: +1, Y: -1, Z: +1}, {X: +1, Y: +1, Z: +1}, {X: -1, Y: +1, Z: +1}}, // +z
	{{X: +1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: -1}, {X: -1, Y: +1, Z: -1}, {X: +1, Y: +1, Z: -1}}, // -z
	{{X: +1, Y: -1, Z: +1}, {X: +1, Y: -1, Z: -1}, {X: +1, Y: +1, Z: -1}, {X: +1, Y: +1, Z: +1}}, // +x
	{{X: -1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: +1}, {X: -1, Y: +1, Z: +1}, {X: -1, Y: +1, Z: -1}}, // -x
	{{X: -1, Y: +1, Z: +1}, {X: +1, Y: +1, Z: +1}, {X: +1, Y: +1, Z: -1}, {X: -1, Y: +1, Z: -1}}, // +y
	{{X: -1, Y: -1, Z: -1}, {X: +1, Y: -1, Z: -1}, {X: +1, Y: -1, Z: +1}, {X: -1, Y: -1, Z: +1}}, // -y
}

var cubeFaceNormals = [6]math.Vec3{
	{Z: +1}, {Z: -1}, {X: +1}, {X: -1}, {Y: +1}, {Y: -1},
}

var cubeFaceTangents = [6]math.Vec3{
	{X: +1}, {X: -1}, {Z: -1}, {Z: +1}, {X: +1}, {X: +1},
}

var cubeFaceTexCoords = [4]math.Vec2{
	{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0},
}

// CreateCubeMesh uploads an axis-aligned cube of the given edge length
// centered at the origin and returns a ready MeshInfo with one
// geometry. The command list must be recording; the geometry buffers
// come out frozen in their input states.
func CreateCubeMesh(device rhi.Device, cl rhi.CommandList, name string, edge float32, material *Material) (*MeshInfo, error) {
	const numVertices = 24
	const numIndices = 36
	half := edge * 0.5

	var positions, normals, tangents []float32
	var texcoords []float32
	for face := 0; face < 6; face++ {
		for corner := 0; corner < 4; corner++ {
			p := cubeFacePositions[face][corner].MulScalar(half)
			positions = append(positions, p.X, p.Y, p.Z)
			n := cubeFaceNormals[face]
			normals = append(normals, n.X, n.Y, n.Z)
			t := cubeFaceTangents[face]
			tangents = append(tangents, t.X, t.Y, t.Z)
			uv := cubeFaceTexCoords[corner]
			texcoords = append(texcoords, uv.X, uv.Y)
		}
	}

	indices := make([]uint32, 0, numIndices)
	for face := uint32(0); face < 6; face++ {
		base := face * 4
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	buffers := NewBufferGroup()

	// Planar packing: each attribute occupies its own contiguous range
	// of the shared vertex buffer.
	var vertexData []byte
	offset := uint64(0)
	pack := func(attr VertexAttribute, floats []float32) {
		buffers.SetVertexBufferRange(attr, offset, uint64(len(floats))*4)
		vertexData = appendFloats(vertexData, floats)
		offset += uint64(len(floats)) * 4
	}
	pack(VertexAttributePosition, positions)
	pack(VertexAttributeTexCoord1, texcoords)
	pack(VertexAttributeNormal, normals)
	pack(VertexAttributeTangent, tangents)

	vb, err := CreateGeometryBuffer(device, cl, name+".vertices", vertexData, uint64(len(vertexData)), true)
	if err != nil {
		return nil, err
	}
	buffers.VertexBuffer = vb

	indexData := make([]byte, 0, numIndices*4)
	for _, idx := range indices {
		indexData = binary.LittleEndian.AppendUint32(indexData, idx)
	}
	ib, err := CreateGeometryBuffer(device, cl, name+".indices", indexData, uint64(len(indexData)), false)
	if err != nil {
		return nil, err
	}
	buffers.IndexBuffer = ib

	bounds := math.Extents3D{
		Min: math.Vec3{X: -half, Y: -half, Z: -half},
		Max: math.Vec3{X: +half, Y: +half, Z: +half},
	}
	geometry := &MeshGeometry{
		Material:    material,
		NumIndices:  numIndices,
		NumVertices: numVertices,
	}
	return &MeshInfo{
		Name:              name,
		Buffers:           buffers,
		Geometries:        []*MeshGeometry{geometry},
		ObjectSpaceBounds: bounds,
		TotalIndices:      numIndices,
		TotalVertices:     numVertices,
	}, nil
}

func appendFloats(dst []byte, floats []float32) []byte {
	for _, f := range floats {
		dst = binary.LittleEndian.AppendUint32(dst, stdmath.Float32bits(f))
	}
	return dst
}
