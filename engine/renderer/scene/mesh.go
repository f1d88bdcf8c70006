package scene

import (
	"github.com/hollowtide/lumen/engine/math"
)

// MeshGeometry is one sub-mesh: a vertex/index range of its MeshInfo's
// backing buffers paired with a material. Immutable after upload.
type MeshGeometry struct {
	Material     *Material
	IndexOffset  uint32
	VertexOffset uint32
	NumIndices   uint32
	NumVertices  uint32
}

// MeshInfo describes one uploaded mesh: its buffer group, sub-mesh
// list and object-space bounds. Immutable after upload; any number of
// MeshInstances may share it.
type MeshInfo struct {
	Name              string
	Buffers           *BufferGroup
	Geometries        []*MeshGeometry
	ObjectSpaceBounds math.Extents3D
	TotalIndices      uint32
	TotalVertices     uint32
}

// MeshInstance ties one MeshInfo to one placement in the world. The
// previous-frame transform feeds motion vectors; the scene graph rolls
// it forward on Refresh.
type MeshInstance struct {
	Mesh          *MeshInfo
	Name          string
	Transform     math.Mat4
	PrevTransform math.Mat4

	lastRefreshFrame uint32
	refreshedOnce    bool
}

func NewMeshInstance(mesh *MeshInfo, name string) *MeshInstance {
	return &MeshInstance{
		Mesh:          mesh,
		Name:          name,
		Transform:     math.NewMat4Identity(),
		PrevTransform: math.NewMat4Identity(),
	}
}

// LeafName implements Leaf.
func (mi *MeshInstance) LeafName() string {
	return mi.Name
}

// refreshTransform rolls the per-frame transform pair forward. Called
// once per graph refresh; repeated refreshes within the same frame keep
// the previous-frame transform stable so motion vectors stay correct.
func (mi *MeshInstance) refreshTransform(world math.Mat4, frameIndex uint32) {
	switch {
	case !mi.refreshedOnce:
		// First placement. Motion starts at zero.
		mi.PrevTransform = world
		mi.refreshedOnce = true
	case frameIndex != mi.lastRefreshFrame:
		mi.PrevTransform = mi.Transform
	}
	mi.Transform = world
	mi.lastRefreshFrame = frameIndex
}

// InstanceData is the per-instance element layout of a BufferGroup's
// instance buffer. Read by the vertex stage as instanced attributes.
type InstanceData struct {
	Transform     math.Mat4
	PrevTransform math.Mat4
}
