package scene

import (
	"fmt"
	"unsafe"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// VertexAttribute names a vertex stream semantic. The names are shared
// with pipeline input layouts.
type VertexAttribute string

const (
	VertexAttributePosition      VertexAttribute = "position"
	VertexAttributeTexCoord1     VertexAttribute = "texcoord1"
	VertexAttributeNormal        VertexAttribute = "normal"
	VertexAttributeTangent       VertexAttribute = "tangent"
	VertexAttributeTransform     VertexAttribute = "transform"
	VertexAttributePrevTransform VertexAttribute = "prev_transform"
)

// BufferRange is a byte range inside a shared buffer.
type BufferRange struct {
	ByteOffset uint64
	ByteSize   uint64
}

func (r BufferRange) IsValid() bool {
	return r.ByteSize > 0
}

// BufferGroup owns the geometry buffers a set of meshes share. Vertex
// attributes of different semantics are packed into disjoint byte
// ranges of the one vertex buffer.
type BufferGroup struct {
	VertexBuffer   rhi.Buffer
	IndexBuffer    rhi.Buffer
	InstanceBuffer rhi.Buffer

	ranges map[VertexAttribute]BufferRange
}

func NewBufferGroup() *BufferGroup {
	return &BufferGroup{
		ranges: make(map[VertexAttribute]BufferRange),
	}
}

// SetVertexBufferRange records where one attribute's data lives inside
// the shared vertex buffer.
func (g *BufferGroup) SetVertexBufferRange(attr VertexAttribute, byteOffset, byteSize uint64) {
	g.ranges[attr] = BufferRange{ByteOffset: byteOffset, ByteSize: byteSize}
}

// GetVertexBufferRange returns the byte range of one attribute; the
// second result is false when the attribute was never packed.
func (g *BufferGroup) GetVertexBufferRange(attr VertexAttribute) (BufferRange, bool) {
	r, ok := g.ranges[attr]
	return r, ok
}

// Release drops the group's references to its buffers.
func (g *BufferGroup) Release() {
	if g.VertexBuffer != nil {
		g.VertexBuffer.Release()
		g.VertexBuffer = nil
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Release()
		g.IndexBuffer = nil
	}
	if g.InstanceBuffer != nil {
		g.InstanceBuffer.Release()
		g.InstanceBuffer = nil
	}
}

// CreateGeometryBuffer allocates a vertex or index buffer in the copy
// destination state and, when data is provided, uploads it and freezes
// the buffer in its final input state. Buffers created with nil data
// stay in CopyDest for the caller to fill range by range.
func CreateGeometryBuffer(device rhi.Device, cl rhi.CommandList, debugName string, data []byte, size uint64, isVertexBuffer bool) (rhi.Buffer, error) {
	desc := rhi.BufferDesc{
		ByteSize:       size,
		DebugName:      debugName,
		IsVertexBuffer: isVertexBuffer,
		IsIndexBuffer:  !isVertexBuffer,
		InitialState:   rhi.ResourceStateCopyDest,
	}
	buf, err := device.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("create geometry buffer '%s': %w", debugName, err)
	}

	if data != nil {
		if err := cl.BeginTrackingBufferState(buf, rhi.ResourceStateCopyDest); err != nil {
			return nil, err
		}
		if err := cl.WriteBuffer(buf, data, 0); err != nil {
			return nil, err
		}
		finalState := rhi.ResourceStateVertexBuffer
		if !isVertexBuffer {
			finalState = rhi.ResourceStateIndexBuffer
		}
		if err := cl.SetPermanentBufferState(buf, finalState); err != nil {
			return nil, err
		}
	}
	core.LogDebug("created geometry buffer '%s' (%d bytes)", debugName, size)
	return buf, nil
}

// CreateInstanceBuffer allocates the per-instance transform buffer for
// up to maxInstances instances. Unlike geometry buffers it is rewritten
// every frame, so its state stays tracked rather than frozen.
func (g *BufferGroup) CreateInstanceBuffer(device rhi.Device, debugName string, maxInstances uint32) error {
	buf, err := device.CreateBuffer(rhi.BufferDesc{
		ByteSize:         uint64(maxInstances) * uint64(unsafe.Sizeof(InstanceData{})),
		DebugName:        debugName,
		IsVertexBuffer:   true,
		InitialState:     rhi.ResourceStateVertexBuffer,
		KeepInitialState: true,
	})
	if err != nil {
		return fmt.Errorf("create instance buffer '%s': %w", debugName, err)
	}
	g.InstanceBuffer = buf
	return nil
}
