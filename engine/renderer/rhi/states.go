package rhi

import "strings"

// ResourceState is the GPU-visible usage mode a buffer or texture must be
// in for a given operation to be valid. States combine as a bit set.
type ResourceState uint32

const (
	ResourceStateCommon   ResourceState = 0
	ResourceStateCopyDest ResourceState = 1 << iota
	ResourceStateCopySource
	ResourceStateVertexBuffer
	ResourceStateIndexBuffer
	ResourceStateConstantBuffer
	ResourceStateShaderResource
	ResourceStateRenderTarget
	ResourceStateDepthWrite
	ResourceStateDepthRead
	ResourceStateUnorderedAccess
	ResourceStatePresent
)

// writableStates are the states in which the resource contents may be
// modified. Any write outside of them is a state violation.
const writableStates = ResourceStateCopyDest |
	ResourceStateRenderTarget |
	ResourceStateDepthWrite |
	ResourceStateUnorderedAccess

// IsWritable reports whether the state permits writes to the resource.
func (s ResourceState) IsWritable() bool {
	return s&writableStates != 0
}

// Has reports whether every bit of other is present in s.
func (s ResourceState) Has(other ResourceState) bool {
	return s&other == other
}

func (s ResourceState) String() string {
	if s == ResourceStateCommon {
		return "Common"
	}
	names := []struct {
		bit  ResourceState
		name string
	}{
		{ResourceStateCopyDest, "CopyDest"},
		{ResourceStateCopySource, "CopySource"},
		{ResourceStateVertexBuffer, "VertexBuffer"},
		{ResourceStateIndexBuffer, "IndexBuffer"},
		{ResourceStateConstantBuffer, "ConstantBuffer"},
		{ResourceStateShaderResource, "ShaderResource"},
		{ResourceStateRenderTarget, "RenderTarget"},
		{ResourceStateDepthWrite, "DepthWrite"},
		{ResourceStateDepthRead, "DepthRead"},
		{ResourceStateUnorderedAccess, "UnorderedAccess"},
		{ResourceStatePresent, "Present"},
	}
	parts := []string{}
	for _, n := range names {
		if s.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
