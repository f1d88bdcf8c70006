package rhi

import "testing"

func TestResourceStateWritable(t *testing.T) {
	writable := []ResourceState{
		ResourceStateCopyDest,
		ResourceStateRenderTarget,
		ResourceStateDepthWrite,
		ResourceStateUnorderedAccess,
	}
	for _, s := range writable {
		if !s.IsWritable() {
			t.Errorf("%s.IsWritable() = false, want true", s)
		}
	}

	readOnly := []ResourceState{
		ResourceStateVertexBuffer,
		ResourceStateIndexBuffer,
		ResourceStateConstantBuffer,
		ResourceStateShaderResource,
		ResourceStateDepthRead,
	}
	for _, s := range readOnly {
		if s.IsWritable() {
			t.Errorf("%s.IsWritable() = true, want false", s)
		}
	}
}

func TestResourceStateHas(t *testing.T) {
	combined := ResourceStateVertexBuffer | ResourceStateIndexBuffer
	if !combined.Has(ResourceStateVertexBuffer) {
		t.Error("combined state should include VertexBuffer")
	}
	if combined.Has(ResourceStateConstantBuffer) {
		t.Error("combined state should not include ConstantBuffer")
	}
	if !combined.Has(ResourceStateCommon) {
		t.Error("every state includes Common")
	}
}

func TestResourceStateString(t *testing.T) {
	if got := ResourceStateCommon.String(); got != "Common" {
		t.Errorf("Common.String() = %q", got)
	}
	combined := ResourceStateDepthWrite | ResourceStateShaderResource
	if got := combined.String(); got != "ShaderResource|DepthWrite" {
		t.Errorf("combined String() = %q", got)
	}
}
