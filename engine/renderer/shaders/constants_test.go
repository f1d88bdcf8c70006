package shaders

import (
	"testing"
	"unsafe"
)

func TestConstantBlockAlignment(t *testing.T) {
	tests := []struct {
		name string
		size uintptr
	}{
		{"PlanarViewConstants", unsafe.Sizeof(PlanarViewConstants{})},
		{"MaterialConstants", unsafe.Sizeof(MaterialConstants{})},
		{"DeferredLightingConstants", unsafe.Sizeof(DeferredLightingConstants{})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.size%ConstantBufferAlign != 0 {
				t.Errorf("size %d is not a multiple of %d", tt.size, ConstantBufferAlign)
			}
			if tt.size == 0 {
				t.Error("empty constant block")
			}
		})
	}
}

func TestLightConstantsSize(t *testing.T) {
	if got := unsafe.Sizeof(LightConstants{}); got != 64 {
		t.Fatalf("LightConstants size = %d, want 64", got)
	}
}

func TestByteReinterpretationRoundTrip(t *testing.T) {
	var m MaterialConstants
	m.Opacity = 0.25
	m.ShadingModel = 1

	raw := AsBytes(&m)
	if len(raw) != int(unsafe.Sizeof(m)) {
		t.Fatalf("byte image length = %d, want %d", len(raw), unsafe.Sizeof(m))
	}
	back := FromBytes[MaterialConstants](raw)
	if back.Opacity != 0.25 || back.ShadingModel != 1 {
		t.Fatalf("round trip lost fields: %+v", back)
	}
}
