// Package shaders holds the constant-block layouts shared between the
// render passes and the shader implementations. These layouts are a
// binary contract: the byte image of each struct is uploaded verbatim
// into a constant buffer and reinterpreted on the shader side, so every
// block is padded to a whole number of 256-byte slices (the minimum
// constant-buffer alignment) and fields may not be reordered.
package shaders

import (
	"unsafe"

	"github.com/hollowtide/lumen/engine/math"
)

// ConstantBufferAlign is the minimum constant-buffer slice alignment.
const ConstantBufferAlign = 256

// MaxDeferredLights bounds the light array in the lighting constants.
const MaxDeferredLights = 16

const (
	LightTypeNone uint32 = iota
	LightTypeDirectional
	LightTypePoint
	LightTypeSpot
)

// PlanarViewConstants carries one view's matrices and viewport. Two
// 256-byte slices.
type PlanarViewConstants struct {
	MatWorldToView math.Mat4
	MatViewToClip  math.Mat4
	MatWorldToClip math.Mat4
	MatClipToWorld math.Mat4

	ViewportOrigin  [2]float32
	ViewportSize    [2]float32
	ViewportSizeInv [2]float32
	CameraPosition  [4]float32

	_pad [54]float32
}

// MaterialConstants is the packed form of a scene.Material. One 256-byte
// slice.
type MaterialConstants struct {
	BaseOrDiffuseColor [4]float32
	SpecularColor      [4]float32
	EmissiveColor      [4]float32

	Opacity            float32
	Roughness          float32
	Metalness          float32
	NormalTextureScale float32

	ShadingModel               uint32
	EnableBaseOrDiffuseTexture uint32
	_pad0                      [2]uint32

	_pad1 [44]float32
}

// LightConstants is one light's packed form inside
// DeferredLightingConstants. 64 bytes.
type LightConstants struct {
	// Direction xyz is the normalized direction, w the angular size.
	Direction [4]float32
	// ColorIntensity rgb is the light color, w the irradiance or
	// intensity.
	ColorIntensity [4]float32
	// PositionRadius xyz is the position, w the radius (point lights).
	PositionRadius [4]float32
	LightType      uint32
	_pad           [3]uint32
}

// DeferredLightingConstants feeds the full-screen lighting pass. Five
// 256-byte slices.
type DeferredLightingConstants struct {
	MatClipToWorld math.Mat4

	AmbientColorTop    [4]float32
	AmbientColorBottom [4]float32

	ViewportSize    [2]float32
	ViewportSizeInv [2]float32

	NumLights uint32
	_pad0     [3]uint32

	Lights [MaxDeferredLights]LightConstants

	_pad1 [32]float32
}

// AsBytes reinterprets a constant block as its byte image for upload.
func AsBytes[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// FromBytes reinterprets an uploaded byte image as a constant block.
// The slice must hold at least the block's size.
func FromBytes[T any](data []byte) *T {
	return (*T)(unsafe.Pointer(unsafe.SliceData(data)))
}
