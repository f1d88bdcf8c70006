package scene

import (
	"fmt"

	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/shaders"
)

// Material represents the surface properties of a sub-mesh. Immutable
// once its constant buffer has been written.
type Material struct {
	Name string

	UseSpecularGlossModel      bool
	EnableBaseOrDiffuseTexture bool

	BaseOrDiffuseColor math.Vec3
	SpecularColor      math.Vec3
	EmissiveColor      math.Vec3
	Opacity            float32
	Roughness          float32
	Metalness          float32

	BaseOrDiffuseTexture rhi.Texture

	// Constants is the GPU constant buffer holding the packed material
	// fields, created by CreateMaterialConstantBuffer.
	Constants rhi.Buffer
}

func NewMaterial(name string) *Material {
	return &Material{
		Name:               name,
		BaseOrDiffuseColor: math.NewVec3One(),
		SpecularColor:      math.NewVec3One(),
		Opacity:            1.0,
		Roughness:          1.0,
	}
}

// FillConstantBuffer packs the material fields into the fixed layout
// the fill and lighting passes expect.
func (m *Material) FillConstantBuffer(c *shaders.MaterialConstants) {
	c.BaseOrDiffuseColor = [4]float32{m.BaseOrDiffuseColor.X, m.BaseOrDiffuseColor.Y, m.BaseOrDiffuseColor.Z, 1}
	c.SpecularColor = [4]float32{m.SpecularColor.X, m.SpecularColor.Y, m.SpecularColor.Z, 1}
	c.EmissiveColor = [4]float32{m.EmissiveColor.X, m.EmissiveColor.Y, m.EmissiveColor.Z, 1}
	c.Opacity = m.Opacity
	c.Roughness = m.Roughness
	c.Metalness = m.Metalness
	c.NormalTextureScale = 1.0
	if m.UseSpecularGlossModel {
		c.ShadingModel = 1
	} else {
		c.ShadingModel = 0
	}
	if m.EnableBaseOrDiffuseTexture {
		c.EnableBaseOrDiffuseTexture = 1
	} else {
		c.EnableBaseOrDiffuseTexture = 0
	}
}

// CreateMaterialConstantBuffer packs the material into a constant
// buffer and uploads it once through the command list.
func CreateMaterialConstantBuffer(device rhi.Device, cl rhi.CommandList, material *Material) (rhi.Buffer, error) {
	constants := shaders.MaterialConstants{}
	material.FillConstantBuffer(&constants)

	desc := rhi.BufferDesc{
		ByteSize:         uint64(len(shaders.AsBytes(&constants))),
		DebugName:        material.Name,
		IsConstantBuffer: true,
		InitialState:     rhi.ResourceStateConstantBuffer,
		KeepInitialState: true,
	}
	buf, err := device.CreateBuffer(desc)
	if err != nil {
		return nil, fmt.Errorf("material '%s' constant buffer: %w", material.Name, err)
	}
	if err := cl.WriteBuffer(buf, shaders.AsBytes(&constants), 0); err != nil {
		return nil, err
	}
	return buf, nil
}
