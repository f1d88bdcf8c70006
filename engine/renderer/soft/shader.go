package soft

import (
	"fmt"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// VSInput is the assembled per-vertex input. The input assembler fills
// the fields named by the pipeline's vertex attributes; everything else
// stays zero.
type VSInput struct {
	VertexIndex   uint32
	InstanceIndex uint32

	Position math.Vec3
	TexCoord math.Vec2
	Normal   math.Vec3
	Tangent  math.Vec3

	// Per-instance transforms, stepped once per instance.
	Transform     math.Mat4
	PrevTransform math.Mat4
}

// VSOutput is one vertex's rasterizer payload. Position is in clip
// space; the remaining fields are interpolated perspective-correct.
type VSOutput struct {
	Position     math.Vec4
	PrevPosition math.Vec4
	WorldPos     math.Vec3
	Normal       math.Vec3
	TexCoord     math.Vec2
}

// PSInput is the interpolated VSOutput plus the pixel coordinate.
type PSInput struct {
	VSOutput
	PixelX int
	PixelY int
}

type vertexFn func(in VSInput, rs *ShaderResources) VSOutput

// pixelFn returns one value per bound color attachment, in attachment
// order. Returning fewer values leaves the remaining attachments
// untouched.
type pixelFn func(in PSInput, rs *ShaderResources) []math.Vec4

type computeFn func(globalX, globalY uint32, rs *ShaderResources)

type shader struct {
	sourceID string
	entry    string
	stage    rhi.ShaderStage
	vs       vertexFn
	ps       pixelFn
	cs       computeFn
}

func (s *shader) SourceID() string {
	return s.sourceID
}

func (s *shader) EntryPoint() string {
	return s.entry
}

func (s *shader) Stage() rhi.ShaderStage {
	return s.stage
}

// TextureView wraps a bound texture for shader access.
type TextureView struct {
	t        *texture
	writable bool
}

func (v *TextureView) Width() uint32 {
	return v.t.desc.Width
}

func (v *TextureView) Height() uint32 {
	return v.t.desc.Height
}

// Load fetches one texel without filtering.
func (v *TextureView) Load(x, y int) math.Vec4 {
	p := v.t.load(x, y)
	return math.Vec4{X: p[0], Y: p[1], Z: p[2], W: p[3]}
}

// Store writes one texel. Only valid on UAV bindings.
func (v *TextureView) Store(x, y int, value math.Vec4) {
	if !v.writable {
		core.LogError("store to read-only texture view '%s'", v.t.name)
		return
	}
	v.t.store(x, y, [4]float32{value.X, value.Y, value.Z, value.W})
}

// Sample fetches with bilinear filtering and wrap addressing, uv in
// [0,1) texture space.
func (v *TextureView) Sample(u, vv float32) math.Vec4 {
	w := float32(v.t.desc.Width)
	h := float32(v.t.desc.Height)
	fx := u*w - 0.5
	fy := vv*h - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	wrap := func(i, n int) int {
		i %= n
		if i < 0 {
			i += n
		}
		return i
	}
	iw := int(v.t.desc.Width)
	ih := int(v.t.desc.Height)

	c00 := v.Load(wrap(x0, iw), wrap(y0, ih))
	c10 := v.Load(wrap(x0+1, iw), wrap(y0, ih))
	c01 := v.Load(wrap(x0, iw), wrap(y0+1, ih))
	c11 := v.Load(wrap(x0+1, iw), wrap(y0+1, ih))

	lerp4 := func(a, b math.Vec4, t float32) math.Vec4 {
		return a.Add(b.Add(a.MulScalar(-1)).MulScalar(t))
	}
	return lerp4(lerp4(c00, c10, tx), lerp4(c01, c11, tx), ty)
}

// ShaderResources resolves a draw or dispatch's binding set for shader
// code.
type ShaderResources struct {
	constants map[uint32][]byte
	srvs      map[uint32]*TextureView
	uavs      map[uint32]*TextureView
}

func newShaderResources(set rhi.BindingSet) (*ShaderResources, error) {
	rs := &ShaderResources{
		constants: map[uint32][]byte{},
		srvs:      map[uint32]*TextureView{},
		uavs:      map[uint32]*TextureView{},
	}
	if set == nil {
		return rs, nil
	}
	for _, item := range set.Desc().Items {
		switch item.Type {
		case rhi.BindingTypeConstantBuffer:
			b, ok := item.Resource.(*buffer)
			if !ok {
				return nil, fmt.Errorf("binding slot %d: not a soft buffer", item.Slot)
			}
			rs.constants[item.Slot] = b.data
		case rhi.BindingTypeTextureSRV:
			t, ok := item.Resource.(*texture)
			if !ok {
				return nil, fmt.Errorf("binding slot %d: not a soft texture", item.Slot)
			}
			rs.srvs[item.Slot] = &TextureView{t: t}
		case rhi.BindingTypeTextureUAV:
			t, ok := item.Resource.(*texture)
			if !ok {
				return nil, fmt.Errorf("binding slot %d: not a soft texture", item.Slot)
			}
			rs.uavs[item.Slot] = &TextureView{t: t, writable: true}
		}
	}
	return rs, nil
}

// ConstantBuffer returns the raw bytes bound to a constant slot, nil
// when unbound.
func (rs *ShaderResources) ConstantBuffer(slot uint32) []byte {
	return rs.constants[slot]
}

func (rs *ShaderResources) TextureSRV(slot uint32) *TextureView {
	return rs.srvs[slot]
}

func (rs *ShaderResources) TextureUAV(slot uint32) *TextureView {
	return rs.uavs[slot]
}
