package soft

import (
	"fmt"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/shaders"
)

// ShaderFactory resolves sourceIDs against the built-in shader library.
type ShaderFactory struct{}

func NewShaderFactory() *ShaderFactory {
	return &ShaderFactory{}
}

func (f *ShaderFactory) CompileShader(sourceID, entryPoint string, stage rhi.ShaderStage) (rhi.Shader, error) {
	s := &shader{sourceID: sourceID, entry: entryPoint, stage: stage}
	switch {
	case sourceID == shaders.SourceGBufferFill && stage == rhi.ShaderStageVertex:
		s.vs = gbufferVS
	case sourceID == shaders.SourceGBufferFill && stage == rhi.ShaderStagePixel:
		s.ps = gbufferPS
	case sourceID == shaders.SourceDeferredLighting && stage == rhi.ShaderStageCompute:
		s.cs = deferredLightingCS
	case sourceID == shaders.SourceBlit && stage == rhi.ShaderStageCompute:
		s.cs = blitCS
	default:
		err := fmt.Errorf("no %s shader '%s' in library: %w", stage, sourceID, core.ErrInitializationFailed)
		core.LogError(err.Error())
		return nil, err
	}
	return s, nil
}

func gbufferVS(in VSInput, rs *ShaderResources) VSOutput {
	view := shaders.FromBytes[shaders.PlanarViewConstants](rs.ConstantBuffer(shaders.SlotViewConstants))

	worldPos := in.Position.Transform(in.Transform)
	prevWorldPos := in.Position.Transform(in.PrevTransform)

	out := VSOutput{}
	out.Position = math.NewVec4FromVec3(worldPos, 1).Transform(view.MatWorldToClip)
	out.PrevPosition = math.NewVec4FromVec3(prevWorldPos, 1).Transform(view.MatWorldToClip)
	out.WorldPos = worldPos
	out.Normal = in.Normal.TransformDirection(in.Transform).Normalized()
	out.TexCoord = in.TexCoord
	return out
}

func gbufferPS(in PSInput, rs *ShaderResources) []math.Vec4 {
	material := shaders.FromBytes[shaders.MaterialConstants](rs.ConstantBuffer(shaders.SlotMaterialConstants))
	view := shaders.FromBytes[shaders.PlanarViewConstants](rs.ConstantBuffer(shaders.SlotViewConstants))

	albedo := math.Vec4{
		X: material.BaseOrDiffuseColor[0],
		Y: material.BaseOrDiffuseColor[1],
		Z: material.BaseOrDiffuseColor[2],
		W: material.Opacity,
	}
	if material.EnableBaseOrDiffuseTexture != 0 {
		if tex := rs.TextureSRV(shaders.SlotDiffuseTexture); tex != nil {
			sampled := tex.Sample(in.TexCoord.X, in.TexCoord.Y)
			albedo.X *= sampled.X
			albedo.Y *= sampled.Y
			albedo.Z *= sampled.Z
		}
	}

	n := in.Normal.Normalized()

	// Screen-space motion in pixels, previous minus current position.
	curNDC := in.Position
	prevNDC := in.PrevPosition
	motion := math.Vec2{}
	if curNDC.W != 0 && prevNDC.W != 0 {
		motion.X = (prevNDC.X/prevNDC.W - curNDC.X/curNDC.W) * 0.5 * view.ViewportSize[0]
		motion.Y = (prevNDC.Y/prevNDC.W - curNDC.Y/curNDC.W) * -0.5 * view.ViewportSize[1]
	}

	return []math.Vec4{
		albedo,
		{X: n.X, Y: n.Y, Z: n.Z, W: 0},
		{X: motion.X, Y: motion.Y},
	}
}

func deferredLightingCS(x, y uint32, rs *ShaderResources) {
	c := shaders.FromBytes[shaders.DeferredLightingConstants](rs.ConstantBuffer(shaders.SlotLightingConstants))
	if float32(x) >= c.ViewportSize[0] || float32(y) >= c.ViewportSize[1] {
		return
	}

	depthTex := rs.TextureSRV(shaders.SlotGBufferDepth)
	albedoTex := rs.TextureSRV(shaders.SlotGBufferAlbedo)
	normalTex := rs.TextureSRV(shaders.SlotGBufferNormals)
	output := rs.TextureUAV(shaders.SlotOutputUAV)

	ambientTop := math.Vec3{X: c.AmbientColorTop[0], Y: c.AmbientColorTop[1], Z: c.AmbientColorTop[2]}
	ambientBottom := math.Vec3{X: c.AmbientColorBottom[0], Y: c.AmbientColorBottom[1], Z: c.AmbientColorBottom[2]}

	depth := depthTex.Load(int(x), int(y)).X
	if depth >= 1.0 {
		// No geometry: the ambient-only background value.
		sky := ambientTop.Add(ambientBottom).MulScalar(0.5)
		output.Store(int(x), int(y), math.Vec4{X: sky.X, Y: sky.Y, Z: sky.Z, W: 1})
		return
	}

	albedo := albedoTex.Load(int(x), int(y)).ToVec3()
	normal := normalTex.Load(int(x), int(y)).ToVec3().Normalized()

	// Reconstruct the world position from depth and the inverse
	// view-projection.
	ndcX := (float32(x)+0.5)/c.ViewportSize[0]*2.0 - 1.0
	ndcY := 1.0 - (float32(y)+0.5)/c.ViewportSize[1]*2.0
	ndcZ := depth*2.0 - 1.0
	clip := math.Vec4{X: ndcX, Y: ndcY, Z: ndcZ, W: 1}.Transform(c.MatClipToWorld)
	worldPos := clip.ToVec3()
	if clip.W != 0 {
		worldPos = worldPos.MulScalar(1.0 / clip.W)
	}

	accum := math.NewVec3Zero()
	for i := uint32(0); i < c.NumLights && i < shaders.MaxDeferredLights; i++ {
		light := &c.Lights[i]
		color := math.Vec3{X: light.ColorIntensity[0], Y: light.ColorIntensity[1], Z: light.ColorIntensity[2]}
		intensity := light.ColorIntensity[3]

		switch light.LightType {
		case shaders.LightTypeDirectional:
			dir := math.Vec3{X: light.Direction[0], Y: light.Direction[1], Z: light.Direction[2]}
			ndotl := math.Max(float32(0), normal.Dot(dir.Negate()))
			accum = accum.Add(color.MulScalar(intensity * ndotl))
		case shaders.LightTypePoint:
			pos := math.Vec3{X: light.PositionRadius[0], Y: light.PositionRadius[1], Z: light.PositionRadius[2]}
			radius := light.PositionRadius[3]
			toLight := pos.Sub(worldPos)
			dist := toLight.Length()
			if radius <= 0 || dist >= radius {
				continue
			}
			falloff := 1.0 - dist/radius
			ndotl := math.Max(float32(0), normal.Dot(toLight.Normalized()))
			accum = accum.Add(color.MulScalar(intensity * falloff * falloff * ndotl))
		}
	}

	// Ambient interpolates between bottom and top by the surface
	// normal's vertical component.
	ambient := ambientBottom.Add(ambientTop.Sub(ambientBottom).MulScalar(normal.Y*0.5 + 0.5))

	shaded := albedo.Mul(accum.Add(ambient))
	output.Store(int(x), int(y), math.Vec4{X: shaded.X, Y: shaded.Y, Z: shaded.Z, W: 1})
}

func blitCS(x, y uint32, rs *ShaderResources) {
	src := rs.TextureSRV(shaders.SlotBlitSource)
	dst := rs.TextureUAV(shaders.SlotOutputUAV)
	if x >= dst.Width() || y >= dst.Height() {
		return
	}
	sx := int(x)
	sy := int(y)
	if dst.Width() != src.Width() || dst.Height() != src.Height() {
		sx = int(float32(x) / float32(dst.Width()) * float32(src.Width()))
		sy = int(float32(y) / float32(dst.Height()) * float32(src.Height()))
	}
	dst.Store(int(x), int(y), src.Load(sx, sy))
}
