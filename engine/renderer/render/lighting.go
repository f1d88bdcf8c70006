package render

import (
	"unsafe"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/scene"
	"github.com/hollowtide/lumen/engine/renderer/shaders"
)

// DeferredLightingPass shades the whole screen in one compute dispatch,
// reading the g-buffer planes and writing lit color to a UAV.
type DeferredLightingPass struct {
	device rhi.Device

	pipeline      rhi.ComputePipeline
	bindingLayout rhi.BindingLayout
	bindingCache  *BindingCache
	constants     rhi.Buffer
}

// DeferredLightingInputs names everything one lighting invocation
// consumes. The ambient gradient is a vertical hemisphere blend keyed
// on the surface normal.
type DeferredLightingInputs struct {
	Depth          rhi.Texture
	GBufferDiffuse rhi.Texture
	GBufferNormals rhi.Texture
	Output         rhi.Texture

	View   *PlanarView
	Lights []scene.Light

	AmbientColorTop    math.Vec3
	AmbientColorBottom math.Vec3
}

func NewDeferredLightingPass(device rhi.Device, factory rhi.ShaderFactory) (*DeferredLightingPass, error) {
	p := &DeferredLightingPass{
		device:       device,
		bindingCache: NewBindingCache(device),
	}

	cs, err := factory.CompileShader(shaders.SourceDeferredLighting, "main_cs", rhi.ShaderStageCompute)
	if err != nil {
		return nil, err
	}

	p.bindingLayout, err = device.CreateBindingLayout(rhi.BindingLayoutDesc{
		Items: []rhi.BindingLayoutItem{
			{Slot: shaders.SlotLightingConstants, Type: rhi.BindingTypeConstantBuffer},
			{Slot: shaders.SlotGBufferDepth, Type: rhi.BindingTypeTextureSRV},
			{Slot: shaders.SlotGBufferAlbedo, Type: rhi.BindingTypeTextureSRV},
			{Slot: shaders.SlotGBufferNormals, Type: rhi.BindingTypeTextureSRV},
			{Slot: shaders.SlotOutputUAV, Type: rhi.BindingTypeTextureUAV},
		},
	})
	if err != nil {
		return nil, err
	}

	p.pipeline, err = device.CreateComputePipeline(rhi.ComputePipelineDesc{
		ComputeShader: cs,
		BindingLayout: p.bindingLayout,
		GroupSizeX:    16,
		GroupSizeY:    16,
	})
	if err != nil {
		return nil, err
	}

	var lc shaders.DeferredLightingConstants
	p.constants, err = device.CreateBuffer(rhi.BufferDesc{
		ByteSize:         uint64(unsafe.Sizeof(lc)),
		DebugName:        "DeferredLightingPass/Constants",
		IsConstantBuffer: true,
		InitialState:     rhi.ResourceStateConstantBuffer,
		KeepInitialState: true,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Render records the full-screen lighting dispatch. Lights beyond the
// constant-block capacity are dropped with a warning.
func (p *DeferredLightingPass) Render(cl rhi.CommandList, in DeferredLightingInputs) error {
	desc := in.Output.Desc()
	width, height := desc.Width, desc.Height

	var lc shaders.DeferredLightingConstants
	lc.MatClipToWorld = in.View.ClipToWorld()
	lc.AmbientColorTop = [4]float32{in.AmbientColorTop.X, in.AmbientColorTop.Y, in.AmbientColorTop.Z, 0}
	lc.AmbientColorBottom = [4]float32{in.AmbientColorBottom.X, in.AmbientColorBottom.Y, in.AmbientColorBottom.Z, 0}
	lc.ViewportSize = [2]float32{float32(width), float32(height)}
	lc.ViewportSizeInv = [2]float32{1 / float32(width), 1 / float32(height)}

	lights := in.Lights
	if len(lights) > shaders.MaxDeferredLights {
		core.LogWarn("deferred lighting: %d lights exceed the capacity of %d, extra lights dropped",
			len(lights), shaders.MaxDeferredLights)
		lights = lights[:shaders.MaxDeferredLights]
	}
	for i, light := range lights {
		light.FillLightConstants(&lc.Lights[i])
	}
	lc.NumLights = uint32(len(lights))

	if err := cl.WriteBuffer(p.constants, shaders.AsBytes(&lc), 0); err != nil {
		return err
	}

	bindingSet, err := p.bindingCache.GetOrCreateBindingSet(rhi.BindingSetDesc{
		Items: []rhi.BindingSetItem{
			{Slot: shaders.SlotLightingConstants, Type: rhi.BindingTypeConstantBuffer, Resource: p.constants},
			{Slot: shaders.SlotGBufferDepth, Type: rhi.BindingTypeTextureSRV, Resource: in.Depth},
			{Slot: shaders.SlotGBufferAlbedo, Type: rhi.BindingTypeTextureSRV, Resource: in.GBufferDiffuse},
			{Slot: shaders.SlotGBufferNormals, Type: rhi.BindingTypeTextureSRV, Resource: in.GBufferNormals},
			{Slot: shaders.SlotOutputUAV, Type: rhi.BindingTypeTextureUAV, Resource: in.Output},
		},
	}, p.bindingLayout)
	if err != nil {
		return err
	}

	if err := cl.SetComputeState(rhi.ComputeState{
		Pipeline:   p.pipeline,
		BindingSet: bindingSet,
	}); err != nil {
		return err
	}
	groupsX := (width + 15) / 16
	groupsY := (height + 15) / 16
	return cl.Dispatch(groupsX, groupsY, 1)
}

// ResetBindingCache drops the cached binding sets. Called when the
// g-buffer textures are recreated.
func (p *DeferredLightingPass) ResetBindingCache() {
	p.bindingCache.Clear()
}
