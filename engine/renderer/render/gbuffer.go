package render

import (
	"fmt"
	"unsafe"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/scene"
	"github.com/hollowtide/lumen/engine/renderer/shaders"
)

// requiredAttributes are the vertex streams the fill pipeline consumes,
// in buffer-slot order. A mesh missing any of them cannot be drawn and
// fails the frame instead of rendering garbage.
var requiredAttributes = []scene.VertexAttribute{
	scene.VertexAttributePosition,
	scene.VertexAttributeTexCoord1,
	scene.VertexAttributeNormal,
	scene.VertexAttributeTangent,
}

// GBufferFillPass rasterizes opaque geometry into the g-buffer planes.
// The pipeline is compiled lazily against the first framebuffer it
// sees and cached by format signature; a resize that keeps formats
// reuses it, a format change compiles a new one.
type GBufferFillPass struct {
	device       rhi.Device
	vertexShader rhi.Shader
	pixelShader  rhi.Shader

	bindingLayout rhi.BindingLayout
	bindingCache  *BindingCache
	viewConstants rhi.Buffer

	pipelines map[string]rhi.GraphicsPipeline
}

func NewGBufferFillPass(device rhi.Device, factory rhi.ShaderFactory) (*GBufferFillPass, error) {
	p := &GBufferFillPass{
		device:       device,
		bindingCache: NewBindingCache(device),
		pipelines:    make(map[string]rhi.GraphicsPipeline),
	}

	var err error
	if p.vertexShader, err = factory.CompileShader(shaders.SourceGBufferFill, "main_vs", rhi.ShaderStageVertex); err != nil {
		return nil, err
	}
	if p.pixelShader, err = factory.CompileShader(shaders.SourceGBufferFill, "main_ps", rhi.ShaderStagePixel); err != nil {
		return nil, err
	}

	p.bindingLayout, err = device.CreateBindingLayout(rhi.BindingLayoutDesc{
		Items: []rhi.BindingLayoutItem{
			{Slot: shaders.SlotViewConstants, Type: rhi.BindingTypeConstantBuffer},
			{Slot: shaders.SlotMaterialConstants, Type: rhi.BindingTypeConstantBuffer},
			{Slot: shaders.SlotDiffuseTexture, Type: rhi.BindingTypeTextureSRV},
		},
	})
	if err != nil {
		return nil, err
	}

	var vc shaders.PlanarViewConstants
	p.viewConstants, err = device.CreateBuffer(rhi.BufferDesc{
		ByteSize:         uint64(unsafe.Sizeof(vc)),
		DebugName:        "GBufferFillPass/ViewConstants",
		IsConstantBuffer: true,
		InitialState:     rhi.ResourceStateConstantBuffer,
		KeepInitialState: true,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func fillInputLayout() []rhi.VertexAttributeDesc {
	instanceStride := uint32(unsafe.Sizeof(scene.InstanceData{}))
	return []rhi.VertexAttributeDesc{
		{Name: string(scene.VertexAttributePosition), Format: rhi.FormatRGB32Float, BufferSlot: 0, ElementStride: 12},
		{Name: string(scene.VertexAttributeTexCoord1), Format: rhi.FormatRG32Float, BufferSlot: 1, ElementStride: 8},
		{Name: string(scene.VertexAttributeNormal), Format: rhi.FormatRGB32Float, BufferSlot: 2, ElementStride: 12},
		{Name: string(scene.VertexAttributeTangent), Format: rhi.FormatRGB32Float, BufferSlot: 3, ElementStride: 12},
		{Name: string(scene.VertexAttributeTransform), Format: rhi.FormatRGBA32Float, BufferSlot: 4,
			Offset: 0, ElementStride: instanceStride, IsInstanced: true},
		{Name: string(scene.VertexAttributePrevTransform), Format: rhi.FormatRGBA32Float, BufferSlot: 4,
			Offset: 64, ElementStride: instanceStride, IsInstanced: true},
	}
}

func (p *GBufferFillPass) getOrCreatePipeline(fb rhi.Framebuffer, cullMode rhi.CullMode) (rhi.GraphicsPipeline, error) {
	key := fmt.Sprintf("%s/%d", fb.Info().Key(), cullMode)
	if pipeline, ok := p.pipelines[key]; ok {
		return pipeline, nil
	}
	pipeline, err := p.device.CreateGraphicsPipeline(rhi.GraphicsPipelineDesc{
		VertexShader:  p.vertexShader,
		PixelShader:   p.pixelShader,
		InputLayout:   fillInputLayout(),
		BindingLayout: p.bindingLayout,
		CullMode:      cullMode,
		DepthTest:     true,
		DepthWrite:    true,
	}, fb)
	if err != nil {
		return nil, err
	}
	core.LogDebug("gbuffer fill pipeline compiled for framebuffer key %q", key)
	p.pipelines[key] = pipeline
	return pipeline, nil
}

// PrepareForView uploads the frame's view constants. Call once per
// frame, after view.UpdateCache and before RenderView.
func (p *GBufferFillPass) PrepareForView(cl rhi.CommandList, view *PlanarView) error {
	var vc shaders.PlanarViewConstants
	view.FillPlanarViewConstants(&vc)
	return cl.WriteBuffer(p.viewConstants, shaders.AsBytes(&vc), 0)
}

// RenderView draws every item the strategy yields into fb. Any
// recording error aborts the frame.
func (p *GBufferFillPass) RenderView(cl rhi.CommandList, view *PlanarView, fb rhi.Framebuffer, strategy DrawStrategy) error {
	for item := strategy.NextItem(); item != nil; item = strategy.NextItem() {
		if err := p.renderItem(cl, view, fb, item); err != nil {
			return fmt.Errorf("gbuffer fill of '%s': %w", item.Instance.Name, err)
		}
	}
	return nil
}

func (p *GBufferFillPass) renderItem(cl rhi.CommandList, view *PlanarView, fb rhi.Framebuffer, item *DrawItem) error {
	pipeline, err := p.getOrCreatePipeline(fb, item.CullMode)
	if err != nil {
		return err
	}
	buffers := item.Buffers
	if buffers.InstanceBuffer == nil {
		return fmt.Errorf("mesh '%s' has no instance buffer: %w", item.Mesh.Name, core.ErrInitializationFailed)
	}

	instance := scene.InstanceData{
		Transform:     item.Instance.Transform,
		PrevTransform: item.Instance.PrevTransform,
	}
	if err := cl.WriteBuffer(buffers.InstanceBuffer, shaders.AsBytes(&instance), 0); err != nil {
		return err
	}

	vertexBindings := make([]rhi.VertexBufferBinding, 0, len(requiredAttributes)+1)
	for slot, attr := range requiredAttributes {
		r, ok := buffers.GetVertexBufferRange(attr)
		if !ok {
			return fmt.Errorf("mesh '%s' is missing vertex attribute %q: %w",
				item.Mesh.Name, attr, core.ErrInitializationFailed)
		}
		vertexBindings = append(vertexBindings, rhi.VertexBufferBinding{
			Buffer: buffers.VertexBuffer,
			Slot:   uint32(slot),
			Offset: r.ByteOffset,
		})
	}
	vertexBindings = append(vertexBindings, rhi.VertexBufferBinding{
		Buffer: buffers.InstanceBuffer,
		Slot:   4,
	})

	material := item.Material
	if material == nil || material.Constants == nil {
		return fmt.Errorf("mesh '%s' geometry has no material constants: %w",
			item.Mesh.Name, core.ErrInitializationFailed)
	}
	bindingDesc := rhi.BindingSetDesc{
		Items: []rhi.BindingSetItem{
			{Slot: shaders.SlotViewConstants, Type: rhi.BindingTypeConstantBuffer, Resource: p.viewConstants},
			{Slot: shaders.SlotMaterialConstants, Type: rhi.BindingTypeConstantBuffer, Resource: material.Constants},
		},
	}
	if material.EnableBaseOrDiffuseTexture && material.BaseOrDiffuseTexture != nil {
		bindingDesc.Items = append(bindingDesc.Items, rhi.BindingSetItem{
			Slot: shaders.SlotDiffuseTexture, Type: rhi.BindingTypeTextureSRV, Resource: material.BaseOrDiffuseTexture,
		})
	}
	bindingSet, err := p.bindingCache.GetOrCreateBindingSet(bindingDesc, p.bindingLayout)
	if err != nil {
		return err
	}

	if err := cl.SetGraphicsState(rhi.GraphicsState{
		Pipeline:      pipeline,
		Framebuffer:   fb,
		Viewport:      view.Viewport(),
		BindingSet:    bindingSet,
		VertexBuffers: vertexBindings,
		IndexBuffer: rhi.IndexBufferBinding{
			Buffer: buffers.IndexBuffer,
			Format: rhi.FormatR32Uint,
			Offset: uint64(item.Geometry.IndexOffset) * 4,
		},
	}); err != nil {
		return err
	}

	return cl.DrawIndexed(rhi.DrawArguments{
		VertexCount:   item.Geometry.NumIndices,
		InstanceCount: 1,
		StartVertex:   item.Geometry.VertexOffset,
	})
}

// ResetCaches drops the cached pipelines and binding sets. Called when
// the render targets are recreated.
func (p *GBufferFillPass) ResetCaches() {
	p.pipelines = make(map[string]rhi.GraphicsPipeline)
	p.bindingCache.Clear()
}
