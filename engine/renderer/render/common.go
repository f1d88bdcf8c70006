package render

import (
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/shaders"
)

// CommonPasses bundles the utility passes every frame path shares.
// Today that is the composite blit.
type CommonPasses struct {
	device rhi.Device

	blitPipeline  rhi.ComputePipeline
	bindingLayout rhi.BindingLayout
	bindingCache  *BindingCache
}

func NewCommonPasses(device rhi.Device, factory rhi.ShaderFactory) (*CommonPasses, error) {
	p := &CommonPasses{
		device:       device,
		bindingCache: NewBindingCache(device),
	}

	cs, err := factory.CompileShader(shaders.SourceBlit, "main_cs", rhi.ShaderStageCompute)
	if err != nil {
		return nil, err
	}
	p.bindingLayout, err = device.CreateBindingLayout(rhi.BindingLayoutDesc{
		Items: []rhi.BindingLayoutItem{
			{Slot: shaders.SlotBlitSource, Type: rhi.BindingTypeTextureSRV},
			{Slot: shaders.SlotOutputUAV, Type: rhi.BindingTypeTextureUAV},
		},
	})
	if err != nil {
		return nil, err
	}
	p.blitPipeline, err = device.CreateComputePipeline(rhi.ComputePipelineDesc{
		ComputeShader: cs,
		BindingLayout: p.bindingLayout,
		GroupSizeX:    16,
		GroupSizeY:    16,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// BlitTexture copies source into dest, scaling when the sizes differ.
func (p *CommonPasses) BlitTexture(cl rhi.CommandList, source, dest rhi.Texture) error {
	bindingSet, err := p.bindingCache.GetOrCreateBindingSet(rhi.BindingSetDesc{
		Items: []rhi.BindingSetItem{
			{Slot: shaders.SlotBlitSource, Type: rhi.BindingTypeTextureSRV, Resource: source},
			{Slot: shaders.SlotOutputUAV, Type: rhi.BindingTypeTextureUAV, Resource: dest},
		},
	}, p.bindingLayout)
	if err != nil {
		return err
	}
	if err := cl.SetComputeState(rhi.ComputeState{
		Pipeline:   p.blitPipeline,
		BindingSet: bindingSet,
	}); err != nil {
		return err
	}
	desc := dest.Desc()
	return cl.Dispatch((desc.Width+15)/16, (desc.Height+15)/16, 1)
}

// ResetBindingCache drops the cached binding sets, needed whenever a
// blit source or destination is recreated.
func (p *CommonPasses) ResetBindingCache() {
	p.bindingCache.Clear()
}
