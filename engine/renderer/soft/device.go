package soft

import (
	"fmt"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// Device is the validating software implementation of rhi.Device.
// Buffers are byte slices, textures are float planes, and draws are
// rasterized on the CPU. Validation is always on: state violations and
// bracket misuse surface as errors instead of undefined behavior.
type Device struct{}

func New() *Device {
	return &Device{}
}

func (d *Device) CreateBuffer(desc rhi.BufferDesc) (rhi.Buffer, error) {
	if desc.ByteSize == 0 {
		return nil, fmt.Errorf("buffer '%s': zero byte size", desc.DebugName)
	}
	b := &buffer{
		desc: desc,
		data: make([]byte, desc.ByteSize),
	}
	initRefCounted(&b.refCounted, desc.DebugName, func() { b.data = nil })
	b.state = stateTracking{
		current: desc.InitialState,
		tracked: desc.KeepInitialState,
	}
	return b, nil
}

func (d *Device) CreateTexture(desc rhi.TextureDesc) (rhi.Texture, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("texture '%s': zero extent", desc.DebugName)
	}
	if desc.Format == rhi.FormatUnknown {
		return nil, fmt.Errorf("texture '%s': unknown format", desc.DebugName)
	}
	if desc.SampleCount == 0 {
		desc.SampleCount = 1
	}
	t := &texture{
		desc:   desc,
		pixels: make([]float32, int(desc.Width)*int(desc.Height)*4),
	}
	initRefCounted(&t.refCounted, desc.DebugName, func() { t.pixels = nil })
	t.state = stateTracking{
		current: desc.InitialState,
		tracked: desc.KeepInitialState,
	}
	return t, nil
}

func (d *Device) CreateFramebuffer(desc rhi.FramebufferDesc) (rhi.Framebuffer, error) {
	info := rhi.FramebufferInfo{}
	for _, att := range desc.ColorAttachments {
		t, ok := att.(*texture)
		if !ok {
			return nil, fmt.Errorf("framebuffer color attachment is not a soft texture")
		}
		if !t.desc.IsRenderTarget {
			return nil, fmt.Errorf("texture '%s' is not a render target", t.name)
		}
		if info.Width == 0 {
			info.Width = t.desc.Width
			info.Height = t.desc.Height
		} else if info.Width != t.desc.Width || info.Height != t.desc.Height {
			return nil, fmt.Errorf("framebuffer attachments disagree on size")
		}
		info.ColorFormats = append(info.ColorFormats, t.desc.Format)
	}
	if desc.DepthAttachment != nil {
		t, ok := desc.DepthAttachment.(*texture)
		if !ok {
			return nil, fmt.Errorf("framebuffer depth attachment is not a soft texture")
		}
		if !t.desc.Format.IsDepth() {
			return nil, fmt.Errorf("texture '%s' has non-depth format for depth attachment", t.name)
		}
		if info.Width == 0 {
			info.Width = t.desc.Width
			info.Height = t.desc.Height
		} else if info.Width != t.desc.Width || info.Height != t.desc.Height {
			return nil, fmt.Errorf("framebuffer attachments disagree on size")
		}
		info.DepthFormat = t.desc.Format
	}
	if info.Width == 0 {
		return nil, fmt.Errorf("framebuffer has no attachments")
	}
	return &framebuffer{desc: desc, info: info}, nil
}

func (d *Device) CreateBindingLayout(desc rhi.BindingLayoutDesc) (rhi.BindingLayout, error) {
	seen := map[[2]uint32]bool{}
	for _, item := range desc.Items {
		key := [2]uint32{uint32(item.Type), item.Slot}
		if seen[key] {
			return nil, fmt.Errorf("binding layout declares slot %d twice for type %d: %w",
				item.Slot, item.Type, core.ErrInitializationFailed)
		}
		seen[key] = true
	}
	return &bindingLayout{desc: desc}, nil
}

func (d *Device) CreateBindingSet(desc rhi.BindingSetDesc, layout rhi.BindingLayout) (rhi.BindingSet, error) {
	if layout == nil {
		return nil, fmt.Errorf("binding set requires a layout")
	}
	declared := map[[2]uint32]bool{}
	for _, item := range layout.Desc().Items {
		declared[[2]uint32{uint32(item.Type), item.Slot}] = true
	}
	for _, item := range desc.Items {
		if !declared[[2]uint32{uint32(item.Type), item.Slot}] {
			return nil, fmt.Errorf("binding set binds undeclared slot %d (type %d)", item.Slot, item.Type)
		}
		if item.Resource == nil {
			return nil, fmt.Errorf("binding set slot %d has no resource", item.Slot)
		}
	}
	return &bindingSet{desc: desc}, nil
}

func (d *Device) CreateGraphicsPipeline(desc rhi.GraphicsPipelineDesc, fb rhi.Framebuffer) (rhi.GraphicsPipeline, error) {
	vs, ok := desc.VertexShader.(*shader)
	if !ok || vs.vs == nil {
		return nil, fmt.Errorf("graphics pipeline: vertex shader is not executable: %w", core.ErrInitializationFailed)
	}
	ps, ok := desc.PixelShader.(*shader)
	if !ok || ps.ps == nil {
		return nil, fmt.Errorf("graphics pipeline: pixel shader is not executable: %w", core.ErrInitializationFailed)
	}
	if fb == nil {
		return nil, fmt.Errorf("graphics pipeline requires a framebuffer")
	}
	for _, attr := range desc.InputLayout {
		if attributeFloatCount(attr.Name) == 0 {
			return nil, fmt.Errorf("graphics pipeline: unknown vertex attribute '%s': %w",
				attr.Name, core.ErrInitializationFailed)
		}
	}
	return &graphicsPipeline{
		desc:  desc,
		fbKey: fb.Info().Key(),
		vs:    vs.vs,
		ps:    ps.ps,
	}, nil
}

func (d *Device) CreateComputePipeline(desc rhi.ComputePipelineDesc) (rhi.ComputePipeline, error) {
	cs, ok := desc.ComputeShader.(*shader)
	if !ok || cs.cs == nil {
		return nil, fmt.Errorf("compute pipeline: shader is not executable: %w", core.ErrInitializationFailed)
	}
	if desc.GroupSizeX == 0 {
		desc.GroupSizeX = 16
	}
	if desc.GroupSizeY == 0 {
		desc.GroupSizeY = 16
	}
	return &computePipeline{desc: desc, cs: cs.cs}, nil
}

func (d *Device) CreateCommandList() rhi.CommandList {
	return &commandList{device: d}
}

// ExecuteCommandList submits one closed command list and runs it to
// completion. There is no overlap with recording; this is the one
// blocking boundary per frame.
func (d *Device) ExecuteCommandList(cl rhi.CommandList) error {
	c, ok := cl.(*commandList)
	if !ok {
		return fmt.Errorf("command list was not created by this device")
	}
	if c.State() != rhi.CommandListStateRecordingEnded {
		return fmt.Errorf("execute requires a closed command list, state is %d: %w",
			c.State(), core.ErrInvalidCommandState)
	}
	c.state = rhi.CommandListStateSubmitted
	for _, cmd := range c.commands {
		if err := cmd(); err != nil {
			c.state = rhi.CommandListStateReady
			return fmt.Errorf("command execution failed: %w", err)
		}
	}
	c.commands = nil
	c.state = rhi.CommandListStateReady
	return nil
}

func (d *Device) ReadTexture(t rhi.Texture) ([]float32, error) {
	st, ok := t.(*texture)
	if !ok {
		return nil, fmt.Errorf("texture was not created by this device")
	}
	out := make([]float32, len(st.pixels))
	copy(out, st.pixels)
	return out, nil
}

// attributeFloatCount maps the canonical attribute semantics to the
// number of floats the input assembler reads per element. Zero means
// the semantic is unknown.
func attributeFloatCount(name string) int {
	switch name {
	case "position", "normal", "tangent":
		return 3
	case "texcoord1":
		return 2
	case "transform", "prev_transform":
		return 16
	}
	return 0
}
