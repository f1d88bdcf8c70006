package rhi

// VertexAttributeDesc maps one shader input to a byte range pattern
// inside a bound vertex buffer slot.
type VertexAttributeDesc struct {
	// Name is the attribute semantic ("position", "texcoord1", ...).
	Name          string
	Format        Format
	BufferSlot    uint32
	Offset        uint32
	ElementStride uint32
	// IsInstanced steps the attribute once per instance instead of once
	// per vertex.
	IsInstanced bool
}

type BindingType int

const (
	BindingTypeConstantBuffer BindingType = iota
	BindingTypeTextureSRV
	BindingTypeTextureUAV
)

// BindingLayoutItem declares one shader-visible slot.
type BindingLayoutItem struct {
	Slot uint32
	Type BindingType
}

type BindingLayoutDesc struct {
	Items []BindingLayoutItem
}

// BindingLayout is a validated slot declaration set.
type BindingLayout interface {
	Desc() BindingLayoutDesc
}

// BindingSetItem associates one declared slot with a concrete resource.
type BindingSetItem struct {
	Slot     uint32
	Type     BindingType
	Resource Resource
}

type BindingSetDesc struct {
	Items []BindingSetItem
}

// BindingSet is a validated slot-to-resource association, immutable once
// created.
type BindingSet interface {
	Desc() BindingSetDesc
}

type GraphicsPipelineDesc struct {
	VertexShader  Shader
	PixelShader   Shader
	InputLayout   []VertexAttributeDesc
	BindingLayout BindingLayout
	CullMode      CullMode
	DepthTest     bool
	DepthWrite    bool
}

// GraphicsPipeline is an immutable compiled pipeline-state object bound
// to the framebuffer format signature it was created against.
type GraphicsPipeline interface {
	Desc() GraphicsPipelineDesc
	FramebufferKey() string
}

type ComputePipelineDesc struct {
	ComputeShader Shader
	BindingLayout BindingLayout
	// GroupSizeX/Y are the thread-group dimensions the shader assumes.
	GroupSizeX uint32
	GroupSizeY uint32
}

type ComputePipeline interface {
	Desc() ComputePipelineDesc
}

type VertexBufferBinding struct {
	Buffer Buffer
	Slot   uint32
	Offset uint64
}

type IndexBufferBinding struct {
	Buffer Buffer
	Format Format
	Offset uint64
}

// GraphicsState is the complete bound state for one or more draws.
type GraphicsState struct {
	Pipeline      GraphicsPipeline
	Framebuffer   Framebuffer
	Viewport      Viewport
	BindingSet    BindingSet
	VertexBuffers []VertexBufferBinding
	IndexBuffer   IndexBufferBinding
}

type ComputeState struct {
	Pipeline   ComputePipeline
	BindingSet BindingSet
}

type DrawArguments struct {
	VertexCount   uint32
	InstanceCount uint32
	StartIndex    uint32
	StartVertex   uint32
	StartInstance uint32
}
