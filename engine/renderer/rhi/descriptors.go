package rhi

// Format describes the element layout of a texture or vertex attribute.
type Format int

const (
	FormatUnknown Format = iota
	FormatR32Uint
	FormatR32Float
	FormatRG32Float
	FormatRGB32Float
	FormatRGBA32Float
	FormatRGBA8Unorm
	FormatRG16Float
	FormatRGBA16Float
	FormatD32Float
)

// ComponentCount returns the number of scalar components per element.
func (f Format) ComponentCount() int {
	switch f {
	case FormatR32Uint, FormatR32Float, FormatD32Float:
		return 1
	case FormatRG32Float, FormatRG16Float:
		return 2
	case FormatRGB32Float:
		return 3
	case FormatRGBA32Float, FormatRGBA8Unorm, FormatRGBA16Float:
		return 4
	}
	return 0
}

// IsDepth reports whether the format can back a depth attachment.
func (f Format) IsDepth() bool {
	return f == FormatD32Float
}

type BufferDesc struct {
	ByteSize         uint64
	DebugName        string
	IsVertexBuffer   bool
	IsIndexBuffer    bool
	IsConstantBuffer bool
	// InitialState is the state the buffer is created in.
	InitialState ResourceState
	// KeepInitialState makes the buffer permanently tracked at its
	// initial state, with no BeginTracking call required.
	KeepInitialState bool
}

type TextureDesc struct {
	Width       uint32
	Height      uint32
	Format      Format
	DebugName   string
	SampleCount uint32
	// IsRenderTarget allows the texture to be bound as a color or depth
	// attachment.
	IsRenderTarget bool
	// IsUAV allows unordered (read/write) access from compute shaders.
	IsUAV            bool
	InitialState     ResourceState
	KeepInitialState bool
}

// Viewport is the output rectangle in pixels.
type Viewport struct {
	X      float32
	Y      float32
	Width  float32
	Height float32
}

func NewViewport(width, height float32) Viewport {
	return Viewport{Width: width, Height: height}
}

type CullMode int

const (
	CullModeBack CullMode = iota
	CullModeFront
	CullModeNone
)
