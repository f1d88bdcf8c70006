package rhi

// Resource is the common surface of every reference-counted device
// object. Handles are shared by all components that reference them and
// destroyed when the last holder releases them.
type Resource interface {
	// Retain increments the reference count.
	Retain()
	// Release decrements the reference count, destroying the underlying
	// object when it reaches zero.
	Release()
	// DebugID uniquely identifies the resource in logs and cache keys.
	DebugID() string
}

// Buffer is an opaque handle to a linear GPU allocation.
type Buffer interface {
	Resource
	Desc() BufferDesc
}

// Texture is an opaque handle to a 2D GPU image.
type Texture interface {
	Resource
	Desc() TextureDesc
}

// FramebufferDesc names the attachments rendered into by one pass.
// All attachments must share one size.
type FramebufferDesc struct {
	ColorAttachments []Texture
	DepthAttachment  Texture
}

// FramebufferInfo is the size/format signature of a framebuffer; passes
// key cached pipelines on it.
type FramebufferInfo struct {
	Width        uint32
	Height       uint32
	ColorFormats []Format
	DepthFormat  Format
}

// Framebuffer is a validated attachment set.
type Framebuffer interface {
	Desc() FramebufferDesc
	Info() FramebufferInfo
}

// Key returns a comparable signature of the formats only, size excluded.
func (i FramebufferInfo) Key() string {
	key := ""
	for _, f := range i.ColorFormats {
		key += string(rune('a' + int(f)))
	}
	return key + ":" + string(rune('a'+int(i.DepthFormat)))
}
