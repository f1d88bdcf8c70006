package rhi

// Device creates GPU resources and executes command lists. One frame's
// work is recorded into one command list and submitted as one unit;
// ExecuteCommandList is the only call that blocks, implicitly waiting
// for resources needed by the next frame.
type Device interface {
	CreateBuffer(desc BufferDesc) (Buffer, error)
	CreateTexture(desc TextureDesc) (Texture, error)
	CreateFramebuffer(desc FramebufferDesc) (Framebuffer, error)
	CreateBindingLayout(desc BindingLayoutDesc) (BindingLayout, error)
	CreateBindingSet(desc BindingSetDesc, layout BindingLayout) (BindingSet, error)
	CreateGraphicsPipeline(desc GraphicsPipelineDesc, fb Framebuffer) (GraphicsPipeline, error)
	CreateComputePipeline(desc ComputePipelineDesc) (ComputePipeline, error)

	CreateCommandList() CommandList
	ExecuteCommandList(cl CommandList) error

	// ReadTexture copies the texture contents back to the CPU as RGBA
	// float scanlines. Used by the composite readback and by tests; the
	// texture must be in a readable state.
	ReadTexture(t Texture) ([]float32, error)
}
