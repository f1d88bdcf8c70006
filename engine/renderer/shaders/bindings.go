package shaders

// Shader sourceIDs of the built-in pass library. Render passes request
// these from the shader provider; a hardware backend would resolve them
// to compiled bytecode instead.
const (
	SourceGBufferFill      = "passes/gbuffer_fill"
	SourceDeferredLighting = "passes/deferred_lighting"
	SourceBlit             = "passes/blit"
)

// Binding slot contract shared between the passes and the shaders.
// Slots are scoped per binding type.
const (
	SlotViewConstants     = 0
	SlotMaterialConstants = 1
	SlotLightingConstants = 0
	SlotDiffuseTexture    = 0
	SlotGBufferDepth      = 0
	SlotGBufferAlbedo     = 1
	SlotGBufferNormals    = 2
	SlotBlitSource        = 0
	SlotOutputUAV         = 0
)
