package rhi

type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStagePixel
	ShaderStageCompute
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStagePixel:
		return "pixel"
	case ShaderStageCompute:
		return "compute"
	}
	return "unknown"
}

// Shader is an opaque compiled shader handle. The engine never inspects
// shader contents; only the backend that compiled it can execute it.
type Shader interface {
	SourceID() string
	EntryPoint() string
	Stage() ShaderStage
}

// ShaderFactory is the external shader provider. A compile failure is an
// initialization failure: reported to the host, never retried.
type ShaderFactory interface {
	CompileShader(sourceID, entryPoint string, stage ShaderStage) (Shader, error)
}
