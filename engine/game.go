package engine

// Game is the host-provided application: scene construction, per-frame
// animation and optional frame readback. The engine drives the hooks;
// nil hooks are skipped.
type Game struct {
	ApplicationConfig *ApplicationConfig
	State             interface{}
	FnInitialize      Initialize
	FnUpdate          Update
	FnFrameComplete   FrameComplete
	FnOnResize        OnResize
}

type Initialize func(e *Engine) error
type Update func(deltaTime float64) error

// FrameComplete receives the finished frame's pixels as RGBA float
// scanlines. Only invoked when set; reading frames back is not free.
type FrameComplete func(frameIndex uint64, pixels []float32, width, height uint32) error

type OnResize func(width, height uint32) error
