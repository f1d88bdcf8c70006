package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/hollowtide/lumen/engine/assets"
	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/soft"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// headlessSurface is the engine-owned presentation target: a UAV
// texture the composite pass writes into and readbacks copy from.
type headlessSurface struct {
	device  rhi.Device
	texture rhi.Texture
	width   uint32
	height  uint32
}

func (s *headlessSurface) OutputSize() (uint32, uint32) { return s.width, s.height }
func (s *headlessSurface) OutputTexture() rhi.Texture   { return s.texture }

func (s *headlessSurface) recreate(width, height uint32) error {
	if s.texture != nil {
		s.texture.Release()
		s.texture = nil
	}
	tex, err := s.device.CreateTexture(rhi.TextureDesc{
		Width:            width,
		Height:           height,
		Format:           rhi.FormatRGBA16Float,
		DebugName:        "BackBuffer",
		SampleCount:      1,
		IsUAV:            true,
		InitialState:     rhi.ResourceStateUnorderedAccess,
		KeepInitialState: true,
	})
	if err != nil {
		return err
	}
	s.texture = tex
	s.width, s.height = width, height
	return nil
}

// Engine owns the device, the deferred renderer and the frame loop,
// and drives the Game hooks.
type Engine struct {
	currentStage Stage
	gameInstance *Game

	device       rhi.Device
	renderer     *renderer.DeferredRenderer
	surface      *headlessSurface
	textureCache *assets.TextureCache

	clock      *core.Clock
	metrics    *core.FrameMetrics
	lastTime   float64
	frameIndex uint64

	isRunning atomic.Bool
}

func New(g *Game) (*Engine, error) {
	if g == nil || g.ApplicationConfig == nil {
		return nil, fmt.Errorf("engine requires a game with an application config: %w", core.ErrInitializationFailed)
	}
	core.SetLogLevel(g.ApplicationConfig.LogLevel)

	device := soft.New()
	r, err := renderer.NewDeferredRenderer(device, soft.NewShaderFactory())
	if err != nil {
		return nil, err
	}
	cache, err := assets.NewTextureCache(device)
	if err != nil {
		return nil, err
	}
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		device:       device,
		renderer:     r,
		surface:      &headlessSurface{device: device},
		textureCache: cache,
		clock:        core.NewClock(),
		metrics:      core.NewFrameMetrics(),
	}, nil
}

// Device exposes the GPU device for scene construction.
func (e *Engine) Device() rhi.Device { return e.device }

// Renderer exposes the deferred renderer for scene and camera setup.
func (e *Engine) Renderer() *renderer.DeferredRenderer { return e.renderer }

// TextureCache exposes the shared texture loader.
func (e *Engine) TextureCache() *assets.TextureCache { return e.textureCache }

// Initialize allocates the output surface and runs the game's scene
// construction. Must be called once before Run.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine initialized twice: %w", core.ErrInvalidCommandState)
	}
	e.currentStage = EngineStageInitializing

	cfg := e.gameInstance.ApplicationConfig
	if err := e.surface.recreate(cfg.StartWidth, cfg.StartHeight); err != nil {
		return fmt.Errorf("create output surface: %w", err)
	}
	e.renderer.SetAmbient(cfg.AmbientTop, cfg.AmbientBottom)
	e.renderer.SetCamera(math.NewMat4Translation(math.Vec3{Z: -2}), cfg.FOVDegrees*math.Deg2Rad, cfg.NearClip, cfg.FarClip)

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(e); err != nil {
			return fmt.Errorf("game initialization: %w", err)
		}
	}
	e.currentStage = EngineStageInitialized
	core.LogInfo("%s initialized (%dx%d)", cfg.Name, cfg.StartWidth, cfg.StartHeight)
	return nil
}

// Resize changes the output surface size. Render targets are dropped
// and recreated on the next frame.
func (e *Engine) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("resize to zero size %dx%d", width, height)
	}
	e.renderer.BackBufferResizing()
	if err := e.surface.recreate(width, height); err != nil {
		return err
	}
	if e.gameInstance.FnOnResize != nil {
		return e.gameInstance.FnOnResize(width, height)
	}
	return nil
}

// Run drives the frame loop until MaxFrames frames have rendered or
// Shutdown is called. Any frame error stops the loop.
func (e *Engine) Run() error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("run before initialization: %w", core.ErrInvalidCommandState)
	}
	e.currentStage = EngineStageRunning
	e.isRunning.Store(true)
	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	cfg := e.gameInstance.ApplicationConfig
	for e.isRunning.Load() {
		e.clock.Update()
		now := e.clock.Elapsed()
		delta := now - e.lastTime
		e.lastTime = now

		e.renderer.Animate(float32(delta))
		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(delta); err != nil {
				return fmt.Errorf("game update: %w", err)
			}
		}
		if err := e.renderer.Render(e.surface); err != nil {
			return fmt.Errorf("frame %d: %w", e.frameIndex, err)
		}

		if e.gameInstance.FnFrameComplete != nil {
			pixels, err := e.device.ReadTexture(e.surface.OutputTexture())
			if err != nil {
				return err
			}
			if err := e.gameInstance.FnFrameComplete(e.frameIndex, pixels, e.surface.width, e.surface.height); err != nil {
				return err
			}
		}

		e.clock.Update()
		e.metrics.Update(e.clock.Elapsed() - now)
		e.frameIndex++
		if cfg.MaxFrames > 0 && e.frameIndex >= cfg.MaxFrames {
			break
		}
	}
	core.LogInfo("frame loop ended after %d frames (%.2f ms avg)", e.frameIndex, e.metrics.FrameTime())
	e.currentStage = EngineStageShuttingDown
	e.textureCache.Close()
	return nil
}

// Shutdown requests the frame loop to stop after the current frame.
// Safe to call from another goroutine.
func (e *Engine) Shutdown() error {
	e.isRunning.Store(false)
	return nil
}
