// Package renderer drives the deferred shading frame: geometry into the
// g-buffer, full-screen lighting, composite to the host surface. The
// host owns the surface and the frame loop; the renderer owns every
// intermediate target and recreates them when the surface size changes.
package renderer

import (
	"fmt"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/render"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/scene"
)

// GraphicsSurface is the host-owned presentation target. OutputSize may
// change between frames; the renderer re-checks it after every target
// allocation because a host may resize concurrently with rendering.
type GraphicsSurface interface {
	OutputSize() (uint32, uint32)
	OutputTexture() rhi.Texture
}

// DeferredRenderer renders one scene graph through the deferred
// pipeline. Not safe for concurrent use; one renderer drives one
// surface.
type DeferredRenderer struct {
	device rhi.Device

	commandList  rhi.CommandList
	gbufferPass  *render.GBufferFillPass
	lightingPass *render.DeferredLightingPass
	commonPasses *render.CommonPasses

	targets  *render.ShadedColorTargets
	view     *render.PlanarView
	strategy *render.InstancedOpaqueDrawStrategy

	graph         *scene.SceneGraph
	ambientTop    math.Vec3
	ambientBottom math.Vec3
	worldToView   math.Mat4
	fovYRadians   float32
	nearClip      float32
	farClip       float32

	animate    func(dt float32)
	frameIndex uint32
}

func NewDeferredRenderer(device rhi.Device, factory rhi.ShaderFactory) (*DeferredRenderer, error) {
	r := &DeferredRenderer{
		device:      device,
		view:        render.NewPlanarView(),
		strategy:    render.NewInstancedOpaqueDrawStrategy(),
		worldToView: math.NewMat4Identity(),
		fovYRadians: 60 * math.Deg2Rad,
		nearClip:    0.1,
		farClip:     10,
	}

	var err error
	if r.gbufferPass, err = render.NewGBufferFillPass(device, factory); err != nil {
		return nil, fmt.Errorf("init gbuffer fill pass: %w", err)
	}
	if r.lightingPass, err = render.NewDeferredLightingPass(device, factory); err != nil {
		return nil, fmt.Errorf("init deferred lighting pass: %w", err)
	}
	if r.commonPasses, err = render.NewCommonPasses(device, factory); err != nil {
		return nil, fmt.Errorf("init common passes: %w", err)
	}
	r.commandList = device.CreateCommandList()
	return r, nil
}

// SetScene points the renderer at the graph it draws. The renderer
// refreshes the graph itself each frame.
func (r *DeferredRenderer) SetScene(graph *scene.SceneGraph) {
	r.graph = graph
}

// SetAmbient sets the vertical ambient gradient applied by the lighting
// pass.
func (r *DeferredRenderer) SetAmbient(top, bottom math.Vec3) {
	r.ambientTop = top
	r.ambientBottom = bottom
}

// SetCamera sets the world-to-view matrix and projection parameters.
// The aspect ratio comes from the surface each frame.
func (r *DeferredRenderer) SetCamera(worldToView math.Mat4, fovYRadians, nearClip, farClip float32) {
	r.worldToView = worldToView
	r.fovYRadians = fovYRadians
	r.nearClip = nearClip
	r.farClip = farClip
}

// SetAnimationCallback registers the per-frame animation hook invoked
// by Animate.
func (r *DeferredRenderer) SetAnimationCallback(fn func(dt float32)) {
	r.animate = fn
}

// Animate advances scene animation by dt seconds.
func (r *DeferredRenderer) Animate(dt float32) {
	if r.animate != nil {
		r.animate(dt)
	}
}

// BackBufferResizing tells the renderer the surface is about to change
// size. Every surface-sized target is dropped; the next Render
// recreates them.
func (r *DeferredRenderer) BackBufferResizing() {
	if r.targets != nil {
		r.targets.Release()
		r.targets = nil
	}
	r.gbufferPass.ResetCaches()
	r.lightingPass.ResetBindingCache()
	r.commonPasses.ResetBindingCache()
}

// ensureTargets makes the target set match the surface size, looping
// because the surface may resize again while targets are allocated.
func (r *DeferredRenderer) ensureTargets(surface GraphicsSurface) (uint32, uint32, error) {
	for {
		width, height := surface.OutputSize()
		if width == 0 || height == 0 {
			return 0, 0, fmt.Errorf("surface reports zero size %dx%d", width, height)
		}
		if r.targets != nil {
			w, h := r.targets.Size()
			if w == width && h == height {
				return width, height, nil
			}
			core.LogInfo("render targets %dx%d stale, surface is %dx%d", w, h, width, height)
		}
		r.BackBufferResizing()
		targets := &render.ShadedColorTargets{}
		if err := targets.Init(r.device, width, height); err != nil {
			return 0, 0, fmt.Errorf("recreate render targets: %w", err)
		}
		r.targets = targets
	}
}

// Render records and submits one frame into the surface. Any recording
// error is frame-fatal: the command list is abandoned, nothing is
// submitted, and the error is returned to the host.
func (r *DeferredRenderer) Render(surface GraphicsSurface) error {
	if r.graph == nil {
		return fmt.Errorf("render without a scene: %w", core.ErrInitializationFailed)
	}
	width, height, err := r.ensureTargets(surface)
	if err != nil {
		return err
	}

	r.graph.Refresh(r.frameIndex)
	r.frameIndex++

	aspect := float32(width) / float32(height)
	r.view.SetViewport(rhi.NewViewport(float32(width), float32(height)))
	r.view.SetMatrices(r.worldToView, math.NewMat4Perspective(r.fovYRadians, aspect, r.nearClip, r.farClip))
	r.view.UpdateCache()

	if err := r.recordFrame(surface); err != nil {
		core.LogError("frame %d aborted: %v", r.frameIndex-1, err)
		return err
	}
	return r.device.ExecuteCommandList(r.commandList)
}

func (r *DeferredRenderer) recordFrame(surface GraphicsSurface) error {
	cl := r.commandList
	if err := cl.Open(); err != nil {
		return err
	}

	if err := r.targets.Clear(cl); err != nil {
		return err
	}

	if err := r.gbufferPass.PrepareForView(cl, r.view); err != nil {
		return err
	}
	if err := r.strategy.PrepareForView(r.graph, r.view); err != nil {
		return err
	}
	if err := r.gbufferPass.RenderView(cl, r.view, r.targets.GBufferFramebuffer, r.strategy); err != nil {
		return err
	}

	lights, err := r.graph.GetLights()
	if err != nil {
		return err
	}
	if err := r.lightingPass.Render(cl, render.DeferredLightingInputs{
		Depth:              r.targets.Depth,
		GBufferDiffuse:     r.targets.GBufferDiffuse,
		GBufferNormals:     r.targets.GBufferNormals,
		Output:             r.targets.ShadedColor,
		View:               r.view,
		Lights:             lights,
		AmbientColorTop:    r.ambientTop,
		AmbientColorBottom: r.ambientBottom,
	}); err != nil {
		return err
	}

	if err := r.commonPasses.BlitTexture(cl, r.targets.ShadedColor, surface.OutputTexture()); err != nil {
		return err
	}
	return cl.Close()
}
