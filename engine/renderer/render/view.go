package render

import (
	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/shaders"
)

// PlanarView is one camera's view of the scene: its matrices, viewport
// and the derived products the passes consume. Setting a matrix or the
// viewport invalidates the derived cache; UpdateCache recomputes it.
// Reading a derived value while the cache is stale is a programming
// error and panics.
type PlanarView struct {
	viewport       rhi.Viewport
	matWorldToView math.Mat4
	matViewToClip  math.Mat4

	matWorldToClip math.Mat4
	matClipToWorld math.Mat4
	matViewToWorld math.Mat4
	frustum        math.Frustum
	cacheValid     bool
}

func NewPlanarView() *PlanarView {
	return &PlanarView{
		matWorldToView: math.NewMat4Identity(),
		matViewToClip:  math.NewMat4Identity(),
	}
}

func (v *PlanarView) SetViewport(viewport rhi.Viewport) {
	v.viewport = viewport
	v.cacheValid = false
}

// SetMatrices sets the world-to-view and view-to-clip (projection)
// matrices together.
func (v *PlanarView) SetMatrices(worldToView, viewToClip math.Mat4) {
	v.matWorldToView = worldToView
	v.matViewToClip = viewToClip
	v.cacheValid = false
}

// UpdateCache recomputes the derived matrices and frustum. Must be
// called after the last Set* and before any derived read.
func (v *PlanarView) UpdateCache() {
	v.matWorldToClip = v.matWorldToView.Mul(v.matViewToClip)
	v.matClipToWorld = v.matWorldToClip.Inverse()
	v.matViewToWorld = v.matWorldToView.Inverse()
	v.frustum = math.NewFrustumFromViewProjection(v.matWorldToClip)
	v.cacheValid = true
}

func (v *PlanarView) CacheValid() bool { return v.cacheValid }

func (v *PlanarView) requireCache() {
	if !v.cacheValid {
		panic("render: planar view derived state read before UpdateCache")
	}
}

func (v *PlanarView) Viewport() rhi.Viewport { return v.viewport }

func (v *PlanarView) WorldToView() math.Mat4 { return v.matWorldToView }

func (v *PlanarView) ViewToClip() math.Mat4 { return v.matViewToClip }

func (v *PlanarView) WorldToClip() math.Mat4 {
	v.requireCache()
	return v.matWorldToClip
}

func (v *PlanarView) ClipToWorld() math.Mat4 {
	v.requireCache()
	return v.matClipToWorld
}

func (v *PlanarView) Frustum() math.Frustum {
	v.requireCache()
	return v.frustum
}

// CameraPosition extracts the view origin in world space.
func (v *PlanarView) CameraPosition() math.Vec3 {
	v.requireCache()
	return math.Vec3{}.Transform(v.matViewToWorld)
}

// FillPlanarViewConstants packs the view into its constant-block form.
func (v *PlanarView) FillPlanarViewConstants(c *shaders.PlanarViewConstants) {
	v.requireCache()
	pos := v.CameraPosition()
	*c = shaders.PlanarViewConstants{
		MatWorldToView: v.matWorldToView,
		MatViewToClip:  v.matViewToClip,
		MatWorldToClip: v.matWorldToClip,
		MatClipToWorld: v.matClipToWorld,

		ViewportOrigin: [2]float32{v.viewport.X, v.viewport.Y},
		ViewportSize:   [2]float32{v.viewport.Width, v.viewport.Height},
		CameraPosition: [4]float32{pos.X, pos.Y, pos.Z, 1},
	}
	if v.viewport.Width > 0 && v.viewport.Height > 0 {
		c.ViewportSizeInv = [2]float32{1 / v.viewport.Width, 1 / v.viewport.Height}
	}
}
