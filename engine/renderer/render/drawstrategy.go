package render

import (
	"sort"

	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/scene"
)

// DrawItem is one geometry's worth of work for a pass, valid only for
// the frame it was prepared in. Passes consume items, they never hold
// them.
type DrawItem struct {
	Instance *scene.MeshInstance
	Mesh     *scene.MeshInfo
	Geometry *scene.MeshGeometry
	Material *scene.Material
	Buffers  *scene.BufferGroup

	DistanceToCamera float32
	CullMode         rhi.CullMode
}

// DrawStrategy decides which geometry a pass renders and in what
// order. PrepareForView is called once per pass invocation; NextItem
// streams the ordered items and returns nil when exhausted.
type DrawStrategy interface {
	PrepareForView(graph *scene.SceneGraph, view *PlanarView) error
	NextItem() *DrawItem
}

// PassthroughDrawStrategy replays an explicit item list in the exact
// order it was given. Used by tests and by callers that already know
// what to draw.
type PassthroughDrawStrategy struct {
	items []*DrawItem
	next  int
}

func NewPassthroughDrawStrategy() *PassthroughDrawStrategy {
	return &PassthroughDrawStrategy{}
}

// SetData replaces the item list and rewinds the cursor.
func (s *PassthroughDrawStrategy) SetData(items []*DrawItem) {
	s.items = items
	s.next = 0
}

func (s *PassthroughDrawStrategy) PrepareForView(graph *scene.SceneGraph, view *PlanarView) error {
	s.next = 0
	return nil
}

func (s *PassthroughDrawStrategy) NextItem() *DrawItem {
	if s.next >= len(s.items) {
		return nil
	}
	item := s.items[s.next]
	s.next++
	return item
}

// InstancedOpaqueDrawStrategy walks the scene graph, culls instances
// against the view frustum and orders the survivors front to back.
// The sort is stable over the graph's traversal order, so two frames
// with the same scene and view produce the same item sequence.
type InstancedOpaqueDrawStrategy struct {
	items []DrawItem
	next  int
}

func NewInstancedOpaqueDrawStrategy() *InstancedOpaqueDrawStrategy {
	return &InstancedOpaqueDrawStrategy{}
}

func (s *InstancedOpaqueDrawStrategy) PrepareForView(graph *scene.SceneGraph, view *PlanarView) error {
	s.items = s.items[:0]
	s.next = 0

	instances, err := graph.GetMeshInstances()
	if err != nil {
		return err
	}
	frustum := view.Frustum()
	cameraPos := view.CameraPosition()

	for _, instance := range instances {
		if instance.Mesh == nil || instance.Mesh.Buffers == nil {
			continue
		}
		worldBounds := math.TransformExtents(instance.Mesh.ObjectSpaceBounds, instance.Transform)
		if !frustum.IntersectsExtents(worldBounds) {
			continue
		}
		distance := worldBounds.Center().Sub(cameraPos).Length()
		for _, geometry := range instance.Mesh.Geometries {
			s.items = append(s.items, DrawItem{
				Instance:         instance,
				Mesh:             instance.Mesh,
				Geometry:         geometry,
				Material:         geometry.Material,
				Buffers:          instance.Mesh.Buffers,
				DistanceToCamera: distance,
				CullMode:         rhi.CullModeBack,
			})
		}
	}

	sort.SliceStable(s.items, func(i, j int) bool {
		return s.items[i].DistanceToCamera < s.items[j].DistanceToCamera
	})
	return nil
}

func (s *InstancedOpaqueDrawStrategy) NextItem() *DrawItem {
	if s.next >= len(s.items) {
		return nil
	}
	item := &s.items[s.next]
	s.next++
	return item
}
