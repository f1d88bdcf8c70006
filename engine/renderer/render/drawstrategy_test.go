package render_test

import (
	"testing"

	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/render"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/scene"
	"github.com/hollowtide/lumen/engine/renderer/soft"
)

// buildCubeScene uploads one cube mesh and hangs n instances off the
// graph root at the given local transforms.
func buildCubeScene(t *testing.T, device rhi.Device, locals []math.Mat4) (*scene.SceneGraph, []*scene.MeshInstance) {
	t.Helper()

	cl := device.CreateCommandList()
	if err := cl.Open(); err != nil {
		t.Fatal(err)
	}
	material := scene.NewMaterial("default")
	var err error
	material.Constants, err = scene.CreateMaterialConstantBuffer(device, cl, material)
	if err != nil {
		t.Fatal(err)
	}
	mesh, err := scene.CreateCubeMesh(device, cl, "cube", 1.0, material)
	if err != nil {
		t.Fatal(err)
	}
	if err := mesh.Buffers.CreateInstanceBuffer(device, "cube.instances", 1); err != nil {
		t.Fatal(err)
	}
	if err := cl.Close(); err != nil {
		t.Fatal(err)
	}
	if err := device.ExecuteCommandList(cl); err != nil {
		t.Fatal(err)
	}

	graph := scene.NewSceneGraph()
	root := graph.AllocateNode("root")
	if err := graph.SetRootNode(root); err != nil {
		t.Fatal(err)
	}
	instances := make([]*scene.MeshInstance, len(locals))
	for i, local := range locals {
		instances[i] = scene.NewMeshInstance(mesh, mesh.Name)
		node, err := graph.AttachLeafNode(root, instances[i])
		if err != nil {
			t.Fatal(err)
		}
		if err := graph.SetLocalTransform(node, local); err != nil {
			t.Fatal(err)
		}
	}
	graph.Refresh(0)
	return graph, instances
}

func testView(width, height float32) *render.PlanarView {
	view := render.NewPlanarView()
	view.SetViewport(rhi.NewViewport(width, height))
	view.SetMatrices(
		math.NewMat4Translation(math.Vec3{Z: -4}),
		math.NewMat4Perspective(60*math.Deg2Rad, width/height, 0.1, 20),
	)
	view.UpdateCache()
	return view
}

func TestInstancedOpaqueOrderIsFrontToBack(t *testing.T) {
	device := soft.New()

	// Instances deliberately attached back to front.
	graph, instances := buildCubeScene(t, device, []math.Mat4{
		math.NewMat4Translation(math.Vec3{Z: 3}),
		math.NewMat4Translation(math.Vec3{Z: 0}),
		math.NewMat4Translation(math.Vec3{Z: 2}),
	})
	view := testView(640, 480)

	strategy := render.NewInstancedOpaqueDrawStrategy()
	var first []*scene.MeshInstance
	for run := 0; run < 3; run++ {
		if err := strategy.PrepareForView(graph, view); err != nil {
			t.Fatal(err)
		}
		var order []*scene.MeshInstance
		for item := strategy.NextItem(); item != nil; item = strategy.NextItem() {
			order = append(order, item.Instance)
		}
		if len(order) != 3 {
			t.Fatalf("run %d: got %d items, want 3", run, len(order))
		}
		// Camera looks down -z from z=4, so larger world z is closer.
		want := []*scene.MeshInstance{instances[0], instances[2], instances[1]}
		for i := range want {
			if order[i] != want[i] {
				t.Fatalf("run %d: item %d is instance %d, want front-to-back order", run, i, indexOf(instances, order[i]))
			}
		}
		if run == 0 {
			first = order
		} else {
			for i := range order {
				if order[i] != first[i] {
					t.Fatalf("run %d: order differs from run 0 at item %d", run, i)
				}
			}
		}
	}
}

func indexOf(instances []*scene.MeshInstance, target *scene.MeshInstance) int {
	for i, in := range instances {
		if in == target {
			return i
		}
	}
	return -1
}

func TestInstancedOpaqueCullsOutOfFrustum(t *testing.T) {
	device := soft.New()

	graph, _ := buildCubeScene(t, device, []math.Mat4{
		math.NewMat4Translation(math.Vec3{Z: 0}),
		// Far behind the camera.
		math.NewMat4Translation(math.Vec3{Z: 100}),
	})
	view := testView(640, 480)

	strategy := render.NewInstancedOpaqueDrawStrategy()
	if err := strategy.PrepareForView(graph, view); err != nil {
		t.Fatal(err)
	}
	count := 0
	for item := strategy.NextItem(); item != nil; item = strategy.NextItem() {
		count++
	}
	if count != 1 {
		t.Fatalf("got %d items after culling, want 1", count)
	}
}

func TestPassthroughPreservesOrder(t *testing.T) {
	items := []*render.DrawItem{{DistanceToCamera: 5}, {DistanceToCamera: 1}, {DistanceToCamera: 3}}
	strategy := render.NewPassthroughDrawStrategy()
	strategy.SetData(items)
	if err := strategy.PrepareForView(nil, nil); err != nil {
		t.Fatal(err)
	}
	for i := range items {
		if got := strategy.NextItem(); got != items[i] {
			t.Fatalf("item %d reordered", i)
		}
	}
	if strategy.NextItem() != nil {
		t.Fatal("strategy yielded a fourth item")
	}
}

func TestViewCachePanicsWhenStale(t *testing.T) {
	view := render.NewPlanarView()
	view.SetMatrices(math.NewMat4Identity(), math.NewMat4Identity())

	defer func() {
		if recover() == nil {
			t.Fatal("reading a stale view cache should panic")
		}
	}()
	view.WorldToClip()
}
