package scene

import (
	"errors"
	"testing"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/shaders"
)

func TestSceneGraphWorldTransforms(t *testing.T) {
	g := NewSceneGraph()
	root := g.AllocateNode("root")
	if err := g.SetRootNode(root); err != nil {
		t.Fatal(err)
	}
	parent := g.AllocateNode("parent")
	child := g.AllocateNode("child")
	if err := g.Attach(root, parent); err != nil {
		t.Fatal(err)
	}
	if err := g.Attach(parent, child); err != nil {
		t.Fatal(err)
	}

	g.SetLocalTransform(parent, math.NewMat4Translation(math.Vec3{X: 1}))
	g.SetLocalTransform(child, math.NewMat4Translation(math.Vec3{Y: 2}))
	g.Refresh(0)

	world, err := g.WorldTransform(child)
	if err != nil {
		t.Fatal(err)
	}
	got := math.Vec3{}.Transform(world)
	want := math.Vec3{X: 1, Y: 2}
	if !got.Compare(want, math.FloatEpsilon) {
		t.Fatalf("child world origin = %+v, want %+v", got, want)
	}
}

func TestSceneGraphReadBeforeRefresh(t *testing.T) {
	g := NewSceneGraph()
	root := g.AllocateNode("root")
	if err := g.SetRootNode(root); err != nil {
		t.Fatal(err)
	}

	if _, err := g.WorldTransform(root); !errors.Is(err, core.ErrInvalidCommandState) {
		t.Fatalf("WorldTransform before refresh: err = %v", err)
	}
	if _, err := g.GetLights(); !errors.Is(err, core.ErrInvalidCommandState) {
		t.Fatalf("GetLights before refresh: err = %v", err)
	}
	if _, err := g.GetMeshInstances(); !errors.Is(err, core.ErrInvalidCommandState) {
		t.Fatalf("GetMeshInstances before refresh: err = %v", err)
	}
}

func TestSceneGraphAttachRejectsCycles(t *testing.T) {
	g := NewSceneGraph()
	a := g.AllocateNode("a")
	b := g.AllocateNode("b")
	if err := g.Attach(a, b); err != nil {
		t.Fatal(err)
	}
	if err := g.Attach(b, a); err == nil {
		t.Fatal("attaching an ancestor under its descendant should fail")
	}
	if err := g.Attach(a, a); err == nil {
		t.Fatal("self-attachment should fail")
	}
	c := g.AllocateNode("c")
	if err := g.Attach(a, c); err != nil {
		t.Fatal(err)
	}
	if err := g.Attach(b, c); err == nil {
		t.Fatal("re-parenting an attached node should fail")
	}
}

func TestSceneGraphTraversalOrderIsAttachmentOrder(t *testing.T) {
	g := NewSceneGraph()
	root := g.AllocateNode("root")
	if err := g.SetRootNode(root); err != nil {
		t.Fatal(err)
	}

	names := []string{"sun", "fill", "rim"}
	for _, name := range names {
		light := NewDirectionalLight(name)
		if _, err := g.AttachLeafNode(root, light); err != nil {
			t.Fatal(err)
		}
	}
	g.Refresh(0)

	for run := 0; run < 3; run++ {
		lights, err := g.GetLights()
		if err != nil {
			t.Fatal(err)
		}
		if len(lights) != len(names) {
			t.Fatalf("got %d lights, want %d", len(lights), len(names))
		}
		for i, l := range lights {
			if l.LeafName() != names[i] {
				t.Fatalf("run %d: lights[%d] = %q, want %q", run, i, l.LeafName(), names[i])
			}
		}
	}
}

func TestMeshInstanceMotionTransforms(t *testing.T) {
	g := NewSceneGraph()
	root := g.AllocateNode("root")
	if err := g.SetRootNode(root); err != nil {
		t.Fatal(err)
	}
	instance := NewMeshInstance(&MeshInfo{Name: "cube"}, "cube.0")
	node, err := g.AttachLeafNode(root, instance)
	if err != nil {
		t.Fatal(err)
	}

	frame0 := math.NewMat4Translation(math.Vec3{X: 1})
	g.SetLocalTransform(node, frame0)
	g.Refresh(0)
	if !instance.PrevTransform.Compare(frame0, math.FloatEpsilon) {
		t.Fatal("first refresh should seed the previous transform with the current one")
	}

	// A second refresh within the same frame must not roll prev forward.
	g.Refresh(0)
	if !instance.PrevTransform.Compare(frame0, math.FloatEpsilon) {
		t.Fatal("same-frame refresh changed the previous transform")
	}

	frame1 := math.NewMat4Translation(math.Vec3{X: 2})
	g.SetLocalTransform(node, frame1)
	g.Refresh(1)
	if !instance.PrevTransform.Compare(frame0, math.FloatEpsilon) {
		t.Fatalf("prev transform after frame 1 = %+v, want frame 0 placement", instance.PrevTransform)
	}
	if !instance.Transform.Compare(frame1, math.FloatEpsilon) {
		t.Fatal("current transform not updated on refresh")
	}
}

func TestDirectionalLightConstants(t *testing.T) {
	sun := NewDirectionalLight("sun")
	sun.SetDirection(math.Vec3{X: 0, Y: -2, Z: 0})
	sun.AngularSize = 0.53
	sun.Irradiance = 1.5

	var lc shaders.LightConstants
	sun.FillLightConstants(&lc)
	if lc.LightType != 1 {
		t.Fatalf("light type = %d, want directional", lc.LightType)
	}
	if lc.Direction[1] != -1 {
		t.Fatalf("direction not normalized: %v", lc.Direction)
	}
	if lc.ColorIntensity[3] != 1.5 {
		t.Fatalf("irradiance = %v", lc.ColorIntensity[3])
	}

	// Zero vectors must not destroy the current direction.
	sun.SetDirection(math.Vec3{})
	if sun.Direction.Y != -1 {
		t.Fatal("zero direction overwrote the previous one")
	}
}
