package renderer_test

import (
	"testing"

	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/scene"
	"github.com/hollowtide/lumen/engine/renderer/soft"
)

// testSurface is a host surface backed by a UAV texture.
type testSurface struct {
	device  rhi.Device
	texture rhi.Texture
	width   uint32
	height  uint32
}

func newTestSurface(t *testing.T, device rhi.Device, width, height uint32) *testSurface {
	t.Helper()
	s := &testSurface{device: device}
	s.Resize(t, width, height)
	return s
}

func (s *testSurface) Resize(t *testing.T, width, height uint32) {
	t.Helper()
	if s.texture != nil {
		s.texture.Release()
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
		t.Fatal(err)
	}
	s.texture = tex
	s.width, s.height = width, height
}

func (s *testSurface) OutputSize() (uint32, uint32) { return s.width, s.height }
func (s *testSurface) OutputTexture() rhi.Texture   { return s.texture }

// setupCubeRenderer builds the cube-and-sun scene the renderer demo
// uses, with the sun shining straight down the view axis so the front
// face receives full irradiance.
func setupCubeRenderer(t *testing.T, device rhi.Device, ambientTop, ambientBottom math.Vec3) *renderer.DeferredRenderer {
	t.Helper()

	cl := device.CreateCommandList()
	if err := cl.Open(); err != nil {
		t.Fatal(err)
	}
	material := scene.NewMaterial("white")
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
	if _, err := graph.AttachLeafNode(root, scene.NewMeshInstance(mesh, "cube.0")); err != nil {
		t.Fatal(err)
	}
	sun := scene.NewDirectionalLight("sun")
	sun.SetDirection(math.Vec3{Z: -1})
	sun.Irradiance = 1.0
	if _, err := graph.AttachLeafNode(root, sun); err != nil {
		t.Fatal(err)
	}

	r, err := renderer.NewDeferredRenderer(device, soft.NewShaderFactory())
	if err != nil {
		t.Fatal(err)
	}
	r.SetScene(graph)
	r.SetAmbient(ambientTop, ambientBottom)
	r.SetCamera(math.NewMat4Translation(math.Vec3{Z: -2}), 60*math.Deg2Rad, 0.1, 10)
	return r
}

func pixelAt(pixels []float32, width, x, y uint32) [3]float32 {
	i := (y*width + x) * 4
	return [3]float32{pixels[i], pixels[i+1], pixels[i+2]}
}

func approxEq(got [3]float32, want [3]float32, tolerance float32) bool {
	for i := range got {
		if math.Abs(got[i]-want[i]) > tolerance {
			return false
		}
	}
	return true
}

func TestDeferredFrameCubeAndBackground(t *testing.T) {
	device := soft.New()
	ambientTop := math.Vec3{X: 0.2, Y: 0.2, Z: 0.2}
	ambientBottom := math.Vec3{X: 0.06, Y: 0.08, Z: 0.06}
	r := setupCubeRenderer(t, device, ambientTop, ambientBottom)
	surface := newTestSurface(t, device, 256, 256)

	if err := r.Render(surface); err != nil {
		t.Fatal(err)
	}
	pixels, err := device.ReadTexture(surface.OutputTexture())
	if err != nil {
		t.Fatal(err)
	}

	// The cube's front face fills the screen center. White albedo, full
	// irradiance, front normal facing the sun: lit color is albedo plus
	// the ambient contribution at normal.y = 0.
	ambientMid := ambientBottom.Add(ambientTop.Sub(ambientBottom).MulScalar(0.5))
	wantCenter := [3]float32{1 + ambientMid.X, 1 + ambientMid.Y, 1 + ambientMid.Z}
	center := pixelAt(pixels, 256, 128, 128)
	if !approxEq(center, wantCenter, 1e-3) {
		t.Errorf("center pixel = %v, want %v", center, wantCenter)
	}

	// Corners hold no geometry: the ambient-only background.
	sky := ambientTop.Add(ambientBottom).MulScalar(0.5)
	wantSky := [3]float32{sky.X, sky.Y, sky.Z}
	for _, corner := range [][2]uint32{{0, 0}, {255, 0}, {0, 255}, {255, 255}} {
		got := pixelAt(pixels, 256, corner[0], corner[1])
		if !approxEq(got, wantSky, 1e-4) {
			t.Errorf("corner %v = %v, want background %v", corner, got, wantSky)
		}
	}
}

func TestDeferredFrameLightAccumulationIdentity(t *testing.T) {
	device := soft.New()
	// Zero ambient isolates the directional term: the lit front face
	// must come out exactly equal to its albedo.
	r := setupCubeRenderer(t, device, math.Vec3{}, math.Vec3{})
	surface := newTestSurface(t, device, 128, 128)

	if err := r.Render(surface); err != nil {
		t.Fatal(err)
	}
	pixels, err := device.ReadTexture(surface.OutputTexture())
	if err != nil {
		t.Fatal(err)
	}
	center := pixelAt(pixels, 128, 64, 64)
	if !approxEq(center, [3]float32{1, 1, 1}, 1e-4) {
		t.Fatalf("lit center pixel = %v, want exact albedo", center)
	}
	corner := pixelAt(pixels, 128, 0, 0)
	if !approxEq(corner, [3]float32{0, 0, 0}, 1e-6) {
		t.Fatalf("background with zero ambient = %v, want black", corner)
	}
}

// countingDevice tallies texture allocations on top of the wrapped
// device.
type countingDevice struct {
	rhi.Device
	textureCreates int
}

func (d *countingDevice) CreateTexture(desc rhi.TextureDesc) (rhi.Texture, error) {
	d.textureCreates++
	return d.Device.CreateTexture(desc)
}

func TestDeferredRendererResize(t *testing.T) {
	device := &countingDevice{Device: soft.New()}
	r := setupCubeRenderer(t, device, math.Vec3{}, math.Vec3{})
	surface := newTestSurface(t, device, 128, 128)

	sizes := [][2]uint32{{128, 128}, {256, 192}, {256, 192}, {64, 64}}
	for i, size := range sizes {
		resized := size[0] != surface.width || size[1] != surface.height
		if resized {
			r.BackBufferResizing()
			surface.Resize(t, size[0], size[1])
		}
		before := device.textureCreates
		if err := r.Render(surface); err != nil {
			t.Fatalf("render at %dx%d: %v", size[0], size[1], err)
		}
		// The first frame allocates the target set; after that an
		// unchanged size must not reallocate anything.
		if i > 0 && !resized && device.textureCreates != before {
			t.Fatalf("render at unchanged %dx%d allocated %d textures, want none",
				size[0], size[1], device.textureCreates-before)
		}
		pixels, err := device.ReadTexture(surface.OutputTexture())
		if err != nil {
			t.Fatal(err)
		}
		if len(pixels) != int(size[0]*size[1]*4) {
			t.Fatalf("readback size %d at %dx%d", len(pixels), size[0], size[1])
		}
		center := pixelAt(pixels, size[0], size[0]/2, size[1]/2)
		if !approxEq(center, [3]float32{1, 1, 1}, 1e-4) {
			t.Fatalf("center pixel after resize to %dx%d = %v", size[0], size[1], center)
		}
	}
}

func TestRenderWithoutSceneFails(t *testing.T) {
	device := soft.New()
	r, err := renderer.NewDeferredRenderer(device, soft.NewShaderFactory())
	if err != nil {
		t.Fatal(err)
	}
	surface := newTestSurface(t, device, 64, 64)
	if err := r.Render(surface); err == nil {
		t.Fatal("render without a scene should fail")
	}
}
