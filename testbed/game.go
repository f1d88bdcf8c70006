// Package testbed is the example application: one textured cube lit by
// a sun with a hemisphere ambient, rendered headlessly and dumped to a
// PNG on the final frame.
package testbed

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/hollowtide/lumen/engine"
	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/math"
	"github.com/hollowtide/lumen/engine/renderer/scene"
)

type DemoGame struct {
	*engine.Game
}

type demoState struct {
	graph         *scene.SceneGraph
	cubeNode      scene.NodeHandle
	cubeTransform *math.Transform
	rotation      float32

	outputPath string
}

// NewDemoGame builds the demo application around the given config.
// Frames are written to outputPath when it is non-empty.
func NewDemoGame(cfg *engine.ApplicationConfig, outputPath string) *DemoGame {
	state := &demoState{outputPath: outputPath}
	game := &engine.Game{
		ApplicationConfig: cfg,
		State:             state,
	}
	dg := &DemoGame{Game: game}
	game.FnInitialize = state.initialize
	game.FnUpdate = state.update
	game.FnFrameComplete = state.frameComplete(cfg)
	return dg
}

func (s *demoState) initialize(e *engine.Engine) error {
	device := e.Device()
	cl := device.CreateCommandList()
	if err := cl.Open(); err != nil {
		return err
	}

	checker, err := e.TextureCache().LoadTextureFromImage("checker", checkerImage(64, 8), true, cl)
	if err != nil {
		return err
	}

	material := scene.NewMaterial("cube")
	material.BaseOrDiffuseColor = math.Vec3{X: 1, Y: 1, Z: 1}
	material.EnableBaseOrDiffuseTexture = true
	material.BaseOrDiffuseTexture = checker.Texture
	if material.Constants, err = scene.CreateMaterialConstantBuffer(device, cl, material); err != nil {
		return err
	}

	mesh, err := scene.CreateCubeMesh(device, cl, "cube", 1.0, material)
	if err != nil {
		return err
	}
	if err := mesh.Buffers.CreateInstanceBuffer(device, "cube.instances", 1); err != nil {
		return err
	}

	if err := cl.Close(); err != nil {
		return err
	}
	if err := device.ExecuteCommandList(cl); err != nil {
		return err
	}

	s.graph = scene.NewSceneGraph()
	root := s.graph.AllocateNode("root")
	if err := s.graph.SetRootNode(root); err != nil {
		return err
	}
	if s.cubeNode, err = s.graph.AttachLeafNode(root, scene.NewMeshInstance(mesh, "cube.0")); err != nil {
		return err
	}
	s.cubeTransform = math.TransformCreate()

	sun := scene.NewDirectionalLight("sun")
	sun.SetDirection(math.Vec3{X: 0.1, Y: -1, Z: 0.2})
	sun.AngularSize = 0.53
	sun.Irradiance = 1.0
	if _, err := s.graph.AttachLeafNode(root, sun); err != nil {
		return err
	}

	e.Renderer().SetScene(s.graph)
	e.Renderer().SetAnimationCallback(func(dt float32) {
		s.rotation += dt * 1.1
	})
	core.LogDebug("demo scene built:\n%s", s.graph.PrintSceneGraph())
	return nil
}

func (s *demoState) update(deltaTime float64) error {
	// Spin the cube about its vertical axis with a slight tilt so the
	// sun sweeps across its faces. The tilt is applied first, then the
	// spin.
	tilt := math.NewQuatFromAxisAngle(math.Vec3{X: 1}, 0.4)
	spin := math.NewQuatFromAxisAngle(math.NewVec3Up(), s.rotation)
	s.cubeTransform.SetRotation(spin.Mul(tilt))
	return s.graph.SetLocalTransform(s.cubeNode, s.cubeTransform.GetLocal())
}

func (s *demoState) frameComplete(cfg *engine.ApplicationConfig) engine.FrameComplete {
	return func(frameIndex uint64, pixels []float32, width, height uint32) error {
		if s.outputPath == "" || frameIndex != cfg.MaxFrames-1 {
			return nil
		}
		return writePNG(s.outputPath, pixels, width, height)
	}
}

func writePNG(path string, pixels []float32, width, height uint32) error {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			i := (y*width + x) * 4
			img.SetRGBA(int(x), int(y), color.RGBA{
				R: toByte(pixels[i]),
				G: toByte(pixels[i+1]),
				B: toByte(pixels[i+2]),
				A: 255,
			})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame dump '%s': %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	core.LogInfo("frame written to %s", path)
	return nil
}

func toByte(v float32) uint8 {
	return uint8(math.Saturate(v) * 255)
}

func checkerImage(size, cells int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	cell := size / cells
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{R: 40, G: 40, B: 40, A: 255}
			if (x/cell+y/cell)%2 == 0 {
				c = color.RGBA{R: 230, G: 230, B: 230, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}
