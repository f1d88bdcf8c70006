package assets

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/renderer/soft"
)

func checkerImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{A: 255}
			if (x+y)%2 == 0 {
				c.R, c.G, c.B = 255, 255, 255
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestLoadTextureFromImage(t *testing.T) {
	device := soft.New()
	cache, err := NewTextureCache(device)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	cl := device.CreateCommandList()
	if err := cl.Open(); err != nil {
		t.Fatal(err)
	}
	data, err := cache.LoadTextureFromImage("checker", checkerImage(8), true, cl)
	if err != nil {
		t.Fatal(err)
	}
	if err := cl.Close(); err != nil {
		t.Fatal(err)
	}
	if err := device.ExecuteCommandList(cl); err != nil {
		t.Fatal(err)
	}

	// 8 -> 4 -> 2 -> 1
	if len(data.MipLevels) != 4 {
		t.Fatalf("mip levels = %d, want 4", len(data.MipLevels))
	}
	if len(data.MipLevels[3]) != 4 {
		t.Fatalf("last mip has %d floats, want one RGBA pixel", len(data.MipLevels[3]))
	}

	pixels, err := device.ReadTexture(data.Texture)
	if err != nil {
		t.Fatal(err)
	}
	if pixels[0] != 1 || pixels[3] != 1 {
		t.Fatalf("texel (0,0) = %v, want white", pixels[:4])
	}
	if pixels[4] != 0 {
		t.Fatalf("texel (1,0) red = %v, want black", pixels[4])
	}
}

func TestLoadedTextureIsFrozen(t *testing.T) {
	device := soft.New()
	cache, err := NewTextureCache(device)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	cl := device.CreateCommandList()
	if err := cl.Open(); err != nil {
		t.Fatal(err)
	}
	data, err := cache.LoadTextureFromImage("pixel", checkerImage(2), false, cl)
	if err != nil {
		t.Fatal(err)
	}

	// The upload froze the texture in the shader-resource state, so a
	// second write must be rejected.
	err = cl.WriteTexture(data.Texture, make([]float32, 2*2*4))
	if !errors.Is(err, core.ErrResourceStateViolation) {
		t.Fatalf("write to frozen texture: err = %v", err)
	}
}
