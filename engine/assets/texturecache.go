// Package assets loads image files into GPU textures and keeps them
// cached by path. A filesystem watcher marks entries stale when their
// backing file changes; the host decides when to reload.
package assets

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/image/draw"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// TextureData is one cached texture: the GPU handle plus the CPU-side
// mip chain (level 0 first) when mips were requested.
type TextureData struct {
	Texture   rhi.Texture
	Path      string
	Width     uint32
	Height    uint32
	MipLevels [][]float32
}

// TextureCache loads and deduplicates textures by path. A load failure
// is an initialization failure for the caller; the cache never hands
// out placeholder textures.
type TextureCache struct {
	device rhi.Device

	mutex    sync.RWMutex
	textures map[string]*TextureData
	stale    map[string]bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

func NewTextureCache(device rhi.Device) (*TextureCache, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("texture watcher: %w", err)
	}
	c := &TextureCache{
		device:   device,
		textures: make(map[string]*TextureData),
		stale:    make(map[string]bool),
		watcher:  watcher,
		done:     make(chan struct{}),
	}
	go c.watch()
	return c, nil
}

func (c *TextureCache) watch() {
	for {
		select {
		case <-c.done:
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			c.mutex.Lock()
			if _, cached := c.textures[event.Name]; cached {
				c.stale[event.Name] = true
				core.LogInfo("texture '%s' changed on disk, marked stale", event.Name)
			}
			c.mutex.Unlock()
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("texture watcher: %v", err)
		}
	}
}

// LoadTextureFromFile decodes a PNG file and uploads it through the
// command list, which must be recording. Repeated loads of the same
// path return the cached texture.
func (c *TextureCache) LoadTextureFromFile(path string, generateMips bool, cl rhi.CommandList) (*TextureData, error) {
	c.mutex.RLock()
	if data, ok := c.textures[path]; ok && !c.stale[path] {
		c.mutex.RUnlock()
		return data, nil
	}
	c.mutex.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture '%s': %w", path, core.ErrInitializationFailed)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture '%s': %v: %w", path, err, core.ErrInitializationFailed)
	}

	data, err := c.LoadTextureFromImage(filepath.Base(path), img, generateMips, cl)
	if err != nil {
		return nil, err
	}
	data.Path = path

	c.mutex.Lock()
	c.textures[path] = data
	delete(c.stale, path)
	c.mutex.Unlock()
	if err := c.watcher.Add(path); err != nil {
		core.LogWarn("cannot watch texture '%s': %v", path, err)
	}
	return data, nil
}

// LoadTextureFromImage uploads an in-memory image. The texture comes
// out frozen in the shader-resource state.
func (c *TextureCache) LoadTextureFromImage(name string, img image.Image, generateMips bool, cl rhi.CommandList) (*TextureData, error) {
	bounds := img.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("texture '%s' is empty: %w", name, core.ErrInitializationFailed)
	}

	texture, err := c.device.CreateTexture(rhi.TextureDesc{
		Width:            width,
		Height:           height,
		Format:           rhi.FormatRGBA8Unorm,
		DebugName:        name,
		SampleCount:      1,
		InitialState:     rhi.ResourceStateCopyDest,
		KeepInitialState: true,
	})
	if err != nil {
		return nil, err
	}

	data := &TextureData{
		Texture: texture,
		Width:   width,
		Height:  height,
	}
	data.MipLevels = append(data.MipLevels, imageToFloats(img))
	if generateMips {
		level := img
		for level.Bounds().Dx() > 1 || level.Bounds().Dy() > 1 {
			level = downsample(level)
			data.MipLevels = append(data.MipLevels, imageToFloats(level))
		}
	}

	if err := cl.WriteTexture(texture, data.MipLevels[0]); err != nil {
		return nil, err
	}
	if err := cl.SetPermanentTextureState(texture, rhi.ResourceStateShaderResource); err != nil {
		return nil, err
	}
	core.LogDebug("loaded texture '%s' (%dx%d, %d mip levels)", name, width, height, len(data.MipLevels))
	return data, nil
}

// IsStale reports whether the file behind a cached texture has changed
// since it was loaded.
func (c *TextureCache) IsStale(path string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.stale[path]
}

// Close stops the watcher and releases every cached texture.
func (c *TextureCache) Close() {
	close(c.done)
	c.watcher.Close()

	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, data := range c.textures {
		data.Texture.Release()
	}
	c.textures = make(map[string]*TextureData)
}

func downsample(img image.Image) image.Image {
	bounds := img.Bounds()
	w := max(bounds.Dx()/2, 1)
	h := max(bounds.Dy()/2, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func imageToFloats(img image.Image) []float32 {
	bounds := img.Bounds()
	out := make([]float32, 0, bounds.Dx()*bounds.Dy()*4)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			out = append(out,
				float32(r)/0xffff,
				float32(g)/0xffff,
				float32(b)/0xffff,
				float32(a)/0xffff)
		}
	}
	return out
}
