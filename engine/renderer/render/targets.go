package render

import (
	"fmt"

	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// RenderTargetSet is a bundle of per-frame render targets sized to the
// output surface. Sets are destroyed wholesale and recreated on resize,
// never resized in place.
type RenderTargetSet interface {
	Init(device rhi.Device, width, height uint32) error
	Clear(cl rhi.CommandList) error
	Size() (uint32, uint32)
	Release()
}

// GBufferRenderTargets is the geometry-pass output: depth plus the
// three color planes the lighting pass reads back.
type GBufferRenderTargets struct {
	Depth          rhi.Texture // D32
	GBufferDiffuse rhi.Texture // RGBA8
	GBufferNormals rhi.Texture // RGBA16F, world-space
	GBufferMotion  rhi.Texture // RG16F, screen-space pixels

	GBufferFramebuffer rhi.Framebuffer

	width  uint32
	height uint32
}

func (t *GBufferRenderTargets) Init(device rhi.Device, width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("gbuffer targets: zero size %dx%d", width, height)
	}
	t.width, t.height = width, height

	colorDesc := rhi.TextureDesc{
		Width:            width,
		Height:           height,
		SampleCount:      1,
		IsRenderTarget:   true,
		InitialState:     rhi.ResourceStateRenderTarget,
		KeepInitialState: true,
	}

	var err error
	colorDesc.Format = rhi.FormatRGBA8Unorm
	colorDesc.DebugName = "GBufferDiffuse"
	if t.GBufferDiffuse, err = device.CreateTexture(colorDesc); err != nil {
		return err
	}
	colorDesc.Format = rhi.FormatRGBA16Float
	colorDesc.DebugName = "GBufferNormals"
	if t.GBufferNormals, err = device.CreateTexture(colorDesc); err != nil {
		return err
	}
	colorDesc.Format = rhi.FormatRG16Float
	colorDesc.DebugName = "GBufferMotion"
	if t.GBufferMotion, err = device.CreateTexture(colorDesc); err != nil {
		return err
	}

	depthDesc := colorDesc
	depthDesc.Format = rhi.FormatD32Float
	depthDesc.DebugName = "GBufferDepth"
	depthDesc.InitialState = rhi.ResourceStateDepthWrite
	if t.Depth, err = device.CreateTexture(depthDesc); err != nil {
		return err
	}

	t.GBufferFramebuffer, err = device.CreateFramebuffer(rhi.FramebufferDesc{
		ColorAttachments: []rhi.Texture{t.GBufferDiffuse, t.GBufferNormals, t.GBufferMotion},
		DepthAttachment:  t.Depth,
	})
	return err
}

func (t *GBufferRenderTargets) Clear(cl rhi.CommandList) error {
	if err := cl.ClearDepthTexture(t.Depth, 1.0); err != nil {
		return err
	}
	for _, tex := range []rhi.Texture{t.GBufferDiffuse, t.GBufferNormals, t.GBufferMotion} {
		if err := cl.ClearColorTexture(tex, [4]float32{}); err != nil {
			return err
		}
	}
	return nil
}

func (t *GBufferRenderTargets) Size() (uint32, uint32) {
	return t.width, t.height
}

func (t *GBufferRenderTargets) Release() {
	for _, tex := range []rhi.Texture{t.Depth, t.GBufferDiffuse, t.GBufferNormals, t.GBufferMotion} {
		if tex != nil {
			tex.Release()
		}
	}
	t.Depth, t.GBufferDiffuse, t.GBufferNormals, t.GBufferMotion = nil, nil, nil, nil
	t.GBufferFramebuffer = nil
}

// ShadedColorTargets extends the g-buffer set with the lighting pass
// output, a UAV the composite blit reads from.
type ShadedColorTargets struct {
	GBufferRenderTargets

	ShadedColor rhi.Texture // RGBA16F
}

func (t *ShadedColorTargets) Init(device rhi.Device, width, height uint32) error {
	if err := t.GBufferRenderTargets.Init(device, width, height); err != nil {
		return err
	}
	var err error
	t.ShadedColor, err = device.CreateTexture(rhi.TextureDesc{
		Width:            width,
		Height:           height,
		Format:           rhi.FormatRGBA16Float,
		DebugName:        "ShadedColor",
		SampleCount:      1,
		IsUAV:            true,
		InitialState:     rhi.ResourceStateUnorderedAccess,
		KeepInitialState: true,
	})
	return err
}

func (t *ShadedColorTargets) Clear(cl rhi.CommandList) error {
	if err := t.GBufferRenderTargets.Clear(cl); err != nil {
		return err
	}
	return cl.ClearColorTexture(t.ShadedColor, [4]float32{})
}

func (t *ShadedColorTargets) Release() {
	if t.ShadedColor != nil {
		t.ShadedColor.Release()
		t.ShadedColor = nil
	}
	t.GBufferRenderTargets.Release()
}
