package soft

import (
	"fmt"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// commandList records work as closures replayed in program order by
// Device.ExecuteCommandList. State tracking and validation happen at
// record time: the recorded order is the execution order, so the
// tracked state at any record point is the state the resource will be
// in when the command runs.
type commandList struct {
	device   *Device
	state    rhi.CommandListState
	commands []func() error

	graphics      rhi.GraphicsState
	graphicsValid bool
	compute       rhi.ComputeState
	computeValid  bool
}

func (c *commandList) Open() error {
	if c.state == rhi.CommandListStateRecording {
		return fmt.Errorf("command list already open: %w", core.ErrInvalidCommandState)
	}
	c.commands = nil
	c.graphicsValid = false
	c.computeValid = false
	c.state = rhi.CommandListStateRecording
	return nil
}

func (c *commandList) Close() error {
	if c.state != rhi.CommandListStateRecording {
		return fmt.Errorf("close requires an open command list: %w", core.ErrInvalidCommandState)
	}
	c.state = rhi.CommandListStateRecordingEnded
	return nil
}

func (c *commandList) State() rhi.CommandListState {
	return c.state
}

func (c *commandList) requireRecording() error {
	if c.state != rhi.CommandListStateRecording {
		return fmt.Errorf("command recorded outside an open/close bracket: %w", core.ErrInvalidCommandState)
	}
	return nil
}

func asBuffer(b rhi.Buffer) (*buffer, error) {
	sb, ok := b.(*buffer)
	if !ok {
		return nil, fmt.Errorf("buffer was not created by this device")
	}
	return sb, nil
}

func asTexture(t rhi.Texture) (*texture, error) {
	st, ok := t.(*texture)
	if !ok {
		return nil, fmt.Errorf("texture was not created by this device")
	}
	return st, nil
}

func (c *commandList) BeginTrackingBufferState(b rhi.Buffer, state rhi.ResourceState) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	sb, err := asBuffer(b)
	if err != nil {
		return err
	}
	if sb.state.permanent {
		return fmt.Errorf("buffer '%s': %w", sb.name, core.ErrPermanentState)
	}
	sb.state.tracked = true
	sb.state.current = state
	return nil
}

func (c *commandList) BeginTrackingTextureState(t rhi.Texture, state rhi.ResourceState) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	st, err := asTexture(t)
	if err != nil {
		return err
	}
	if st.state.permanent {
		return fmt.Errorf("texture '%s': %w", st.name, core.ErrPermanentState)
	}
	st.state.tracked = true
	st.state.current = state
	return nil
}

func (c *commandList) SetBufferState(b rhi.Buffer, state rhi.ResourceState) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	sb, err := asBuffer(b)
	if err != nil {
		return err
	}
	return sb.state.transition(sb.name, state)
}

func (c *commandList) SetTextureState(t rhi.Texture, state rhi.ResourceState) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	st, err := asTexture(t)
	if err != nil {
		return err
	}
	return st.state.transition(st.name, state)
}

func (c *commandList) SetPermanentBufferState(b rhi.Buffer, state rhi.ResourceState) error {
	if err := c.SetBufferState(b, state); err != nil {
		return err
	}
	sb, _ := asBuffer(b)
	sb.state.permanent = true
	return nil
}

func (c *commandList) SetPermanentTextureState(t rhi.Texture, state rhi.ResourceState) error {
	if err := c.SetTextureState(t, state); err != nil {
		return err
	}
	st, _ := asTexture(t)
	st.state.permanent = true
	return nil
}

func (c *commandList) WriteBuffer(b rhi.Buffer, data []byte, destOffset uint64) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	sb, err := asBuffer(b)
	if err != nil {
		return err
	}
	// An automatic barrier moves tracked, non-permanent resources to
	// CopyDest and back around the upload; everything else is a state
	// violation.
	if !sb.state.tracked || (sb.state.permanent && !sb.state.current.IsWritable()) {
		return fmt.Errorf("write to buffer '%s' in state %s: %w",
			sb.name, sb.state.current, core.ErrResourceStateViolation)
	}
	if destOffset+uint64(len(data)) > sb.desc.ByteSize {
		return fmt.Errorf("write past end of buffer '%s'", sb.name)
	}
	staged := make([]byte, len(data))
	copy(staged, data)
	c.commands = append(c.commands, func() error {
		copy(sb.data[destOffset:], staged)
		return nil
	})
	return nil
}

func (c *commandList) WriteTexture(t rhi.Texture, data []float32) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	st, err := asTexture(t)
	if err != nil {
		return err
	}
	if !st.state.tracked || (st.state.permanent && !st.state.current.IsWritable()) {
		return fmt.Errorf("write to texture '%s' in state %s: %w",
			st.name, st.state.current, core.ErrResourceStateViolation)
	}
	if len(data) != len(st.pixels) {
		return fmt.Errorf("texture '%s': upload size %d does not match %d", st.name, len(data), len(st.pixels))
	}
	staged := make([]float32, len(data))
	copy(staged, data)
	c.commands = append(c.commands, func() error {
		copy(st.pixels, staged)
		return nil
	})
	return nil
}

func (c *commandList) ClearColorTexture(t rhi.Texture, color [4]float32) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	st, err := asTexture(t)
	if err != nil {
		return err
	}
	clearState := rhi.ResourceStateRenderTarget
	if st.desc.IsUAV && !st.desc.IsRenderTarget {
		clearState = rhi.ResourceStateUnorderedAccess
	}
	if err := c.transitionTextureForUse(st, clearState); err != nil {
		return err
	}
	c.commands = append(c.commands, func() error {
		for i := 0; i < len(st.pixels); i += 4 {
			st.pixels[i] = color[0]
			st.pixels[i+1] = color[1]
			st.pixels[i+2] = color[2]
			st.pixels[i+3] = color[3]
		}
		return nil
	})
	return nil
}

func (c *commandList) ClearDepthTexture(t rhi.Texture, depth float32) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	st, err := asTexture(t)
	if err != nil {
		return err
	}
	if !st.desc.Format.IsDepth() {
		return fmt.Errorf("depth clear of non-depth texture '%s'", st.name)
	}
	if err := c.transitionTextureForUse(st, rhi.ResourceStateDepthWrite); err != nil {
		return err
	}
	c.commands = append(c.commands, func() error {
		for i := 0; i < len(st.pixels); i += 4 {
			st.pixels[i] = depth
		}
		return nil
	})
	return nil
}

// transitionForUse inserts the automatic barrier a bound resource
// needs: resources with tracked non-permanent state move to the
// required state, frozen resources must already include it.
func (c *commandList) transitionBufferForUse(b *buffer, state rhi.ResourceState) error {
	if b.state.permanent || b.state.current.Has(state) {
		if b.state.current.Has(state) {
			return nil
		}
		return fmt.Errorf("buffer '%s' frozen in %s, needs %s: %w",
			b.name, b.state.current, state, core.ErrResourceStateViolation)
	}
	return b.state.transition(b.name, state)
}

func (c *commandList) transitionTextureForUse(t *texture, state rhi.ResourceState) error {
	if t.state.permanent || t.state.current.Has(state) {
		if t.state.current.Has(state) {
			return nil
		}
		return fmt.Errorf("texture '%s' frozen in %s, needs %s: %w",
			t.name, t.state.current, state, core.ErrResourceStateViolation)
	}
	return t.state.transition(t.name, state)
}

func (c *commandList) transitionBindings(set rhi.BindingSet) error {
	if set == nil {
		return nil
	}
	for _, item := range set.Desc().Items {
		switch item.Type {
		case rhi.BindingTypeConstantBuffer:
			b, err := asBuffer(item.Resource.(rhi.Buffer))
			if err != nil {
				return err
			}
			if err := c.transitionBufferForUse(b, rhi.ResourceStateConstantBuffer); err != nil {
				return err
			}
		case rhi.BindingTypeTextureSRV:
			t, err := asTexture(item.Resource.(rhi.Texture))
			if err != nil {
				return err
			}
			if err := c.transitionTextureForUse(t, rhi.ResourceStateShaderResource); err != nil {
				return err
			}
		case rhi.BindingTypeTextureUAV:
			t, err := asTexture(item.Resource.(rhi.Texture))
			if err != nil {
				return err
			}
			if err := c.transitionTextureForUse(t, rhi.ResourceStateUnorderedAccess); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *commandList) SetGraphicsState(state rhi.GraphicsState) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	if state.Pipeline == nil || state.Framebuffer == nil {
		return fmt.Errorf("graphics state requires a pipeline and a framebuffer")
	}
	if state.Pipeline.FramebufferKey() != state.Framebuffer.Info().Key() {
		return fmt.Errorf("pipeline was created for a different framebuffer format set")
	}
	for _, vb := range state.VertexBuffers {
		b, err := asBuffer(vb.Buffer)
		if err != nil {
			return err
		}
		if err := c.transitionBufferForUse(b, rhi.ResourceStateVertexBuffer); err != nil {
			return err
		}
	}
	if state.IndexBuffer.Buffer != nil {
		b, err := asBuffer(state.IndexBuffer.Buffer)
		if err != nil {
			return err
		}
		if err := c.transitionBufferForUse(b, rhi.ResourceStateIndexBuffer); err != nil {
			return err
		}
	}
	if err := c.transitionBindings(state.BindingSet); err != nil {
		return err
	}
	for _, att := range state.Framebuffer.Desc().ColorAttachments {
		t, err := asTexture(att)
		if err != nil {
			return err
		}
		if err := c.transitionTextureForUse(t, rhi.ResourceStateRenderTarget); err != nil {
			return err
		}
	}
	if state.Framebuffer.Desc().DepthAttachment != nil {
		t, err := asTexture(state.Framebuffer.Desc().DepthAttachment)
		if err != nil {
			return err
		}
		if err := c.transitionTextureForUse(t, rhi.ResourceStateDepthWrite); err != nil {
			return err
		}
	}
	c.graphics = state
	c.graphicsValid = true
	c.computeValid = false
	return nil
}

func (c *commandList) DrawIndexed(args rhi.DrawArguments) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	if !c.graphicsValid {
		return fmt.Errorf("draw without graphics state: %w", core.ErrInvalidCommandState)
	}
	state := c.graphics
	c.commands = append(c.commands, func() error {
		return rasterizeDrawIndexed(state, args)
	})
	return nil
}

func (c *commandList) SetComputeState(state rhi.ComputeState) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	if state.Pipeline == nil {
		return fmt.Errorf("compute state requires a pipeline")
	}
	if err := c.transitionBindings(state.BindingSet); err != nil {
		return err
	}
	c.compute = state
	c.computeValid = true
	c.graphicsValid = false
	return nil
}

func (c *commandList) Dispatch(groupsX, groupsY, groupsZ uint32) error {
	if err := c.requireRecording(); err != nil {
		return err
	}
	if !c.computeValid {
		return fmt.Errorf("dispatch without compute state: %w", core.ErrInvalidCommandState)
	}
	state := c.compute
	c.commands = append(c.commands, func() error {
		return dispatchCompute(state, groupsX, groupsY, groupsZ)
	})
	return nil
}
