package soft

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
)

// refCounted implements the shared handle semantics: resources start
// with one reference and free their backing storage when the last
// holder releases them.
type refCounted struct {
	refs   atomic.Int32
	id     string
	name   string
	onFree func()
	freed  atomic.Bool
}

func initRefCounted(rc *refCounted, name string, onFree func()) {
	rc.id = uuid.NewString()
	rc.name = name
	rc.onFree = onFree
	rc.refs.Store(1)
}

func (r *refCounted) Retain() {
	if r.freed.Load() {
		core.LogError("retain on destroyed resource '%s'", r.name)
		return
	}
	r.refs.Add(1)
}

func (r *refCounted) Release() {
	if r.refs.Add(-1) == 0 {
		r.freed.Store(true)
		if r.onFree != nil {
			r.onFree()
		}
	}
}

func (r *refCounted) DebugID() string {
	return r.id
}

// stateTracking is the per-resource usage state shared by the device
// and command lists. The soft device always validates.
type stateTracking struct {
	current   rhi.ResourceState
	permanent bool
	// tracked is false until BeginTracking declares the state, unless
	// the resource was created with KeepInitialState.
	tracked bool
}

func (st *stateTracking) transition(name string, state rhi.ResourceState) error {
	if !st.tracked {
		return fmt.Errorf("resource '%s' has no tracked state; call BeginTracking first: %w", name, core.ErrResourceStateViolation)
	}
	if st.permanent {
		if st.current.Has(state) {
			return nil
		}
		return fmt.Errorf("resource '%s' is frozen in state %s, cannot transition to %s: %w",
			name, st.current, state, core.ErrPermanentState)
	}
	st.current = state
	return nil
}

type buffer struct {
	refCounted
	desc  rhi.BufferDesc
	state stateTracking
	data  []byte
}

func (b *buffer) Desc() rhi.BufferDesc {
	return b.desc
}

type texture struct {
	refCounted
	desc  rhi.TextureDesc
	state stateTracking
	// pixels stores RGBA float values row-major regardless of format;
	// the format governs semantics, not precision. Depth formats use
	// the first channel.
	pixels []float32
}

func (t *texture) Desc() rhi.TextureDesc {
	return t.desc
}

func (t *texture) load(x, y int) [4]float32 {
	w := int(t.desc.Width)
	h := int(t.desc.Height)
	if x < 0 || y < 0 || x >= w || y >= h {
		return [4]float32{}
	}
	i := (y*w + x) * 4
	return [4]float32{t.pixels[i], t.pixels[i+1], t.pixels[i+2], t.pixels[i+3]}
}

func (t *texture) store(x, y int, v [4]float32) {
	w := int(t.desc.Width)
	h := int(t.desc.Height)
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	i := (y*w + x) * 4
	t.pixels[i] = v[0]
	t.pixels[i+1] = v[1]
	t.pixels[i+2] = v[2]
	t.pixels[i+3] = v[3]
}

type framebuffer struct {
	desc rhi.FramebufferDesc
	info rhi.FramebufferInfo
}

func (f *framebuffer) Desc() rhi.FramebufferDesc {
	return f.desc
}

func (f *framebuffer) Info() rhi.FramebufferInfo {
	return f.info
}

type bindingLayout struct {
	desc rhi.BindingLayoutDesc
}

func (l *bindingLayout) Desc() rhi.BindingLayoutDesc {
	return l.desc
}

type bindingSet struct {
	desc rhi.BindingSetDesc
}

func (s *bindingSet) Desc() rhi.BindingSetDesc {
	return s.desc
}

type graphicsPipeline struct {
	desc  rhi.GraphicsPipelineDesc
	fbKey string
	vs    vertexFn
	ps    pixelFn
}

func (p *graphicsPipeline) Desc() rhi.GraphicsPipelineDesc {
	return p.desc
}

func (p *graphicsPipeline) FramebufferKey() string {
	return p.fbKey
}

type computePipeline struct {
	desc rhi.ComputePipelineDesc
	cs   computeFn
}

func (p *computePipeline) Desc() rhi.ComputePipelineDesc {
	return p.desc
}
