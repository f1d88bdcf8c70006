package soft_test

import (
	"errors"
	"testing"

	"github.com/hollowtide/lumen/engine/core"
	"github.com/hollowtide/lumen/engine/renderer/rhi"
	"github.com/hollowtide/lumen/engine/renderer/soft"
)

func newTestBuffer(t *testing.T, device *soft.Device, desc rhi.BufferDesc) rhi.Buffer {
	t.Helper()
	b, err := device.CreateBuffer(desc)
	if err != nil {
		t.Fatalf("CreateBuffer(%q): %v", desc.DebugName, err)
	}
	return b
}

func TestCommandListRecordRequiresOpen(t *testing.T) {
	device := soft.New()
	cl := device.CreateCommandList()
	buf := newTestBuffer(t, device, rhi.BufferDesc{
		ByteSize:         64,
		DebugName:        "staging",
		InitialState:     rhi.ResourceStateCopyDest,
		KeepInitialState: true,
	})

	if err := cl.WriteBuffer(buf, make([]byte, 64), 0); !errors.Is(err, core.ErrInvalidCommandState) {
		t.Fatalf("WriteBuffer before Open = %v, want ErrInvalidCommandState", err)
	}

	if err := cl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := cl.WriteBuffer(buf, make([]byte, 64), 0); err != nil {
		t.Fatalf("WriteBuffer while recording: %v", err)
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := cl.WriteBuffer(buf, make([]byte, 64), 0); !errors.Is(err, core.ErrInvalidCommandState) {
		t.Fatalf("WriteBuffer after Close = %v, want ErrInvalidCommandState", err)
	}
}

func TestCommandListCloseWithoutOpenFails(t *testing.T) {
	device := soft.New()
	cl := device.CreateCommandList()

	if err := cl.Close(); !errors.Is(err, core.ErrInvalidCommandState) {
		t.Fatalf("Close without Open = %v, want ErrInvalidCommandState", err)
	}
}

func TestExecuteRequiresClosedCommandList(t *testing.T) {
	device := soft.New()
	cl := device.CreateCommandList()

	if err := device.ExecuteCommandList(cl); !errors.Is(err, core.ErrInvalidCommandState) {
		t.Fatalf("Execute before recording = %v, want ErrInvalidCommandState", err)
	}

	if err := cl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := device.ExecuteCommandList(cl); !errors.Is(err, core.ErrInvalidCommandState) {
		t.Fatalf("Execute while recording = %v, want ErrInvalidCommandState", err)
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := device.ExecuteCommandList(cl); err != nil {
		t.Fatalf("Execute after Close: %v", err)
	}
	if got := cl.State(); got != rhi.CommandListStateReady {
		t.Fatalf("state after execute = %d, want %d", got, rhi.CommandListStateReady)
	}
}

func TestWriteToUntrackedBufferIsViolation(t *testing.T) {
	device := soft.New()
	cl := device.CreateCommandList()
	buf := newTestBuffer(t, device, rhi.BufferDesc{
		ByteSize:       64,
		DebugName:      "untracked",
		IsVertexBuffer: true,
	})

	if err := cl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := cl.WriteBuffer(buf, make([]byte, 64), 0); !errors.Is(err, core.ErrResourceStateViolation) {
		t.Fatalf("WriteBuffer without tracking = %v, want ErrResourceStateViolation", err)
	}
}

func TestWriteToFrozenVertexBufferIsViolation(t *testing.T) {
	device := soft.New()
	cl := device.CreateCommandList()
	buf := newTestBuffer(t, device, rhi.BufferDesc{
		ByteSize:       64,
		DebugName:      "geometry",
		IsVertexBuffer: true,
	})

	if err := cl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := cl.BeginTrackingBufferState(buf, rhi.ResourceStateCopyDest); err != nil {
		t.Fatalf("BeginTrackingBufferState: %v", err)
	}
	if err := cl.WriteBuffer(buf, make([]byte, 64), 0); err != nil {
		t.Fatalf("initial upload: %v", err)
	}
	if err := cl.SetPermanentBufferState(buf, rhi.ResourceStateVertexBuffer); err != nil {
		t.Fatalf("SetPermanentBufferState: %v", err)
	}

	if err := cl.WriteBuffer(buf, make([]byte, 64), 0); !errors.Is(err, core.ErrResourceStateViolation) {
		t.Fatalf("WriteBuffer to frozen vertex buffer = %v, want ErrResourceStateViolation", err)
	}
}

func TestFrozenBufferRejectsTransition(t *testing.T) {
	device := soft.New()
	cl := device.CreateCommandList()
	buf := newTestBuffer(t, device, rhi.BufferDesc{
		ByteSize:      64,
		DebugName:     "indices",
		IsIndexBuffer: true,
	})

	if err := cl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := cl.BeginTrackingBufferState(buf, rhi.ResourceStateCopyDest); err != nil {
		t.Fatalf("BeginTrackingBufferState: %v", err)
	}
	if err := cl.SetPermanentBufferState(buf, rhi.ResourceStateIndexBuffer); err != nil {
		t.Fatalf("SetPermanentBufferState: %v", err)
	}

	if err := cl.SetBufferState(buf, rhi.ResourceStateCopyDest); !errors.Is(err, core.ErrPermanentState) {
		t.Fatalf("SetBufferState on frozen buffer = %v, want ErrPermanentState", err)
	}
	if err := cl.BeginTrackingBufferState(buf, rhi.ResourceStateCopyDest); !errors.Is(err, core.ErrPermanentState) {
		t.Fatalf("BeginTracking on frozen buffer = %v, want ErrPermanentState", err)
	}

	// Redundant freezes into a state the buffer already holds are valid.
	if err := cl.SetBufferState(buf, rhi.ResourceStateIndexBuffer); err != nil {
		t.Fatalf("SetBufferState to held state: %v", err)
	}
}

func TestTransitionWithoutTrackingIsViolation(t *testing.T) {
	device := soft.New()
	cl := device.CreateCommandList()
	buf := newTestBuffer(t, device, rhi.BufferDesc{
		ByteSize:  64,
		DebugName: "floating",
	})

	if err := cl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := cl.SetBufferState(buf, rhi.ResourceStateConstantBuffer); !errors.Is(err, core.ErrResourceStateViolation) {
		t.Fatalf("SetBufferState without tracking = %v, want ErrResourceStateViolation", err)
	}
}

func TestKeepInitialStateAllowsUpload(t *testing.T) {
	device := soft.New()
	cl := device.CreateCommandList()
	buf := newTestBuffer(t, device, rhi.BufferDesc{
		ByteSize:         256,
		DebugName:        "constants",
		IsConstantBuffer: true,
		InitialState:     rhi.ResourceStateConstantBuffer,
		KeepInitialState: true,
	})

	if err := cl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	// The upload gets an automatic barrier to CopyDest and back even
	// though the buffer lives in ConstantBuffer state.
	if err := cl.WriteBuffer(buf, make([]byte, 256), 0); err != nil {
		t.Fatalf("WriteBuffer to KeepInitialState buffer: %v", err)
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := device.ExecuteCommandList(cl); err != nil {
		t.Fatalf("ExecuteCommandList: %v", err)
	}
}

func TestFrozenTextureRejectsWrite(t *testing.T) {
	device := soft.New()
	cl := device.CreateCommandList()
	tex, err := device.CreateTexture(rhi.TextureDesc{
		Width:        4,
		Height:       4,
		Format:       rhi.FormatRGBA8Unorm,
		DebugName:    "albedo",
		InitialState: rhi.ResourceStateCopyDest,
	})
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}

	if err := cl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := cl.BeginTrackingTextureState(tex, rhi.ResourceStateCopyDest); err != nil {
		t.Fatalf("BeginTrackingTextureState: %v", err)
	}
	if err := cl.WriteTexture(tex, make([]float32, 4*4*4)); err != nil {
		t.Fatalf("initial upload: %v", err)
	}
	if err := cl.SetPermanentTextureState(tex, rhi.ResourceStateShaderResource); err != nil {
		t.Fatalf("SetPermanentTextureState: %v", err)
	}

	if err := cl.WriteTexture(tex, make([]float32, 4*4*4)); !errors.Is(err, core.ErrResourceStateViolation) {
		t.Fatalf("WriteTexture to frozen texture = %v, want ErrResourceStateViolation", err)
	}
}
