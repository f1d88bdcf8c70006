package rhi

// CommandListState is the lifecycle of a command list. Recording calls
// are only legal between Open and Close; Execute is only legal after
// Close. Submitting returns the list to Ready for the next frame.
type CommandListState int

const (
	CommandListStateReady CommandListState = iota
	CommandListStateRecording
	CommandListStateRecordingEnded
	CommandListStateSubmitted
)

// CommandList records GPU work for one frame. All recorded operations
// execute in program order on submission; the only reordering permitted
// is automatic state-transition insertion, which preserves the
// dependencies the recorded order implies.
//
// Recording outside an Open/Close bracket fails with
// core.ErrInvalidCommandState. A recording error leaves the list
// unusable for the frame: the host must treat it as fatal rather than
// submit a partially-recorded list.
type CommandList interface {
	Open() error
	Close() error
	State() CommandListState

	// BeginTrackingBufferState declares the state the buffer is in when
	// the list starts using it. Required once for resources created
	// without KeepInitialState.
	BeginTrackingBufferState(b Buffer, state ResourceState) error
	BeginTrackingTextureState(t Texture, state ResourceState) error

	// SetBufferState records a transition to the requested state.
	SetBufferState(b Buffer, state ResourceState) error
	SetTextureState(t Texture, state ResourceState) error

	// SetPermanentBufferState transitions the buffer and freezes it in
	// that state for its remaining lifetime.
	SetPermanentBufferState(b Buffer, state ResourceState) error
	SetPermanentTextureState(t Texture, state ResourceState) error

	// WriteBuffer records a data upload. The buffer must be in a
	// writable state at this point of the recording.
	WriteBuffer(b Buffer, data []byte, destOffset uint64) error
	// WriteTexture records a full-texture upload, data as RGBA float
	// scanlines.
	WriteTexture(t Texture, data []float32) error

	ClearColorTexture(t Texture, color [4]float32) error
	ClearDepthTexture(t Texture, depth float32) error

	SetGraphicsState(state GraphicsState) error
	DrawIndexed(args DrawArguments) error

	SetComputeState(state ComputeState) error
	Dispatch(groupsX, groupsY, groupsZ uint32) error
}
