package core

const frameAvgCount = 30

// FrameMetrics keeps a rolling frame-time average and a once-per-second
// FPS counter for the host loop. Not safe for concurrent use; the frame
// loop is single threaded.
type FrameMetrics struct {
	avgCounter         uint8
	msTimes            [frameAvgCount]float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
}

func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{}
}

// Update records one frame's elapsed time, in seconds.
func (m *FrameMetrics) Update(frameElapsed float64) {
	frameMS := frameElapsed * 1000.0
	m.msTimes[m.avgCounter] = frameMS
	if m.avgCounter == frameAvgCount-1 {
		sum := 0.0
		for i := 0; i < frameAvgCount; i++ {
			sum += m.msTimes[i]
		}
		m.msAvg = sum / float64(frameAvgCount)
	}
	m.avgCounter = (m.avgCounter + 1) % frameAvgCount

	m.accumulatedFrameMS += frameMS
	if m.accumulatedFrameMS > 1000 {
		m.fps = float64(m.frames)
		m.accumulatedFrameMS -= 1000
		m.frames = 0
	}
	m.frames++
}

func (m *FrameMetrics) FPS() float64 {
	return m.fps
}

// FrameTime returns the rolling average frame time in milliseconds.
func (m *FrameMetrics) FrameTime() float64 {
	return m.msAvg
}
