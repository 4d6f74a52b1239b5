package mocks

import (
	"image"
	"sync"

	"github.com/user/upscaler/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.Mutex

	enabled bool

	RunJSON []byte
	Frames  []int // indices passed to SaveFrame, in call order

	SaveFrameFunc func(index int, input, output image.Image) error
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{enabled: enabled}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveRunJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunJSON = data
	return nil
}

func (m *DebugSink) SaveFrame(index int, input, output image.Image) error {
	if m.SaveFrameFunc != nil {
		if err := m.SaveFrameFunc(index, input, output); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Frames = append(m.Frames, index)
	return nil
}

// SavedFrames returns a copy of the saved frame indices.
func (m *DebugSink) SavedFrames() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.Frames...)
}

var _ ports.DebugSink = (*DebugSink)(nil)
