// Package nullsink provides a debug sink that discards everything.
package nullsink

import (
	"image"

	"github.com/user/upscaler/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
type Sink struct{}

// New creates a new Sink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

func (s *Sink) SaveRunJSON(data []byte) error {
	return nil
}

func (s *Sink) SaveFrame(index int, input, output image.Image) error {
	return nil
}

var _ ports.DebugSink = (*Sink)(nil)
