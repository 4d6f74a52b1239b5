package ports

import (
	"image"
)

// DebugSink abstracts debug output for a run.
// It allows saving sampled frames and run metadata for inspection.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveRunJSON saves the run metadata as JSON.
	SaveRunJSON(data []byte) error

	// SaveFrame saves a side-by-side view of an input frame and its result.
	SaveFrame(index int, input, output image.Image) error
}
