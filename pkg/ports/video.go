package ports

import (
	"context"
	"image"
)

// VideoInfo describes a video stream.
type VideoInfo struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int    // 0 when unknown
	Codec      string // e.g. "h264", "av1"; empty when unknown
	Rotation   int    // display rotation in degrees clockwise: 0, 90, 180 or 270
}

// VideoProber reads stream properties from a file without decoding it.
type VideoProber interface {
	Probe(path string) (VideoInfo, error)
}

// FrameSource reads decoded frames in presentation order.
type FrameSource interface {
	// Info returns the stream properties known at open time.
	Info() VideoInfo

	// Next returns the next frame. Each call returns a newly allocated
	// image owned by the caller. Next returns io.EOF when the stream ends.
	Next(ctx context.Context) (*image.RGBA, error)

	// Close releases the source.
	Close() error
}

// SourceOpener opens a FrameSource for a location.
type SourceOpener interface {
	OpenSource(ctx context.Context, location string) (FrameSource, error)
}

// SinkOptions configures an output stream.
type SinkOptions struct {
	Width   int
	Height  int
	FPS     float64
	Quality int // CRF, 0 uses the encoder default
}

// FrameSink encodes frames in the order they are written.
type FrameSink interface {
	// WriteFrame encodes one frame. img is not retained after return.
	WriteFrame(img image.Image) error

	// Close finalizes the output.
	Close() error

	// Abort discards the output, removing any partially written file.
	Abort() error
}

// SinkOpener opens a FrameSink for a location.
type SinkOpener interface {
	OpenSink(ctx context.Context, location string, opts SinkOptions) (FrameSink, error)
}

// Upscaler is the per-frame transform. Implementations write the result
// into dst, which is sized to the output dimensions and reused across calls.
// A single Upscaler is never called concurrently.
type Upscaler interface {
	Upscale(ctx context.Context, src image.Image, dst *image.RGBA) error
}
