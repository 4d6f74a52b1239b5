package mocks

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/user/upscaler/pkg/ports"
)

// FrameSource is a mock implementation of ports.FrameSource. Frame i is a
// solid image whose red channel encodes i, so sinks can recover the order.
type FrameSource struct {
	VideoInfo ports.VideoInfo
	Frames    int

	// ErrAt makes Next fail with Err at that frame index when Err is set.
	ErrAt int
	Err   error

	// Delay is slept before each frame is returned.
	Delay time.Duration

	mu     sync.Mutex
	next   int
	closed bool
}

// NewFrameSource creates a source of n frames of the given size.
func NewFrameSource(width, height, n int) *FrameSource {
	return &FrameSource{
		VideoInfo: ports.VideoInfo{Width: width, Height: height, FPS: 30, FrameCount: n, Codec: "h264"},
		Frames:    n,
	}
}

func (m *FrameSource) Info() ports.VideoInfo {
	return m.VideoInfo
}

func (m *FrameSource) Next(ctx context.Context) (*image.RGBA, error) {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errors.New("source closed")
	}
	if m.Err != nil && m.next == m.ErrAt {
		return nil, m.Err
	}
	if m.next >= m.Frames {
		return nil, io.EOF
	}

	img := image.NewRGBA(image.Rect(0, 0, m.VideoInfo.Width, m.VideoInfo.Height))
	FillIndex(img, m.next)
	m.next++
	return img, nil
}

func (m *FrameSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *FrameSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.FrameSource = (*FrameSource)(nil)

// FillIndex paints img with a colour that encodes index.
func FillIndex(img *image.RGBA, index int) {
	c := color.RGBA{R: uint8(index), G: uint8(index >> 8), B: 0, A: 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
}

// ReadIndex recovers the index painted by FillIndex from the top-left pixel.
func ReadIndex(img image.Image) int {
	r, g, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	return int(r>>8) | int(g>>8)<<8
}

// FrameSink is a mock implementation of ports.FrameSink. It records the
// index decoded from each written frame.
type FrameSink struct {
	// WriteErrAt makes the write of that frame fail with WriteErr.
	WriteErrAt int
	WriteErr   error

	CloseErr error

	mu      sync.Mutex
	indices []int
	sizes   []image.Point
	closed  bool
	aborted bool
}

// NewFrameSink creates a new mock FrameSink.
func NewFrameSink() *FrameSink {
	return &FrameSink{}
}

func (m *FrameSink) WriteFrame(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil && len(m.indices) == m.WriteErrAt {
		return m.WriteErr
	}
	m.indices = append(m.indices, ReadIndex(img))
	m.sizes = append(m.sizes, img.Bounds().Size())
	return nil
}

func (m *FrameSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return m.CloseErr
}

func (m *FrameSink) Abort() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.aborted = true
	return nil
}

// Indices returns the decoded indices of written frames, in write order.
func (m *FrameSink) Indices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.indices...)
}

// Sizes returns the size of each written frame.
func (m *FrameSink) Sizes() []image.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]image.Point(nil), m.sizes...)
}

func (m *FrameSink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *FrameSink) Aborted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.aborted
}

var _ ports.FrameSink = (*FrameSink)(nil)

// Opener is a mock implementation of ports.SourceOpener and ports.SinkOpener.
type Opener struct {
	Source *FrameSource
	Sink   *FrameSink

	OpenSourceErr error
	OpenSinkErr   error

	mu          sync.Mutex
	sourceOpens []string
	sinkOpens   []string
	sinkOptions []ports.SinkOptions
}

func (m *Opener) OpenSource(ctx context.Context, location string) (ports.FrameSource, error) {
	m.mu.Lock()
	m.sourceOpens = append(m.sourceOpens, location)
	m.mu.Unlock()
	if m.OpenSourceErr != nil {
		return nil, m.OpenSourceErr
	}
	return m.Source, nil
}

func (m *Opener) OpenSink(ctx context.Context, location string, opts ports.SinkOptions) (ports.FrameSink, error) {
	m.mu.Lock()
	m.sinkOpens = append(m.sinkOpens, location)
	m.sinkOptions = append(m.sinkOptions, opts)
	m.mu.Unlock()
	if m.OpenSinkErr != nil {
		return nil, m.OpenSinkErr
	}
	return m.Sink, nil
}

// SourceOpens returns the locations passed to OpenSource.
func (m *Opener) SourceOpens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sourceOpens...)
}

// SinkOpens returns the locations passed to OpenSink.
func (m *Opener) SinkOpens() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sinkOpens...)
}

// SinkOptions returns the options passed to OpenSink.
func (m *Opener) SinkOptions() []ports.SinkOptions {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.SinkOptions(nil), m.sinkOptions...)
}

var (
	_ ports.SourceOpener = (*Opener)(nil)
	_ ports.SinkOpener   = (*Opener)(nil)
)

// Upscaler is a mock implementation of ports.Upscaler. By default it
// copies the source index into dst so the order survives the transform.
type Upscaler struct {
	UpscaleFunc func(ctx context.Context, src image.Image, dst *image.RGBA) error

	mu    sync.Mutex
	calls int
}

func (m *Upscaler) Upscale(ctx context.Context, src image.Image, dst *image.RGBA) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.UpscaleFunc != nil {
		return m.UpscaleFunc(ctx, src, dst)
	}
	FillIndex(dst, ReadIndex(src))
	return nil
}

// Calls returns how many times Upscale was called.
func (m *Upscaler) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ ports.Upscaler = (*Upscaler)(nil)
