// Package filesink writes debug output for a run to a directory.
package filesink

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/user/upscaler/pkg/ports"
)

const (
	labelHeight = 24
	gap         = 8
)

var (
	background = color.RGBA{R: 32, G: 32, B: 32, A: 255}
	labelBand  = color.RGBA{R: 56, G: 56, B: 56, A: 255}
	labelColor = color.RGBA{R: 230, G: 230, B: 230, A: 255}
)

// Sink saves debug output to files under baseDir.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
	format   ports.ImageFormat
	quality  int
}

// Option configures a Sink.
type Option func(*Sink)

// WithFormat sets the image format of saved frames. quality applies to
// JPEG only; 0 selects the encoder default.
func WithFormat(format ports.ImageFormat, quality int) Option {
	return func(s *Sink) {
		s.format = format
		s.quality = quality
	}
}

// New creates a new Sink. Frames are saved as PNG unless WithFormat says
// otherwise.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer, opts ...Option) *Sink {
	s := &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
		format:   ports.FormatPNG,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveRunJSON saves the run metadata as run.json.
func (s *Sink) SaveRunJSON(data []byte) error {
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, "run.json"), data)
}

// SaveFrame writes frames/frame-NNNNNN.png (or .jpg) showing the input enlarged with
// nearest-neighbour sampling on the left and the upscaled output on the right.
func (s *Sink) SaveFrame(index int, input, output image.Image) error {
	dir := filepath.Join(s.baseDir, "frames")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}

	ob := output.Bounds()
	w, h := ob.Dx(), ob.Dy()
	canvas := s.renderer.CreateCanvas(2*w+3*gap, h+labelHeight+2*gap, background)

	canvas.DrawRect(gap, gap, w, labelHeight, labelBand)
	canvas.DrawRect(2*gap+w, gap, w, labelHeight, labelBand)

	style := ports.TextStyle{FontSize: 14, Color: labelColor, Align: ports.AlignCenter}
	ib := input.Bounds()
	canvas.DrawText(fmt.Sprintf("#%d input %dx%d", index, ib.Dx(), ib.Dy()), gap+w/2, gap+labelHeight/2, style)
	canvas.DrawText(fmt.Sprintf("output %dx%d", w, h), 2*gap+w+w/2, gap+labelHeight/2, style)

	canvas.DrawImage(s.renderer.ResizeImage(input, w, h), gap, gap+labelHeight)
	canvas.DrawImage(output, 2*gap+w, gap+labelHeight)

	data, err := s.renderer.EncodeImage(canvas.ToImage(), s.format, s.quality)
	if err != nil {
		return fmt.Errorf("encode frame %d: %w", index, err)
	}
	ext := "png"
	if s.format == ports.FormatJPEG {
		ext = "jpg"
	}
	return s.fs.WriteFile(filepath.Join(dir, fmt.Sprintf("frame-%06d.%s", index, ext)), data)
}

var _ ports.DebugSink = (*Sink)(nil)
