package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/user/upscaler/pkg/ports"
)

// sink feeds raw RGBA frames to an ffmpeg H.264 encoder.
type sink struct {
	path   string
	width  int
	height int
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *bytes.Buffer
	logger ports.Logger

	mu      sync.Mutex
	scratch *image.RGBA
	frames  int
	closed  bool
}

// OpenSink starts an encoder writing an H.264 MP4 to location.
func (a *Adapter) OpenSink(ctx context.Context, location string, opts ports.SinkOptions) (ports.FrameSink, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid output size %dx%d", opts.Width, opts.Height)
	}
	// libx264 with yuv420p needs even dimensions.
	if opts.Width%2 != 0 || opts.Height%2 != 0 {
		return nil, fmt.Errorf("output size %dx%d must be even", opts.Width, opts.Height)
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = 30
		a.logger.Warn("Unknown frame rate, using %.0f fps", fps)
	}
	crf := opts.Quality
	if crf <= 0 || crf > 51 {
		crf = DefaultCRF
	}

	f, err := os.Create(location)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	f.Close()

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
		"-crf", strconv.Itoa(crf),
		"-tag:v", "avc1",
		"-movflags", "+faststart",
		location,
	}
	a.logger.Debug("Running %s %s", a.path, strings.Join(args, " "))

	cmd := exec.Command(a.path, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		os.Remove(location)
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		os.Remove(location)
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return &sink{
		path:   location,
		width:  opts.Width,
		height: opts.Height,
		cmd:    cmd,
		stdin:  stdin,
		stderr: stderr,
		logger: a.logger,
	}, nil
}

// WriteFrame encodes img. Images that are not tightly packed RGBA of the
// output size are converted through a scratch buffer first.
func (s *sink) WriteFrame(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	b := img.Bounds()
	if b.Dx() != s.width || b.Dy() != s.height {
		return fmt.Errorf("frame %d is %dx%d, expected %dx%d", s.frames, b.Dx(), b.Dy(), s.width, s.height)
	}

	pix := s.packed(img)
	if _, err := s.stdin.Write(pix); err != nil {
		return fmt.Errorf("write frame %d: %w", s.frames, err)
	}
	s.frames++
	return nil
}

func (s *sink) packed(img image.Image) []byte {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*s.width {
		return rgba.Pix[:4*s.width*s.height]
	}
	if s.scratch == nil {
		s.scratch = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	}
	draw.Draw(s.scratch, s.scratch.Bounds(), img, img.Bounds().Min, draw.Src)
	return s.scratch.Pix
}

// Close flushes the encoder and waits for the file to be finalized.
func (s *sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.stdin.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close encoder input: %w", err)
	}
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encoder: %w: %s", err, lastLine(s.stderr.String()))
	}
	s.logger.Debug("Encoder finished after %d frames", s.frames)
	return nil
}

// Abort kills the encoder and removes the partial output.
func (s *sink) Abort() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		s.stdin.Close()
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
	}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove partial output: %w", err)
	}
	s.logger.Debug("Removed partial output %s", s.path)
	return nil
}
