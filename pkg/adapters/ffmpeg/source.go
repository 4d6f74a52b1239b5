package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/user/upscaler/pkg/ports"
)

// source streams decoded frames from an ffmpeg child process.
type source struct {
	info   ports.VideoInfo
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *bytes.Buffer
	logger ports.Logger

	mu     sync.Mutex
	frames int
	done   bool
	closed bool
}

// OpenSource probes location and starts decoding it to raw RGBA frames.
func (a *Adapter) OpenSource(ctx context.Context, location string) (ports.FrameSource, error) {
	if _, err := os.Stat(location); err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}

	info, err := a.probe(ctx, location)
	if err != nil {
		return nil, err
	}
	if info.Width <= 0 || info.Height <= 0 {
		return nil, fmt.Errorf("%w: %s has no frame size", ErrNoVideoStream, location)
	}

	if info.Rotation != 0 {
		a.logger.Warn("Ignoring %d degree display rotation of input", info.Rotation)
	}
	args := decodeArgs(location, info)
	a.logger.Debug("Running %s %s", a.path, strings.Join(args, " "))

	cmd := exec.Command(a.path, args...)
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	a.logger.Debug("Decoding %dx%d %s at %.3f fps", info.Width, info.Height, info.Codec, info.FPS)

	return &source{
		info:   info,
		cmd:    cmd,
		stdout: stdout,
		stderr: stderr,
		logger: a.logger,
	}, nil
}

// decodeArgs builds the ffmpeg command line for raw RGBA output. Frames stay
// in coded orientation and are forced to info's size, so every frame read
// from the pipe has exactly the expected stride.
func decodeArgs(location string, info ports.VideoInfo) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-noautorotate",
		"-i", location,
		"-map", "0:v:0",
		"-vf", fmt.Sprintf("scale=%d:%d", info.Width, info.Height),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	}
}

func (s *source) Info() ports.VideoInfo {
	return s.info
}

// Next reads one frame. A stream that ends exactly on a frame boundary
// after a clean exit is exhaustion; anything else is a read error.
func (s *source) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if s.done {
		return nil, io.EOF
	}

	img := image.NewRGBA(image.Rect(0, 0, s.info.Width, s.info.Height))
	_, err := io.ReadFull(s.stdout, img.Pix)
	switch {
	case err == nil:
		s.frames++
		return img, nil
	case errors.Is(err, io.EOF):
		s.done = true
		if werr := s.wait(); werr != nil {
			return nil, werr
		}
		s.logger.Debug("Decoder finished after %d frames", s.frames)
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
		if werr := s.wait(); werr != nil {
			return nil, werr
		}
		return nil, fmt.Errorf("%w: frame %d", ErrTruncatedFrame, s.frames)
	default:
		return nil, fmt.Errorf("read frame %d: %w", s.frames, err)
	}
}

func (s *source) wait() error {
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg decoder: %w: %s", err, lastLine(s.stderr.String()))
	}
	return nil
}

// Close stops the decoder if it is still running.
func (s *source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if s.done {
		return nil
	}

	s.stdout.Close()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.cmd.Wait()
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
