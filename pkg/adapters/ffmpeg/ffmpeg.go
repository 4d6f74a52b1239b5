// Package ffmpeg decodes and encodes video through an external ffmpeg
// process. Frames cross the process boundary as raw RGBA over pipes.
package ffmpeg

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/user/upscaler/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpeg: ffmpeg not found")

	// ErrTruncatedFrame is returned when the decoder stream ends inside a frame.
	ErrTruncatedFrame = errors.New("ffmpeg: truncated frame")

	// ErrNoVideoStream is returned when the input has no decodable video stream.
	ErrNoVideoStream = errors.New("ffmpeg: no video stream")

	// ErrClosed is returned by operations on a closed source or sink.
	ErrClosed = errors.New("ffmpeg: closed")
)

// DefaultCRF is the x264 constant rate factor used when none is given.
const DefaultCRF = 23

// Locate finds the ffmpeg binary. A non-empty custom path must exist;
// otherwise PATH and a few common install locations are searched.
func Locate(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err != nil {
			return "", fmt.Errorf("%w: custom path %s", ErrFFmpegNotFound, custom)
		}
		return custom, nil
	}

	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	var common []string
	if runtime.GOOS == "windows" {
		common = []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
		}
	} else {
		common = []string{
			"/usr/bin/ffmpeg",
			"/usr/local/bin/ffmpeg",
			"/opt/homebrew/bin/ffmpeg",
			"/snap/bin/ffmpeg",
		}
	}
	for _, p := range common {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// Options configures an Adapter.
type Options struct {
	// Path is an optional custom ffmpeg binary.
	Path string

	// Prober reads input metadata. When nil or when it fails, the
	// stream banner printed by ffmpeg is parsed instead.
	Prober ports.VideoProber

	Logger ports.Logger
}

// Adapter opens ffmpeg-backed frame sources and sinks.
type Adapter struct {
	path   string
	prober ports.VideoProber
	logger ports.Logger
}

// New locates ffmpeg and creates an Adapter.
func New(opts Options) (*Adapter, error) {
	path, err := Locate(opts.Path)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	return &Adapter{
		path:   path,
		prober: opts.Prober,
		logger: logger.WithComponent("ffmpeg"),
	}, nil
}

// Path returns the ffmpeg binary in use.
func (a *Adapter) Path() string {
	return a.path
}

var (
	_ ports.SourceOpener = (*Adapter)(nil)
	_ ports.SinkOpener   = (*Adapter)(nil)
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Warn(string, ...interface{})         {}
func (nopLogger) Error(string, ...interface{})        {}
func (n nopLogger) WithComponent(string) ports.Logger { return n }
