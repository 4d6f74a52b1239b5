package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/upscaler/pkg/ports"
)

var (
	videoStreamRe = regexp.MustCompile(`Stream #\d+:\d+.*?: Video: (\w+)`)
	sizeRe        = regexp.MustCompile(`, (\d{2,5})x(\d{2,5})[ ,\[]`)
	fpsRe         = regexp.MustCompile(`, ([\d.]+) (?:fps|tbr)`)
	durationRe    = regexp.MustCompile(`Duration: (\d+):(\d+):(\d+(?:\.\d+)?)`)
	matrixRe      = regexp.MustCompile(`displaymatrix: rotation of (-?[\d.]+) degrees`)
	rotateTagRe   = regexp.MustCompile(`(?m)^\s+rotate\s+: (-?\d+)`)
)

// ProbeStderr extracts stream properties from the banner ffmpeg prints to
// stderr for an input. Only the first video stream is considered. The size
// is the coded size; display rotation is reported separately. The frame
// count is estimated from duration and frame rate.
func ProbeStderr(banner string) (ports.VideoInfo, error) {
	var info ports.VideoInfo

	var line, rest string
	lines := strings.Split(banner, "\n")
	for i, l := range lines {
		if m := videoStreamRe.FindStringSubmatch(l); m != nil {
			line = l
			info.Codec = m[1]
			rest = streamDetails(lines[i+1:])
			break
		}
	}
	if line == "" {
		return info, ErrNoVideoStream
	}

	m := sizeRe.FindStringSubmatch(line + " ")
	if m == nil {
		return info, fmt.Errorf("%w: no frame size in %q", ErrNoVideoStream, strings.TrimSpace(line))
	}
	info.Width, _ = strconv.Atoi(m[1])
	info.Height, _ = strconv.Atoi(m[2])

	if m := fpsRe.FindStringSubmatch(line); m != nil {
		info.FPS, _ = strconv.ParseFloat(m[1], 64)
	}

	info.Rotation = rotation(rest)

	if m := durationRe.FindStringSubmatch(banner); m != nil && info.FPS > 0 {
		h, _ := strconv.Atoi(m[1])
		mins, _ := strconv.Atoi(m[2])
		sec, _ := strconv.ParseFloat(m[3], 64)
		total := float64(h*3600+mins*60) + sec
		info.FrameCount = int(total*info.FPS + 0.5)
	}

	return info, nil
}

// streamDetails returns the metadata and side data lines that follow a
// stream line, up to the next stream.
func streamDetails(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		if strings.Contains(l, "Stream #") {
			break
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// rotation returns the clockwise display rotation found in details,
// normalised to 0, 90, 180 or 270. The display matrix reports the
// counter-clockwise angle; the legacy rotate tag is clockwise.
func rotation(details string) int {
	deg := 0.0
	if m := matrixRe.FindStringSubmatch(details); m != nil {
		v, _ := strconv.ParseFloat(m[1], 64)
		deg = -v
	} else if m := rotateTagRe.FindStringSubmatch(details); m != nil {
		v, _ := strconv.Atoi(m[1])
		deg = float64(v)
	}
	r := int(math.Round(deg/90)) * 90 % 360
	if r < 0 {
		r += 360
	}
	return r
}

// probe returns input properties, preferring the configured prober.
func (a *Adapter) probe(ctx context.Context, location string) (ports.VideoInfo, error) {
	if a.prober != nil {
		info, err := a.prober.Probe(location)
		if err == nil && info.Width > 0 && info.Height > 0 && info.FPS > 0 {
			return info, nil
		}
		if err != nil {
			a.logger.Debug("Container probe failed, falling back to ffmpeg: %s", err)
		}
	}

	// ffmpeg exits non-zero when given no output; the banner is still printed.
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, a.path, "-hide_banner", "-i", location)
	cmd.Stderr = &stderr
	_ = cmd.Run()

	info, err := ProbeStderr(stderr.String())
	if err != nil {
		return info, fmt.Errorf("probe %s: %w", location, err)
	}
	return info, nil
}
