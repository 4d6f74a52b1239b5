// Package mp4probe reads video stream properties from MP4 and MOV
// containers without decoding any samples.
package mp4probe

import (
	"errors"
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/upscaler/pkg/ports"
)

var (
	// ErrNoVideoTrack is returned when the container has no video track.
	ErrNoVideoTrack = errors.New("mp4probe: no video track found")

	// ErrNoTiming is returned when the frame rate cannot be derived.
	ErrNoTiming = errors.New("mp4probe: no timing information")
)

// Prober implements ports.VideoProber for MP4 files.
type Prober struct{}

// New creates a new Prober.
func New() *Prober {
	return &Prober{}
}

// Probe opens path and reads the first video track. Media data is skipped,
// so memory use depends on the size of the sample tables only.
func (p *Prober) Probe(path string) (ports.VideoInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	file, err := mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil {
		return ports.VideoInfo{}, fmt.Errorf("decode mp4: %w", err)
	}
	return Inspect(file)
}

// Inspect extracts video properties from a decoded file. Progressive files
// are read from the sample tables, fragmented files by walking fragments.
func Inspect(file *mp4.File) (ports.VideoInfo, error) {
	moov := file.Moov
	if moov == nil && file.Init != nil {
		moov = file.Init.Moov
	}
	if moov == nil {
		return ports.VideoInfo{}, ErrNoVideoTrack
	}

	trak := videoTrack(moov)
	if trak == nil {
		return ports.VideoInfo{}, ErrNoVideoTrack
	}

	info := ports.VideoInfo{}
	info.Codec, info.Width, info.Height = sampleEntry(trak)
	if info.Width == 0 || info.Height == 0 {
		info.Width = int(trak.Tkhd.Width >> 16)
		info.Height = int(trak.Tkhd.Height >> 16)
	}

	var timescale uint32
	if trak.Mdia.Mdhd != nil {
		timescale = trak.Mdia.Mdhd.Timescale
	}

	var samples, duration uint64
	if file.IsFragmented() {
		samples, duration = fragmentTiming(file, moov, trak.Tkhd.TrackID)
	} else {
		stbl := trak.Mdia.Minf.Stbl
		if stbl.Stsz != nil {
			samples = uint64(stbl.Stsz.SampleNumber)
		}
		if stbl.Stts != nil {
			for i, n := range stbl.Stts.SampleCount {
				duration += uint64(n) * uint64(stbl.Stts.SampleTimeDelta[i])
			}
		}
		if duration == 0 && trak.Mdia.Mdhd != nil {
			duration = trak.Mdia.Mdhd.Duration
		}
	}

	info.FrameCount = int(samples)
	if samples == 0 || duration == 0 || timescale == 0 {
		return info, ErrNoTiming
	}
	info.FPS = float64(samples) * float64(timescale) / float64(duration)
	return info, nil
}

func videoTrack(moov *mp4.MoovBox) *mp4.TrakBox {
	for _, trak := range moov.Traks {
		if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
			continue
		}
		if trak.Mdia.Hdlr.HandlerType != "vide" {
			continue
		}
		if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil {
			continue
		}
		return trak
	}
	return nil
}

// sampleEntry returns the codec name and coded size from the sample description.
func sampleEntry(trak *mp4.TrakBox) (codec string, width, height int) {
	stsd := trak.Mdia.Minf.Stbl.Stsd
	if stsd == nil {
		return "", 0, 0
	}
	for _, child := range stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			codec = "h264"
		case "hvc1", "hev1":
			codec = "hevc"
		case "av01":
			codec = "av1"
		case "vp09":
			codec = "vp9"
		case "mp4v":
			codec = "mpeg4"
		default:
			continue
		}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			width, height = int(vse.Width), int(vse.Height)
		}
		return codec, width, height
	}
	return "", 0, 0
}

// fragmentTiming sums sample counts and durations over the track runs of
// every fragment. Durations missing from a run come from tfhd, then trex.
func fragmentTiming(file *mp4.File, moov *mp4.MoovBox, trackID uint32) (samples, duration uint64) {
	trex := &mp4.TrexBox{TrackID: trackID}
	if moov.Mvex != nil {
		for _, t := range moov.Mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}

	for _, seg := range file.Segments {
		for _, frag := range seg.Fragments {
			if frag.Moof == nil {
				continue
			}
			for _, traf := range frag.Moof.Trafs {
				if traf.Tfhd == nil || traf.Tfhd.TrackID != trackID {
					continue
				}
				for _, trun := range traf.Truns {
					trun.AddSampleDefaultValues(traf.Tfhd, trex)
					for _, s := range trun.Samples {
						samples++
						duration += uint64(s.Dur)
					}
				}
			}
		}
	}
	return samples, duration
}

var _ ports.VideoProber = (*Prober)(nil)
