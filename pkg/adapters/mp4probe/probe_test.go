package mp4probe

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Eyevinn/mp4ff/av1"
	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/user/upscaler/pkg/ports"
)

// buildFragmented writes a single-fragment MP4 with n one-byte samples.
func buildFragmented(t *testing.T, width, height, n int, fps uint32) []byte {
	return buildFragmentedSized(t, width, height, n, fps, 1)
}

// buildFragmentedSized writes a single-fragment MP4 with n samples of size bytes.
func buildFragmentedSized(t *testing.T, width, height, n int, fps uint32, size int) []byte {
	t.Helper()

	timescale := fps * 1000
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	trak := init.Moov.Trak

	av1C := &mp4.Av1CBox{CodecConfRec: av1.CodecConfRec{Version: 1, ChromaSubsamplingX: 1, ChromaSubsamplingY: 1}}
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("av01", uint16(width), uint16(height), av1C))
	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)

	frag, err := mp4.CreateFragment(1, 1)
	if err != nil {
		t.Fatalf("create fragment: %v", err)
	}
	data := make([]byte, size)
	for i := 0; i < n; i++ {
		frag.AddFullSample(mp4.FullSample{
			Sample:     mp4.Sample{Flags: mp4.SyncSampleFlags, Size: uint32(size), Dur: 1000},
			DecodeTime: uint64(i) * 1000,
			Data:       data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "av01", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}
	if err := frag.Encode(&buf); err != nil {
		t.Fatalf("encode fragment: %v", err)
	}
	return buf.Bytes()
}

func TestProbe_Fragmented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, buildFragmented(t, 320, 240, 12, 24), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	info, err := New().Probe(path)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	want := ports.VideoInfo{Width: 320, Height: 240, FPS: 24, FrameCount: 12, Codec: "av1"}
	if info != want {
		t.Errorf("expected %+v, got %+v", want, info)
	}
}

// buildProgressive writes a non-fragmented MP4: ftyp, moov with stts and a
// uniform stsz for n samples, then an mdat of n*size bytes. When withStts is
// false the duration is only available from mdhd.
func buildProgressive(t *testing.T, width, height, n int, fps uint32, size int, withStts bool) []byte {
	t.Helper()

	const delta = 1000
	timescale := fps * delta
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")
	moov := init.Moov
	trak := moov.Trak

	// A moov without mvex describes a progressive file.
	kept := moov.Children[:0]
	for _, c := range moov.Children {
		if c.Type() != "mvex" {
			kept = append(kept, c)
		}
	}
	moov.Children = kept
	moov.Mvex = nil

	av1C := &mp4.Av1CBox{CodecConfRec: av1.CodecConfRec{Version: 1, ChromaSubsamplingX: 1, ChromaSubsamplingY: 1}}
	trak.Mdia.Minf.Stbl.Stsd.AddChild(mp4.CreateVisualSampleEntryBox("av01", uint16(width), uint16(height), av1C))
	trak.Tkhd.Width = mp4.Fixed32(width << 16)
	trak.Tkhd.Height = mp4.Fixed32(height << 16)
	trak.Mdia.Mdhd.Duration = uint64(n) * delta

	stbl := trak.Mdia.Minf.Stbl
	if withStts {
		stbl.Stts.SampleCount = []uint32{uint32(n)}
		stbl.Stts.SampleTimeDelta = []uint32{delta}
	}
	stbl.Stsz.SampleUniformSize = uint32(size)
	stbl.Stsz.SampleNumber = uint32(n)

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "av01", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		t.Fatalf("encode ftyp: %v", err)
	}
	if err := moov.Encode(&buf); err != nil {
		t.Fatalf("encode moov: %v", err)
	}

	payload := n * size
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(8+payload))
	copy(header[4:], "mdat")
	buf.Write(header[:])
	buf.Write(make([]byte, payload))
	return buf.Bytes()
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestProbe_Progressive(t *testing.T) {
	tests := []struct {
		name     string
		fps      uint32
		frames   int
		withStts bool
	}{
		{"sample tables", 30, 90, true},
		{"media header duration", 25, 50, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, buildProgressive(t, 640, 360, tt.frames, tt.fps, 16, tt.withStts))

			info, err := New().Probe(path)
			if err != nil {
				t.Fatalf("Probe failed: %v", err)
			}

			want := ports.VideoInfo{Width: 640, Height: 360, FPS: float64(tt.fps), FrameCount: tt.frames, Codec: "av1"}
			if info != want {
				t.Errorf("expected %+v, got %+v", want, info)
			}
		})
	}
}

// allocatedDuring reports the bytes allocated while fn runs.
func allocatedDuring(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)
	return after.TotalAlloc - before.TotalAlloc
}

func TestProbe_SkipsMediaData(t *testing.T) {
	const sampleSize = 1 << 20

	tests := []struct {
		name  string
		build func(t *testing.T) []byte
	}{
		{"fragmented", func(t *testing.T) []byte {
			return buildFragmentedSized(t, 320, 240, 32, 24, sampleSize)
		}},
		{"progressive", func(t *testing.T) []byte {
			return buildProgressive(t, 320, 240, 32, 24, sampleSize, true)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.build(t)
			size := uint64(len(data))
			path := writeFile(t, data)
			data = nil

			var info ports.VideoInfo
			var err error
			allocated := allocatedDuring(func() {
				info, err = New().Probe(path)
			})
			if err != nil {
				t.Fatalf("Probe failed: %v", err)
			}
			if info.FrameCount != 32 {
				t.Errorf("expected 32 frames, got %d", info.FrameCount)
			}
			if allocated > size/8 {
				t.Errorf("Probe allocated %d bytes for a %d byte file", allocated, size)
			}
		})
	}
}

func TestProbe_MissingFile(t *testing.T) {
	_, err := New().Probe(filepath.Join(t.TempDir(), "missing.mp4"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestProbe_NotMP4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.avi")
	if err := os.WriteFile(path, []byte("RIFF....AVI LIST"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := New().Probe(path); err == nil {
		t.Error("expected error for non-MP4 input")
	}
}

func TestInspect_NoVideoTrack(t *testing.T) {
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "en")

	file := mp4.NewFile()
	file.Init = init

	if _, err := Inspect(file); !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("expected ErrNoVideoTrack, got %v", err)
	}
}
