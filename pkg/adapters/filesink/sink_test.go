package filesink

import (
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/upscaler/pkg/mocks"
	"github.com/user/upscaler/pkg/ports"
)

var testBaseDir = filepath.Join("debug", "run")

func TestSink_Enabled(t *testing.T) {
	sink := New(testBaseDir, mocks.NewFileSystem(), &mocks.Renderer{})

	if !sink.Enabled() {
		t.Error("expected Enabled to return true")
	}
}

func TestSink_SaveRunJSON(t *testing.T) {
	fs := mocks.NewFileSystem()
	sink := New(testBaseDir, fs, &mocks.Renderer{})

	data := []byte(`{"frames": 3}`)
	if err := sink.SaveRunJSON(data); err != nil {
		t.Fatalf("SaveRunJSON failed: %v", err)
	}

	path := filepath.Join(testBaseDir, "run.json")
	saved, ok := fs.GetFile(path)
	if !ok {
		t.Fatalf("expected file to be saved at %s", path)
	}
	if string(saved) != string(data) {
		t.Errorf("expected %q, got %q", data, saved)
	}
}

func TestSink_SaveFrame(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{}
	sink := New(testBaseDir, fs, renderer)

	input := image.NewRGBA(image.Rect(0, 0, 10, 8))
	output := image.NewRGBA(image.Rect(0, 0, 20, 16))
	if err := sink.SaveFrame(42, input, output); err != nil {
		t.Fatalf("SaveFrame failed: %v", err)
	}

	path := filepath.Join(testBaseDir, "frames", "frame-000042.png")
	if _, ok := fs.GetFile(path); !ok {
		t.Errorf("expected frame to be saved at %s", path)
	}

	if len(renderer.Canvases) != 1 {
		t.Fatalf("expected 1 canvas, got %d", len(renderer.Canvases))
	}
	c := renderer.Canvases[0]
	if c.Width != 2*20+3*gap || c.Height != 16+labelHeight+2*gap {
		t.Errorf("unexpected canvas size %dx%d", c.Width, c.Height)
	}
	if len(c.Images) != 2 {
		t.Fatalf("expected input and output to be drawn, got %d images", len(c.Images))
	}
	if c.Images[1] != image.Pt(2*gap+20, gap+labelHeight) {
		t.Errorf("unexpected output position %v", c.Images[1])
	}
	if c.Rects != 2 {
		t.Errorf("expected a label band per image, got %d", c.Rects)
	}
	if len(c.Texts) != 2 || c.Texts[0] != "#42 input 10x8" {
		t.Errorf("unexpected labels %q", c.Texts)
	}
}

func TestSink_SaveFrameFormat(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		wantFormat  ports.ImageFormat
		wantQuality int
		wantFile    string
	}{
		{"default png", nil, ports.FormatPNG, 0, "frame-000003.png"},
		{"jpeg", []Option{WithFormat(ports.FormatJPEG, 85)}, ports.FormatJPEG, 85, "frame-000003.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mocks.NewFileSystem()
			var gotFormat ports.ImageFormat = -1
			gotQuality := -1
			renderer := &mocks.Renderer{
				EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
					gotFormat, gotQuality = format, quality
					return []byte("img"), nil
				},
			}
			sink := New(testBaseDir, fs, renderer, tt.opts...)

			if err := sink.SaveFrame(3, image.NewRGBA(image.Rect(0, 0, 2, 2)), image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
				t.Fatalf("SaveFrame failed: %v", err)
			}
			if gotFormat != tt.wantFormat || gotQuality != tt.wantQuality {
				t.Errorf("expected format %d quality %d, got %d %d", tt.wantFormat, tt.wantQuality, gotFormat, gotQuality)
			}
			path := filepath.Join(testBaseDir, "frames", tt.wantFile)
			if _, ok := fs.GetFile(path); !ok {
				t.Errorf("expected frame to be saved at %s", path)
			}
		})
	}
}

func TestSink_SaveFrameEncodeError(t *testing.T) {
	fs := mocks.NewFileSystem()
	renderer := &mocks.Renderer{
		EncodeImageFunc: func(img image.Image, format ports.ImageFormat, quality int) ([]byte, error) {
			return nil, errors.New("boom")
		},
	}
	sink := New(testBaseDir, fs, renderer)

	err := sink.SaveFrame(0, image.NewRGBA(image.Rect(0, 0, 1, 1)), image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err == nil {
		t.Fatal("expected encode error")
	}
	if len(fs.GetAllFiles()) != 0 {
		t.Errorf("expected no files written, got %d", len(fs.GetAllFiles()))
	}
}
