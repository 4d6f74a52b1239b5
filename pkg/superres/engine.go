package superres

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/user/upscaler/pkg/ports"
)

// kernels maps each model family to the resampler that stands in for it.
var kernels = map[Algo]draw.Interpolator{
	EDSR:        draw.CatmullRom,
	FSRCNN:      draw.BiLinear,
	FSRCNNSmall: draw.ApproxBiLinear,
	LapSRN:      draw.CatmullRom,
	ESPCN:       draw.BiLinear,
}

// Engine upscales frames for one algorithm and scale.
// It holds no per-call state; the pipeline still gives each slot its own
// Engine, mirroring one inference instance per worker.
type Engine struct {
	algo      Algo
	scale     int
	modelPath string
	kernel    draw.Interpolator
}

// New creates an Engine after checking that the model for algo and scale
// exists under modelsDir.
func New(fs ports.FileSystem, modelsDir string, algo Algo, scale int) (*Engine, error) {
	if err := ValidateScale(algo, scale); err != nil {
		return nil, err
	}

	isDir, err := fs.IsDir(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelsDirNotFound, modelsDir, err)
	}
	if !isDir {
		return nil, fmt.Errorf("%w: %s", ErrModelsDirNotFound, modelsDir)
	}

	path := ModelPath(modelsDir, algo, scale)
	exists, err := fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrModelNotFound, path, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
	}

	return &Engine{
		algo:      algo,
		scale:     scale,
		modelPath: path,
		kernel:    kernels[algo],
	}, nil
}

// Algo returns the engine's algorithm.
func (e *Engine) Algo() Algo { return e.algo }

// Scale returns the upscale factor.
func (e *Engine) Scale() int { return e.scale }

// ModelPath returns the model file the engine was created for.
func (e *Engine) ModelPath() string { return e.modelPath }

// OutputSize returns the size of a frame of width x height after upscaling.
func (e *Engine) OutputSize(width, height int) (int, int) {
	return width * e.scale, height * e.scale
}

// Upscale resamples src into dst. dst must be exactly src scaled by the
// engine factor.
func (e *Engine) Upscale(ctx context.Context, src image.Image, dst *image.RGBA) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sb := src.Bounds()
	w, h := e.OutputSize(sb.Dx(), sb.Dy())
	if db := dst.Bounds(); db.Dx() != w || db.Dy() != h {
		return fmt.Errorf("%w: want %dx%d, got %dx%d", ErrSizeMismatch, w, h, db.Dx(), db.Dy())
	}

	e.kernel.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return nil
}

var _ ports.Upscaler = (*Engine)(nil)
