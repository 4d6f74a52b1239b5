// Package orchestrator runs a whole upscale job: it opens the input and
// output, builds one engine per slot and drives the frame pipeline between
// them.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/user/upscaler/pkg/pipeline"
	"github.com/user/upscaler/pkg/ports"
	"github.com/user/upscaler/pkg/superres"
)

// DefaultWorkers is the number of concurrent upscale instances used when
// Config.Workers is zero.
const DefaultWorkers = 8

// Config describes one upscale job.
type Config struct {
	InputPath  string
	OutputPath string
	ModelsDir  string
	Factor     int
	Algo       superres.Algo

	// Workers is the number of slots; 0 selects DefaultWorkers.
	Workers int

	// CRF is passed to the encoder; 0 selects its default.
	CRF int

	// DebugEvery saves every Nth frame to the debug sink; 0 disables it.
	DebugEvery int

	// RunID identifies the job in logs and debug output. Empty generates one.
	RunID string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Factor:  2,
		Algo:    superres.DefaultAlgo,
		Workers: DefaultWorkers,
	}
}

// Validate checks c without touching the filesystem.
func (c Config) Validate() error {
	if c.InputPath == "" {
		return pipeline.ConfigError("input file is required")
	}
	if c.OutputPath == "" {
		return pipeline.ConfigError("output file is required")
	}
	if c.ModelsDir == "" {
		return pipeline.ConfigError("models directory is required")
	}
	if c.Workers < 0 {
		return pipeline.ConfigError("parallel instances must not be negative (got %d)", c.Workers)
	}
	if c.DebugEvery < 0 {
		return pipeline.ConfigError("debug interval must not be negative (got %d)", c.DebugEvery)
	}
	if err := superres.ValidateScale(c.Algo, c.Factor); err != nil {
		return pipeline.WrapConfig(err)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers == 0 {
		return DefaultWorkers
	}
	return c.Workers
}

// ProgressFunc is called with the index of each frame before it is
// submitted. Returning false stops the job after the frames already in
// flight are written.
type ProgressFunc func(frame int) bool

// EngineFactory creates the upscaler for one slot.
type EngineFactory func(modelsDir string, algo superres.Algo, scale int) (ports.Upscaler, error)

// SuperresFactory returns an EngineFactory backed by superres engines that
// look up their models through fs.
func SuperresFactory(fs ports.FileSystem) EngineFactory {
	return func(modelsDir string, algo superres.Algo, scale int) (ports.Upscaler, error) {
		e, err := superres.New(fs, modelsDir, algo, scale)
		if err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Upscaler coordinates one job at a time.
type Upscaler struct {
	sources   ports.SourceOpener
	sinks     ports.SinkOpener
	newEngine EngineFactory
	debug     ports.DebugSink
	logger    ports.Logger
}

// New creates a new Upscaler.
func New(
	sources ports.SourceOpener,
	sinks ports.SinkOpener,
	newEngine EngineFactory,
	debug ports.DebugSink,
	logger ports.Logger,
) *Upscaler {
	return &Upscaler{
		sources:   sources,
		sinks:     sinks,
		newEngine: newEngine,
		debug:     debug,
		logger:    logger.WithComponent("orchestrator"),
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// RunResult describes a finished job.
type RunResult struct {
	RunID         string
	FramesWritten int
	Stopped       bool // stopped early by the progress callback or ctx
	Elapsed       time.Duration

	Input        ports.VideoInfo
	OutputWidth  int
	OutputHeight int
	Algo         superres.Algo
	Factor       int
	Workers      int
}

// slotFrame is the buffer owned by one slot. input is set by the transform
// so the sink can sample it for debug output.
type slotFrame struct {
	input  *image.RGBA
	output *image.RGBA
}

// Run executes the job. Errors are classified as configuration errors
// (nothing was opened), resource errors (input or output could not be
// opened), or failures of the pipeline itself.
func (u *Upscaler) Run(ctx context.Context, cfg Config, progress ProgressFunc) (RunResult, error) {
	start := time.Now()
	runID := cfg.RunID
	if runID == "" {
		runID = NewRunID()
	}

	if err := cfg.Validate(); err != nil {
		return RunResult{}, err
	}
	u.logger.Info("Starting run %s", runID)
	workers := cfg.workers()

	engines := make([]ports.Upscaler, workers)
	for i := range engines {
		e, err := u.newEngine(cfg.ModelsDir, cfg.Algo, cfg.Factor)
		if err != nil {
			return RunResult{}, pipeline.WrapConfig(err)
		}
		engines[i] = e
	}
	u.logger.Info("Loaded %s x%d model for %d instances", cfg.Algo, cfg.Factor, workers)

	src, err := u.sources.OpenSource(ctx, cfg.InputPath)
	if err != nil {
		u.logger.Error("Failed to open input: %s", err)
		return RunResult{}, pipeline.ResourceError("open input "+cfg.InputPath, err)
	}
	defer src.Close()

	info := src.Info()
	outW, outH := info.Width*cfg.Factor, info.Height*cfg.Factor
	u.logger.Info("Input %dx%d at %.2f fps, output %dx%d", info.Width, info.Height, info.FPS, outW, outH)

	sink, err := u.sinks.OpenSink(ctx, cfg.OutputPath, ports.SinkOptions{
		Width:   outW,
		Height:  outH,
		FPS:     info.FPS,
		Quality: cfg.CRF,
	})
	if err != nil {
		u.logger.Error("Failed to open output: %s", err)
		return RunResult{}, pipeline.ResourceError("open output "+cfg.OutputPath, err)
	}

	p, err := pipeline.New(pipeline.Config[*image.RGBA, *slotFrame]{
		Workers: workers,
		NewBuffer: func(int) *slotFrame {
			return &slotFrame{output: image.NewRGBA(image.Rect(0, 0, outW, outH))}
		},
		Transform: func(ctx context.Context, slot int, in *image.RGBA, out *slotFrame) error {
			out.input = in
			return engines[slot].Upscale(ctx, in, out.output)
		},
		Logger: u.logger,
	})
	if err != nil {
		sink.Abort()
		return RunResult{}, err
	}

	frames := pipeline.SourceFunc[*image.RGBA](src.Next)
	write := pipeline.SinkFunc[*slotFrame](func(ctx context.Context, index int, f *slotFrame) error {
		if err := sink.WriteFrame(f.output); err != nil {
			return err
		}
		if u.debug.Enabled() && cfg.DebugEvery > 0 && index%cfg.DebugEvery == 0 {
			if err := u.debug.SaveFrame(index, f.input, f.output); err != nil {
				u.logger.Warn("Failed to save debug frame %d: %s", index, err)
			}
		}
		f.input = nil
		return nil
	})

	res, runErr := p.Run(ctx, frames, write, pipeline.ProgressFunc(progress))

	result := RunResult{
		RunID:         runID,
		FramesWritten: res.Written,
		Stopped:       res.Stopped,
		Input:         info,
		OutputWidth:   outW,
		OutputHeight:  outH,
		Algo:          cfg.Algo,
		Factor:        cfg.Factor,
		Workers:       workers,
	}

	if runErr != nil {
		var te *pipeline.TransformError
		if errors.As(runErr, &te) {
			u.logger.Error("Upscale failed at frame %d: %s", te.Index, te.Err)
		} else {
			u.logger.Error("Pipeline failed: %s", runErr)
		}
		if err := sink.Abort(); err != nil {
			u.logger.Warn("Failed to discard output: %s", err)
		}
		result.Elapsed = time.Since(start)
		u.saveRun(result, runErr)
		return result, runErr
	}

	if err := sink.Close(); err != nil {
		u.logger.Error("Failed to finalize output: %s", err)
		result.Elapsed = time.Since(start)
		u.saveRun(result, err)
		return result, pipeline.ResourceError("finalize output "+cfg.OutputPath, err)
	}

	result.Elapsed = time.Since(start)
	if result.Stopped {
		u.logger.Info("Stopped after %d frames", result.FramesWritten)
	}
	u.logger.Info("Output saved to %s (%d frames in %s)", cfg.OutputPath, result.FramesWritten, result.Elapsed.Round(time.Millisecond))
	u.saveRun(result, nil)
	return result, nil
}

// runRecord is the debug run.json document.
type runRecord struct {
	RunID         string  `json:"run_id"`
	Algo          string  `json:"algo"`
	Factor        int     `json:"factor"`
	Workers       int     `json:"workers"`
	InputWidth    int     `json:"input_width"`
	InputHeight   int     `json:"input_height"`
	InputFPS      float64 `json:"input_fps"`
	InputCodec    string  `json:"input_codec,omitempty"`
	OutputWidth   int     `json:"output_width"`
	OutputHeight  int     `json:"output_height"`
	FramesWritten int     `json:"frames_written"`
	Stopped       bool    `json:"stopped"`
	ElapsedMs     int64   `json:"elapsed_ms"`
	Error         string  `json:"error,omitempty"`
}

func (u *Upscaler) saveRun(r RunResult, runErr error) {
	if !u.debug.Enabled() {
		return
	}
	rec := runRecord{
		RunID:         r.RunID,
		Algo:          r.Algo.String(),
		Factor:        r.Factor,
		Workers:       r.Workers,
		InputWidth:    r.Input.Width,
		InputHeight:   r.Input.Height,
		InputFPS:      r.Input.FPS,
		InputCodec:    r.Input.Codec,
		OutputWidth:   r.OutputWidth,
		OutputHeight:  r.OutputHeight,
		FramesWritten: r.FramesWritten,
		Stopped:       r.Stopped,
		ElapsedMs:     r.Elapsed.Milliseconds(),
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return
	}
	if err := u.debug.SaveRunJSON(data); err != nil {
		u.logger.Warn("Failed to save run metadata: %s", err)
	}
}
