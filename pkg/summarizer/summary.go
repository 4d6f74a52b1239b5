// Package summarizer builds and renders reports for upscale runs.
package summarizer

import "time"

// Summary contains everything reported about one run.
type Summary struct {
	GeneratedAt time.Time
	RunID       string

	Input    InputInfo
	Output   OutputInfo
	Settings Settings
	Result   ResultInfo
}

// InputInfo describes the source video.
type InputInfo struct {
	Path       string
	Width      int
	Height     int
	FPS        float64
	FrameCount int // 0 when unknown
	Codec      string
}

// OutputInfo describes the produced video.
type OutputInfo struct {
	Path     string
	Width    int
	Height   int
	FileSize int64
}

// Settings contains the upscale configuration.
type Settings struct {
	Algo    string
	Factor  int
	Workers int
	CRF     int
}

// ResultInfo contains the outcome of the run.
type ResultInfo struct {
	FramesWritten int
	Stopped       bool
	Elapsed       time.Duration
	Error         string
}

// Throughput returns frames written per second of wall time.
func (r ResultInfo) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.FramesWritten) / r.Elapsed.Seconds()
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRunID sets the run identifier.
func (b *Builder) WithRunID(id string) *Builder {
	b.summary.RunID = id
	return b
}

// WithInput sets source video information.
func (b *Builder) WithInput(input InputInfo) *Builder {
	b.summary.Input = input
	return b
}

// WithOutput sets output video information.
func (b *Builder) WithOutput(output OutputInfo) *Builder {
	b.summary.Output = output
	return b
}

// WithSettings sets the upscale configuration.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithResult sets the run outcome.
func (b *Builder) WithResult(result ResultInfo) *Builder {
	b.summary.Result = result
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
