// Package pipeline provides the ordered, bounded frame pipeline.
//
// A Pipeline overlaps sequential reading from a Source and sequential writing
// to a Sink with a transform that runs on at most N items at once. Each of
// the N slots owns one reusable output buffer. Items are written to the sink
// in exactly the order they were read, whatever order their transforms finish
// in: the drain always waits for the oldest pending unit before looking at
// the next one. A slow item therefore holds back faster items behind it
// (head-of-line blocking); that is the price of the ordering guarantee.
package pipeline

import (
	"context"
	"sync"

	"github.com/user/upscaler/pkg/ports"
)

// Source produces work items one at a time.
// Next returns io.EOF once the source is exhausted.
type Source[In any] interface {
	Next(ctx context.Context) (In, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[In any] func(ctx context.Context) (In, error)

// Next implements Source.
func (f SourceFunc[In]) Next(ctx context.Context) (In, error) {
	return f(ctx)
}

// Sink receives transformed buffers in submission order.
// The buffer belongs to a slot and is reused once Write returns, so Write
// must not retain it.
type Sink[Out any] interface {
	Write(ctx context.Context, index int, out Out) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc[Out any] func(ctx context.Context, index int, out Out) error

// Write implements Sink.
func (f SinkFunc[Out]) Write(ctx context.Context, index int, out Out) error {
	return f(ctx, index, out)
}

// TransformFunc processes one item into the buffer owned by slot.
// It is called concurrently for distinct slots, never twice at once for the
// same slot.
type TransformFunc[In, Out any] func(ctx context.Context, slot int, in In, out Out) error

// ProgressFunc is called once per pulled item, before the item is submitted,
// with its sequence index. Returning false stops the pipeline: the item is
// discarded, so exactly index items are written.
type ProgressFunc func(index int) bool

// Config configures a Pipeline.
type Config[In, Out any] struct {
	// Workers is the number of slots N. Must be at least 1.
	Workers int

	// NewBuffer allocates the output buffer owned by a slot. It is called
	// once per slot when the pipeline is created.
	NewBuffer func(slot int) Out

	// Transform is the per-item computation.
	Transform TransformFunc[In, Out]

	// Logger receives debug output. Optional.
	Logger ports.Logger
}

// Result summarizes a finished run.
type Result struct {
	Submitted int  // items handed to the transform
	Written   int  // items written to the sink
	Stopped   bool // true if the progress callback or the context stopped the run
}

// Pipeline is a single-use ordered pipeline.
type Pipeline[In, Out any] struct {
	workers   int
	transform TransformFunc[In, Out]
	logger    ports.Logger

	mu       sync.Mutex
	capacity *sync.Cond // signalled after a slot is released
	nonEmpty *sync.Cond // signalled after an entry is appended
	slots    *slotPool[Out]
	queue    *pendingQueue
	state    State

	failure     error
	failed      chan struct{} // closed on the first fatal error
	cancelUnits context.CancelFunc

	submitted int
	written   int
	stopped   bool
}

// New validates cfg and creates a Pipeline with all slots vacant.
func New[In, Out any](cfg Config[In, Out]) (*Pipeline[In, Out], error) {
	if cfg.Workers < 1 {
		return nil, ConfigError("workers must be at least 1 (got %d)", cfg.Workers)
	}
	if cfg.Transform == nil {
		return nil, ConfigError("transform is required")
	}
	if cfg.NewBuffer == nil {
		return nil, ConfigError("buffer allocator is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = discard{}
	}

	p := &Pipeline[In, Out]{
		workers:   cfg.Workers,
		transform: cfg.Transform,
		logger:    logger.WithComponent("pipeline"),
		slots:     newSlotPool(cfg.Workers, cfg.NewBuffer),
		queue:     newPendingQueue(cfg.Workers),
		state:     NotStarted,
		failed:    make(chan struct{}),
	}
	p.capacity = sync.NewCond(&p.mu)
	p.nonEmpty = sync.NewCond(&p.mu)
	return p, nil
}

// Workers returns N.
func (p *Pipeline[In, Out]) Workers() int {
	return p.workers
}

// Run pulls items from src until it is exhausted, progress returns false,
// ctx is done, or a fatal error occurs. The dispatcher runs on the calling
// goroutine and the drain on a dedicated one; Run returns only after the
// drain has finished.
//
// Stopping through progress or ctx is cooperative: units already submitted
// run to completion and are written before Run returns. A transform or sink
// failure stops submission, abandons units still in flight and returns the
// error after the drain has exited. A source error other than io.EOF stops
// submission like exhaustion does; everything already submitted is written
// and the error, wrapping ErrSource, is returned.
func (p *Pipeline[In, Out]) Run(ctx context.Context, src Source[In], sink Sink[Out], progress ProgressFunc) (Result, error) {
	if src == nil || sink == nil {
		return Result{}, ConfigError("source and sink are required")
	}

	p.mu.Lock()
	if p.state != NotStarted {
		p.mu.Unlock()
		return Result{}, ErrAlreadyStarted
	}
	p.state = Running
	// Units are only cancelled on failure, never by the caller's context.
	unitCtx, cancelUnits := context.WithCancel(context.WithoutCancel(ctx))
	p.cancelUnits = cancelUnits
	p.mu.Unlock()
	defer cancelUnits()

	// Wake a dispatcher blocked on capacity when the caller gives up.
	stopWake := context.AfterFunc(ctx, func() {
		p.mu.Lock()
		p.capacity.Broadcast()
		p.mu.Unlock()
	})
	defer stopWake()

	p.logger.Debug("Starting pipeline with %d workers", p.workers)

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		p.drain(unitCtx, sink)
	}()

	srcErr := p.dispatch(ctx, unitCtx, src, progress)
	<-drained

	p.mu.Lock()
	p.state = Stopped
	result := Result{
		Submitted: p.submitted,
		Written:   p.written,
		Stopped:   p.stopped,
	}
	failure := p.failure
	p.mu.Unlock()

	p.logger.Debug("Pipeline stopped: %d submitted, %d written", result.Submitted, result.Written)

	if failure != nil {
		return result, failure
	}
	return result, srcErr
}

// fail records the first fatal error and wakes both control loops.
func (p *Pipeline[In, Out]) fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failure == nil {
		p.failure = err
		close(p.failed)
		if p.cancelUnits != nil {
			p.cancelUnits()
		}
		p.logger.Warn("Pipeline failing: %s", err)
	}
	p.capacity.Broadcast()
	p.nonEmpty.Broadcast()
}

// discard is the Logger used when none is configured.
type discard struct{}

func (discard) Debug(string, ...interface{})        {}
func (discard) Info(string, ...interface{})         {}
func (discard) Warn(string, ...interface{})         {}
func (discard) Error(string, ...interface{})        {}
func (d discard) WithComponent(string) ports.Logger { return d }
