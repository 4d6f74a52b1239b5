package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// dispatch is the producer loop. It pulls items from src, binds each to a
// vacant slot and launches a unit for it. It always finishes by appending
// end of stream, and never blocks after that.
func (p *Pipeline[In, Out]) dispatch(ctx, unitCtx context.Context, src Source[In], progress ProgressFunc) error {
	defer p.endOfStream()

	for index := 0; ; index++ {
		if p.halted(ctx) {
			return nil
		}

		item, err := src.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				p.logger.Debug("Source exhausted after %d items", index)
				return nil
			}
			if ctx.Err() != nil {
				p.markStopped()
				return nil
			}
			p.logger.Warn("Source failed at item %d: %s", index, err)
			return fmt.Errorf("%w: item %d: %w", ErrSource, index, err)
		}

		if progress != nil && !progress(index) {
			p.logger.Debug("Stopped by callback at item %d", index)
			p.markStopped()
			return nil
		}

		if !p.submit(ctx, unitCtx, index, item) {
			return nil
		}
	}
}

// halted reports whether the dispatcher must stop before pulling another
// item: the caller gave up or a unit or the sink failed.
func (p *Pipeline[In, Out]) halted(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failure != nil {
		return true
	}
	if ctx.Err() != nil {
		p.stopped = true
		return true
	}
	return false
}

func (p *Pipeline[In, Out]) markStopped() {
	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()
}

// submit waits until a slot is vacant and the queue has room, then binds
// item to the slot, queues the unit and launches it. It returns false
// without submitting if the run failed or ctx was cancelled while waiting.
func (p *Pipeline[In, Out]) submit(ctx, unitCtx context.Context, index int, item In) bool {
	p.mu.Lock()
	for {
		if p.failure != nil {
			p.mu.Unlock()
			return false
		}
		if ctx.Err() != nil {
			p.stopped = true
			p.mu.Unlock()
			return false
		}
		if p.slots.vacant() > 0 && p.queue.len() < p.workers {
			break
		}
		p.capacity.Wait()
	}

	u := &unit{
		index: index,
		slot:  p.slots.acquire(),
		done:  make(chan struct{}),
	}
	p.queue.pushScheduled(u)
	p.submitted++
	p.nonEmpty.Signal()
	p.mu.Unlock()

	p.logger.Debug("Item %d dispatched to slot %d", index, u.slot)
	go p.compute(unitCtx, u, item)
	return true
}

// compute runs one unit. The slot buffer is only touched here until done is
// closed, and only by the drain afterwards.
func (p *Pipeline[In, Out]) compute(ctx context.Context, u *unit, item In) {
	defer close(u.done)

	err := p.runTransform(ctx, u.slot, item)
	if err != nil {
		u.err = &TransformError{Index: u.index, Slot: u.slot, Err: err}
		p.fail(u.err)
	}
}

func (p *Pipeline[In, Out]) runTransform(ctx context.Context, slot int, item In) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.transform(ctx, slot, item, p.slots.buffer(slot))
}

// endOfStream appends the terminal entry and moves the pipeline to Draining.
func (p *Pipeline[In, Out]) endOfStream() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.pushEndOfStream()
	if p.state == Running {
		p.state = Draining
	}
	p.nonEmpty.Signal()
}
