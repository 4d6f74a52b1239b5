package pipeline

import "context"

// drain is the consumer loop. It takes pending entries strictly in FIFO
// order and, for each scheduled unit, waits for that unit to finish before
// writing its buffer. Waiting on the head entry, not on whichever unit
// completes first, is what keeps sink order equal to submission order.
//
// The head entry is only removed after its buffer has been written and its
// slot released, in the same critical section, so Vacant+Scheduled stays
// equal to N for every observer.
func (p *Pipeline[In, Out]) drain(ctx context.Context, sink Sink[Out]) {
	for {
		p.mu.Lock()
		for p.queue.len() == 0 && p.failure == nil {
			p.nonEmpty.Wait()
		}
		if p.failure != nil {
			p.mu.Unlock()
			return
		}
		head, _ := p.queue.head()
		p.mu.Unlock()

		if head.kind == entryEndOfStream {
			p.logger.Debug("End of stream reached")
			return
		}

		u := head.unit
		select {
		case <-u.done:
		case <-p.failed:
			// Units still in flight are abandoned; their buffers are never read.
			return
		}
		if u.err != nil || p.hasFailed() {
			return
		}

		if err := sink.Write(ctx, u.index, p.slots.buffer(u.slot)); err != nil {
			p.fail(&SinkError{Index: u.index, Err: err})
			return
		}

		p.mu.Lock()
		p.slots.release(u.slot)
		p.queue.pop()
		p.written++
		p.capacity.Signal()
		p.mu.Unlock()
	}
}

func (p *Pipeline[In, Out]) hasFailed() bool {
	select {
	case <-p.failed:
		return true
	default:
		return false
	}
}
