package pipeline

// slotPool hands out worker slots. Each slot owns one output buffer from a
// preallocated arena for the lifetime of the pipeline; buffers are never
// resized or reallocated during a run.
//
// slotPool has no lock of its own. All methods must be called with the
// owning Pipeline's mutex held, which is what makes acquire (dispatcher)
// and release (drain) safe against each other.
type slotPool[Out any] struct {
	free     []int  // vacant slot ids, FIFO
	assigned []bool // assigned[id] is true while a unit owns the slot
	buffers  []Out  // arena, indexed by slot id
}

func newSlotPool[Out any](n int, newBuffer func(slot int) Out) *slotPool[Out] {
	p := &slotPool[Out]{
		free:     make([]int, 0, n),
		assigned: make([]bool, n),
		buffers:  make([]Out, n),
	}
	for id := 0; id < n; id++ {
		p.free = append(p.free, id)
		p.buffers[id] = newBuffer(id)
	}
	return p
}

// size returns the number of slots.
func (p *slotPool[Out]) size() int {
	return len(p.buffers)
}

// vacant returns the number of slots not bound to a unit.
func (p *slotPool[Out]) vacant() int {
	return len(p.free)
}

// acquire takes the oldest vacant slot.
// Calling it with no vacant slot is a protocol violation: the dispatcher only
// acquires after its capacity predicate holds.
func (p *slotPool[Out]) acquire() int {
	if len(p.free) == 0 {
		panic("pipeline: acquire with no vacant slot")
	}
	id := p.free[0]
	p.free = p.free[1:]
	p.assigned[id] = true
	return id
}

// release returns a slot to the free list.
func (p *slotPool[Out]) release(id int) {
	if !p.assigned[id] {
		panic("pipeline: release of vacant slot")
	}
	p.assigned[id] = false
	p.free = append(p.free, id)
}

// buffer returns the arena buffer owned by slot id.
func (p *slotPool[Out]) buffer(id int) Out {
	return p.buffers[id]
}
