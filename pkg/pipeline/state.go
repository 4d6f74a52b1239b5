package pipeline

// State is the lifecycle state of a Pipeline.
type State int

const (
	// NotStarted is the state of a new Pipeline.
	NotStarted State = iota
	// Running means the dispatcher is submitting items.
	Running
	// Draining means end of stream has been queued and the drain is
	// flushing the remaining units. No new entries can appear.
	Draining
	// Stopped is terminal: the drain has exited and Run has returned
	// or is about to.
	Stopped
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the pipeline's shared state.
type Snapshot struct {
	State     State
	Workers   int
	Vacant    int // slots not bound to a unit
	Scheduled int // pending entries referring to a unit
	QueueLen  int // pending entries, end of stream included
	Submitted int
	Written   int
}

// Snapshot returns the current shared state, read under the pipeline lock.
// Vacant+Scheduled always equals Workers.
func (p *Pipeline[In, Out]) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		State:     p.state,
		Workers:   p.workers,
		Vacant:    p.slots.vacant(),
		Scheduled: p.queue.scheduled(),
		QueueLen:  p.queue.len(),
		Submitted: p.submitted,
		Written:   p.written,
	}
}

// State returns the current lifecycle state.
func (p *Pipeline[In, Out]) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
