package pipeline

// entryKind tags a pending entry.
type entryKind int

const (
	// entryScheduled refers to an in-flight compute unit.
	entryScheduled entryKind = iota
	// entryEndOfStream is the terminal marker; nothing follows it.
	entryEndOfStream
)

// unit is one launched execution of the transform, bound to one slot and
// one item. done is closed after the transform returns and err is set, so a
// receive from done is the happens-before edge that lets the drain read the
// slot buffer without further locking.
type unit struct {
	index int
	slot  int
	done  chan struct{}
	err   error
}

// entry is a pending queue element: either a scheduled unit or end of stream.
type entry struct {
	kind entryKind
	unit *unit
}

// pendingQueue is the FIFO between dispatcher and drain. Like slotPool it is
// guarded by the Pipeline mutex.
type pendingQueue struct {
	entries []entry
	closed  bool // end of stream has been appended
}

func newPendingQueue(capacity int) *pendingQueue {
	return &pendingQueue{entries: make([]entry, 0, capacity+1)}
}

func (q *pendingQueue) len() int {
	return len(q.entries)
}

// scheduled counts entries that refer to a unit.
func (q *pendingQueue) scheduled() int {
	n := len(q.entries)
	if q.closed && n > 0 {
		n--
	}
	return n
}

func (q *pendingQueue) pushScheduled(u *unit) {
	if q.closed {
		panic("pipeline: append after end of stream")
	}
	q.entries = append(q.entries, entry{kind: entryScheduled, unit: u})
}

func (q *pendingQueue) pushEndOfStream() {
	if q.closed {
		return
	}
	q.closed = true
	q.entries = append(q.entries, entry{kind: entryEndOfStream})
}

// head returns the first entry without removing it.
func (q *pendingQueue) head() (entry, bool) {
	if len(q.entries) == 0 {
		return entry{}, false
	}
	return q.entries[0], true
}

func (q *pendingQueue) pop() {
	q.entries[0] = entry{}
	q.entries = q.entries[1:]
}
