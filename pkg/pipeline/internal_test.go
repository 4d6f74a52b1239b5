package pipeline

import "testing"

func TestSlotPool_AcquireRelease(t *testing.T) {
	p := newSlotPool(3, func(slot int) *int {
		v := slot * 10
		return &v
	})

	if p.size() != 3 || p.vacant() != 3 {
		t.Fatalf("expected 3 vacant slots, got size %d vacant %d", p.size(), p.vacant())
	}

	a := p.acquire()
	b := p.acquire()
	if a != 0 || b != 1 {
		t.Errorf("expected slots 0 and 1, got %d and %d", a, b)
	}
	if p.vacant() != 1 {
		t.Errorf("expected 1 vacant slot, got %d", p.vacant())
	}
	if *p.buffer(b) != 10 {
		t.Errorf("expected buffer of slot 1 to hold 10, got %d", *p.buffer(b))
	}

	p.release(a)
	c := p.acquire()
	d := p.acquire()
	if c != 2 || d != 0 {
		t.Errorf("expected FIFO reuse (2 then 0), got %d then %d", c, d)
	}
}

func TestSlotPool_Misuse(t *testing.T) {
	expectPanic := func(name string, f func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s: expected panic", name)
			}
		}()
		f()
	}

	p := newSlotPool(1, func(int) int { return 0 })
	expectPanic("release vacant", func() { p.release(0) })
	p.acquire()
	expectPanic("acquire empty", func() { p.acquire() })
}

func TestPendingQueue(t *testing.T) {
	q := newPendingQueue(2)

	if _, ok := q.head(); ok {
		t.Error("expected empty queue to have no head")
	}

	u0 := &unit{index: 0, slot: 1}
	u1 := &unit{index: 1, slot: 0}
	q.pushScheduled(u0)
	q.pushScheduled(u1)
	q.pushEndOfStream()
	q.pushEndOfStream()

	if q.len() != 3 || q.scheduled() != 2 {
		t.Fatalf("expected 3 entries with 2 scheduled, got %d and %d", q.len(), q.scheduled())
	}

	head, _ := q.head()
	if head.kind != entryScheduled || head.unit != u0 {
		t.Errorf("expected unit 0 at head, got %+v", head)
	}
	q.pop()
	head, _ = q.head()
	if head.unit != u1 {
		t.Errorf("expected unit 1 at head, got %+v", head)
	}
	q.pop()
	head, _ = q.head()
	if head.kind != entryEndOfStream || q.scheduled() != 0 {
		t.Errorf("expected end of stream at head, got %+v", head)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected panic when scheduling after end of stream")
		}
	}()
	q.pushScheduled(&unit{index: 2})
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		NotStarted: "not-started",
		Running:    "running",
		Draining:   "draining",
		Stopped:    "stopped",
		State(42):  "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}
