package animation

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	now time.Time
}

func (f *fakeSource) Now() time.Time { return f.now }

// harness ticks a manager at exact global times.
type harness struct {
	t   *testing.T
	src *fakeSource
	tm  *TimeManager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	src := &fakeSource{now: testEpoch}
	tm := NewTimeManager(src)
	tm.Start()
	return &harness{t: t, src: src, tm: tm}
}

func (h *harness) start(tl *Timeline) *Clock {
	h.t.Helper()
	c, err := tl.CreateClock(h.tm)
	if err != nil {
		h.t.Fatalf("CreateClock: %v", err)
	}
	return c
}

// tickAt ticks at global time at and fails the test on a tick error.
func (h *harness) tickAt(at time.Duration) {
	h.t.Helper()
	if err := h.tryTickAt(at); err != nil {
		h.t.Fatalf("Tick at %v: %v", at, err)
	}
}

func (h *harness) tryTickAt(at time.Duration) error {
	h.src.now = testEpoch.Add(at)
	return h.tm.Tick()
}

func span(d time.Duration) Duration {
	return DurationOf(d)
}

func named(name string, tl *Timeline) *Timeline {
	tl.Name = name
	return tl
}

func currentTime(t *testing.T, c *Clock) time.Duration {
	t.Helper()
	ct, ok := c.CurrentTime()
	if !ok {
		t.Fatalf("%s: no current time in state %v", c.Name(), c.CurrentState())
	}
	return ct
}

func progress(t *testing.T, c *Clock) float64 {
	t.Helper()
	p, ok := c.CurrentProgress()
	if !ok {
		t.Fatalf("%s: no progress in state %v", c.Name(), c.CurrentState())
	}
	return p
}

func speed(c *Clock) float64 {
	s, _ := c.CurrentGlobalSpeed()
	return s
}

func iteration(c *Clock) int {
	n, _ := c.CurrentIteration()
	return n
}

// eventLog records the events of clocks in delivery order.
type eventLog struct {
	entries []string
}

func (l *eventLog) watch(c *Clock) {
	for ev := CurrentTimeInvalidated; ev < numEvents; ev++ {
		c.AddListener(ev, func(c *Clock) {
			l.entries = append(l.entries, c.Name()+":"+ev.String())
		})
	}
}

func (l *eventLog) count(entry string) int {
	n := 0
	for _, e := range l.entries {
		if e == entry {
			n++
		}
	}
	return n
}
