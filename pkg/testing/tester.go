package testing

import (
	"errors"
	"testing"
	"time"

	"github.com/go-drift/tempo/pkg/animation"
)

// DefaultFrameDuration is the fake-clock step used by PumpAndSettle.
const DefaultFrameDuration = 16 * time.Millisecond

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: clocks did not settle")

// ClockTester drives a TimeManager from a fake clock so clock trees can be
// ticked at exact global times.
type ClockTester struct {
	clock      *FakeClock
	manager    *animation.TimeManager
	prevSource animation.TimeSource
	// roots keeps started trees alive; the manager holds them weakly.
	roots []*animation.Clock
}

// NewClockTester creates a tester whose manager has started at global time
// zero. Call Cleanup when done, or use NewClockTesterWithT instead.
func NewClockTester() *ClockTester {
	clk := NewFakeClock()
	t := &ClockTester{
		clock:   clk,
		manager: animation.NewTimeManager(clk),
	}
	t.prevSource = animation.SetDefaultTimeSource(clk)
	t.manager.Start()
	return t
}

// NewClockTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewClockTesterWithT(t testing.TB) *ClockTester {
	tester := NewClockTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup restores the default time source and releases started trees.
func (t *ClockTester) Cleanup() {
	animation.SetDefaultTimeSource(t.prevSource)
	t.roots = nil
}

// Clock returns the fake clock for advancing time in tests.
func (t *ClockTester) Clock() *FakeClock {
	return t.clock
}

// Manager returns the time manager under test.
func (t *ClockTester) Manager() *animation.TimeManager {
	return t.manager
}

// Now returns the manager's global time of the last tick.
func (t *ClockTester) Now() time.Duration {
	return t.manager.CurrentGlobalTime()
}

// Start creates a clock tree for tl on the tester's manager and keeps it
// alive for the lifetime of the tester.
func (t *ClockTester) Start(tl *animation.Timeline) (*animation.Clock, error) {
	c, err := tl.CreateClock(t.manager)
	if err != nil {
		return nil, err
	}
	t.roots = append(t.roots, c)
	return c, nil
}

// Release drops the tester's reference to root so it can be collected.
func (t *ClockTester) Release(root *animation.Clock) {
	for i, c := range t.roots {
		if c == root {
			t.roots = append(t.roots[:i], t.roots[i+1:]...)
			return
		}
	}
}

// Tick ticks the manager at the fake clock's current time.
func (t *ClockTester) Tick() error {
	return t.manager.Tick()
}

// Advance moves the fake clock forward by d and ticks.
func (t *ClockTester) Advance(d time.Duration) error {
	t.clock.Advance(d)
	return t.manager.Tick()
}

// AdvanceTo moves the fake clock to global time at and ticks. Times in the
// past tick at the current time.
func (t *ClockTester) AdvanceTo(at time.Duration) error {
	return t.Advance(max(at-t.manager.CurrentGlobalTime(), 0))
}

// Run ticks every step until global time reaches until, calling fn after
// each tick when fn is non-nil.
func (t *ClockTester) Run(step, until time.Duration, fn func(now time.Duration)) error {
	if step <= 0 {
		return errors.New("testing: Run step must be positive")
	}
	for t.Now() < until {
		if err := t.Advance(min(step, until-t.Now())); err != nil {
			return err
		}
		if fn != nil {
			fn(t.Now())
		}
	}
	return nil
}

// PumpAndSettle ticks frames until no clock needs a tick or the timeout is
// reached. Each frame advances the fake clock by DefaultFrameDuration, or to
// the next needed tick when that is further away.
func (t *ClockTester) PumpAndSettle(timeout time.Duration) error {
	var elapsed time.Duration
	if err := t.Tick(); err != nil {
		return err
	}
	for elapsed < timeout {
		delay, ok := t.manager.NextTickNeeded()
		if !ok {
			return nil
		}
		step := max(delay, DefaultFrameDuration)
		if err := t.Advance(step); err != nil {
			return err
		}
		elapsed += step
	}
	return ErrSettleTimeout
}

// Record starts recording every event raised by root's tree.
func (t *ClockTester) Record(root *animation.Clock) *EventRecorder {
	return NewEventRecorder(t.manager, root)
}

// Find evaluates a finder against every started tree.
func (t *ClockTester) Find(finder Finder) FinderResult {
	var clocks []*animation.Clock
	for _, root := range t.roots {
		clocks = append(clocks, finder.Evaluate(root)...)
	}
	return FinderResult{clocks: clocks, finder: finder}
}
