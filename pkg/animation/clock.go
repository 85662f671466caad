package animation

import (
	"fmt"
	"time"
)

// Event identifies a notification a clock raises after a tick.
type Event int

const (
	// CurrentTimeInvalidated fires when the clock's current time moved.
	CurrentTimeInvalidated Event = iota
	// CurrentGlobalSpeedInvalidated fires when the clock's global speed changed.
	CurrentGlobalSpeedInvalidated
	// CurrentStateInvalidated fires when the clock changed state, including
	// passing through a state and back within one tick.
	CurrentStateInvalidated
	// Completed fires when the clock reaches the end of its active period.
	Completed
	// RemoveRequested fires when the clock was removed through its controller.
	RemoveRequested

	numEvents
)

// String returns the event name.
func (e Event) String() string {
	switch e {
	case CurrentTimeInvalidated:
		return "CurrentTimeInvalidated"
	case CurrentGlobalSpeedInvalidated:
		return "CurrentGlobalSpeedInvalidated"
	case CurrentStateInvalidated:
		return "CurrentStateInvalidated"
	case Completed:
		return "Completed"
	case RemoveRequested:
		return "RemoveRequested"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

type eventMask uint8

const (
	maskTime eventMask = 1 << iota
	maskSpeed
	maskState
	maskCompleted
	maskRemove
	// maskJump records a discontinuous movement; it drives the
	// DiscontinuousTimeMovement hook rather than a public event.
	maskJump
)

// clockOutputs are the values a clock reports after an evaluation.
type clockOutputs struct {
	state     ClockState
	time      time.Duration
	progress  float64
	iteration int
	speed     float64
	pastEnd   bool
}

type listener struct {
	id int
	fn func(*Clock)
}

// Clock is the live, stateful instantiation of a Timeline inside a clock
// tree. Clocks are created by Timeline.CreateClock and evaluated by their
// TimeManager once per tick, parents before children.
//
// Clock values are only meaningful on the goroutine that ticks the manager.
type Clock struct {
	timeline *Timeline
	manager  *TimeManager

	parent     *Clock
	children   []*Clock
	depth      int
	childIndex int
	root       *rootData

	// Resolution.
	beginTime           *time.Duration
	// beginSkew is added to the local offset from beginTime so that a seek
	// reads back the exact local time requested.
	beginSkew           time.Duration
	iterationBegin      *time.Duration
	iterationIndex      int
	currentDuration     Duration
	hasResolvedDuration bool
	appliedSpeedRatio   float64

	// Lifecycle flags.
	canGrow             bool
	canSlip             bool
	hasControllableRoot bool
	syncData            *syncData

	// Outputs.
	out             clockOutputs
	backwards       bool
	backwardsGlobal bool
	discontinuous   bool
	predictable     bool
	intervals       TimeIntervalCollection
	scratch         TimeIntervalCollection

	// Per-tick event bookkeeping.
	pendingEvents eventMask
	queued        bool

	listeners      [numEvents][]listener
	nextListenerID int
}

// Name returns the timeline name, or its kind when unnamed.
func (c *Clock) Name() string {
	return c.timeline.label()
}

// Timeline returns the snapshot of the timeline this clock was created from.
// The snapshot must not be modified.
func (c *Clock) Timeline() *Timeline {
	return c.timeline
}

// Content returns the timeline's content, if any.
func (c *Clock) Content() Content {
	return c.timeline.Content
}

// Parent returns the parent clock, or nil for a root.
func (c *Clock) Parent() *Clock {
	return c.parent
}

// Children returns the child clocks in declaration order. The returned slice
// must not be modified.
func (c *Clock) Children() []*Clock {
	return c.children
}

// Depth returns the distance from the root; roots have depth 0.
func (c *Clock) Depth() int {
	return c.depth
}

// IsRoot reports whether the clock is the root of its tree.
func (c *Clock) IsRoot() bool {
	return c.parent == nil
}

// Manager returns the time manager driving the clock, or nil once the clock
// has been removed.
func (c *Clock) Manager() *TimeManager {
	return c.manager
}

// CurrentState returns the clock's state after the last evaluation.
func (c *Clock) CurrentState() ClockState {
	return c.out.state
}

// CurrentTime returns the clock's local time. ok is false while stopped.
func (c *Clock) CurrentTime() (t time.Duration, ok bool) {
	if c.out.state == Stopped {
		return 0, false
	}
	return c.out.time, true
}

// CurrentProgress returns the eased fraction of the current iteration, in
// [0, 1]. Clocks with a Forever duration report 0. ok is false while stopped.
func (c *Clock) CurrentProgress() (p float64, ok bool) {
	if c.out.state == Stopped {
		return 0, false
	}
	return c.out.progress, true
}

// CurrentIteration returns the 1-based iteration. ok is false while stopped.
func (c *Clock) CurrentIteration() (n int, ok bool) {
	if c.out.state == Stopped {
		return 0, false
	}
	return c.out.iteration, true
}

// CurrentGlobalSpeed returns the rate at which the clock's time moves
// relative to the manager's global time. Negative while playing backward,
// zero while filling or paused. ok is false while stopped.
func (c *Clock) CurrentGlobalSpeed() (s float64, ok bool) {
	if c.out.state == Stopped {
		return 0, false
	}
	return c.out.speed, true
}

// CurrentDuration returns the clock's simple duration as currently resolved.
func (c *Clock) CurrentDuration() Duration {
	return c.currentDuration
}

// CurrentIntervals returns the local-time intervals this clock passed
// through during the last evaluation. The collection must not be modified.
func (c *Clock) CurrentIntervals() *TimeIntervalCollection {
	return &c.intervals
}

// IsBackwardsProgressingGlobal reports whether the clock's time is moving
// backward relative to global time.
func (c *Clock) IsBackwardsProgressingGlobal() bool {
	return c.backwardsGlobal
}

// IsPaused reports whether the clock's root is interactively paused.
func (c *Clock) IsPaused() bool {
	r := c.rootClock()
	return r.root != nil && r.root.paused
}

// CanSlip reports whether the clock follows an external time source.
func (c *Clock) CanSlip() bool {
	return c.canSlip
}

// CanGrow reports whether the clock's duration is provisional because a
// descendant follows an external time source.
func (c *Clock) CanGrow() bool {
	return c.canGrow
}

// NaturalDuration returns the duration used when the timeline's Duration is
// Automatic.
func (c *Clock) NaturalDuration() Duration {
	if c.timeline.Content != nil {
		return c.timeline.Content.NaturalDuration(c)
	}
	if len(c.children) > 0 {
		return c.groupNaturalDuration()
	}
	return DurationOf(defaultNaturalDuration)
}

// groupNaturalDuration spans the latest end of the children.
func (c *Clock) groupNaturalDuration() Duration {
	var end time.Duration
	for _, child := range c.children {
		if child.beginTime == nil {
			continue
		}
		child.resolveDuration()
		eff, ok := child.effectiveDuration()
		if !ok {
			if child.currentDuration.IsAutomatic() {
				return Automatic
			}
			return Forever
		}
		end = max(end, *child.beginTime+eff)
	}
	return DurationOf(end)
}

// AddListener registers fn for ev. Listeners run after the whole tick has
// been computed, in registration order. Returns an unsubscribe function.
func (c *Clock) AddListener(ev Event, fn func(*Clock)) func() {
	if ev < 0 || ev >= numEvents || fn == nil {
		panic(fmt.Sprintf("animation: invalid listener registration for %v", ev))
	}
	id := c.nextListenerID
	c.nextListenerID++
	c.listeners[ev] = append(c.listeners[ev], listener{id: id, fn: fn})
	if ev == CurrentTimeInvalidated && c.manager != nil {
		c.manager.requestTick()
	}
	return func() {
		ls := c.listeners[ev]
		for i, l := range ls {
			if l.id == id {
				c.listeners[ev] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// OnCompleted is shorthand for AddListener(Completed, fn).
func (c *Clock) OnCompleted(fn func(*Clock)) func() {
	return c.AddListener(Completed, fn)
}

// OnStateInvalidated is shorthand for AddListener(CurrentStateInvalidated, fn).
func (c *Clock) OnStateInvalidated(fn func(*Clock)) func() {
	return c.AddListener(CurrentStateInvalidated, fn)
}

func (c *Clock) rootClock() *Clock {
	r := c
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// needsTicksWhenActive reports whether the clock's values are consumed
// every frame while it is active.
func (c *Clock) needsTicksWhenActive() bool {
	return c.timeline.Content != nil || len(c.listeners[CurrentTimeInvalidated]) > 0
}

func (c *Clock) String() string {
	if t, ok := c.CurrentTime(); ok {
		return fmt.Sprintf("%s[%s t=%v iter=%d]", c.Name(), c.out.state, t, c.out.iteration)
	}
	return fmt.Sprintf("%s[%s]", c.Name(), c.out.state)
}

// buildClockTree creates the clock subtree for t. Slip eligibility is
// resolved as nodes are created so ancestors can be marked as growing.
func buildClockTree(t *Timeline, parent *Clock, index int) *Clock {
	c := &Clock{
		timeline:            t,
		parent:              parent,
		childIndex:          index,
		appliedSpeedRatio:   t.speedRatio(),
		hasControllableRoot: true,
	}
	if parent != nil {
		c.depth = parent.depth + 1
	}
	if t.BeginTime != nil {
		b := *t.BeginTime
		c.beginTime = &b
	}
	c.resolveSlip()
	if len(t.Children) > 0 {
		c.children = make([]*Clock, len(t.Children))
		for i, ct := range t.Children {
			c.children[i] = buildClockTree(ct, c, i)
		}
	}
	return c
}

// forEach visits the subtree in prefix order.
func (c *Clock) forEach(fn func(*Clock)) {
	fn(c)
	for _, child := range c.children {
		child.forEach(fn)
	}
}
