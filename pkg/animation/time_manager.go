package animation

import (
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"
	"weak"

	"github.com/go-drift/tempo/pkg/errors"
)

// rootEntry is a weakly held root clock. The manager never keeps a tree
// alive on its own; the cleanup drops the entry once the root is collected.
type rootEntry struct {
	id      uint64
	clock   weak.Pointer[Clock]
	cleanup runtime.Cleanup
}

type resourceHook struct {
	id int
	fn func() error
}

// TimeManager owns the global time of a set of clock trees and evaluates
// them on every Tick: all trees are computed first, then the queued events
// are raised, then the resource-update hooks run once if anything changed.
//
// A TimeManager and its clocks must be used from a single goroutine. The
// only exception is root collection, which the runtime reports from its own
// goroutine into a locked inbox drained at the start of the next tick.
type TimeManager struct {
	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger

	source     TimeSource
	start      time.Time
	started    bool
	globalTime time.Duration

	roots  []rootEntry
	nextID uint64

	collectMu sync.Mutex
	collected []uint64

	queue   []*Clock
	stack   []*Clock
	ticking bool
	dirty   bool

	next    time.Duration
	hasNext bool

	hooks      []resourceHook
	nextHookID int
}

// NewTimeManager returns a stopped manager reading wall-clock time from
// source. A nil source uses the default time source.
func NewTimeManager(source TimeSource) *TimeManager {
	if source == nil {
		source = defaultSource
	}
	return &TimeManager{source: source}
}

func (tm *TimeManager) logger() *slog.Logger {
	if tm.Logger != nil {
		return tm.Logger
	}
	return slog.Default()
}

// Start starts global time. Global time resumes from where Stop froze it.
func (tm *TimeManager) Start() {
	if tm.started {
		return
	}
	tm.start = tm.source.Now().Add(-tm.globalTime)
	tm.started = true
	tm.requestTick()
}

// Stop freezes global time. Clocks keep their values until the next Start.
func (tm *TimeManager) Stop() {
	if !tm.started {
		return
	}
	tm.globalTime = tm.elapsed()
	tm.started = false
}

// IsStarted reports whether global time is running.
func (tm *TimeManager) IsStarted() bool {
	return tm.started
}

// CurrentGlobalTime returns the global time of the last tick.
func (tm *TimeManager) CurrentGlobalTime() time.Duration {
	return tm.globalTime
}

func (tm *TimeManager) elapsed() time.Duration {
	if !tm.started {
		return tm.globalTime
	}
	return max(tm.source.Now().Sub(tm.start), tm.globalTime)
}

// Roots returns the live root clocks in attachment order.
func (tm *TimeManager) Roots() []*Clock {
	out := make([]*Clock, 0, len(tm.roots))
	for _, e := range tm.roots {
		if c := e.clock.Value(); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Tick advances global time to the time source's current time, evaluates
// every tree, raises the queued events and runs the resource-update hooks.
//
// A handler that panics stops event delivery for the rest of the tick; the
// panic is returned as an *errors.AnimationError. Clock values are already
// updated at that point.
func (tm *TimeManager) Tick() error {
	const op = "animation.TimeManager.Tick"
	if tm.ticking {
		return errors.New(op, errors.KindUsage, errors.ErrReentrantTick)
	}
	tm.ticking = true
	defer func() { tm.ticking = false }()

	if !tm.started {
		tm.Start()
	}
	tm.drainCollected()
	tm.globalTime = tm.elapsed()
	tm.hasNext = false

	for _, e := range tm.roots {
		if c := e.clock.Value(); c != nil {
			tm.walk(c, false)
		}
	}

	err := tm.raiseEnqueuedEvents()
	if err == nil && tm.dirty {
		tm.dirty = false
		err = tm.runResourceHooks()
	}
	tm.pruneRemoved()
	if err != nil {
		tm.logger().Error("tick failed", "time", tm.globalTime, "error", err)
	}
	return err
}

// NextTickNeeded reports how long from now the next tick is needed. ok is
// false when no clock needs a tick until an interactive operation happens.
func (tm *TimeManager) NextTickNeeded() (delay time.Duration, ok bool) {
	if !tm.hasNext {
		return 0, false
	}
	return max(tm.next-tm.elapsed(), 0), true
}

// RegisterForResourceUpdate registers fn to run once at the end of every
// tick that changed any clock. An error returned by fn ends the tick and is
// returned from it unchanged. Returns an unregister function.
func (tm *TimeManager) RegisterForResourceUpdate(fn func() error) func() {
	id := tm.nextHookID
	tm.nextHookID++
	tm.hooks = append(tm.hooks, resourceHook{id: id, fn: fn})
	tm.dirty = true
	tm.requestTick()
	return func() {
		tm.hooks = slices.DeleteFunc(tm.hooks, func(h resourceHook) bool { return h.id == id })
	}
}

func (tm *TimeManager) requestTick() {
	tm.noteNextTick(tm.globalTime)
}

func (tm *TimeManager) noteNextTick(t time.Duration) {
	if !tm.hasNext || t < tm.next {
		tm.next, tm.hasNext = t, true
	}
}

// attach registers root as a new tree and evaluates it once at the current
// global time.
func (tm *TimeManager) attach(root *Clock) {
	tm.nextID++
	id := tm.nextID
	root.root = &rootData{id: id, interactiveSpeed: 1}
	root.forEach(func(c *Clock) { c.manager = tm })
	if root.timeline.BeginTime != nil {
		now := snapToFrame(tm.globalTime, root.timeline.DesiredFrameRate)
		root.setBeginTime(now + *root.timeline.BeginTime)
	}
	tm.roots = append(tm.roots, rootEntry{
		id:      id,
		clock:   weak.Make(root),
		cleanup: runtime.AddCleanup(root, tm.collect, id),
	})
	tm.walk(root, false)
	tm.requestTick()
	tm.logger().Debug("clock attached", "clock", root.Name(), "id", id)
}

// collect runs on the runtime's cleanup goroutine.
func (tm *TimeManager) collect(id uint64) {
	tm.collectMu.Lock()
	tm.collected = append(tm.collected, id)
	tm.collectMu.Unlock()
}

func (tm *TimeManager) drainCollected() {
	tm.collectMu.Lock()
	ids := tm.collected
	tm.collected = nil
	tm.collectMu.Unlock()
	if len(ids) == 0 {
		return
	}
	tm.roots = slices.DeleteFunc(tm.roots, func(e rootEntry) bool {
		return slices.Contains(ids, e.id)
	})
	tm.logger().Debug("collected clock trees", "count", len(ids))
}

func (tm *TimeManager) pruneRemoved() {
	tm.roots = slices.DeleteFunc(tm.roots, func(e rootEntry) bool {
		c := e.clock.Value()
		if c == nil || !c.root.removed {
			return false
		}
		e.cleanup.Stop()
		c.forEach(func(n *Clock) { n.manager = nil })
		tm.logger().Debug("clock removed", "clock", c.Name(), "id", e.id)
		return true
	})
}

// walk evaluates the tree under root in prefix order. A subtree whose root
// was stopped before and after this evaluation is skipped: its clocks were
// reset when it stopped.
func (tm *TimeManager) walk(root *Clock, aligned bool) {
	stack := append(tm.stack[:0], root)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack[len(stack)-1] = nil
		stack = stack[:len(stack)-1]

		wasStopped := c.out.state == Stopped
		c.evaluate(tm, aligned && c == root)
		if wasStopped && c.out.state == Stopped {
			continue
		}
		for i := len(c.children) - 1; i >= 0; i-- {
			stack = append(stack, c.children[i])
		}
	}
	tm.stack = stack
}

// evaluateAligned re-evaluates root's tree at the parent time of the last
// tick. Events are queued for the next flush.
func (tm *TimeManager) evaluateAligned(root *Clock) {
	tm.walk(root, true)
	tm.requestTick()
}

func (tm *TimeManager) enqueue(c *Clock, mask eventMask) {
	c.pendingEvents |= mask
	if !c.queued {
		c.queued = true
		tm.queue = append(tm.queue, c)
	}
	tm.dirty = true
}

// raiseEnqueuedEvents delivers queued events node by node in queue order.
// Clocks queued by handlers during the flush are delivered in the same
// flush.
func (tm *TimeManager) raiseEnqueuedEvents() error {
	defer func() {
		clear(tm.queue)
		tm.queue = tm.queue[:0]
	}()
	for i := 0; i < len(tm.queue); i++ {
		c := tm.queue[i]
		mask := c.pendingEvents
		c.pendingEvents, c.queued = 0, false
		if err := c.raise(mask); err != nil {
			for _, rest := range tm.queue[i+1:] {
				rest.pendingEvents, rest.queued = 0, false
			}
			return err
		}
	}
	return nil
}

func (tm *TimeManager) runResourceHooks() error {
	for _, h := range slices.Clone(tm.hooks) {
		var hookErr error
		if err := protect(func() *errors.AnimationError {
			return &errors.AnimationError{Clock: "resources", Timeline: "manager", Event: "ResourceUpdate"}
		}, func() { hookErr = h.fn() }); err != nil {
			return err
		}
		if hookErr != nil {
			return hookErr
		}
	}
	return nil
}
