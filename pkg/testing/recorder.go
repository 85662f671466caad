package testing

import (
	"fmt"
	"time"

	"github.com/go-drift/tempo/pkg/animation"
)

// EventEntry is one event delivery seen by an EventRecorder.
type EventEntry struct {
	// Time is the manager's global time when the event was delivered.
	Time  time.Duration
	Clock string
	Event animation.Event
}

func (e EventEntry) String() string {
	return fmt.Sprintf("%v %s %s", e.Time, e.Clock, e.Event)
}

// EventRecorder records the events of every clock in a tree, in delivery
// order.
type EventRecorder struct {
	manager *animation.TimeManager
	entries []EventEntry
	unsubs  []func()
}

// NewEventRecorder subscribes to every event of every clock under root.
func NewEventRecorder(tm *animation.TimeManager, root *animation.Clock) *EventRecorder {
	r := &EventRecorder{manager: tm}
	var visit func(c *animation.Clock)
	visit = func(c *animation.Clock) {
		for _, ev := range []animation.Event{
			animation.CurrentTimeInvalidated,
			animation.CurrentGlobalSpeedInvalidated,
			animation.CurrentStateInvalidated,
			animation.Completed,
			animation.RemoveRequested,
		} {
			r.unsubs = append(r.unsubs, c.AddListener(ev, func(c *animation.Clock) {
				r.entries = append(r.entries, EventEntry{
					Time:  r.manager.CurrentGlobalTime(),
					Clock: c.Name(),
					Event: ev,
				})
			}))
		}
		for _, child := range c.Children() {
			visit(child)
		}
	}
	visit(root)
	return r
}

// Entries returns the recorded entries in delivery order.
func (r *EventRecorder) Entries() []EventEntry {
	return r.entries
}

// Filter returns the entries for ev, optionally restricted to one clock
// name. An empty name matches every clock.
func (r *EventRecorder) Filter(clock string, ev animation.Event) []EventEntry {
	var out []EventEntry
	for _, e := range r.entries {
		if e.Event == ev && (clock == "" || e.Clock == clock) {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how often ev was delivered to clocks named clock. An empty
// name matches every clock.
func (r *EventRecorder) Count(clock string, ev animation.Event) int {
	return len(r.Filter(clock, ev))
}

// Times returns the global times at which ev was delivered to clock.
func (r *EventRecorder) Times(clock string, ev animation.Event) []time.Duration {
	var out []time.Duration
	for _, e := range r.Filter(clock, ev) {
		out = append(out, e.Time)
	}
	return out
}

// Reset forgets the recorded entries.
func (r *EventRecorder) Reset() {
	r.entries = nil
}

// Close unsubscribes from every clock.
func (r *EventRecorder) Close() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}
