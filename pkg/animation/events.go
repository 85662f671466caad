package animation

import (
	"slices"
	"time"

	"github.com/go-drift/tempo/pkg/errors"
)

// raise delivers the events in mask in a fixed order: time, speed, state,
// completed, remove.
func (c *Clock) raise(mask eventMask) error {
	if mask&maskTime != 0 {
		if err := c.fire(CurrentTimeInvalidated); err != nil {
			return err
		}
	}
	if mask&maskSpeed != 0 {
		if err := c.fire(CurrentGlobalSpeedInvalidated); err != nil {
			return err
		}
		if obs, ok := c.timeline.Content.(SpeedChangeObserver); ok {
			if err := c.call("SpeedChanged", func() { obs.SpeedChanged(c) }); err != nil {
				return err
			}
		}
	}
	if mask&maskState != 0 {
		if err := c.fire(CurrentStateInvalidated); err != nil {
			return err
		}
	}
	if mask&maskJump != 0 && mask&maskSpeed == 0 {
		if obs, ok := c.timeline.Content.(DiscontinuityObserver); ok {
			if err := c.call("DiscontinuousTimeMovement", func() { obs.DiscontinuousTimeMovement(c) }); err != nil {
				return err
			}
		}
	}
	if mask&maskCompleted != 0 {
		if err := c.fire(Completed); err != nil {
			return err
		}
	}
	if mask&maskRemove != 0 {
		if err := c.fire(RemoveRequested); err != nil {
			return err
		}
	}
	return nil
}

// fire runs the listeners registered for ev when the flush started.
// Listeners added by a handler run from the next delivery of ev.
func (c *Clock) fire(ev Event) error {
	ls := c.listeners[ev]
	if len(ls) == 0 {
		return nil
	}
	for _, l := range slices.Clone(ls) {
		if err := c.call(ev.String(), func() { l.fn(c) }); err != nil {
			return err
		}
	}
	return nil
}

func (c *Clock) call(event string, fn func()) error {
	return protect(func() *errors.AnimationError {
		return &errors.AnimationError{Clock: c.Name(), Timeline: c.timeline.Kind(), Event: event}
	}, fn)
}

// protect runs fn and converts a panic into the AnimationError built by
// describe.
func protect(describe func() *errors.AnimationError, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ae := describe()
			ae.Recovered = r
			ae.StackTrace = errors.CaptureStack()
			ae.Timestamp = time.Now()
			err = ae
		}
	}()
	fn()
	return nil
}
