// Package animation provides hierarchical timing: timelines describe when
// and how fast things happen, clocks evaluate them against a shared global
// time.
//
// # Core Components
//
//   - [Timeline]: An immutable-once-started template holding begin time,
//     duration, repeat behavior, auto-reverse, acceleration, speed ratio and
//     fill behavior. Timelines with children form parallel groups.
//
//   - [Clock]: The runtime instance of a timeline. Each tick it computes its
//     current time, progress, iteration, global speed and state from its
//     parent's time, and raises events when they change.
//
//   - [ClockController]: Interactive operations on a root clock (begin, pause,
//     resume, seek, skip to fill, stop, remove, speed ratio), applied on the
//     next tick.
//
//   - [TimeManager]: Owns global time, ticks every live root tree and runs
//     the resource-update hooks once per dirty tick. Roots are held weakly.
//
//   - [Driver]: A frame loop that ticks a manager at a capped rate and sleeps
//     while nothing needs a tick.
//
// # Basic Usage
//
//	tm := animation.NewTimeManager(nil)
//	tl := animation.NewTimeline(animation.DurationOf(time.Second))
//	tl.AutoReverse = true
//	clock, err := tl.CreateClock(tm)
//	if err != nil {
//	    return err
//	}
//	clock.OnCompleted(func(c *animation.Clock) {
//	    slog.Info("done", "clock", c.Name())
//	})
//	d := animation.NewDriver(tm)
//	d.ExitWhenIdle = true
//	return d.Run(ctx)
//
// # Threading
//
// A TimeManager and its clocks belong to one goroutine. Work from other
// goroutines reaches a running Driver through [Driver.Post].
package animation
