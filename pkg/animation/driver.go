package animation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/go-drift/tempo/pkg/errors"
)

const (
	defaultFrameRate    = 60
	defaultIdleInterval = 250 * time.Millisecond
	postQueueSize       = 64
)

// Driver ticks a TimeManager from a frame loop paced by a rate limiter. It
// sleeps while the manager reports that no clock needs a tick.
//
// Clocks are not safe for concurrent use: code that touches them while the
// driver runs must either run in OnFrame or be handed over with Post.
//
// The zero value with Manager set is ready to use.
type Driver struct {
	// Manager is the manager to tick.
	Manager *TimeManager

	// FrameRate caps the ticks per second. Zero uses 60.
	FrameRate int

	// IdleInterval bounds how long the driver sleeps when no tick is
	// needed. Zero uses 250ms.
	IdleInterval time.Duration

	// ExitWhenIdle makes Run return once no clock needs further ticks.
	ExitWhenIdle bool

	// OnFrame runs on the driver goroutine after every tick.
	OnFrame func(tm *TimeManager)

	// OnError receives tick failures. Returning a non-nil error stops Run.
	// Nil sends the failure to the global error handler (see
	// errors.SetHandler) and keeps running.
	OnError func(err error) error

	// Logger receives diagnostics. Nil uses the manager's logger.
	Logger *slog.Logger

	postsOnce sync.Once
	posts     chan func()
}

// NewDriver returns a driver for tm with default pacing.
func NewDriver(tm *TimeManager) *Driver {
	return &Driver{Manager: tm}
}

func (d *Driver) queue() chan func() {
	d.postsOnce.Do(func() { d.posts = make(chan func(), postQueueSize) })
	return d.posts
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return d.Manager.logger()
}

// Post schedules fn to run on the driver goroutine before the next tick.
// It blocks when too many functions are already waiting.
func (d *Driver) Post(fn func()) {
	d.queue() <- fn
}

func (d *Driver) drainPosts(posts <-chan func()) {
	for {
		select {
		case fn := <-posts:
			runPosted(fn)
		default:
			return
		}
	}
}

// runPosted runs fn, reporting a panic to the global error handler instead
// of ending the frame loop.
func runPosted(fn func()) {
	defer errors.Recover("animation.Driver.Post")
	fn()
}

// Run ticks the manager until ctx is cancelled, OnError returns an error or,
// with ExitWhenIdle, no clock needs another tick.
func (d *Driver) Run(ctx context.Context) error {
	const op = "animation.Driver.Run"
	posts := d.queue()
	fps := d.FrameRate
	if fps <= 0 {
		fps = defaultFrameRate
	}
	idle := d.IdleInterval
	if idle <= 0 {
		idle = defaultIdleInterval
	}
	limiter := rate.NewLimiter(rate.Limit(fps), 1)
	frame := time.Second / time.Duration(fps)
	tm := d.Manager
	tm.Start()
	d.logger().Debug("driver started", "fps", fps)

	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		d.drainPosts(posts)
		if err := tm.Tick(); err != nil {
			if d.OnError == nil {
				errors.ReportError(op, err)
			} else if stop := d.OnError(err); stop != nil {
				return stop
			}
		}
		if d.OnFrame != nil {
			d.OnFrame(tm)
		}

		delay, ok := tm.NextTickNeeded()
		if !ok {
			if d.ExitWhenIdle {
				d.logger().Debug("driver idle", "time", tm.CurrentGlobalTime())
				return nil
			}
			delay = idle
		}
		if delay <= frame {
			continue
		}
		timer := time.NewTimer(min(delay, idle) - frame)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case fn := <-posts:
			timer.Stop()
			runPosted(fn)
		case <-timer.C:
		}
	}
}
