package animation

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	tempoerrors "github.com/go-drift/tempo/pkg/errors"
)

func TestController_OnlyRoots(t *testing.T) {
	h := newHarness(t)
	root := h.start(NewParallelTimeline(NewTimeline(span(time.Second))))

	if root.Controller() == nil {
		t.Fatal("root should expose a controller")
	}
	if root.Controller() != root.Controller() {
		t.Error("controller should be cached")
	}
	if root.Children()[0].Controller() != nil {
		t.Error("child clocks must not expose a controller")
	}
}

func TestController_PauseResume(t *testing.T) {
	h := newHarness(t)
	c := h.start(NewTimeline(span(2 * time.Second)))
	cc := c.Controller()

	h.tickAt(300 * ms)
	if err := cc.Pause(); err != nil {
		t.Fatal(err)
	}
	h.tickAt(600 * ms)
	if !c.IsPaused() || !cc.IsPaused() {
		t.Fatal("expected clock to be paused")
	}
	h.tickAt(900 * ms)
	if got := currentTime(t, c); got != 600*ms {
		t.Errorf("paused time = %v, want 600ms", got)
	}
	if got := speed(c); got != 0 {
		t.Errorf("paused speed = %v, want 0", got)
	}
	if c.CurrentState() != Active {
		t.Errorf("paused state = %v, want active", c.CurrentState())
	}

	if err := cc.Resume(); err != nil {
		t.Fatal(err)
	}
	h.tickAt(time.Second)
	if got := currentTime(t, c); got != 600*ms {
		t.Errorf("time after resume = %v, want 600ms", got)
	}
	h.tickAt(1200 * ms)
	if got := currentTime(t, c); got != 800*ms {
		t.Errorf("time = %v, want 800ms", got)
	}
	if got := speed(c); got != 1 {
		t.Errorf("speed = %v, want 1", got)
	}
}

func TestController_PauseFreezesDescendants(t *testing.T) {
	h := newHarness(t)
	a := named("a", NewTimeline(span(2 * time.Second)))
	b := named("b", NewTimeline(span(time.Second)))
	b.BeginTime = Begin(100 * ms)
	root := h.start(NewParallelTimeline(a, b))
	ca, cb := root.Children()[0], root.Children()[1]

	h.tickAt(0)
	if err := root.Controller().Pause(); err != nil {
		t.Fatal(err)
	}
	h.tickAt(600 * ms)
	h.tickAt(900 * ms)
	for _, c := range []*Clock{root, ca, cb} {
		if got := speed(c); got != 0 {
			t.Errorf("%s paused speed = %v, want 0", c.Name(), got)
		}
		if c.CurrentState() != Active {
			t.Errorf("%s paused state = %v, want active", c.Name(), c.CurrentState())
		}
	}
	if got := currentTime(t, ca); got != 600*ms {
		t.Errorf("a paused time = %v, want 600ms", got)
	}
	if got := currentTime(t, cb); got != 500*ms {
		t.Errorf("b paused time = %v, want 500ms", got)
	}

	if err := root.Controller().Resume(); err != nil {
		t.Fatal(err)
	}
	h.tickAt(time.Second)
	if got := currentTime(t, cb); got != 500*ms {
		t.Errorf("b time after resume = %v, want 500ms", got)
	}
	h.tickAt(1200 * ms)
	if got := currentTime(t, ca); got != 800*ms {
		t.Errorf("a time = %v, want 800ms", got)
	}
	if got := currentTime(t, cb); got != 700*ms {
		t.Errorf("b time = %v, want 700ms", got)
	}
	if got := speed(cb); got != 1 {
		t.Errorf("b speed = %v, want 1", got)
	}
}

func TestController_PauseThenResumeBeforeTickCancels(t *testing.T) {
	h := newHarness(t)
	c := h.start(NewTimeline(span(2 * time.Second)))
	cc := c.Controller()

	h.tickAt(0)
	cc.Pause()
	cc.Resume()
	h.tickAt(500 * ms)
	if c.IsPaused() {
		t.Error("resume should cancel the pending pause")
	}
	if got := currentTime(t, c); got != 500*ms {
		t.Errorf("time = %v, want 500ms", got)
	}
}

func TestController_Seek(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		origin SeekOrigin
	}{
		{"from begin", 1500 * ms, FromBegin},
		{"from end", -500 * ms, FromEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			c := h.start(NewTimeline(span(2 * time.Second)))
			h.tickAt(0)
			if err := c.Controller().Seek(tt.offset, tt.origin); err != nil {
				t.Fatal(err)
			}
			h.tickAt(100 * ms)
			if got := currentTime(t, c); got != 1500*ms {
				t.Errorf("time = %v, want 1.5s", got)
			}
			h.tickAt(200 * ms)
			if got := currentTime(t, c); got != 1600*ms {
				t.Errorf("time = %v, want 1.6s", got)
			}
		})
	}
}

func TestController_SeekAlignedToLastTick(t *testing.T) {
	h := newHarness(t)
	c := h.start(NewTimeline(span(2 * time.Second)))
	cc := c.Controller()
	h.tickAt(0)
	h.tickAt(400 * ms)

	if err := cc.SeekAlignedToLastTick(time.Second, FromBegin); err != nil {
		t.Fatal(err)
	}
	if got := currentTime(t, c); got != time.Second {
		t.Errorf("time right after seek = %v, want 1s", got)
	}
	if err := cc.SeekAlignedToLastTick(time.Second, FromBegin); err != nil {
		t.Fatal(err)
	}
	if got := currentTime(t, c); got != time.Second {
		t.Errorf("repeated seek moved the clock to %v", got)
	}

	h.tickAt(500 * ms)
	if got := currentTime(t, c); got != 1100*ms {
		t.Errorf("time = %v, want 1.1s", got)
	}
}

func TestController_SeekReadsBackUnderSpeedRatio(t *testing.T) {
	tests := []struct {
		ratio   float64
		offsets []time.Duration
		advance time.Duration
	}{
		{3, []time.Duration{time.Second, 2500 * ms}, 300 * ms},
		{7, []time.Duration{time.Second, 3333 * ms}, 100 * ms},
		{0.7, []time.Duration{time.Second, 2500 * ms}, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.ratio), func(t *testing.T) {
			h := newHarness(t)
			tl := NewTimeline(span(10 * time.Second))
			tl.SpeedRatio = tt.ratio
			c := h.start(tl)
			cc := c.Controller()
			h.tickAt(0)
			h.tickAt(400 * ms)

			for _, off := range tt.offsets {
				if err := cc.SeekAlignedToLastTick(off, FromBegin); err != nil {
					t.Fatal(err)
				}
				if got := currentTime(t, c); got != off {
					t.Errorf("time after seek to %v = %v", off, got)
				}
				if err := cc.SeekAlignedToLastTick(off, FromBegin); err != nil {
					t.Fatal(err)
				}
				if got := currentTime(t, c); got != off {
					t.Errorf("repeated seek to %v moved the clock to %v", off, got)
				}
			}

			if tt.advance == 0 {
				return
			}
			last := tt.offsets[len(tt.offsets)-1]
			h.tickAt(400*ms + tt.advance)
			want := last + time.Duration(float64(tt.advance)*tt.ratio)
			if got := currentTime(t, c); got != want {
				t.Errorf("time after advancing %v = %v, want %v", tt.advance, got, want)
			}
		})
	}
}

func TestController_SeekValidation(t *testing.T) {
	h := newHarness(t)
	c := h.start(NewTimeline(span(time.Second)))
	cc := c.Controller()

	if err := cc.Seek(-time.Millisecond, FromBegin); !errors.Is(err, tempoerrors.ErrInvalidSeek) {
		t.Errorf("negative seek err = %v, want ErrInvalidSeek", err)
	}
	if err := cc.Seek(0, SeekOrigin(7)); !errors.Is(err, tempoerrors.ErrUnknownOrigin) {
		t.Errorf("unknown origin err = %v, want ErrUnknownOrigin", err)
	}

	forever := NewTimeline(span(time.Second))
	forever.RepeatBehavior = RepeatForever
	fc := h.start(forever).Controller()
	err := fc.Seek(0, FromEnd)
	if !errors.Is(err, tempoerrors.ErrUnboundedDuration) {
		t.Errorf("seek from unbounded end err = %v, want ErrUnboundedDuration", err)
	}
	if tempoerrors.KindOf(err) != tempoerrors.KindUnbounded {
		t.Errorf("kind = %v, want unbounded", tempoerrors.KindOf(err))
	}
}

func TestController_SkipToFill(t *testing.T) {
	h := newHarness(t)
	c := h.start(named("intro", NewTimeline(span(time.Second))))
	var log eventLog
	log.watch(c)
	h.tickAt(0)

	if err := c.Controller().SkipToFill(); err != nil {
		t.Fatal(err)
	}
	h.tickAt(100 * ms)
	if c.CurrentState() != Filling || progress(t, c) != 1 {
		t.Errorf("state %v progress %v, want filling at 1", c.CurrentState(), progress(t, c))
	}
	if n := log.count("intro:Completed"); n != 1 {
		t.Errorf("Completed raised %d times, want 1", n)
	}

	forever := NewTimeline(span(time.Second))
	forever.RepeatBehavior = RepeatForever
	err := h.start(forever).Controller().SkipToFill()
	if !errors.Is(err, tempoerrors.ErrUnboundedDuration) {
		t.Errorf("err = %v, want ErrUnboundedDuration", err)
	}
}

func TestController_StopAndBegin(t *testing.T) {
	h := newHarness(t)
	c := h.start(named("loop", NewTimeline(span(time.Second))))
	var log eventLog
	log.watch(c)
	cc := c.Controller()

	h.tickAt(500 * ms)
	if err := cc.Stop(); err != nil {
		t.Fatal(err)
	}
	h.tickAt(600 * ms)
	if c.CurrentState() != Stopped {
		t.Fatalf("state = %v, want stopped", c.CurrentState())
	}
	h.tickAt(5 * time.Second)
	if c.CurrentState() != Stopped {
		t.Errorf("stopped clock restarted on its own: %v", c.CurrentState())
	}
	if n := log.count("loop:Completed"); n != 0 {
		t.Errorf("Stop raised Completed %d times", n)
	}

	if err := cc.Begin(); err != nil {
		t.Fatal(err)
	}
	h.tickAt(6 * time.Second)
	if c.CurrentState() != Active || currentTime(t, c) != 0 {
		t.Errorf("after Begin: state %v, want active at 0", c.CurrentState())
	}
	h.tickAt(6500 * ms)
	if got := currentTime(t, c); got != 500*ms {
		t.Errorf("time = %v, want 500ms", got)
	}
}

func TestController_BeginNeverBegunTimeline(t *testing.T) {
	h := newHarness(t)
	tl := NewTimeline(span(time.Second))
	tl.BeginTime = nil
	c := h.start(tl)
	h.tickAt(time.Second)

	c.Controller().Begin()
	h.tickAt(2 * time.Second)
	h.tickAt(2250 * ms)
	if got := currentTime(t, c); got != 250*ms {
		t.Errorf("time = %v, want 250ms", got)
	}
}

func TestController_Remove(t *testing.T) {
	h := newHarness(t)
	c := h.start(named("gone", NewTimeline(span(time.Second))))
	var log eventLog
	log.watch(c)
	cc := c.Controller()

	h.tickAt(100 * ms)
	if err := cc.Remove(); err != nil {
		t.Fatal(err)
	}
	h.tickAt(200 * ms)

	if n := log.count("gone:RemoveRequested"); n != 1 {
		t.Errorf("RemoveRequested raised %d times, want 1", n)
	}
	if c.CurrentState() != Stopped {
		t.Errorf("state = %v, want stopped", c.CurrentState())
	}
	if c.Manager() != nil {
		t.Error("removed clock still has a manager")
	}
	if len(h.tm.Roots()) != 0 {
		t.Errorf("roots = %v, want none", h.tm.Roots())
	}
	if err := cc.Begin(); !errors.Is(err, tempoerrors.ErrDetached) {
		t.Errorf("Begin after Remove err = %v, want ErrDetached", err)
	}
}

func TestController_SetSpeedRatio(t *testing.T) {
	h := newHarness(t)
	c := h.start(NewTimeline(span(2 * time.Second)))
	cc := c.Controller()

	h.tickAt(0)
	h.tickAt(500 * ms)
	if err := cc.SetSpeedRatio(2); err != nil {
		t.Fatal(err)
	}
	h.tickAt(600 * ms)
	if got := currentTime(t, c); got != 600*ms {
		t.Errorf("time at the change = %v, want 600ms", got)
	}
	h.tickAt(700 * ms)
	if got := currentTime(t, c); got != 800*ms {
		t.Errorf("time = %v, want 800ms", got)
	}
	if got := speed(c); got != 2 {
		t.Errorf("speed = %v, want 2", got)
	}
	if cc.SpeedRatio() != 2 {
		t.Errorf("SpeedRatio() = %v, want 2", cc.SpeedRatio())
	}
}

func TestController_SetSpeedRatioInvalid(t *testing.T) {
	h := newHarness(t)
	cc := h.start(NewTimeline(span(time.Second))).Controller()

	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		err := cc.SetSpeedRatio(r)
		if !errors.Is(err, tempoerrors.ErrInvalidSpeed) {
			t.Errorf("SetSpeedRatio(%v) err = %v, want ErrInvalidSpeed", r, err)
		}
		if tempoerrors.KindOf(err) != tempoerrors.KindRange {
			t.Errorf("SetSpeedRatio(%v) kind = %v, want range", r, tempoerrors.KindOf(err))
		}
	}
}

func TestController_ErrorNamesClock(t *testing.T) {
	h := newHarness(t)
	cc := h.start(named("fade", NewTimeline(span(time.Second)))).Controller()

	var te *tempoerrors.TimingError
	if !errors.As(cc.SetSpeedRatio(0), &te) {
		t.Fatal("expected a TimingError")
	}
	if te.Clock != "fade" || te.Op != "animation.Controller.SetSpeedRatio" {
		t.Errorf("error = %+v", te)
	}
}
