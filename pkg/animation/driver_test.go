package animation

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	tempoerrors "github.com/go-drift/tempo/pkg/errors"
)

func runDriver(t *testing.T, d *Driver) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := d.Run(ctx)
	if ctx.Err() == context.DeadlineExceeded {
		t.Fatal("driver did not stop before the deadline")
	}
	return err
}

func TestDriver_ExitWhenIdle(t *testing.T) {
	h := newHarness(t)
	d := NewDriver(h.tm)
	d.ExitWhenIdle = true

	var order []string
	d.Post(func() { order = append(order, "post") })
	d.OnFrame = func(*TimeManager) { order = append(order, "frame") }

	if err := runDriver(t, d); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if len(order) != 2 || order[0] != "post" || order[1] != "frame" {
		t.Errorf("order = %v, want [post frame]", order)
	}
}

func TestDriver_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	tl := NewTimeline(span(time.Second))
	tl.RepeatBehavior = RepeatForever
	c := h.start(tl)
	c.AddListener(CurrentTimeInvalidated, func(*Clock) {})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDriver(h.tm)
	d.FrameRate = 240
	frames := 0
	d.OnFrame = func(*TimeManager) {
		frames++
		if frames == 3 {
			cancel()
		}
	}

	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil after cancel", err)
	}
	if frames != 3 {
		t.Errorf("frames = %d, want 3", frames)
	}
	runtime.KeepAlive(c)
}

func TestDriver_OnErrorStops(t *testing.T) {
	h := newHarness(t)
	c := h.start(NewTimeline(span(0)))
	c.OnCompleted(func(*Clock) { panic("boom") })

	d := NewDriver(h.tm)
	d.OnError = func(err error) error { return err }

	err := runDriver(t, d)
	var ae *tempoerrors.AnimationError
	if !errors.As(err, &ae) || ae.Event != "Completed" {
		t.Errorf("Run() = %v, want the handler panic", err)
	}
	runtime.KeepAlive(c)
}

type recordingHandler struct {
	errs   []*tempoerrors.TimingError
	panics []*tempoerrors.PanicError
}

func (h *recordingHandler) HandleError(err *tempoerrors.TimingError)         { h.errs = append(h.errs, err) }
func (h *recordingHandler) HandleInvalidValue(*tempoerrors.InvalidValueError) {}
func (h *recordingHandler) HandlePanic(err *tempoerrors.PanicError)          { h.panics = append(h.panics, err) }

func useHandler(t *testing.T) *recordingHandler {
	t.Helper()
	h := &recordingHandler{}
	tempoerrors.SetHandler(h)
	t.Cleanup(func() { tempoerrors.SetHandler(nil) })
	return h
}

func TestDriver_ReportsTickFailuresWithoutOnError(t *testing.T) {
	handler := useHandler(t)
	h := newHarness(t)
	c := h.start(NewTimeline(span(0)))
	c.OnCompleted(func(*Clock) { panic("boom") })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDriver(h.tm)
	d.OnFrame = func(*TimeManager) { cancel() }

	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if len(handler.panics) != 1 {
		t.Fatalf("reported panics = %d, want 1", len(handler.panics))
	}
	p := handler.panics[0]
	if p.Op != "animation.Driver.Run" {
		t.Errorf("Op = %q, want animation.Driver.Run", p.Op)
	}
	ae, ok := p.Value.(*tempoerrors.AnimationError)
	if !ok || ae.Event != "Completed" || ae.Recovered != "boom" {
		t.Errorf("Value = %v, want the Completed handler panic", p.Value)
	}
	runtime.KeepAlive(c)
}

func TestDriver_PostedPanicIsReported(t *testing.T) {
	handler := useHandler(t)
	h := newHarness(t)
	d := NewDriver(h.tm)
	d.ExitWhenIdle = true
	ran := false
	d.Post(func() { panic("bad post") })
	d.Post(func() { ran = true })

	if err := runDriver(t, d); err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if !ran {
		t.Error("functions posted after a panicking one did not run")
	}
	if len(handler.panics) != 1 || handler.panics[0].Op != "animation.Driver.Post" || handler.panics[0].Value != "bad post" {
		t.Errorf("reported panics = %v, want one from animation.Driver.Post", handler.panics)
	}
}

func TestDriver_ZeroValuePost(t *testing.T) {
	h := newHarness(t)
	d := &Driver{Manager: h.tm}

	var order []string
	d.Post(func() { order = append(order, "before run") })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stopped := make(chan error, 1)
	go func() { stopped <- d.Run(ctx) }()

	done := make(chan struct{})
	d.Post(func() {
		order = append(order, "while running")
		close(done)
	})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("posted function did not run")
	}
	cancel()
	if err := <-stopped; err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if len(order) != 2 || order[0] != "before run" || order[1] != "while running" {
		t.Errorf("order = %v, want [before run while running]", order)
	}
}
