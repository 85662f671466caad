package animation

import (
	"math"
	"time"

	"github.com/go-drift/tempo/pkg/errors"
)

// rootData holds the interactive state of a root clock.
type rootData struct {
	id      uint64
	pending pendingRequests

	interactiveSpeed float64
	paused           bool
	pauseParentTime  time.Duration
	stopped          bool
	removed          bool

	lastParentTime    time.Duration
	hasLastParentTime bool

	controller *ClockController
}

type seekRequest struct {
	offset       time.Duration
	origin       SeekOrigin
	inParentTime bool
}

// pendingRequests are interactive operations waiting for the next
// evaluation of the root. Later requests override conflicting earlier ones.
type pendingRequests struct {
	begin  bool
	pause  bool
	resume bool
	stop   bool
	remove bool
	seek   *seekRequest
	speed  *float64
}

// ClockController issues interactive operations on a root clock.
//
// Operations are queued and applied at the start of the root's next
// evaluation, in a fixed order: remove, stop, begin, seek, pause/resume,
// speed change. SeekAlignedToLastTick additionally re-evaluates the tree
// immediately so the new time can be read back at once.
type ClockController struct {
	clock *Clock
}

// Controller returns the controller of a root clock, or nil for clocks that
// cannot be controlled interactively.
func (c *Clock) Controller() *ClockController {
	if c.parent != nil || !c.hasControllableRoot || c.root == nil {
		return nil
	}
	if c.root.controller == nil {
		c.root.controller = &ClockController{clock: c}
	}
	return c.root.controller
}

// Clock returns the controlled root clock.
func (cc *ClockController) Clock() *Clock {
	return cc.clock
}

func (cc *ClockController) check(op string) (*rootData, error) {
	c := cc.clock
	if c.parent != nil || c.root == nil {
		return nil, cc.fail(op, errors.KindUsage, errors.ErrNotRoot)
	}
	if c.manager == nil || c.root.removed {
		return nil, cc.fail(op, errors.KindUsage, errors.ErrDetached)
	}
	return c.root, nil
}

func (cc *ClockController) fail(op string, kind errors.ErrorKind, err error) *errors.TimingError {
	e := errors.New(op, kind, err)
	e.Clock = cc.clock.Name()
	e.Timestamp = time.Now()
	return e
}

func (cc *ClockController) queued() {
	if tm := cc.clock.manager; tm != nil {
		tm.requestTick()
	}
}

// Begin restarts the clock: its begin time becomes the current parent time
// plus the timeline's BeginTime. Pending stop, pause or resume requests are
// discarded.
func (cc *ClockController) Begin() error {
	rd, err := cc.check("animation.Controller.Begin")
	if err != nil {
		return err
	}
	rd.pending = pendingRequests{begin: true, speed: rd.pending.speed}
	cc.queued()
	return nil
}

// Pause freezes the clock at its current time.
func (cc *ClockController) Pause() error {
	rd, err := cc.check("animation.Controller.Pause")
	if err != nil {
		return err
	}
	rd.pending.pause = true
	rd.pending.resume = false
	cc.queued()
	return nil
}

// Resume continues a paused clock from where it was paused.
func (cc *ClockController) Resume() error {
	rd, err := cc.check("animation.Controller.Resume")
	if err != nil {
		return err
	}
	if rd.pending.pause {
		rd.pending.pause = false
	} else {
		rd.pending.resume = true
	}
	cc.queued()
	return nil
}

// Seek moves the clock so that offset, measured in the clock's own time from
// origin, is reached at the next tick.
func (cc *ClockController) Seek(offset time.Duration, origin SeekOrigin) error {
	const op = "animation.Controller.Seek"
	rd, err := cc.check(op)
	if err != nil {
		return err
	}
	if err := cc.validateSeek(op, offset, origin); err != nil {
		return err
	}
	rd.pending.seek = &seekRequest{offset: offset, origin: origin}
	cc.queued()
	return nil
}

// SeekAlignedToLastTick seeks like Seek but applies the seek at the parent
// time of the last tick and re-evaluates the tree immediately, so the new
// time can be read back before the next tick. Events are still raised on the
// next tick.
func (cc *ClockController) SeekAlignedToLastTick(offset time.Duration, origin SeekOrigin) error {
	const op = "animation.Controller.SeekAlignedToLastTick"
	rd, err := cc.check(op)
	if err != nil {
		return err
	}
	if err := cc.validateSeek(op, offset, origin); err != nil {
		return err
	}
	rd.pending.seek = &seekRequest{offset: offset, origin: origin}
	cc.clock.manager.evaluateAligned(cc.clock)
	return nil
}

func (cc *ClockController) validateSeek(op string, offset time.Duration, origin SeekOrigin) error {
	switch origin {
	case FromBegin:
		if offset < 0 {
			return cc.fail(op, errors.KindRange, errors.ErrInvalidSeek)
		}
	case FromEnd:
		c := cc.clock
		c.resolveDuration()
		if _, ok := c.effectiveDuration(); !ok {
			return cc.fail(op, errors.KindUnbounded, errors.ErrUnboundedDuration)
		}
	default:
		return cc.fail(op, errors.KindUsage, errors.ErrUnknownOrigin)
	}
	return nil
}

// SkipToFill moves the clock to the end of its active period. It fails when
// the active period is unbounded.
func (cc *ClockController) SkipToFill() error {
	const op = "animation.Controller.SkipToFill"
	rd, err := cc.check(op)
	if err != nil {
		return err
	}
	c := cc.clock
	c.resolveDuration()
	if _, ok := c.effectiveDuration(); !ok {
		return cc.fail(op, errors.KindUnbounded, errors.ErrUnboundedDuration)
	}
	rd.pending.seek = &seekRequest{origin: FromEnd, inParentTime: true}
	cc.queued()
	return nil
}

// Stop moves the clock to Stopped until the next Begin.
func (cc *ClockController) Stop() error {
	rd, err := cc.check("animation.Controller.Stop")
	if err != nil {
		return err
	}
	rd.pending = pendingRequests{stop: true, speed: rd.pending.speed}
	cc.queued()
	return nil
}

// Remove stops the clock, raises RemoveRequested on the next tick and then
// detaches the tree from its manager.
func (cc *ClockController) Remove() error {
	rd, err := cc.check("animation.Controller.Remove")
	if err != nil {
		return err
	}
	rd.pending.remove = true
	cc.queued()
	return nil
}

// SetSpeedRatio sets the interactive speed ratio, multiplied with the
// timeline's own SpeedRatio. The clock's current time is preserved.
func (cc *ClockController) SetSpeedRatio(r float64) error {
	const op = "animation.Controller.SetSpeedRatio"
	rd, err := cc.check(op)
	if err != nil {
		return err
	}
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return cc.fail(op, errors.KindRange, errors.ErrInvalidSpeed)
	}
	rd.pending.speed = &r
	cc.queued()
	return nil
}

// SpeedRatio returns the interactive speed ratio in effect.
func (cc *ClockController) SpeedRatio() float64 {
	if cc.clock.root == nil {
		return 1
	}
	return cc.clock.root.interactiveSpeed
}

// IsPaused reports whether the clock is paused.
func (cc *ClockController) IsPaused() bool {
	return cc.clock.root != nil && cc.clock.root.paused
}

// applyInteractive consumes the pending requests of a root at parent time
// pp.time and adjusts pp for a paused clock.
func (c *Clock) applyInteractive(tm *TimeManager, pp *parentParams) {
	rd := c.root
	req := rd.pending
	rd.pending = pendingRequests{}

	switch {
	case req.remove:
		rd.stopped, rd.paused, rd.removed = true, false, true
		tm.enqueue(c, maskRemove)
		return
	case req.stop:
		rd.stopped, rd.paused = true, false
		if req.speed != nil {
			c.setInteractiveSpeed(*req.speed, pp.time)
		}
		return
	case req.begin:
		b := pp.time
		if c.timeline.BeginTime != nil {
			b += *c.timeline.BeginTime
		}
		c.setBeginTime(b)
		rd.stopped, rd.paused = false, false
		c.discontinuous = true
	}
	if rd.stopped {
		if req.speed != nil {
			c.setInteractiveSpeed(*req.speed, pp.time)
		}
		return
	}

	ref := pp.time
	if rd.paused {
		ref = rd.pauseParentTime
	}
	if req.seek != nil {
		if req.seek.origin == FromBegin && !req.seek.inParentTime {
			c.anchorLocal(ref, req.seek.offset)
			c.discontinuous = true
		} else if off, ok := c.seekParentOffset(*req.seek); ok {
			c.setBeginTime(ref - off)
			c.discontinuous = true
		}
	}
	if req.pause && !rd.paused {
		rd.paused = true
		rd.pauseParentTime = pp.time
		ref = pp.time
	}
	if req.resume && rd.paused {
		if c.beginTime != nil {
			skew := c.beginSkew
			c.setBeginTime(*c.beginTime + pp.time - rd.pauseParentTime)
			c.beginSkew = skew
		}
		rd.paused = false
		ref = pp.time
	}
	if req.speed != nil {
		c.setInteractiveSpeed(*req.speed, ref)
	}
	if rd.paused {
		pp.time = rd.pauseParentTime
		pp.speed = 0
		c.scratch.Clear()
	}
}

func (c *Clock) setBeginTime(b time.Duration) {
	c.beginTime = &b
	c.beginSkew = 0
	c.iterationBegin = nil
	c.iterationIndex = 0
}

// localOffset returns the local time elapsed between the begin time and
// parent time t.
func (c *Clock) localOffset(t time.Duration) time.Duration {
	return scaleSpan(t-*c.beginTime, c.appliedSpeedRatio) + c.beginSkew
}

// anchorLocal moves the begin time so that the local offset at parent time
// ref is exactly lo. Scaling by a non-unit speed rounds, so the remainder is
// kept in beginSkew.
func (c *Clock) anchorLocal(ref, lo time.Duration) {
	c.setBeginTime(ref - scaleSpan(lo, 1/c.appliedSpeedRatio))
	c.beginSkew = lo - scaleSpan(ref-*c.beginTime, c.appliedSpeedRatio)
}

// seekParentOffset converts a seek request into an offset from the begin
// time in parent time.
func (c *Clock) seekParentOffset(req seekRequest) (time.Duration, bool) {
	off := req.offset
	if !req.inParentTime {
		off = scaleSpan(off, 1/c.appliedSpeedRatio)
	}
	if req.origin == FromEnd {
		c.resolveDuration()
		eff, ok := c.effectiveDuration()
		if !ok {
			return 0, false
		}
		off += eff
	}
	return max(off, 0), true
}

// setInteractiveSpeed changes the root's speed ratio while keeping its local
// time at parent time ref unchanged.
func (c *Clock) setInteractiveSpeed(r float64, ref time.Duration) {
	c.root.interactiveSpeed = r
	prev := c.appliedSpeedRatio
	next := c.timeline.speedRatio() * r
	if next == prev {
		return
	}
	if c.beginTime != nil && ref > *c.beginTime {
		lo := c.localOffset(ref)
		c.appliedSpeedRatio = next
		c.anchorLocal(ref, lo)
		return
	}
	c.appliedSpeedRatio = next
}
