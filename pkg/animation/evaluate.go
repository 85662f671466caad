package animation

import "time"

// parentParams is the view of the parent a clock is evaluated against. For
// roots the parent is the manager's global time.
type parentParams struct {
	time          time.Duration
	speed         float64
	intervals     *TimeIntervalCollection
	backwards     bool
	filling       bool
	discontinuous bool
	// predictable reports whether the parent's time runs linearly with
	// global time, so future boundaries can be converted to global time.
	predictable bool
}

// evaluate recomputes the clock from its parent's current values and queues
// the events that result. aligned evaluates a root at the parent time of the
// last tick instead of the manager's current time.
func (c *Clock) evaluate(tm *TimeManager, aligned bool) {
	prev := c.out
	c.discontinuous = false

	pp, ok := c.parentParameters(tm, aligned)
	if !ok {
		c.reset()
		c.finish(tm, prev, nil, nil)
		return
	}
	if c.root != nil {
		c.applyInteractive(tm, &pp)
		if c.root.stopped {
			c.reset()
			c.finish(tm, prev, nil, nil)
			return
		}
	}
	c.discontinuous = c.discontinuous || pp.discontinuous

	if c.syncData != nil {
		c.computeSyncSlip(pp.time)
	}
	c.resolveDuration()
	if c.beginTime != nil {
		c.advanceIterations(pp.time)
	}
	end := c.expiration()
	c.computeState(&pp, end)
	if c.syncData != nil {
		c.syncData.track(c)
	}

	iv := pp.intervals
	if c.discontinuous {
		iv = c.jumpIntervals(pp.time)
	}
	c.finish(tm, prev, iv, end)
	c.computeChildIntervals(&pp, end)
	c.scheduleNext(tm, &pp, end)
}

func (c *Clock) parentParameters(tm *TimeManager, aligned bool) (parentParams, bool) {
	if c.parent == nil {
		rd := c.root
		t := tm.globalTime
		if aligned && rd.hasLastParentTime {
			t = rd.lastParentTime
		}
		t = snapToFrame(t, c.timeline.DesiredFrameRate)
		if aligned || !rd.hasLastParentTime {
			c.scratch.Clear()
			c.scratch.AddPoint(t)
			c.scratch.MarkNullPoint()
		} else {
			c.scratch.SetTraversal(rd.lastParentTime, t)
		}
		rd.lastParentTime, rd.hasLastParentTime = t, true
		return parentParams{time: t, speed: 1, intervals: &c.scratch, predictable: true}, true
	}

	p := c.parent
	if p.out.state == Stopped {
		return parentParams{}, false
	}
	return parentParams{
		time:          p.out.time,
		speed:         p.out.speed,
		intervals:     &p.intervals,
		backwards:     p.backwardsGlobal,
		filling:       p.out.state == Filling,
		discontinuous: p.discontinuous,
		predictable:   p.predictable && p.isLinear(),
	}, true
}

// isLinear reports whether the clock's local time is a linear function of
// its parent's time over the whole active period.
func (c *Clock) isLinear() bool {
	t := c.timeline
	if t.AccelerationRatio != 0 || t.DecelerationRatio != 0 || t.AutoReverse {
		return false
	}
	rb := t.RepeatBehavior
	return rb.HasCount() && rb.Count() <= 1
}

func (c *Clock) reset() {
	c.out = clockOutputs{}
	c.backwards = false
	c.backwardsGlobal = false
	c.intervals.Clear()
}

// resolveDuration settles the simple duration. Durations that may still
// change are re-resolved on every evaluation.
func (c *Clock) resolveDuration() {
	if c.hasResolvedDuration {
		return
	}
	d := c.timeline.Duration
	if d.IsAutomatic() {
		d = c.NaturalDuration()
	}
	c.currentDuration = d
	c.hasResolvedDuration = !d.IsAutomatic() && !c.canGrow && c.syncData == nil
}

func (c *Clock) cycleFactor() float64 {
	if c.timeline.AutoReverse {
		return 2
	}
	return 1
}

// effectiveDuration returns the length of the active period in parent time.
// ok is false when the active period is unbounded or not yet known.
func (c *Clock) effectiveDuration() (d time.Duration, ok bool) {
	span := c.currentDuration
	if span.HasTimeSpan() && span.TimeSpan() == 0 {
		return 0, true
	}
	rb := c.timeline.RepeatBehavior
	switch {
	case rb.IsForever():
		return 0, false
	case rb.HasDuration():
		return rb.Duration(), true
	}
	n := rb.Count()
	if n == 0 {
		return 0, true
	}
	if !span.HasTimeSpan() {
		return 0, false
	}
	return scaleSpan(span.TimeSpan(), n*c.cycleFactor()/c.appliedSpeedRatio), true
}

// localLength returns the total local time of the active period.
func (c *Clock) localLength() (time.Duration, bool) {
	span := c.currentDuration
	rb := c.timeline.RepeatBehavior
	switch {
	case rb.IsForever():
		return 0, false
	case rb.HasDuration():
		return scaleSpan(rb.Duration(), c.appliedSpeedRatio), true
	case !span.HasTimeSpan():
		return 0, false
	}
	return scaleSpan(span.TimeSpan(), rb.Count()*c.cycleFactor()), true
}

// growing reports whether iterations are tracked one by one because the
// simple duration may change between iterations.
func (c *Clock) growing() bool {
	return c.canGrow && c.timeline.RepeatBehavior.HasCount() &&
		c.currentDuration.HasTimeSpan() && c.currentDuration.TimeSpan() > 0
}

// advanceIterations moves the begin of the current iteration of a growing
// clock forward past every iteration that has completed by parent time t.
func (c *Clock) advanceIterations(t time.Duration) {
	if !c.growing() {
		c.iterationBegin = nil
		c.iterationIndex = 0
		return
	}
	if c.iterationBegin == nil || t < *c.iterationBegin {
		ib := *c.beginTime
		c.iterationBegin = &ib
		c.iterationIndex = 0
	}
	span := scaleSpan(c.currentDuration.TimeSpan(), c.cycleFactor()/c.appliedSpeedRatio)
	if span <= 0 {
		return
	}
	n := c.timeline.RepeatBehavior.Count()
	for t-*c.iterationBegin >= span && float64(c.iterationIndex+1) < n {
		*c.iterationBegin += span
		c.iterationIndex++
	}
}

// expiration returns the parent time at which the active period ends, or
// nil when it is unbounded or unknown.
func (c *Clock) expiration() *time.Duration {
	if c.beginTime == nil {
		return nil
	}
	var end time.Duration
	if c.growing() && c.iterationBegin != nil {
		rem := max(c.timeline.RepeatBehavior.Count()-float64(c.iterationIndex), 0)
		end = *c.iterationBegin + scaleSpan(c.currentDuration.TimeSpan(), rem*c.cycleFactor()/c.appliedSpeedRatio)
	} else {
		eff, ok := c.effectiveDuration()
		if !ok {
			return nil
		}
		end = *c.beginTime + eff
	}
	if sd := c.syncData; sd != nil && sd.inSyncPeriod && !sd.sourceComplete {
		end += SlipGracePeriod
	}
	return &end
}

func (c *Clock) computeState(pp *parentParams, end *time.Duration) {
	if c.beginTime == nil || pp.time < *c.beginTime {
		c.reset()
		return
	}
	atEnd := end != nil && pp.time >= *end
	if atEnd && c.timeline.FillBehavior == Stop {
		c.reset()
		c.out.pastEnd = true
		return
	}
	t := pp.time
	if atEnd {
		t = *end
	}

	var localSpeed float64
	if c.growing() && c.iterationBegin != nil {
		lo := scaleSpan(t-*c.iterationBegin, c.appliedSpeedRatio)
		rem := c.timeline.RepeatBehavior.Count() - float64(c.iterationIndex)
		limit := scaleSpan(c.currentDuration.TimeSpan(), min(rem, 1)*c.cycleFactor())
		localSpeed = c.computeIteration(min(lo, limit), c.iterationIndex, atEnd)
	} else {
		lo := c.localOffset(t)
		if limit, ok := c.localLength(); ok && lo > limit {
			lo = limit
		}
		localSpeed = c.computeIteration(lo, 0, atEnd)
	}

	state := Active
	if atEnd || pp.filling {
		state = Filling
	}
	c.out.state = state
	c.out.pastEnd = atEnd
	c.backwardsGlobal = pp.backwards != c.backwards

	speed := 0.0
	if state == Active && pp.speed != 0 {
		speed = localSpeed * c.appliedSpeedRatio * pp.speed
		if c.backwards {
			speed = -speed
		}
	}
	c.out.speed = speed

	if !c.discontinuous && pp.intervals != nil && pp.intervals.SpansMultiplePeriods(c.projection(end)) {
		c.discontinuous = true
	}
}

// computeIteration derives iteration, time and progress from the local
// offset lo. It returns the ease speed at the resulting position.
func (c *Clock) computeIteration(lo time.Duration, baseIteration int, atEnd bool) float64 {
	c.backwards = false
	d := c.currentDuration
	if !d.HasTimeSpan() {
		c.out.time, c.out.progress, c.out.iteration = lo, 0, 1
		return 1
	}
	span := d.TimeSpan()
	if span == 0 {
		c.out.time, c.out.progress, c.out.iteration = 0, 1, 1
		return 1
	}
	cycle := span
	if c.timeline.AutoReverse {
		cycle = 2 * span
	}
	lo = max(lo, 0)
	iter, within := lo/cycle, lo%cycle
	if atEnd && within == 0 && iter > 0 {
		iter--
		within = cycle
	}
	c.out.iteration = baseIteration + int(iter) + 1

	t := within
	if c.timeline.AutoReverse && within > span {
		c.backwards = true
		t = cycle - within
	}
	prog := float64(t) / float64(span)
	accel, decel := c.timeline.AccelerationRatio, c.timeline.DecelerationRatio
	if accel == 0 && decel == 0 {
		c.out.time, c.out.progress = t, prog
		return 1
	}
	eased := min(max(easeProgress(prog, accel, decel), 0), 1)
	c.out.time = roundSpan(eased * float64(span))
	c.out.progress = eased
	return easeSpeed(prog, accel, decel)
}

func (c *Clock) projection(end *time.Duration) Projection {
	p := Projection{
		Begin:       *c.beginTime,
		End:         end,
		Fill:        c.timeline.FillBehavior == HoldEnd,
		SpeedRatio:  c.appliedSpeedRatio,
		AutoReverse: c.timeline.AutoReverse,
		Accel:       c.timeline.AccelerationRatio,
		Decel:       c.timeline.DecelerationRatio,
	}
	if c.growing() && c.iterationBegin != nil {
		p.Begin = *c.iterationBegin
	}
	if c.currentDuration.HasTimeSpan() {
		p.Period = c.currentDuration.TimeSpan()
	}
	return p
}

// jumpIntervals describes a discontinuous arrival at parent time t.
func (c *Clock) jumpIntervals(t time.Duration) *TimeIntervalCollection {
	c.scratch.Clear()
	c.scratch.AddPoint(t)
	c.scratch.MarkNullPoint()
	return &c.scratch
}

// computeChildIntervals records the local time this clock passed through,
// which is the parent movement its children are evaluated against.
func (c *Clock) computeChildIntervals(pp *parentParams, end *time.Duration) {
	c.intervals.Clear()
	switch {
	case c.out.state == Stopped:
	case c.discontinuous:
		c.intervals.AddPoint(c.out.time)
		c.intervals.MarkNullPoint()
	default:
		pp.intervals.ProjectInto(&c.intervals, c.projection(end))
	}
}

// finish compares the new outputs with prev and queues the events the
// change implies. iv is the parent movement of this evaluation.
func (c *Clock) finish(tm *TimeManager, prev clockOutputs, iv *TimeIntervalCollection, end *time.Duration) {
	now := c.out
	moved := iv != nil && !iv.IsEmpty() && c.beginTime != nil
	inPeriod := moved && iv.IntersectsPeriod(*c.beginTime, end)

	var mask eventMask
	stateChanged := prev.state != now.state
	if !stateChanged && moved {
		if now.state == Active {
			stateChanged = iv.IntersectsOutsidePeriod(*c.beginTime, end)
		} else {
			stateChanged = inPeriod
		}
	}
	if stateChanged {
		mask |= maskState
	}
	if stateChanged || inPeriod ||
		(now.state != Stopped && (now.time != prev.time || now.iteration != prev.iteration || c.discontinuous)) {
		mask |= maskTime
	}
	if (prev.state == Stopped) != (now.state == Stopped) || prev.speed != now.speed {
		mask |= maskSpeed
	}
	if end != nil {
		switch {
		case now.pastEnd && !prev.pastEnd:
			mask |= maskCompleted
		case moved && !now.pastEnd && !prev.pastEnd && iv.Contains(*end):
			// Passed the end and came around again within one tick.
			mask |= maskCompleted
		case now.pastEnd && prev.pastEnd && inPeriod:
			mask |= maskCompleted
		}
	}
	if c.discontinuous && now.state != Stopped {
		mask |= maskJump
	}
	if mask != 0 {
		tm.enqueue(c, mask)
	}
	if now != prev {
		tm.dirty = true
	}
}

// scheduleNext tells the manager when this clock next needs a tick.
func (c *Clock) scheduleNext(tm *TimeManager, pp *parentParams, end *time.Duration) {
	c.predictable = pp.predictable
	var target time.Duration
	switch {
	case c.out.state == Active:
		if c.needsTicksWhenActive() {
			tm.requestTick()
			return
		}
		if end == nil {
			return
		}
		target = *end
	case c.out.state == Stopped && c.beginTime != nil && pp.time < *c.beginTime:
		target = *c.beginTime
	default:
		return
	}
	switch {
	case pp.speed < 0 || !pp.predictable:
		tm.requestTick()
	case pp.speed > 0:
		tm.noteNextTick(tm.globalTime + roundSpan(float64(target-pp.time)/pp.speed))
	}
}
