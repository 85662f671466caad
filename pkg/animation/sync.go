package animation

import "time"

// SlipGracePeriod extends the active period of a slipping clock while its
// external source has not yet reported the end of its content, so a source
// that lags slightly behind wall-clock math is not cut off early.
//
// The value is a tunable, not a derived constant.
var SlipGracePeriod = 50 * time.Millisecond

// syncData tracks a clock whose progress follows an external source.
type syncData struct {
	source ExternalSource

	inSyncPeriod   bool
	done           bool
	sourceComplete bool

	// syncBegin is the begin time the current sync period last set. A begin
	// time that differs was rewritten by a seek and restarts the period.
	syncBegin time.Duration

	previousExternal   time.Duration
	previousRepeatTime time.Duration

	// slip accumulates every begin-time correction of the current period.
	slip time.Duration
}

func (sd *syncData) restart() {
	sd.inSyncPeriod = false
	sd.done = false
	sd.sourceComplete = false
	sd.previousExternal = 0
	sd.previousRepeatTime = 0
	sd.slip = 0
}

// resolveSlip marks the clock as slipping when its content is an external
// source and the timing allows following it, and marks every ancestor as
// growing.
func (c *Clock) resolveSlip() {
	src, ok := c.timeline.Content.(ExternalSource)
	if !ok {
		return
	}
	t := c.timeline
	var allowed bool
	if c.parent == nil {
		allowed = t.SlipBehavior == Slip
	} else {
		allowed = c.parent.timeline.SlipBehavior == Slip
	}
	simple := !t.AutoReverse && t.AccelerationRatio == 0 && t.DecelerationRatio == 0
	if !allowed || !simple || t.BeginTime == nil {
		return
	}
	c.canSlip = true
	c.syncData = &syncData{source: src}
	for p := c.parent; p != nil; p = p.parent {
		p.canGrow = true
	}
}

// computeSyncSlip moves the clock's begin time so that its local time
// matches the position reported by the external source at parent time t.
func (c *Clock) computeSyncSlip(t time.Duration) {
	sd := c.syncData
	if c.beginTime == nil {
		sd.restart()
		return
	}
	if *c.beginTime != sd.syncBegin && (sd.inSyncPeriod || sd.done) {
		sd.restart()
	}
	if !sd.inSyncPeriod {
		if sd.done || t < *c.beginTime {
			return
		}
		sd.restart()
		sd.inSyncPeriod = true
		sd.syncBegin = *c.beginTime
	}
	if sd.sourceComplete {
		return
	}

	pos, ok := sd.source.ExternalTime(c)
	if !ok {
		pos = sd.previousExternal
	}
	if pos < sd.previousExternal {
		// The source wrapped around into its next iteration.
		if c.currentDuration.HasTimeSpan() {
			sd.previousRepeatTime += c.currentDuration.TimeSpan()
		} else {
			sd.previousRepeatTime += sd.previousExternal
		}
	}
	sd.previousExternal = pos

	actual := sd.previousRepeatTime + pos
	if limit, ok := c.localLength(); ok && actual >= limit {
		actual = limit
		sd.sourceComplete = true
	}
	s := c.appliedSpeedRatio
	expected := scaleSpan(t-*c.beginTime, s)
	if slip := expected - actual; slip != 0 {
		shift := scaleSpan(slip, 1/s)
		b := *c.beginTime + shift
		c.beginTime = &b
		sd.syncBegin = b
		sd.slip += shift
	}
}

// track ends the sync period once the clock has left its active period.
func (sd *syncData) track(c *Clock) {
	switch {
	case !sd.inSyncPeriod:
	case c.out.pastEnd:
		sd.inSyncPeriod = false
		sd.done = true
	case c.out.state == Stopped:
		sd.inSyncPeriod = false
	}
}

// SlipOffset returns how far the clock's begin time has been moved to follow
// its external source during the current sync period.
func (c *Clock) SlipOffset() time.Duration {
	if c.syncData == nil {
		return 0
	}
	return c.syncData.slip
}
