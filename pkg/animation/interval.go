package animation

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// TimeInterval is a span of time on one axis with per-endpoint inclusion.
// A point is an interval whose endpoints are equal and both included.
type TimeInterval struct {
	From        time.Duration
	To          time.Duration
	IncludeFrom bool
	IncludeTo   bool
}

// PointInterval returns the interval holding only t.
func PointInterval(t time.Duration) TimeInterval {
	return TimeInterval{From: t, To: t, IncludeFrom: true, IncludeTo: true}
}

// IsEmpty reports whether the interval holds no instant.
func (iv TimeInterval) IsEmpty() bool {
	return iv.From > iv.To || (iv.From == iv.To && !(iv.IncludeFrom && iv.IncludeTo))
}

// IsPoint reports whether the interval holds exactly one instant.
func (iv TimeInterval) IsPoint() bool {
	return iv.From == iv.To && iv.IncludeFrom && iv.IncludeTo
}

// Contains reports whether t lies in the interval.
func (iv TimeInterval) Contains(t time.Duration) bool {
	if t < iv.From || t > iv.To {
		return false
	}
	if t == iv.From && !iv.IncludeFrom {
		return false
	}
	if t == iv.To && !iv.IncludeTo {
		return false
	}
	return true
}

// Intersects reports whether the two intervals share an instant.
func (iv TimeInterval) Intersects(other TimeInterval) bool {
	return !iv.intersection(other).IsEmpty()
}

func (iv TimeInterval) intersection(other TimeInterval) TimeInterval {
	out := iv
	switch {
	case other.From > out.From:
		out.From, out.IncludeFrom = other.From, other.IncludeFrom
	case other.From == out.From:
		out.IncludeFrom = out.IncludeFrom && other.IncludeFrom
	}
	switch {
	case other.To < out.To:
		out.To, out.IncludeTo = other.To, other.IncludeTo
	case other.To == out.To:
		out.IncludeTo = out.IncludeTo && other.IncludeTo
	}
	return out
}

func (iv TimeInterval) String() string {
	open, closeB := "(", ")"
	if iv.IncludeFrom {
		open = "["
	}
	if iv.IncludeTo {
		closeB = "]"
	}
	return fmt.Sprintf("%s%v, %v%s", open, iv.From, iv.To, closeB)
}

// TimeIntervalCollection is a sorted set of disjoint intervals describing the
// instants a clock passed through during the last evaluation. A null point
// marks a discontinuous jump: consumers must not interpolate across it.
//
// The backing slice is reused across ticks; call Clear instead of allocating
// a new collection.
type TimeIntervalCollection struct {
	intervals []TimeInterval
	nullPoint bool
}

// Clear empties the collection, keeping its storage.
func (c *TimeIntervalCollection) Clear() {
	c.intervals = c.intervals[:0]
	c.nullPoint = false
}

// IsEmpty reports whether the collection holds no instant.
func (c *TimeIntervalCollection) IsEmpty() bool {
	return len(c.intervals) == 0
}

// HasNullPoint reports whether the collection records a discontinuity.
func (c *TimeIntervalCollection) HasNullPoint() bool {
	return c.nullPoint
}

// MarkNullPoint records a discontinuity.
func (c *TimeIntervalCollection) MarkNullPoint() {
	c.nullPoint = true
}

// Intervals returns the collection's intervals in ascending order. The
// returned slice must not be modified.
func (c *TimeIntervalCollection) Intervals() []TimeInterval {
	return c.intervals
}

// CopyFrom replaces the collection's contents with src's.
func (c *TimeIntervalCollection) CopyFrom(src *TimeIntervalCollection) {
	c.intervals = append(c.intervals[:0], src.intervals...)
	c.nullPoint = src.nullPoint
}

// AddPoint adds the instant t.
func (c *TimeIntervalCollection) AddPoint(t time.Duration) {
	c.Add(PointInterval(t))
}

// SetTraversal replaces the contents with the instants passed through when
// moving from one time to another: (from, to] moving forward, [to, from)
// moving backward, nothing when the time did not move.
func (c *TimeIntervalCollection) SetTraversal(from, to time.Duration) {
	c.Clear()
	switch {
	case to > from:
		c.Add(TimeInterval{From: from, To: to, IncludeTo: true})
	case to < from:
		c.Add(TimeInterval{From: to, To: from, IncludeFrom: true})
	}
}

// Add inserts iv, merging it with any interval it overlaps or touches.
func (c *TimeIntervalCollection) Add(iv TimeInterval) {
	if iv.IsEmpty() {
		return
	}
	i := 0
	for i < len(c.intervals) && precedesDisjoint(c.intervals[i], iv) {
		i++
	}
	j := i
	for j < len(c.intervals) && !precedesDisjoint(iv, c.intervals[j]) {
		iv = union(iv, c.intervals[j])
		j++
	}
	switch {
	case j > i:
		c.intervals[i] = iv
		c.intervals = append(c.intervals[:i+1], c.intervals[j:]...)
	default:
		c.intervals = append(c.intervals, TimeInterval{})
		copy(c.intervals[i+1:], c.intervals[i:])
		c.intervals[i] = iv
	}
}

// precedesDisjoint reports whether a lies entirely before b with a gap, so
// the two cannot be merged.
func precedesDisjoint(a, b TimeInterval) bool {
	if a.To < b.From {
		return true
	}
	return a.To == b.From && !a.IncludeTo && !b.IncludeFrom
}

func union(a, b TimeInterval) TimeInterval {
	out := a
	switch {
	case b.From < out.From:
		out.From, out.IncludeFrom = b.From, b.IncludeFrom
	case b.From == out.From:
		out.IncludeFrom = out.IncludeFrom || b.IncludeFrom
	}
	switch {
	case b.To > out.To:
		out.To, out.IncludeTo = b.To, b.IncludeTo
	case b.To == out.To:
		out.IncludeTo = out.IncludeTo || b.IncludeTo
	}
	return out
}

// Contains reports whether t lies in the collection.
func (c *TimeIntervalCollection) Contains(t time.Duration) bool {
	for _, iv := range c.intervals {
		if iv.Contains(t) {
			return true
		}
		if iv.From > t {
			break
		}
	}
	return false
}

// Intersects reports whether any interval of the collection shares an
// instant with iv.
func (c *TimeIntervalCollection) Intersects(iv TimeInterval) bool {
	for _, own := range c.intervals {
		if own.Intersects(iv) {
			return true
		}
	}
	return false
}

// IntersectsPeriod reports whether the collection touches the half-open
// period [begin, end). A nil end means the period never ends.
func (c *TimeIntervalCollection) IntersectsPeriod(begin time.Duration, end *time.Duration) bool {
	return c.Intersects(period(begin, end))
}

// IntersectsOutsidePeriod reports whether the collection touches any instant
// outside the half-open period [begin, end).
func (c *TimeIntervalCollection) IntersectsOutsidePeriod(begin time.Duration, end *time.Duration) bool {
	before := TimeInterval{From: math.MinInt64, To: begin, IncludeFrom: true}
	if c.Intersects(before) {
		return true
	}
	if end == nil {
		return false
	}
	return c.Intersects(TimeInterval{From: *end, To: math.MaxInt64, IncludeFrom: true, IncludeTo: true})
}

func period(begin time.Duration, end *time.Duration) TimeInterval {
	iv := TimeInterval{From: begin, To: math.MaxInt64, IncludeFrom: true, IncludeTo: true}
	if end != nil {
		iv.To, iv.IncludeTo = *end, false
	}
	return iv
}

func (c *TimeIntervalCollection) String() string {
	parts := make([]string, 0, len(c.intervals)+1)
	for _, iv := range c.intervals {
		parts = append(parts, iv.String())
	}
	if c.nullPoint {
		parts = append(parts, "null")
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Projection describes a clock's local-time function: how an instant of the
// parent's time maps onto the clock's own time.
type Projection struct {
	// Begin is the parent time at which the active period starts.
	Begin time.Duration
	// End is the parent time at which the active period ends; nil when the
	// active period is unbounded.
	End *time.Duration
	// Fill reports whether instants past End map onto the final local time.
	Fill bool
	// SpeedRatio scales parent time into local time.
	SpeedRatio float64
	// Period is the simple duration. Zero or negative means aperiodic.
	Period time.Duration
	// AutoReverse folds every other half-cycle back onto the period.
	AutoReverse bool
	// Accel and Decel warp the time within each period.
	Accel, Decel float64
}

// localOffset returns the local offset (before folding) reached at parent
// time t.
func (p *Projection) localOffset(t time.Duration) time.Duration {
	return scaleSpan(t-p.Begin, p.SpeedRatio)
}

func (p *Projection) cycle() time.Duration {
	if p.AutoReverse {
		return 2 * p.Period
	}
	return p.Period
}

// fold maps a local offset inside one cycle onto the period, applying the
// reverse half and the ease warp.
func (p *Projection) fold(within time.Duration) time.Duration {
	t := within
	if p.AutoReverse && within > p.Period {
		t = 2*p.Period - within
	}
	if p.Accel == 0 && p.Decel == 0 {
		return t
	}
	prog := float64(t) / float64(p.Period)
	return roundSpan(easeProgress(prog, p.Accel, p.Decel) * float64(p.Period))
}

// LocalTime maps parent time t, which must lie in [Begin, End], onto local
// time. atEnd selects the end of the previous iteration when t falls on an
// iteration boundary.
func (p *Projection) LocalTime(t time.Duration, atEnd bool) time.Duration {
	off := p.localOffset(t)
	if p.Period <= 0 {
		return off
	}
	c := p.cycle()
	iter, within := off/c, off%c
	if atEnd && within == 0 && iter > 0 {
		within = c
	}
	return p.fold(within)
}

// ProjectInto writes the image of src under the projection into dst, in
// local time. Parts of src before Begin are dropped. Movement that stays
// past End contributes nothing; a point past End maps onto the fill time
// when Fill is set.
func (c *TimeIntervalCollection) ProjectInto(dst *TimeIntervalCollection, p Projection) {
	dst.Clear()
	dst.nullPoint = c.nullPoint
	active := TimeInterval{From: p.Begin, To: math.MaxInt64, IncludeFrom: true, IncludeTo: true}
	if p.End != nil {
		active.To = *p.End
	}
	for _, iv := range c.intervals {
		clipped := iv.intersection(active)
		if clipped.IsEmpty() {
			if p.Fill && p.End != nil && iv.IsPoint() && iv.From > *p.End {
				dst.AddPoint(p.LocalTime(*p.End, true))
			}
			continue
		}
		projectInterval(dst, clipped, &p)
	}
}

func projectInterval(dst *TimeIntervalCollection, iv TimeInterval, p *Projection) {
	reachesEnd := p.End != nil && iv.To == *p.End
	from := p.localOffset(iv.From)
	to := p.localOffset(iv.To)
	if p.Period <= 0 {
		dst.Add(TimeInterval{From: from, To: to, IncludeFrom: iv.IncludeFrom, IncludeTo: iv.IncludeTo})
		return
	}
	c := p.cycle()
	fromIter, fromWithin := from/c, from%c
	toIter, toWithin := to/c, to%c
	if toWithin == 0 && toIter > fromIter && (reachesEnd || !iv.IncludeTo) {
		toIter, toWithin = toIter-1, c
	}

	switch toIter - fromIter {
	case 0:
		projectWithinCycle(dst, fromWithin, toWithin, iv.IncludeFrom, iv.IncludeTo, p)
	case 1:
		projectWithinCycle(dst, fromWithin, c, iv.IncludeFrom, true, p)
		projectWithinCycle(dst, 0, toWithin, true, iv.IncludeTo, p)
	default:
		dst.Add(TimeInterval{From: 0, To: p.Period, IncludeFrom: true, IncludeTo: true})
		dst.nullPoint = true
	}
}

// projectWithinCycle adds the image of [a, b] (both inside one cycle) to dst.
func projectWithinCycle(dst *TimeIntervalCollection, a, b time.Duration, incA, incB bool, p *Projection) {
	if !p.AutoReverse || b <= p.Period || a >= p.Period {
		fa, fb := p.fold(a), p.fold(b)
		if fa > fb {
			fa, fb = fb, fa
			incA, incB = incB, incA
		}
		dst.Add(TimeInterval{From: fa, To: fb, IncludeFrom: incA, IncludeTo: incB})
		return
	}
	// The span turns around at the end of the period: the image runs up
	// to the period and back down to the lower of the two endpoints.
	fa, fb := p.fold(a), p.fold(b)
	low, incLow := fa, incA
	if fb < fa {
		low, incLow = fb, incB
	} else if fb == fa {
		incLow = incA || incB
	}
	dst.Add(TimeInterval{From: low, To: p.Period, IncludeFrom: incLow, IncludeTo: true})
}

// SpansMultiplePeriods reports whether the parent-time movement in the
// collection crosses more than one iteration boundary under p.
func (c *TimeIntervalCollection) SpansMultiplePeriods(p Projection) bool {
	if p.Period <= 0 || len(c.intervals) == 0 {
		return false
	}
	first, last := c.intervals[0], c.intervals[len(c.intervals)-1]
	lo := max(first.From, p.Begin)
	hi := last.To
	if p.End != nil {
		hi = min(hi, *p.End)
	}
	if hi <= lo {
		return false
	}
	cyc := p.cycle()
	return p.localOffset(hi)/cyc-p.localOffset(lo)/cyc > 1
}
