// Package keyframes turns a clock's current time into property values by
// interpolating between key frames.
//
// A key frame pairs a value with a [KeyTime] saying when it is reached.
// Key times are resolved lazily against the animation's duration: Percent
// and TimeSpan key times are anchors, runs of Uniform frames are spaced
// evenly between anchors, and runs of Paced frames are spaced so that the
// value changes at constant speed.
//
// An [Animation] is the content of an animation.Timeline. Host code reads
// the current value through [Animation.GetCurrentValue] with the clock
// created from that timeline:
//
//	anim := keyframes.New(keyframes.Float64Ops,
//	    keyframes.Linear(0.0, keyframes.Percent(0)),
//	    keyframes.Linear(100.0, keyframes.Percent(1)),
//	)
//	clock, _ := anim.Timeline(animation.DurationOf(time.Second)).CreateClock(tm)
//	// after a tick
//	x := anim.GetCurrentValue(0, 100, clock)
package keyframes

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/go-drift/tempo/pkg/animation"
	"github.com/go-drift/tempo/pkg/errors"
)

// defaultDuration is the duration used when neither the clock nor any key
// frame provides one.
const defaultDuration = time.Second

// Interpolation selects how a frame is reached from the previous one.
type Interpolation uint8

const (
	// LinearInterpolation blends at constant speed.
	LinearInterpolation Interpolation = iota
	// DiscreteInterpolation holds the previous value and jumps at the key time.
	DiscreteInterpolation
	// SplineInterpolation eases the blend through the frame's KeySpline.
	SplineInterpolation
)

func (i Interpolation) String() string {
	switch i {
	case LinearInterpolation:
		return "linear"
	case DiscreteInterpolation:
		return "discrete"
	case SplineInterpolation:
		return "spline"
	default:
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
}

// KeyFrame is a target value and the time at which it is reached.
type KeyFrame[T any] struct {
	Value         T
	KeyTime       KeyTime
	Interpolation Interpolation
	// Spline eases the segment ending at this frame when Interpolation is
	// SplineInterpolation.
	Spline KeySpline
}

// Linear returns a linearly interpolated key frame.
func Linear[T any](v T, kt KeyTime) KeyFrame[T] {
	return KeyFrame[T]{Value: v, KeyTime: kt}
}

// Discrete returns a key frame that jumps to v at its key time.
func Discrete[T any](v T, kt KeyTime) KeyFrame[T] {
	return KeyFrame[T]{Value: v, KeyTime: kt, Interpolation: DiscreteInterpolation}
}

// Spline returns a key frame eased through s.
func Spline[T any](v T, kt KeyTime, s KeySpline) KeyFrame[T] {
	return KeyFrame[T]{Value: v, KeyTime: kt, Interpolation: SplineInterpolation, Spline: s}
}

// ResolvedKeyFrame is a key frame's resolved offset. Index refers to the
// frame's position in declaration order.
type ResolvedKeyFrame struct {
	Offset time.Duration
	Index  int
}

// Animation is a key-frame animation of values of type T. It implements
// animation.Content so it can drive a timeline directly.
//
// Resolved key times are cached until the frames or the duration change.
type Animation[T any] struct {
	// Name identifies the animation in diagnostics.
	Name string

	// IsCumulative adds (iteration-1) times the last frame's value, so a
	// repeating animation continues from where the previous iteration ended.
	IsCumulative bool

	// IsAdditive adds the origin (base) value to the result.
	IsAdditive bool

	ops    Operations[T]
	frames []KeyFrame[T]

	resolved    []ResolvedKeyFrame
	resolvedFor time.Duration
	valid       bool
}

// New returns an animation over frames using ops for arithmetic.
func New[T any](ops Operations[T], frames ...KeyFrame[T]) *Animation[T] {
	return &Animation[T]{ops: ops, frames: slices.Clone(frames)}
}

// Len returns the number of key frames.
func (a *Animation[T]) Len() int {
	return len(a.frames)
}

// Frames returns a copy of the key frames in declaration order.
func (a *Animation[T]) Frames() []KeyFrame[T] {
	return slices.Clone(a.frames)
}

// Frame returns the key frame at index i.
func (a *Animation[T]) Frame(i int) KeyFrame[T] {
	return a.frames[i]
}

// Add appends a key frame.
func (a *Animation[T]) Add(f KeyFrame[T]) {
	a.frames = append(a.frames, f)
	a.valid = false
}

// Set replaces the key frame at index i.
func (a *Animation[T]) Set(i int, f KeyFrame[T]) {
	a.frames[i] = f
	a.valid = false
}

// SetFrames replaces all key frames.
func (a *Animation[T]) SetFrames(frames ...KeyFrame[T]) {
	a.frames = slices.Clone(frames)
	a.valid = false
}

// TimelineKind names the timeline type for diagnostics.
func (a *Animation[T]) TimelineKind() string {
	var zero T
	return fmt.Sprintf("keyframes[%T]", zero)
}

// NaturalDuration returns the largest TimeSpan key time, or one second when
// no frame has one.
func (a *Animation[T]) NaturalDuration(*animation.Clock) animation.Duration {
	return animation.DurationOf(a.naturalSpan())
}

func (a *Animation[T]) naturalSpan() time.Duration {
	var largest time.Duration
	found := false
	for _, f := range a.frames {
		if f.KeyTime.Type() == TypeTimeSpan && (!found || f.KeyTime.TimeSpan() > largest) {
			largest, found = f.KeyTime.TimeSpan(), true
		}
	}
	if !found {
		return defaultDuration
	}
	return largest
}

// Timeline returns a timeline that begins immediately, lasts d and is driven
// by the animation.
func (a *Animation[T]) Timeline(d animation.Duration) *animation.Timeline {
	t := animation.NewTimeline(d)
	t.Name = a.Name
	t.Content = a
	return t
}

// Validate checks key times, splines and operations.
func (a *Animation[T]) Validate() error {
	const op = "keyframes.Animation.Validate"
	name := a.Name
	if name == "" {
		name = a.TimelineKind()
	}
	if a.ops.Interpolate == nil {
		return errors.Rangef(op, name, "operations have no Interpolate function")
	}
	if (a.IsCumulative || a.IsAdditive) && (a.ops.Add == nil || a.ops.Scale == nil) {
		return errors.Rangef(op, name, "cumulative or additive animation needs Add and Scale")
	}
	for i, f := range a.frames {
		kt := f.KeyTime
		switch {
		case kt.Type() == TypePercent && (kt.Percent() < 0 || kt.Percent() > 1 || math.IsNaN(kt.Percent())):
			return errors.Rangef(op, name, "frame %d: percent key time %v outside [0, 1]", i, kt.Percent())
		case kt.Type() == TypeTimeSpan && kt.TimeSpan() < 0:
			return errors.Rangef(op, name, "frame %d: key time %v is negative", i, kt.TimeSpan())
		}
		if f.Interpolation == SplineInterpolation {
			if err := f.Spline.Validate(); err != nil {
				return errors.Rangef(op, name, "frame %d: %v", i, err)
			}
		}
	}
	return nil
}

// Resolve returns the frames' resolved offsets for an animation lasting
// duration, sorted by offset. Frames with equal offsets keep declaration
// order.
func (a *Animation[T]) Resolve(duration time.Duration) []ResolvedKeyFrame {
	return slices.Clone(a.resolve(duration))
}

func (a *Animation[T]) resolve(duration time.Duration) []ResolvedKeyFrame {
	if a.valid && a.resolvedFor == duration {
		return a.resolved
	}
	a.resolved = resolveKeyTimes(a.frames, duration, a.ops.Distance, a.resolved[:0])
	a.resolvedFor = duration
	a.valid = true
	return a.resolved
}

// GetCurrentValue returns the animated value for the clock's current time,
// iteration and duration. origin is the value before the first frame (and
// the base value of an additive animation); destination is returned when
// there are no frames. A clock that is stopped yields origin.
func (a *Animation[T]) GetCurrentValue(origin, destination T, clock *animation.Clock) T {
	t, ok := clock.CurrentTime()
	if !ok {
		return origin
	}
	iteration, _ := clock.CurrentIteration()
	duration := a.naturalSpan()
	if d := clock.CurrentDuration(); d.HasTimeSpan() {
		duration = d.TimeSpan()
	}
	return a.ValueAt(origin, destination, t, duration, iteration)
}

// ValueAt returns the animated value at local time t of the given iteration
// for an animation lasting duration. A negative t reads as zero.
func (a *Animation[T]) ValueAt(origin, destination T, t, duration time.Duration, iteration int) T {
	if len(a.frames) == 0 {
		return destination
	}
	t = max(t, 0)
	res := a.resolve(duration)
	last := len(res) - 1

	var value T
	i := 0
	for i <= last && res[i].Offset < t {
		i++
	}
	switch {
	case i > last:
		value = a.frames[res[last].Index].Value
	case res[i].Offset == t:
		for i < last && res[i+1].Offset == t {
			i++
		}
		value = a.frames[res[i].Index].Value
	default:
		from, fromOffset := origin, time.Duration(0)
		if i > 0 {
			from, fromOffset = a.frames[res[i-1].Index].Value, res[i-1].Offset
		} else if a.IsAdditive {
			var zero T
			from = zero
		}
		fraction := float64(t-fromOffset) / float64(res[i].Offset-fromOffset)
		value = a.interpolate(from, a.frames[res[i].Index], fraction)
	}

	if a.IsCumulative && iteration > 1 {
		lastValue := a.frames[res[last].Index].Value
		value = a.ops.Add(value, a.ops.Scale(lastValue, float64(iteration-1)))
	}
	if a.IsAdditive {
		value = a.ops.Add(origin, value)
	}
	return value
}

func (a *Animation[T]) interpolate(from T, to KeyFrame[T], fraction float64) T {
	switch to.Interpolation {
	case DiscreteInterpolation:
		if fraction < 1 {
			return from
		}
		return to.Value
	case SplineInterpolation:
		return a.ops.Interpolate(from, to.Value, to.Spline.Progress(fraction))
	default:
		return a.ops.Interpolate(from, to.Value, fraction)
	}
}
