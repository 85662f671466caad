package animation

import (
	"fmt"
	"time"
)

type durationKind uint8

const (
	durationAutomatic durationKind = iota
	durationForever
	durationSpan
)

// Duration is the simple duration of a timeline: Automatic, Forever, or a
// fixed time span.
//
// The zero value is Automatic, which defers to the timeline content's
// natural duration.
type Duration struct {
	kind durationKind
	span time.Duration
}

var (
	// Automatic resolves to the natural duration of the timeline's content.
	Automatic = Duration{}
	// Forever never ends.
	Forever = Duration{kind: durationForever}
)

// DurationOf returns a Duration holding a fixed time span.
func DurationOf(d time.Duration) Duration {
	return Duration{kind: durationSpan, span: d}
}

// IsAutomatic reports whether d is Automatic.
func (d Duration) IsAutomatic() bool { return d.kind == durationAutomatic }

// IsForever reports whether d is Forever.
func (d Duration) IsForever() bool { return d.kind == durationForever }

// HasTimeSpan reports whether d holds a fixed time span.
func (d Duration) HasTimeSpan() bool { return d.kind == durationSpan }

// TimeSpan returns the fixed span, or 0 if d does not hold one.
func (d Duration) TimeSpan() time.Duration {
	if d.kind != durationSpan {
		return 0
	}
	return d.span
}

// String returns a human-readable representation of the duration.
func (d Duration) String() string {
	switch d.kind {
	case durationAutomatic:
		return "Automatic"
	case durationForever:
		return "Forever"
	default:
		return d.span.String()
	}
}

type repeatKind uint8

const (
	repeatOnce repeatKind = iota
	repeatCount
	repeatDuration
	repeatForever
)

// RepeatBehavior describes how many times a timeline's simple duration
// repeats: a (possibly fractional) iteration count, a fixed total repeat
// duration, or forever.
//
// The zero value is a single iteration.
type RepeatBehavior struct {
	kind  repeatKind
	count float64
	span  time.Duration
}

var (
	// RepeatOnce plays a single iteration.
	RepeatOnce = RepeatBehavior{}
	// RepeatForever repeats indefinitely.
	RepeatForever = RepeatBehavior{kind: repeatForever}
)

// RepeatCount returns a RepeatBehavior that plays n iterations.
func RepeatCount(n float64) RepeatBehavior {
	return RepeatBehavior{kind: repeatCount, count: n}
}

// RepeatFor returns a RepeatBehavior that repeats for a total active
// duration of d, measured in the parent's time.
func RepeatFor(d time.Duration) RepeatBehavior {
	return RepeatBehavior{kind: repeatDuration, span: d}
}

// HasCount reports whether r is expressed as an iteration count.
func (r RepeatBehavior) HasCount() bool {
	return r.kind == repeatOnce || r.kind == repeatCount
}

// Count returns the iteration count, or 0 if r is not count based.
func (r RepeatBehavior) Count() float64 {
	switch r.kind {
	case repeatOnce:
		return 1
	case repeatCount:
		return r.count
	default:
		return 0
	}
}

// HasDuration reports whether r is expressed as a total repeat duration.
func (r RepeatBehavior) HasDuration() bool { return r.kind == repeatDuration }

// Duration returns the total repeat duration, or 0 if r is not duration based.
func (r RepeatBehavior) Duration() time.Duration {
	if r.kind != repeatDuration {
		return 0
	}
	return r.span
}

// IsForever reports whether r repeats indefinitely.
func (r RepeatBehavior) IsForever() bool { return r.kind == repeatForever }

// String returns a human-readable representation of the repeat behavior.
func (r RepeatBehavior) String() string {
	switch r.kind {
	case repeatForever:
		return "Forever"
	case repeatDuration:
		return r.span.String()
	default:
		return fmt.Sprintf("%gx", r.Count())
	}
}

// FillBehavior controls what a clock reports after its active period ends.
type FillBehavior int

const (
	// HoldEnd keeps reporting the final time and progress (Filling state).
	HoldEnd FillBehavior = iota
	// Stop moves the clock straight to Stopped when its active period ends.
	Stop
)

// String returns a human-readable representation of the fill behavior.
func (f FillBehavior) String() string {
	switch f {
	case HoldEnd:
		return "HoldEnd"
	case Stop:
		return "Stop"
	default:
		return fmt.Sprintf("FillBehavior(%d)", int(f))
	}
}

// SlipBehavior controls how a parallel timeline reacts to children whose
// time follows an external source.
type SlipBehavior int

const (
	// Grow keeps every child on wall-clock math; the group grows to fit.
	Grow SlipBehavior = iota
	// Slip lets eligible children follow their external source, sliding
	// their begin time when the source lags.
	Slip
)

// ClockState is the lifecycle state of a clock's reporting behavior.
//
// The state follows this state machine:
//
//	           begin              end (HoldEnd)
//	Stopped ──────────► Active ──────────────► Filling
//	   ▲                  │                        │
//	   │   end (Stop)     │      stop / reset      │
//	   └──────────────────┴────────────────────────┘
type ClockState int

const (
	// Stopped means the clock reports no time at all.
	Stopped ClockState = iota
	// Active means the clock's time is progressing.
	Active
	// Filling means the active period ended and the final values are held.
	Filling
)

// String returns a human-readable representation of the clock state.
func (s ClockState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Active:
		return "active"
	case Filling:
		return "filling"
	default:
		return fmt.Sprintf("ClockState(%d)", int(s))
	}
}

// SeekOrigin selects the reference point of a seek offset.
type SeekOrigin int

const (
	// FromBegin measures the offset from the clock's begin time.
	FromBegin SeekOrigin = iota
	// FromEnd measures the offset from the end of the clock's effective
	// duration; negative offsets seek back from the end.
	FromEnd
)
