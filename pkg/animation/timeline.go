package animation

import (
	"fmt"
	"math"
	"time"

	"github.com/go-drift/tempo/pkg/errors"
)

// Content supplies the type-specific behavior of a timeline, such as a
// key-frame animation or an externally driven media source.
type Content interface {
	// NaturalDuration reports the duration a clock uses when its timeline's
	// Duration is Automatic. Returning Automatic means "not known yet";
	// the clock keeps asking on later ticks.
	NaturalDuration(c *Clock) Duration
}

// ExternalSource is implemented by content whose progress is driven by an
// independent clock, such as decoding media. Clocks for such content may
// slip: their begin time follows the source instead of wall-clock math.
type ExternalSource interface {
	Content
	// ExternalTime reports the source's current position within its own
	// timeline. ok is false while the source has not produced a position.
	ExternalTime(c *Clock) (pos time.Duration, ok bool)
}

// SpeedChangeObserver is implemented by content that must react when its
// clock's global speed changes, for example to retune a media player.
type SpeedChangeObserver interface {
	SpeedChanged(c *Clock)
}

// DiscontinuityObserver is implemented by content that must react when its
// clock jumps instead of moving continuously, for example after a seek.
type DiscontinuityObserver interface {
	DiscontinuousTimeMovement(c *Clock)
}

// KindNamer is implemented by content that names its timeline type for
// diagnostics.
type KindNamer interface {
	TimelineKind() string
}

// Validator is implemented by content that checks its own configuration
// when a clock is created for it.
type Validator interface {
	Validate() error
}

// defaultNaturalDuration is the natural duration of a leaf without content.
const defaultNaturalDuration = time.Second

// Timeline is the immutable description of a segment of time: when it
// begins, how long it lasts, how it repeats and eases, and what it reports
// afterwards. A Timeline with Children is a parallel group whose children
// all run against the group's time.
//
// A Timeline is a template. Creating a clock snapshots it, so editing a
// Timeline after CreateClock never affects running clocks.
type Timeline struct {
	// Name identifies the timeline in diagnostics.
	Name string

	// BeginTime is the offset from the parent's begin at which this
	// timeline starts. Nil means the timeline never begins on its own.
	BeginTime *time.Duration

	// Duration is the length of one simple iteration.
	Duration Duration

	// RepeatBehavior controls how often the simple duration repeats.
	RepeatBehavior RepeatBehavior

	// AutoReverse plays every iteration forward then backward.
	AutoReverse bool

	// AccelerationRatio is the fraction of each iteration spent speeding up.
	AccelerationRatio float64

	// DecelerationRatio is the fraction of each iteration spent slowing down.
	DecelerationRatio float64

	// FillBehavior controls what is reported after the active period.
	FillBehavior FillBehavior

	// SpeedRatio scales the rate of time relative to the parent. Zero means 1.
	SpeedRatio float64

	// DesiredFrameRate caps the frame rate of a root clock's tree.
	// Zero means no cap.
	DesiredFrameRate int

	// SlipBehavior applies to groups whose children follow external sources.
	SlipBehavior SlipBehavior

	// Children makes the timeline a parallel group.
	Children []*Timeline

	// Content supplies natural duration and type-specific hooks.
	Content Content
}

// Begin returns a pointer to d for use as a Timeline's BeginTime.
func Begin(d time.Duration) *time.Duration {
	return &d
}

// NewTimeline returns a timeline that begins immediately and lasts d.
func NewTimeline(d Duration) *Timeline {
	return &Timeline{
		BeginTime:  Begin(0),
		Duration:   d,
		SpeedRatio: 1,
	}
}

// NewParallelTimeline returns a group timeline that begins immediately,
// with an Automatic duration spanning its children.
func NewParallelTimeline(children ...*Timeline) *Timeline {
	return &Timeline{
		BeginTime:  Begin(0),
		SpeedRatio: 1,
		Children:   children,
	}
}

// IsGroup reports whether the timeline has children.
func (t *Timeline) IsGroup() bool {
	return len(t.Children) > 0
}

// Kind names the timeline type for diagnostics.
func (t *Timeline) Kind() string {
	if n, ok := t.Content.(KindNamer); ok {
		return n.TimelineKind()
	}
	if t.IsGroup() {
		return "parallel"
	}
	return "timeline"
}

func (t *Timeline) label() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Kind()
}

func (t *Timeline) speedRatio() float64 {
	if t.SpeedRatio == 0 {
		return 1
	}
	return t.SpeedRatio
}

// Clone returns a deep copy of the timeline tree. Content is shared.
func (t *Timeline) Clone() *Timeline {
	if t == nil {
		return nil
	}
	out := *t
	if t.BeginTime != nil {
		out.BeginTime = Begin(*t.BeginTime)
	}
	if len(t.Children) > 0 {
		out.Children = make([]*Timeline, len(t.Children))
		for i, child := range t.Children {
			out.Children[i] = child.Clone()
		}
	}
	return &out
}

// Validate checks the timeline tree for out-of-range properties.
func (t *Timeline) Validate() error {
	return t.validate(map[*Timeline]bool{})
}

func (t *Timeline) validate(seen map[*Timeline]bool) error {
	const op = "animation.Timeline.Validate"
	if t == nil {
		return errors.New(op, errors.KindUsage, errors.ErrNilTimeline)
	}
	if seen[t] {
		return errors.Rangef(op, t.label(), "timeline appears more than once in its own tree")
	}
	seen[t] = true
	name := t.label()

	if t.AccelerationRatio < 0 || t.AccelerationRatio > 1 || math.IsNaN(t.AccelerationRatio) {
		return errors.Rangef(op, name, "acceleration ratio %v outside [0, 1]", t.AccelerationRatio)
	}
	if t.DecelerationRatio < 0 || t.DecelerationRatio > 1 || math.IsNaN(t.DecelerationRatio) {
		return errors.Rangef(op, name, "deceleration ratio %v outside [0, 1]", t.DecelerationRatio)
	}
	if t.AccelerationRatio+t.DecelerationRatio > 1 {
		return errors.Rangef(op, name, "acceleration %v + deceleration %v exceeds 1",
			t.AccelerationRatio, t.DecelerationRatio)
	}
	if t.SpeedRatio < 0 || math.IsNaN(t.SpeedRatio) || math.IsInf(t.SpeedRatio, 0) {
		return errors.Rangef(op, name, "speed ratio %v must be finite and positive", t.SpeedRatio)
	}
	if t.DesiredFrameRate < 0 {
		return errors.Rangef(op, name, "desired frame rate %d must be positive", t.DesiredFrameRate)
	}
	if t.Duration.HasTimeSpan() && t.Duration.TimeSpan() < 0 {
		return errors.Rangef(op, name, "duration %v is negative", t.Duration.TimeSpan())
	}
	rb := t.RepeatBehavior
	switch {
	case rb.HasCount() && (rb.Count() < 0 || math.IsNaN(rb.Count()) || math.IsInf(rb.Count(), 0)):
		return errors.Rangef(op, name, "repeat count %v must be finite and non-negative", rb.Count())
	case rb.HasDuration() && rb.Duration() < 0:
		return errors.Rangef(op, name, "repeat duration %v is negative", rb.Duration())
	}
	switch t.FillBehavior {
	case HoldEnd, Stop:
	default:
		return errors.Rangef(op, name, "unknown fill behavior %v", t.FillBehavior)
	}
	switch t.SlipBehavior {
	case Grow, Slip:
	default:
		return errors.Rangef(op, name, "unknown slip behavior %d", int(t.SlipBehavior))
	}
	if v, ok := t.Content.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	for i, child := range t.Children {
		if child == nil {
			return errors.Rangef(op, name, "child %d is nil", i)
		}
		if err := child.validate(seen); err != nil {
			return err
		}
	}
	return nil
}

// CreateClock validates the timeline, builds a clock tree from a snapshot of
// it and attaches the tree to tm as a new root. The root is evaluated once
// immediately; the events of that evaluation are raised on the next tick.
//
// The manager holds roots weakly: keep a reference to the returned clock for
// as long as it should keep running.
func (t *Timeline) CreateClock(tm *TimeManager) (*Clock, error) {
	const op = "animation.Timeline.CreateClock"
	if tm == nil {
		return nil, errors.New(op, errors.KindUsage, errors.ErrNilTimeManager)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	root := buildClockTree(t.Clone(), nil, 0)
	tm.attach(root)
	return root, nil
}

func (t *Timeline) String() string {
	begin := "never"
	if t.BeginTime != nil {
		begin = t.BeginTime.String()
	}
	return fmt.Sprintf("%s{begin=%s duration=%s repeat=%s}", t.label(), begin, t.Duration, t.RepeatBehavior)
}
