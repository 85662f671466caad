package storyboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-drift/tempo/pkg/animation"
	"github.com/go-drift/tempo/pkg/errors"
	"github.com/go-drift/tempo/pkg/keyframes"
)

// Build converts a decoded document into a validated storyboard.
func Build(doc *Document) (*Storyboard, error) {
	if err := CheckVersion(doc.Version); err != nil {
		return nil, err
	}
	b := &builder{sb: &Storyboard{
		Name:      doc.Name,
		Version:   doc.Version,
		byContent: map[animation.Content]Track{},
	}}
	tl, err := b.timeline(&doc.Timeline, "timeline")
	if err != nil {
		return nil, err
	}
	if tl.Name == "" {
		tl.Name = doc.Name
	}
	if err := tl.Validate(); err != nil {
		return nil, err
	}
	b.sb.Timeline = tl
	return b.sb, nil
}

type builder struct {
	sb *Storyboard
}

func fail(where, format string, args ...any) error {
	return errors.Configf("storyboard.Build", where, format, args...)
}

func (b *builder) timeline(spec *TimelineSpec, where string) (*animation.Timeline, error) {
	if spec.Name != "" {
		where = spec.Name
	}
	tl := &animation.Timeline{
		Name:              spec.Name,
		AutoReverse:       spec.AutoReverse,
		AccelerationRatio: spec.Acceleration,
		DecelerationRatio: spec.Deceleration,
		SpeedRatio:        spec.Speed,
		DesiredFrameRate:  spec.FrameRate,
	}
	var err error
	if tl.BeginTime, err = parseBegin(spec.Begin); err != nil {
		return nil, fail(where, "begin: %v", err)
	}
	if tl.Duration, err = parseDuration(spec.Duration); err != nil {
		return nil, fail(where, "duration: %v", err)
	}
	if tl.RepeatBehavior, err = parseRepeat(spec.Repeat); err != nil {
		return nil, fail(where, "repeat: %v", err)
	}
	switch strings.ToLower(spec.Fill) {
	case "", "holdend":
		tl.FillBehavior = animation.HoldEnd
	case "stop":
		tl.FillBehavior = animation.Stop
	default:
		return nil, fail(where, "fill: unknown behavior %q", spec.Fill)
	}
	switch strings.ToLower(spec.Slip) {
	case "", "grow":
		tl.SlipBehavior = animation.Grow
	case "slip":
		tl.SlipBehavior = animation.Slip
	default:
		return nil, fail(where, "slip: unknown behavior %q", spec.Slip)
	}

	if spec.Animation != nil {
		if len(spec.Children) > 0 {
			return nil, fail(where, "a timeline has either children or an animation")
		}
		if err := b.animation(tl, spec.Animation, where); err != nil {
			return nil, err
		}
		return tl, nil
	}
	for i := range spec.Children {
		child, err := b.timeline(&spec.Children[i], fmt.Sprintf("%s/%d", where, i))
		if err != nil {
			return nil, err
		}
		tl.Children = append(tl.Children, child)
	}
	return tl, nil
}

func (b *builder) animation(tl *animation.Timeline, spec *AnimationSpec, where string) error {
	var (
		t   Track
		err error
	)
	switch strings.ToLower(spec.Type) {
	case "float64", "float", "number":
		t, err = buildTrack(float64Type, tl, spec, where)
	case "color":
		t, err = buildTrack(colorType, tl, spec, where)
	case "offset":
		t, err = buildTrack(offsetType, tl, spec, where)
	case "size":
		t, err = buildTrack(sizeType, tl, spec, where)
	case "vec2":
		t, err = buildTrack(vec2Type, tl, spec, where)
	case "vec3":
		t, err = buildTrack(vec3Type, tl, spec, where)
	default:
		return fail(where, "animation: unknown value type %q", spec.Type)
	}
	if err != nil {
		return err
	}
	b.sb.tracks = append(b.sb.tracks, t)
	b.sb.byContent[tl.Content] = t
	return nil
}

func buildTrack[T any](vt valueType[T], tl *animation.Timeline, spec *AnimationSpec, where string) (Track, error) {
	t := &track[T]{name: where, typeName: strings.ToLower(spec.Type), timeline: tl, format: vt.format}
	var err error
	if spec.From != nil {
		if t.from, err = vt.parse(spec.From); err != nil {
			return nil, fail(where, "from: %v", err)
		}
	}
	if spec.To != nil {
		if t.to, err = vt.parse(spec.To); err != nil {
			return nil, fail(where, "to: %v", err)
		}
	}
	frames := make([]keyframes.KeyFrame[T], 0, len(spec.Frames))
	for i, fs := range spec.Frames {
		f, err := buildFrame(vt, fs)
		if err != nil {
			return nil, fail(where, "frame %d: %v", i, err)
		}
		frames = append(frames, f)
	}
	t.anim = keyframes.New(vt.ops, frames...)
	t.anim.Name = tl.Name
	t.anim.IsCumulative = spec.Cumulative
	t.anim.IsAdditive = spec.Additive
	tl.Content = t.anim
	return t, nil
}

func buildFrame[T any](vt valueType[T], fs FrameSpec) (keyframes.KeyFrame[T], error) {
	var f keyframes.KeyFrame[T]
	if fs.Value == nil {
		return f, fmt.Errorf("missing value")
	}
	v, err := vt.parse(fs.Value)
	if err != nil {
		return f, err
	}
	kt, err := parseKeyTime(fs.KeyTime)
	if err != nil {
		return f, err
	}
	switch strings.ToLower(fs.Interpolation) {
	case "", "linear":
		if len(fs.Spline) > 0 {
			return f, fmt.Errorf("spline control points on a linear frame")
		}
		return keyframes.Linear(v, kt), nil
	case "discrete":
		return keyframes.Discrete(v, kt), nil
	case "spline":
		if len(fs.Spline) != 4 {
			return f, fmt.Errorf("spline needs 4 control points, got %d", len(fs.Spline))
		}
		s := keyframes.KeySpline{X1: fs.Spline[0], Y1: fs.Spline[1], X2: fs.Spline[2], Y2: fs.Spline[3]}
		return keyframes.Spline(v, kt, s), nil
	default:
		return f, fmt.Errorf("unknown interpolation %q", fs.Interpolation)
	}
}

func parseBegin(s string) (*time.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return animation.Begin(0), nil
	case "never":
		return nil, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return nil, err
	}
	return animation.Begin(d), nil
}

func parseDuration(s string) (animation.Duration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "automatic":
		return animation.Automatic, nil
	case "forever":
		return animation.Forever, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return animation.Automatic, err
	}
	return animation.DurationOf(d), nil
}

func parseRepeat(s string) (animation.RepeatBehavior, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return animation.RepeatOnce, nil
	case s == "forever":
		return animation.RepeatForever, nil
	case strings.HasSuffix(s, "x"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(s, "x"), 64)
		if err != nil {
			return animation.RepeatOnce, fmt.Errorf("invalid count %q", s)
		}
		return animation.RepeatCount(n), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return animation.RepeatOnce, err
	}
	return animation.RepeatFor(d), nil
}

func parseKeyTime(s string) (keyframes.KeyTime, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "uniform":
		return keyframes.Uniform, nil
	case "paced":
		return keyframes.Paced, nil
	}
	if p, ok := strings.CutSuffix(s, "%"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return keyframes.KeyTime{}, fmt.Errorf("invalid key time %q", s)
		}
		return keyframes.Percent(f / 100), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return keyframes.KeyTime{}, fmt.Errorf("invalid key time %q", s)
	}
	return keyframes.At(d), nil
}
