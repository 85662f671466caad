package keyframes

import (
	"fmt"
	"time"
)

// KeyTimeType tags how a KeyTime is resolved.
type KeyTimeType uint8

const (
	// TypeUniform spaces the frame evenly between its neighbouring anchors.
	TypeUniform KeyTimeType = iota
	// TypePercent places the frame at a fraction of the animation duration.
	TypePercent
	// TypeTimeSpan places the frame at a fixed offset.
	TypeTimeSpan
	// TypePaced spaces the frame so that value changes at constant speed.
	TypePaced
)

// String returns the key time type name.
func (t KeyTimeType) String() string {
	switch t {
	case TypeUniform:
		return "uniform"
	case TypePercent:
		return "percent"
	case TypeTimeSpan:
		return "timespan"
	case TypePaced:
		return "paced"
	default:
		return fmt.Sprintf("KeyTimeType(%d)", int(t))
	}
}

// KeyTime says when a key frame is reached. The zero value is Uniform.
type KeyTime struct {
	typ     KeyTimeType
	percent float64
	span    time.Duration
}

var (
	// Uniform spaces frames evenly in time between resolved neighbours.
	Uniform = KeyTime{typ: TypeUniform}
	// Paced spaces frames by the distance between their values.
	Paced = KeyTime{typ: TypePaced}
)

// Percent returns a key time at fraction p (0 to 1) of the duration.
func Percent(p float64) KeyTime {
	return KeyTime{typ: TypePercent, percent: p}
}

// At returns a key time at a fixed offset from the start of the animation.
func At(d time.Duration) KeyTime {
	return KeyTime{typ: TypeTimeSpan, span: d}
}

// Type returns how the key time is resolved.
func (k KeyTime) Type() KeyTimeType { return k.typ }

// Percent returns the fraction of a Percent key time.
func (k KeyTime) Percent() float64 { return k.percent }

// TimeSpan returns the offset of a TimeSpan key time.
func (k KeyTime) TimeSpan() time.Duration { return k.span }

func (k KeyTime) String() string {
	switch k.typ {
	case TypePercent:
		return fmt.Sprintf("%g%%", k.percent*100)
	case TypeTimeSpan:
		return k.span.String()
	default:
		return k.typ.String()
	}
}
