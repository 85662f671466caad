package animation

import (
	"math"
	"time"
)

// Acceleration and deceleration share one fixed shape: a quadratic ramp up
// over [0, accel], constant speed in the middle, and a quadratic ramp down
// over [1-decel, 1]. The plateau speed 2/(2-accel-decel) keeps the average
// speed at 1 so the eased progress still ends at exactly 1.

// easeProgress maps linear progress p in [0, 1] to eased progress.
func easeProgress(p, accel, decel float64) float64 {
	if accel == 0 && decel == 0 {
		return p
	}
	peak := 2 / (2 - accel - decel)
	switch {
	case p < accel:
		return peak * p * p / (2 * accel)
	case p <= 1-decel:
		return peak * (p - accel/2)
	default:
		q := 1 - p
		return 1 - peak*q*q/(2*decel)
	}
}

// easeSpeed returns d(easeProgress)/dp at p. It is continuous, never
// negative, and integrates to 1 over [0, 1].
func easeSpeed(p, accel, decel float64) float64 {
	if accel == 0 && decel == 0 {
		return 1
	}
	peak := 2 / (2 - accel - decel)
	switch {
	case p < accel:
		return peak * p / accel
	case p <= 1-decel:
		return peak
	default:
		return peak * (1 - p) / decel
	}
}

// roundSpan converts a float nanosecond count to a Duration, rounding half
// away from zero and saturating at the Duration range.
func roundSpan(ns float64) time.Duration {
	switch {
	case math.IsNaN(ns):
		return 0
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	case ns < 0:
		return time.Duration(ns - 0.5)
	default:
		return time.Duration(ns + 0.5)
	}
}

// scaleSpan multiplies d by f with the rounding used for every time
// conversion in the engine.
func scaleSpan(d time.Duration, f float64) time.Duration {
	if f == 1 {
		return d
	}
	return roundSpan(float64(d) * f)
}

// snapToFrame snaps t down to the most recent boundary of a rate-per-second
// frame grid. Frame boundaries are rounded to the nearest nanosecond.
func snapToFrame(t time.Duration, rate int) time.Duration {
	if rate <= 0 {
		return t
	}
	frames := frameIndex(t, rate)
	return frameTime(frames, rate)
}

func frameIndex(t time.Duration, rate int) int64 {
	idx := int64(t) / int64(time.Second) * int64(rate)
	rem := int64(t) % int64(time.Second)
	idx += rem * int64(rate) / int64(time.Second)
	if t < 0 && rem*int64(rate)%int64(time.Second) != 0 {
		idx--
	}
	return idx
}

func frameTime(frames int64, rate int) time.Duration {
	whole := frames / int64(rate)
	part := frames % int64(rate)
	return time.Duration(whole*int64(time.Second) + (part*int64(time.Second)+int64(rate)/2)/int64(rate))
}
