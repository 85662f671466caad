package keyframes

import (
	"fmt"
	"math"
)

// KeySpline is a cubic Bézier easing for one key-frame segment, matching
// CSS cubic-bezier(). The curve runs from (0,0) to (1,1) with control points
// (X1,Y1) and (X2,Y2). The zero value is not linear; use LinearSpline.
type KeySpline struct {
	X1, Y1, X2, Y2 float64
}

// Standard splines.
var (
	LinearSpline    = KeySpline{0, 0, 1, 1}
	EaseSpline      = KeySpline{0.25, 0.1, 0.25, 1.0}
	EaseInSpline    = KeySpline{0.4, 0.0, 1.0, 1.0}
	EaseOutSpline   = KeySpline{0.0, 0.0, 0.2, 1.0}
	EaseInOutSpline = KeySpline{0.4, 0.0, 0.2, 1.0}
)

// Validate checks that the control points keep the curve a function of x.
func (s KeySpline) Validate() error {
	for _, v := range [...]float64{s.X1, s.Y1, s.X2, s.Y2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("key spline %v has a non-finite control point", s)
		}
	}
	if s.X1 < 0 || s.X1 > 1 || s.X2 < 0 || s.X2 > 1 {
		return fmt.Errorf("key spline %v: control point x outside [0, 1]", s)
	}
	return nil
}

// Progress maps a linear segment fraction t to eased progress.
func (s KeySpline) Progress(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	if s == LinearSpline {
		return t
	}

	u := t
	// Newton-Raphson converges quickly for most values.
	for range 8 {
		x := sampleCurve(s.X1, s.X2, u) - t
		if math.Abs(x) < 1e-7 {
			return sampleCurve(s.Y1, s.Y2, clampUnit(u))
		}
		dx := sampleCurveDerivative(s.X1, s.X2, u)
		if math.Abs(dx) < 1e-7 {
			break
		}
		u -= x / dx
	}

	// Fall back to bisection for a stable solution in [0,1].
	lo, hi := 0.0, 1.0
	u = clampUnit(u)
	for range 12 {
		x := sampleCurve(s.X1, s.X2, u) - t
		if math.Abs(x) < 1e-7 {
			break
		}
		if x > 0 {
			hi = u
		} else {
			lo = u
		}
		u = (lo + hi) * 0.5
	}
	return sampleCurve(s.Y1, s.Y2, u)
}

func (s KeySpline) String() string {
	return fmt.Sprintf("cubic-bezier(%g, %g, %g, %g)", s.X1, s.Y1, s.X2, s.Y2)
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
