package graphics

import "math"

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// Offset represents a 2D point or vector in pixel coordinates.
type Offset struct {
	X float64
	Y float64
}

// Add returns o translated by other.
func (o Offset) Add(other Offset) Offset {
	return Offset{X: o.X + other.X, Y: o.Y + other.Y}
}

// Scale returns o multiplied by factor.
func (o Offset) Scale(factor float64) Offset {
	return Offset{X: o.X * factor, Y: o.Y * factor}
}

// Distance returns the straight-line distance between o and other.
func (o Offset) Distance(other Offset) float64 {
	return math.Hypot(other.X-o.X, other.Y-o.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (o Offset) IsFinite() bool {
	return isFinite(o.X) && isFinite(o.Y)
}

// Size represents width and height dimensions in pixels.
type Size struct {
	Width  float64
	Height float64
}

// Add returns the component-wise sum of s and other.
func (s Size) Add(other Size) Size {
	return Size{Width: s.Width + other.Width, Height: s.Height + other.Height}
}

// Scale returns s multiplied by factor.
func (s Size) Scale(factor float64) Size {
	return Size{Width: s.Width * factor, Height: s.Height * factor}
}

// Distance returns the length of the difference between s and other.
func (s Size) Distance(other Size) float64 {
	return math.Hypot(other.Width-s.Width, other.Height-s.Height)
}

// IsEmpty reports whether either dimension is zero or negative.
func (s Size) IsEmpty() bool {
	return s.Width <= epsilon || s.Height <= epsilon
}

// IsValid reports whether both dimensions are finite and non-negative.
func (s Size) IsValid() bool {
	return isFinite(s.Width) && isFinite(s.Height) && s.Width >= 0 && s.Height >= 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
