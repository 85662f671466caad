package keyframes

import (
	"math"

	"golang.org/x/image/math/f64"

	"github.com/go-drift/tempo/pkg/graphics"
)

// Operations supplies the arithmetic a key-frame animation needs for a
// value type.
type Operations[T any] struct {
	// Interpolate blends from and to at fraction t in [0, 1].
	Interpolate func(from, to T, t float64) T
	// Add returns a + b. Used for cumulative and additive animations.
	Add func(a, b T) T
	// Scale returns v multiplied by factor. Used for cumulative animations.
	Scale func(v T, factor float64) T
	// Distance returns the length of the segment between a and b. Used to
	// space Paced frames; nil makes Paced frames behave like Uniform ones.
	Distance func(a, b T) float64
}

// LerpFloat64 linearly interpolates between two float64 values.
func LerpFloat64(a, b float64, t float64) float64 {
	return a + (b-a)*t
}

// Float64Ops animates float64 values.
var Float64Ops = Operations[float64]{
	Interpolate: LerpFloat64,
	Add:         func(a, b float64) float64 { return a + b },
	Scale:       func(v, f float64) float64 { return v * f },
	Distance:    func(a, b float64) float64 { return math.Abs(b - a) },
}

// LerpOffset linearly interpolates between two Offset values.
func LerpOffset(a, b graphics.Offset, t float64) graphics.Offset {
	return graphics.Offset{
		X: LerpFloat64(a.X, b.X, t),
		Y: LerpFloat64(a.Y, b.Y, t),
	}
}

// OffsetOps animates graphics.Offset values.
var OffsetOps = Operations[graphics.Offset]{
	Interpolate: LerpOffset,
	Add:         graphics.Offset.Add,
	Scale:       graphics.Offset.Scale,
	Distance:    graphics.Offset.Distance,
}

// LerpSize linearly interpolates between two Size values.
func LerpSize(a, b graphics.Size, t float64) graphics.Size {
	return graphics.Size{
		Width:  LerpFloat64(a.Width, b.Width, t),
		Height: LerpFloat64(a.Height, b.Height, t),
	}
}

// SizeOps animates graphics.Size values.
var SizeOps = Operations[graphics.Size]{
	Interpolate: LerpSize,
	Add:         graphics.Size.Add,
	Scale:       graphics.Size.Scale,
	Distance:    graphics.Size.Distance,
}

// LerpColor interpolates each ARGB channel of two colors.
func LerpColor(a, b graphics.Color, t float64) graphics.Color {
	aA, aR, aG, aB := a.Channels()
	bA, bR, bG, bB := b.Channels()
	return graphics.ColorFromChannels(
		LerpFloat64(float64(aA), float64(bA), t),
		LerpFloat64(float64(aR), float64(bR), t),
		LerpFloat64(float64(aG), float64(bG), t),
		LerpFloat64(float64(aB), float64(bB), t),
	)
}

func addColor(a, b graphics.Color) graphics.Color {
	aA, aR, aG, aB := a.Channels()
	bA, bR, bG, bB := b.Channels()
	return graphics.ColorFromChannels(
		float64(aA)+float64(bA),
		float64(aR)+float64(bR),
		float64(aG)+float64(bG),
		float64(aB)+float64(bB),
	)
}

func scaleColor(c graphics.Color, f float64) graphics.Color {
	a, r, g, b := c.Channels()
	return graphics.ColorFromChannels(float64(a)*f, float64(r)*f, float64(g)*f, float64(b)*f)
}

func colorDistance(a, b graphics.Color) float64 {
	aA, aR, aG, aB := a.Channels()
	bA, bR, bG, bB := b.Channels()
	da := float64(bA) - float64(aA)
	dr := float64(bR) - float64(aR)
	dg := float64(bG) - float64(aG)
	db := float64(bB) - float64(aB)
	return math.Sqrt(da*da + dr*dr + dg*dg + db*db)
}

// ColorOps animates graphics.Color values channel by channel. Sums
// saturate at full intensity.
var ColorOps = Operations[graphics.Color]{
	Interpolate: LerpColor,
	Add:         addColor,
	Scale:       scaleColor,
	Distance:    colorDistance,
}

// Vec2Ops animates two-component vectors.
var Vec2Ops = Operations[f64.Vec2]{
	Interpolate: func(a, b f64.Vec2, t float64) f64.Vec2 {
		return f64.Vec2{LerpFloat64(a[0], b[0], t), LerpFloat64(a[1], b[1], t)}
	},
	Add: func(a, b f64.Vec2) f64.Vec2 {
		return f64.Vec2{a[0] + b[0], a[1] + b[1]}
	},
	Scale: func(v f64.Vec2, f float64) f64.Vec2 {
		return f64.Vec2{v[0] * f, v[1] * f}
	},
	Distance: func(a, b f64.Vec2) float64 {
		return math.Hypot(b[0]-a[0], b[1]-a[1])
	},
}

// Vec3Ops animates three-component vectors.
var Vec3Ops = Operations[f64.Vec3]{
	Interpolate: func(a, b f64.Vec3, t float64) f64.Vec3 {
		return f64.Vec3{LerpFloat64(a[0], b[0], t), LerpFloat64(a[1], b[1], t), LerpFloat64(a[2], b[2], t)}
	},
	Add: func(a, b f64.Vec3) f64.Vec3 {
		return f64.Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
	},
	Scale: func(v f64.Vec3, f float64) f64.Vec3 {
		return f64.Vec3{v[0] * f, v[1] * f, v[2] * f}
	},
	Distance: func(a, b f64.Vec3) float64 {
		dx, dy, dz := b[0]-a[0], b[1]-a[1], b[2]-a[2]
		return math.Sqrt(dx*dx + dy*dy + dz*dz)
	},
}
