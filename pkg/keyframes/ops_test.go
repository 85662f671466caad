package keyframes

import (
	"math"
	"testing"

	"golang.org/x/image/math/f64"

	"github.com/go-drift/tempo/pkg/graphics"
)

func TestLerpColor(t *testing.T) {
	tests := []struct {
		a, b graphics.Color
		t    float64
		want graphics.Color
	}{
		{graphics.ColorBlack, graphics.ColorWhite, 0, graphics.ColorBlack},
		{graphics.ColorBlack, graphics.ColorWhite, 1, graphics.ColorWhite},
		{graphics.ColorBlack, graphics.ColorWhite, 0.5, graphics.Color(0xFF808080)},
		{graphics.ColorTransparent, graphics.ColorRed, 0.5, graphics.Color(0x80800000)},
	}
	for _, tt := range tests {
		if got := LerpColor(tt.a, tt.b, tt.t); got != tt.want {
			t.Errorf("LerpColor(%#x, %#x, %v) = %#x, want %#x", uint32(tt.a), uint32(tt.b), tt.t, uint32(got), uint32(tt.want))
		}
	}
}

func TestColorOps_Saturates(t *testing.T) {
	if got := ColorOps.Add(graphics.Color(0xFF808080), graphics.Color(0xFF909090)); got != graphics.ColorWhite {
		t.Errorf("Add = %#x, want white", uint32(got))
	}
	if got := ColorOps.Scale(graphics.ColorWhite, 0); got != graphics.ColorTransparent {
		t.Errorf("Scale(0) = %#x, want transparent", uint32(got))
	}
	want := math.Sqrt(3 * 255 * 255)
	if got := ColorOps.Distance(graphics.ColorBlack, graphics.ColorWhite); math.Abs(got-want) > 1e-9 {
		t.Errorf("Distance = %v, want %v", got, want)
	}
}

func TestGeometryOps(t *testing.T) {
	if got := LerpOffset(graphics.Offset{}, graphics.Offset{X: 10, Y: -20}, 0.25); got != (graphics.Offset{X: 2.5, Y: -5}) {
		t.Errorf("LerpOffset = %v", got)
	}
	if got := OffsetOps.Distance(graphics.Offset{}, graphics.Offset{X: 3, Y: 4}); got != 5 {
		t.Errorf("offset distance = %v, want 5", got)
	}
	if got := LerpSize(graphics.Size{Width: 10}, graphics.Size{Width: 20, Height: 10}, 0.5); got != (graphics.Size{Width: 15, Height: 5}) {
		t.Errorf("LerpSize = %v", got)
	}
	if got := SizeOps.Scale(graphics.Size{Width: 2, Height: 3}, 2); got != (graphics.Size{Width: 4, Height: 6}) {
		t.Errorf("size scale = %v", got)
	}
}

func TestVectorOps(t *testing.T) {
	if got := Vec2Ops.Interpolate(f64.Vec2{0, 0}, f64.Vec2{4, 8}, 0.5); got != (f64.Vec2{2, 4}) {
		t.Errorf("Vec2 interpolate = %v", got)
	}
	if got := Vec2Ops.Distance(f64.Vec2{1, 1}, f64.Vec2{4, 5}); got != 5 {
		t.Errorf("Vec2 distance = %v, want 5", got)
	}
	if got := Vec3Ops.Add(f64.Vec3{1, 2, 3}, Vec3Ops.Scale(f64.Vec3{1, 1, 1}, 2)); got != (f64.Vec3{3, 4, 5}) {
		t.Errorf("Vec3 add = %v", got)
	}
	if got := Vec3Ops.Distance(f64.Vec3{}, f64.Vec3{2, 3, 6}); got != 7 {
		t.Errorf("Vec3 distance = %v, want 7", got)
	}
}
