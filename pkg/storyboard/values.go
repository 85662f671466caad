package storyboard

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/math/f64"

	"github.com/go-drift/tempo/pkg/graphics"
	"github.com/go-drift/tempo/pkg/keyframes"
)

// valueType knows how to read and print the values of one animated type.
type valueType[T any] struct {
	ops    keyframes.Operations[T]
	parse  func(v any) (T, error)
	format func(T) string
}

var (
	float64Type = valueType[float64]{
		ops:    keyframes.Float64Ops,
		parse:  toFloat,
		format: formatFloat,
	}
	colorType = valueType[graphics.Color]{
		ops:   keyframes.ColorOps,
		parse: parseColor,
		format: func(c graphics.Color) string {
			return fmt.Sprintf("#%08X", uint32(c))
		},
	}
	offsetType = valueType[graphics.Offset]{
		ops: keyframes.OffsetOps,
		parse: func(v any) (graphics.Offset, error) {
			c, err := components(v, 2)
			if err != nil {
				return graphics.Offset{}, err
			}
			return graphics.Offset{X: c[0], Y: c[1]}, nil
		},
		format: func(o graphics.Offset) string { return formatComponents(o.X, o.Y) },
	}
	sizeType = valueType[graphics.Size]{
		ops: keyframes.SizeOps,
		parse: func(v any) (graphics.Size, error) {
			c, err := components(v, 2)
			if err != nil {
				return graphics.Size{}, err
			}
			return graphics.Size{Width: c[0], Height: c[1]}, nil
		},
		format: func(s graphics.Size) string { return formatComponents(s.Width, s.Height) },
	}
	vec2Type = valueType[f64.Vec2]{
		ops: keyframes.Vec2Ops,
		parse: func(v any) (f64.Vec2, error) {
			c, err := components(v, 2)
			if err != nil {
				return f64.Vec2{}, err
			}
			return f64.Vec2{c[0], c[1]}, nil
		},
		format: func(v f64.Vec2) string { return formatComponents(v[0], v[1]) },
	}
	vec3Type = valueType[f64.Vec3]{
		ops: keyframes.Vec3Ops,
		parse: func(v any) (f64.Vec3, error) {
			c, err := components(v, 3)
			if err != nil {
				return f64.Vec3{}, err
			}
			return f64.Vec3{c[0], c[1], c[2]}, nil
		},
		format: func(v f64.Vec3) string { return formatComponents(v[0], v[1], v[2]) },
	}
)

// toFloat accepts the numeric types produced by the YAML and JSON decoders.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func components(v any, n int) ([]float64, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of %d numbers, got %T", n, v)
	}
	if len(list) != n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(list))
	}
	out := make([]float64, n)
	for i, item := range list {
		f, err := toFloat(item)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// parseColor reads "#RRGGBB", "#AARRGGBB" or a 32-bit ARGB number.
func parseColor(v any) (graphics.Color, error) {
	s, ok := v.(string)
	if !ok {
		f, err := toFloat(v)
		if err != nil || f < 0 || f > 0xFFFFFFFF || f != float64(uint32(f)) {
			return 0, fmt.Errorf("invalid color %v", v)
		}
		return graphics.Color(uint32(f)), nil
	}
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	switch len(hex) {
	case 6:
		return graphics.Color(0xFF000000 | uint32(n)), nil
	case 8:
		return graphics.Color(uint32(n)), nil
	default:
		return 0, fmt.Errorf("invalid color %q: want #RRGGBB or #AARRGGBB", s)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func formatComponents(vs ...float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
