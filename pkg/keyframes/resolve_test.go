package keyframes

import (
	"slices"
	"testing"
	"time"
)

const ms = time.Millisecond

func offsets(res []ResolvedKeyFrame) []time.Duration {
	out := make([]time.Duration, len(res))
	for i, r := range res {
		out[i] = r.Offset
	}
	return out
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		frames []KeyFrame[float64]
		want   []time.Duration
	}{
		{
			name: "percent anchors with uniform between",
			frames: []KeyFrame[float64]{
				Linear(0.0, Percent(0)), Linear(1.0, Uniform), Linear(2.0, Percent(1)),
			},
			want: []time.Duration{0, 500 * ms, time.Second},
		},
		{
			name: "uniform before the first anchor",
			frames: []KeyFrame[float64]{
				Linear(0.0, Uniform), Linear(1.0, Uniform), Linear(2.0, Uniform),
			},
			want: []time.Duration{333333333, 666666667, time.Second},
		},
		{
			name: "time spans",
			frames: []KeyFrame[float64]{
				Linear(0.0, At(0)), Linear(1.0, Uniform), Linear(2.0, Uniform), Linear(3.0, At(900*ms)),
			},
			want: []time.Duration{0, 300 * ms, 600 * ms, 900 * ms},
		},
		{
			name: "paced by value distance",
			frames: []KeyFrame[float64]{
				Linear(0.0, Paced), Linear(10.0, Paced), Linear(40.0, Paced),
			},
			want: []time.Duration{0, 250 * ms, time.Second},
		},
		{
			name: "paced between anchors",
			frames: []KeyFrame[float64]{
				Linear(0.0, Percent(0)), Linear(30.0, Paced), Linear(40.0, Paced), Linear(50.0, Percent(0.5)), Linear(0.0, Percent(1)),
			},
			want: []time.Duration{0, 300 * ms, 400 * ms, 500 * ms, time.Second},
		},
		{
			name: "paced without movement stays uniform",
			frames: []KeyFrame[float64]{
				Linear(5.0, Paced), Linear(5.0, Paced), Linear(5.0, Paced),
			},
			want: []time.Duration{0, 500 * ms, time.Second},
		},
		{
			name:   "single uniform frame sits at the end",
			frames: []KeyFrame[float64]{Linear(1.0, Uniform)},
			want:   []time.Duration{time.Second},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(Float64Ops, tt.frames...)
			if got := offsets(a.Resolve(time.Second)); !slices.Equal(got, tt.want) {
				t.Errorf("offsets = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolve_PacedWithoutDistance(t *testing.T) {
	ops := Float64Ops
	ops.Distance = nil
	a := New(ops, Linear(0.0, Paced), Linear(10.0, Paced), Linear(40.0, Paced))
	if got, want := offsets(a.Resolve(time.Second)), []time.Duration{0, 500 * ms, time.Second}; !slices.Equal(got, want) {
		t.Errorf("offsets = %v, want %v", got, want)
	}
}

func TestResolve_SortedByOffset(t *testing.T) {
	a := New(Float64Ops,
		Linear(1.0, Percent(1)),
		Linear(0.0, Percent(0)),
		Linear(0.5, Percent(0.5)),
		Linear(0.7, Percent(0.5)),
	)
	res := a.Resolve(time.Second)
	gotIdx := make([]int, len(res))
	for i, r := range res {
		gotIdx[i] = r.Index
	}
	if want := []int{1, 2, 3, 0}; !slices.Equal(gotIdx, want) {
		t.Errorf("order = %v, want %v (ties keep declaration order)", gotIdx, want)
	}
}

func TestResolve_CacheFollowsEdits(t *testing.T) {
	a := New(Float64Ops, Linear(0.0, Uniform), Linear(1.0, Uniform))
	if got := offsets(a.Resolve(time.Second)); !slices.Equal(got, []time.Duration{500 * ms, time.Second}) {
		t.Fatalf("offsets = %v", got)
	}
	if got := offsets(a.Resolve(2 * time.Second)); !slices.Equal(got, []time.Duration{time.Second, 2 * time.Second}) {
		t.Errorf("offsets after duration change = %v", got)
	}
	a.Add(Linear(2.0, Uniform))
	if got := offsets(a.Resolve(2 * time.Second)); len(got) != 3 {
		t.Errorf("offsets after Add = %v, want 3 frames", got)
	}
	a.Set(0, Linear(0.0, At(100*ms)))
	if got := a.Resolve(2 * time.Second)[0].Offset; got != 100*ms {
		t.Errorf("first offset after Set = %v, want 100ms", got)
	}

	res := a.Resolve(2 * time.Second)
	res[0].Offset = time.Hour
	if a.Resolve(2 * time.Second)[0].Offset == time.Hour {
		t.Error("Resolve must return a copy")
	}
}

func TestKeyTime_String(t *testing.T) {
	tests := []struct {
		kt   KeyTime
		want string
	}{
		{Uniform, "uniform"},
		{Paced, "paced"},
		{Percent(0.25), "25%"},
		{At(1500 * ms), "1.5s"},
		{KeyTime{}, "uniform"},
	}
	for _, tt := range tests {
		if got := tt.kt.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
