package keyframes

import (
	"cmp"
	"math"
	"slices"
	"time"
)

// resolveKeyTimes resolves every frame's key time for an animation lasting
// duration and appends the results to dst sorted by offset.
//
// Percent and TimeSpan key times are anchors. The last frame anchors to the
// duration and a first Paced frame to zero. Remaining frames are spaced
// evenly between the anchors around them, with frames before the first
// anchor spaced as though a frame sat at zero. Runs of Paced frames are then
// re-spaced by the distance between their values.
func resolveKeyTimes[T any](frames []KeyFrame[T], duration time.Duration, distance func(a, b T) float64, dst []ResolvedKeyFrame) []ResolvedKeyFrame {
	n := len(frames)
	if n == 0 {
		return dst
	}
	offsets := make([]time.Duration, n)
	known := make([]bool, n)
	for i, f := range frames {
		switch kt := f.KeyTime; kt.Type() {
		case TypePercent:
			offsets[i], known[i] = roundDuration(kt.Percent()*float64(duration)), true
		case TypeTimeSpan:
			offsets[i], known[i] = kt.TimeSpan(), true
		}
	}
	if !known[n-1] {
		offsets[n-1], known[n-1] = duration, true
	}
	if n > 1 && !known[0] && frames[0].KeyTime.Type() == TypePaced {
		offsets[0], known[0] = 0, true
	}

	resolveUniform(offsets, known)
	if distance != nil {
		resolvePaced(frames, offsets, distance)
	}

	for i, off := range offsets {
		dst = append(dst, ResolvedKeyFrame{Offset: off, Index: i})
	}
	slices.SortStableFunc(dst, func(a, b ResolvedKeyFrame) int {
		return cmp.Compare(a.Offset, b.Offset)
	})
	return dst
}

// resolveUniform spaces every unresolved frame evenly between the resolved
// frames around it. The last offset must be resolved.
func resolveUniform(offsets []time.Duration, known []bool) {
	for i := 0; i < len(offsets); {
		if known[i] {
			i++
			continue
		}
		prev := i - 1
		var from time.Duration
		if prev >= 0 {
			from = offsets[prev]
		}
		next := i + 1
		for !known[next] {
			next++
		}
		step := float64(offsets[next]-from) / float64(next-prev)
		for j := i; j < next; j++ {
			offsets[j] = from + roundDuration(step*float64(j-prev))
		}
		i = next
	}
}

// resolvePaced re-spaces each run of Paced frames so that the time spent on
// every segment of the run is proportional to its length.
func resolvePaced[T any](frames []KeyFrame[T], offsets []time.Duration, distance func(a, b T) float64) {
	last := len(frames) - 1
	for i := 1; i < last; {
		if frames[i].KeyTime.Type() != TypePaced {
			i++
			continue
		}
		first := i
		start := offsets[i-1]
		prev := frames[i-1].Value
		var total float64
		var cumulative []float64
		for {
			total += distance(prev, frames[i].Value)
			cumulative = append(cumulative, total)
			prev = frames[i].Value
			i++
			if i >= last || frames[i].KeyTime.Type() != TypePaced {
				break
			}
		}
		total += distance(prev, frames[i].Value)
		if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
			// No measurable movement: keep the uniform spacing.
			continue
		}
		span := float64(offsets[i] - start)
		for k, d := range cumulative {
			offsets[first+k] = start + roundDuration(d/total*span)
		}
	}
}

func roundDuration(ns float64) time.Duration {
	return time.Duration(math.Round(ns))
}
