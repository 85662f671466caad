package keyframes_test

import (
	"fmt"
	"time"

	"github.com/go-drift/tempo/pkg/animation"
	"github.com/go-drift/tempo/pkg/keyframes"
	tempotest "github.com/go-drift/tempo/pkg/testing"
)

func ExampleAnimation_ValueAt() {
	anim := keyframes.New(keyframes.Float64Ops,
		keyframes.Linear(0.0, keyframes.Percent(0)),
		keyframes.Linear(100.0, keyframes.Percent(0.5)),
		keyframes.Discrete(0.0, keyframes.Percent(1)),
	)
	for _, t := range []time.Duration{0, 250 * time.Millisecond, 500 * time.Millisecond, 750 * time.Millisecond, time.Second} {
		fmt.Println(t, anim.ValueAt(0, 0, t, time.Second, 1))
	}
	// Output:
	// 0s 0
	// 250ms 50
	// 500ms 100
	// 750ms 100
	// 1s 0
}

func ExampleAnimation_GetCurrentValue() {
	clk := tempotest.NewFakeClock()
	tm := animation.NewTimeManager(clk)
	tm.Start()

	opacity := keyframes.New(keyframes.Float64Ops,
		keyframes.Linear(0.0, keyframes.Uniform),
		keyframes.Linear(1.0, keyframes.Uniform),
	)
	clock, _ := opacity.Timeline(animation.DurationOf(time.Second)).CreateClock(tm)

	for range 4 {
		tm.Tick()
		fmt.Printf("%v %.2f\n", tm.CurrentGlobalTime(), opacity.GetCurrentValue(0, 1, clock))
		clk.Advance(250 * time.Millisecond)
	}
	// Output:
	// 0s 0.00
	// 250ms 0.00
	// 500ms 0.00
	// 750ms 0.50
}
