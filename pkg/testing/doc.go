// Package testing provides a deterministic harness for clock-tree tests.
//
// # Quick Start
//
// Create a tester, start a timeline, and advance the fake clock:
//
//	func TestFade(t *testing.T) {
//	    tester := tempotest.NewClockTesterWithT(t)
//	    clock, err := tester.Start(animation.NewTimeline(animation.DurationOf(time.Second)))
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    events := tester.Record(clock)
//
//	    tester.Tick()
//	    tester.Advance(500 * time.Millisecond)
//
//	    if p, _ := clock.CurrentProgress(); p != 0.5 {
//	        t.Errorf("progress = %v, want 0.5", p)
//	    }
//	    if n := events.Count("", animation.Completed); n != 0 {
//	        t.Errorf("completed %d times before the end", n)
//	    }
//	}
//
// # Finding Clocks
//
// Locate clocks in a started tree by name, state or kind:
//
//	fill := tester.Find(tempotest.ByState(animation.Filling)).All()
//	x := tester.Find(tempotest.Descendant(tempotest.ByName("intro"), tempotest.ByName("x"))).First()
//
// # Snapshot Testing
//
// Capture and compare clock-tree snapshots:
//
//	snapshot := tester.CaptureSnapshot(clock)
//	snapshot.MatchesFile(t, "testdata/fade.snapshot.json")
//
// Update snapshots with:
//
//	TEMPO_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import tempotest "github.com/go-drift/tempo/pkg/testing"
package testing
