package cmd

import (
	"flag"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"

	"github.com/go-drift/tempo/pkg/animation"
	"github.com/go-drift/tempo/pkg/storyboard"
)

func init() {
	RegisterCommand(&Command{
		Name:  "simulate",
		Short: "Evaluate a storyboard at fixed steps",
		Long: `Evaluate a storyboard on a simulated clock and print the animated values.

The storyboard is ticked at global time zero and then every step. Without
--until the simulation stops once no clock needs another tick, or at the
configured maximum time (simulate.maxTime, default 1m).

Flags:
  --step DURATION    Simulation step (default: simulate.step or 100ms)
  --until DURATION   Stop at this global time
  --json             Print a JSON trace instead of a table
  --path PATH        GJSON path of the storyboard inside a JSON file`,
		Usage: "tempo simulate [--step 100ms] [--until 2s] [--json] [--path PATH] <file>",
		Run:   runSimulate,
	})
}

// trace is the JSON form of a simulation.
type trace struct {
	Name   string       `json:"name"`
	Step   string       `json:"step"`
	Frames []traceFrame `json:"frames"`
}

type traceFrame struct {
	Time      string       `json:"time"`
	Clocks    []traceClock `json:"clocks"`
	Completed []string     `json:"completed,omitempty"`
}

type traceClock struct {
	Name      string   `json:"name"`
	State     string   `json:"state"`
	Time      string   `json:"time,omitempty"`
	Progress  *float64 `json:"progress,omitempty"`
	Iteration int      `json:"iteration,omitempty"`
	Value     string   `json:"value,omitempty"`
}

type simulation struct {
	sb        *storyboard.Storyboard
	source    *steppedSource
	manager   *animation.TimeManager
	root      *animation.Clock
	clockOf   map[storyboard.Track]*animation.Clock
	completed []string
}

func newSimulation(env *Env, sb *storyboard.Storyboard) (*simulation, error) {
	s := &simulation{sb: sb, source: &steppedSource{base: time.Now()}}
	s.manager = animation.NewTimeManager(s.source)
	s.manager.Logger = env.Logger
	s.manager.Start()
	root, err := sb.Timeline.CreateClock(s.manager)
	if err != nil {
		return nil, err
	}
	s.root = root
	s.clockOf = trackClocks(root, sb)
	walkClocks(root, func(c *animation.Clock) {
		c.OnCompleted(func(c *animation.Clock) {
			s.completed = append(s.completed, c.Name())
		})
	})
	return s, nil
}

// frame captures the tree after the last tick and forgets the completions
// seen so far.
func (s *simulation) frame() traceFrame {
	f := traceFrame{
		Time:      s.manager.CurrentGlobalTime().String(),
		Completed: s.completed,
	}
	s.completed = nil
	walkClocks(s.root, func(c *animation.Clock) {
		tc := traceClock{Name: c.Name(), State: c.CurrentState().String()}
		if t, ok := c.CurrentTime(); ok {
			tc.Time = t.String()
			p, _ := c.CurrentProgress()
			p = math.Round(p*1e4) / 1e4
			tc.Progress = &p
			tc.Iteration, _ = c.CurrentIteration()
		}
		if tr, ok := s.sb.TrackFor(c); ok {
			tc.Value = tr.Sample(c)
		}
		f.Clocks = append(f.Clocks, tc)
	})
	return f
}

func (s *simulation) run(env *Env, step, until time.Duration, fn func(traceFrame)) error {
	for {
		if err := s.manager.Tick(); err != nil {
			return err
		}
		fn(s.frame())

		now := s.manager.CurrentGlobalTime()
		if until > 0 {
			if now >= until {
				return nil
			}
		} else {
			if _, ok := s.manager.NextTickNeeded(); !ok {
				return nil
			}
			if now >= env.Config.MaxTime {
				env.Logger.Warn("simulation reached max time", "maxTime", env.Config.MaxTime)
				return nil
			}
		}
		next := now + step
		if until > 0 {
			next = min(next, until)
		}
		s.source.offset = next
	}
}

func runSimulate(env *Env, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	step := fs.Duration("step", env.Config.Step, "simulation step")
	until := fs.Duration("until", 0, "stop at this global time")
	asJSON := fs.Bool("json", false, "print a JSON trace")
	jsonPath := fs.String("path", "", "GJSON path of the storyboard")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	file, err := oneFile("simulate", positional)
	if err != nil {
		return err
	}
	if *step <= 0 {
		return fmt.Errorf("--step must be positive (got %s)", *step)
	}
	if *until < 0 {
		return fmt.Errorf("--until must not be negative (got %s)", *until)
	}

	sb, err := loadStoryboard(file, *jsonPath)
	if err != nil {
		return err
	}
	sim, err := newSimulation(env, sb)
	if err != nil {
		return err
	}
	env.Logger.Debug("simulating", "storyboard", sb.Name, "step", *step, "until", *until)

	if *asJSON {
		out := trace{Name: sb.Name, Step: step.String()}
		if err := sim.run(env, *step, *until, func(f traceFrame) {
			out.Frames = append(out.Frames, f)
		}); err != nil {
			return err
		}
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	tw := tabwriter.NewWriter(env.Stdout, 0, 8, 2, ' ', 0)
	header := []string{"TIME"}
	for _, tr := range sb.Tracks() {
		header = append(header, tr.Name())
	}
	header = append(header, "COMPLETED")
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	err = sim.run(env, *step, *until, func(f traceFrame) {
		row := []string{f.Time}
		for _, tr := range sb.Tracks() {
			if c, ok := sim.clockOf[tr]; ok {
				row = append(row, tr.Sample(c))
			} else {
				row = append(row, "-")
			}
		}
		completed := "-"
		if len(f.Completed) > 0 {
			completed = strings.Join(f.Completed, ",")
		}
		row = append(row, completed)
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	})
	if err != nil {
		return err
	}
	return tw.Flush()
}
