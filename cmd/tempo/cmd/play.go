package cmd

import (
	"context"
	"flag"
	"fmt"
	"math"

	"github.com/go-drift/tempo/pkg/animation"
)

func init() {
	RegisterCommand(&Command{
		Name:  "play",
		Short: "Play a storyboard in real time",
		Long: `Play a storyboard against the wall clock and report state changes.

Playback ends when no clock needs another tick, after --until, or on
interrupt. The final value of every track is printed at the end. Use
--log-level debug to log the values of every frame.

Flags:
  --speed RATIO        Interactive speed ratio (default: play.speed or 1)
  --frame-rate FPS     Frame rate cap (default: play.frameRate or 60)
  --until DURATION     Stop after this much wall-clock time (default: simulate.maxTime)
  --path PATH          GJSON path of the storyboard inside a JSON file`,
		Usage: "tempo play [--speed 1] [--frame-rate 60] [--until 1m] <file>",
		Run:   runPlay,
	})
}

func runPlay(env *Env, args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	speed := fs.Float64("speed", env.Config.Speed, "interactive speed ratio")
	frameRate := fs.Int("frame-rate", env.Config.FrameRate, "frame rate cap")
	until := fs.Duration("until", env.Config.MaxTime, "stop after this long")
	jsonPath := fs.String("path", "", "GJSON path of the storyboard")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	file, err := oneFile("play", positional)
	if err != nil {
		return err
	}
	if *speed <= 0 || math.IsInf(*speed, 0) || math.IsNaN(*speed) {
		return fmt.Errorf("--speed must be a positive number (got %v)", *speed)
	}
	if *frameRate <= 0 {
		return fmt.Errorf("--frame-rate must be positive (got %d)", *frameRate)
	}
	if *until <= 0 {
		return fmt.Errorf("--until must be positive (got %s)", *until)
	}

	sb, err := loadStoryboard(file, *jsonPath)
	if err != nil {
		return err
	}

	tm := animation.NewTimeManager(nil)
	tm.Logger = env.Logger
	tm.Start()
	root, err := sb.Timeline.CreateClock(tm)
	if err != nil {
		return err
	}
	if *speed != 1 {
		ctl := root.Controller()
		if ctl == nil {
			return fmt.Errorf("storyboard %q cannot be controlled", sb.Name)
		}
		if err := ctl.SetSpeedRatio(*speed); err != nil {
			return err
		}
	}

	clocks := trackClocks(root, sb)
	walkClocks(root, func(c *animation.Clock) {
		c.OnStateInvalidated(func(c *animation.Clock) {
			fmt.Fprintf(env.Stdout, "%-8v %s %s\n", tm.CurrentGlobalTime(), c.Name(), c.CurrentState())
		})
		c.OnCompleted(func(c *animation.Clock) {
			fmt.Fprintf(env.Stdout, "%-8v %s completed\n", tm.CurrentGlobalTime(), c.Name())
		})
	})

	d := animation.NewDriver(tm)
	d.FrameRate = *frameRate
	d.ExitWhenIdle = true
	d.Logger = env.Logger
	d.OnError = func(err error) error { return err }
	d.OnFrame = func(tm *animation.TimeManager) {
		for _, tr := range sb.Tracks() {
			if c, ok := clocks[tr]; ok {
				env.Logger.Debug("frame", "time", tm.CurrentGlobalTime(), "track", tr.Name(), "value", tr.Sample(c))
			}
		}
	}

	ctx, cancel := context.WithTimeout(env.Context, *until)
	defer cancel()
	env.Logger.Info("playing", "storyboard", sb.Name, "speed", *speed, "fps", *frameRate)
	if err := d.Run(ctx); err != nil {
		return err
	}
	if ctx.Err() != nil {
		env.Logger.Info("playback stopped", "reason", context.Cause(ctx))
	}

	for _, tr := range sb.Tracks() {
		if c, ok := clocks[tr]; ok {
			fmt.Fprintf(env.Stdout, "%s = %s\n", tr.Name(), tr.Sample(c))
		}
	}
	return nil
}
