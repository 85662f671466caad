package cmd

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-drift/tempo/pkg/animation"
	"github.com/go-drift/tempo/pkg/storyboard"
)

// loadStoryboard reads the storyboard at path. A non-empty jsonPath selects
// a storyboard nested inside a larger JSON document.
func loadStoryboard(path, jsonPath string) (*storyboard.Storyboard, error) {
	if jsonPath == "" {
		return storyboard.Load(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storyboard: %w", err)
	}
	return storyboard.ParseJSONPath(data, jsonPath)
}

// parseArgs parses flags that may appear before or after positional
// arguments, returning the positional ones.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// oneFile returns the single storyboard path of a command line.
func oneFile(cmd string, positional []string) (string, error) {
	if len(positional) != 1 {
		return "", fmt.Errorf("%s takes exactly one storyboard file\n\nUsage: %s", cmd, commands[cmd].Usage)
	}
	return positional[0], nil
}

// walkClocks visits the clocks under root in pre-order.
func walkClocks(root *animation.Clock, fn func(*animation.Clock)) {
	fn(root)
	for _, child := range root.Children() {
		walkClocks(child, fn)
	}
}

// trackClocks maps every track of sb to its clock in the tree under root.
func trackClocks(root *animation.Clock, sb *storyboard.Storyboard) map[storyboard.Track]*animation.Clock {
	m := map[storyboard.Track]*animation.Clock{}
	walkClocks(root, func(c *animation.Clock) {
		if tr, ok := sb.TrackFor(c); ok {
			m[tr] = c
		}
	})
	return m
}

// steppedSource is a time source advanced explicitly by the simulator.
type steppedSource struct {
	base   time.Time
	offset time.Duration
}

func (s *steppedSource) Now() time.Time {
	return s.base.Add(s.offset)
}
