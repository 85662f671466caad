package testing

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/go-drift/tempo/pkg/animation"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// updateEnv enables rewriting golden files instead of comparing them.
const updateEnv = "TEMPO_UPDATE_SNAPSHOTS"

// Snapshot captures the outputs of every clock in a tree at one global time.
type Snapshot struct {
	GlobalTime string     `json:"globalTime"`
	Tree       *ClockNode `json:"tree"`
}

// ClockNode is one clock in a serialized clock tree. Time, progress,
// iteration and speed are omitted while the clock is stopped.
type ClockNode struct {
	ID        string       `json:"id"`
	Kind      string       `json:"kind"`
	State     string       `json:"state"`
	Time      string       `json:"time,omitempty"`
	Progress  *float64     `json:"progress,omitempty"`
	Iteration int          `json:"iteration,omitempty"`
	Speed     *float64     `json:"speed,omitempty"`
	Duration  string       `json:"duration"`
	Children  []*ClockNode `json:"children,omitempty"`
}

// CaptureSnapshot captures root's tree at the manager's current global
// time.
func CaptureSnapshot(tm *animation.TimeManager, root *animation.Clock) *Snapshot {
	counter := &nameCounter{}
	return &Snapshot{
		GlobalTime: tm.CurrentGlobalTime().String(),
		Tree:       captureClockNode(root, counter),
	}
}

// CaptureSnapshot captures root's tree at the tester's current time.
func (t *ClockTester) CaptureSnapshot(root *animation.Clock) *Snapshot {
	return CaptureSnapshot(t.manager, root)
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When TEMPO_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(updateEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, updateEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, updateEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a unified diff between this snapshot and other. Returns
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return unifiedDiff(string(b), string(a))
}

// --- Internal ---

// nameCounter assigns stable IDs like "fade#0", "fade#1".
type nameCounter struct {
	counts map[string]int
}

func (c *nameCounter) next(name string) string {
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	n := c.counts[name]
	c.counts[name] = n + 1
	return fmt.Sprintf("%s#%d", name, n)
}

func captureClockNode(c *animation.Clock, counter *nameCounter) *ClockNode {
	node := &ClockNode{
		ID:       counter.next(c.Name()),
		Kind:     c.Timeline().Kind(),
		State:    c.CurrentState().String(),
		Duration: c.CurrentDuration().String(),
	}
	if t, ok := c.CurrentTime(); ok {
		node.Time = t.String()
		p, _ := c.CurrentProgress()
		node.Progress = ptr(round4(p))
		node.Iteration, _ = c.CurrentIteration()
		s, _ := c.CurrentGlobalSpeed()
		node.Speed = ptr(round4(s))
	}
	for _, child := range c.Children() {
		node.Children = append(node.Children, captureClockNode(child, counter))
	}
	return node
}

func ptr[T any](v T) *T {
	return &v
}

// round4 keeps golden files stable across float noise.
func round4(v float64) float64 {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		return 0
	}
	return r
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unifiedDiff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		return fmt.Sprintf("diff failed: %v", err)
	}
	return diff
}
