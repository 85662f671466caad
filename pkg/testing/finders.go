package testing

import (
	"fmt"

	"github.com/go-drift/tempo/pkg/animation"
)

// Finder locates clocks in a clock tree.
type Finder interface {
	// Evaluate returns all matching clocks under root (depth-first pre-order).
	Evaluate(root *animation.Clock) []*animation.Clock
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	clocks []*animation.Clock
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() *animation.Clock {
	if len(r.clocks) == 0 {
		panic(fmt.Sprintf("Finder found no clocks: %s", r.description()))
	}
	return r.clocks[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() *animation.Clock {
	if len(r.clocks) == 0 {
		return nil
	}
	return r.clocks[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) *animation.Clock {
	if index < 0 || index >= len(r.clocks) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.clocks), r.description()))
	}
	return r.clocks[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []*animation.Clock {
	return r.clocks
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.clocks)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.clocks) > 0
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// Find evaluates finder against the tree under root.
func Find(root *animation.Clock, finder Finder) FinderResult {
	return FinderResult{clocks: finder.Evaluate(root), finder: finder}
}

// --- Concrete finders ---

type nameFinder struct {
	name string
}

func (f *nameFinder) Evaluate(root *animation.Clock) []*animation.Clock {
	return collectMatches(root, func(c *animation.Clock) bool {
		return c.Name() == f.name
	})
}

func (f *nameFinder) Description() string {
	return fmt.Sprintf("ByName(%q)", f.name)
}

// ByName returns a finder that matches clocks whose name equals name.
// Unnamed clocks are named after their timeline kind.
func ByName(name string) Finder {
	return &nameFinder{name: name}
}

type stateFinder struct {
	state animation.ClockState
}

func (f *stateFinder) Evaluate(root *animation.Clock) []*animation.Clock {
	return collectMatches(root, func(c *animation.Clock) bool {
		return c.CurrentState() == f.state
	})
}

func (f *stateFinder) Description() string {
	return fmt.Sprintf("ByState(%s)", f.state)
}

// ByState returns a finder that matches clocks currently in state.
func ByState(state animation.ClockState) Finder {
	return &stateFinder{state: state}
}

type kindFinder struct {
	kind string
}

func (f *kindFinder) Evaluate(root *animation.Clock) []*animation.Clock {
	return collectMatches(root, func(c *animation.Clock) bool {
		return c.Timeline().Kind() == f.kind
	})
}

func (f *kindFinder) Description() string {
	return fmt.Sprintf("ByKind(%q)", f.kind)
}

// ByKind returns a finder that matches clocks whose timeline kind equals
// kind, such as "parallel" or "keyframes[float64]".
func ByKind(kind string) Finder {
	return &kindFinder{kind: kind}
}

type predicateFinder struct {
	fn   func(*animation.Clock) bool
	desc string
}

func (f *predicateFinder) Evaluate(root *animation.Clock) []*animation.Clock {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches clocks satisfying fn.
func ByPredicate(fn func(*animation.Clock) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds clocks matching 'matching' that are descendants
// of clocks matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root *animation.Clock) []*animation.Clock {
	var results []*animation.Clock
	seen := make(map[*animation.Clock]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		// Search each child subtree; the ancestor itself never matches.
		for _, child := range ancestor.Children() {
			for _, match := range f.matching.Evaluate(child) {
				if !seen[match] {
					seen[match] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches clocks satisfying 'matching'
// that are descendants of clocks matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// collectMatches performs depth-first pre-order traversal, collecting
// clocks that satisfy the predicate.
func collectMatches(root *animation.Clock, predicate func(*animation.Clock) bool) []*animation.Clock {
	var results []*animation.Clock
	walkTree(root, func(c *animation.Clock) bool {
		if predicate(c) {
			results = append(results, c)
		}
		return true
	})
	return results
}

// walkTree performs a depth-first pre-order traversal of the clock tree.
// The visitor returns false to stop traversal of a subtree.
func walkTree(root *animation.Clock, visitor func(*animation.Clock) bool) {
	if root == nil || !visitor(root) {
		return
	}
	for _, child := range root.Children() {
		walkTree(child, visitor)
	}
}
