// Package binding connects animation clocks to animatable property values.
//
// A [Store] is the animation storage of a set of objects: for every animated
// property it keeps the active clocks, a snapshot of the value the first
// animation starts from and the handoff policy, and it recomputes the
// property once per tick that changed any clock.
//
//	store := binding.NewStore(tm)
//	opacity := binding.NewValue("card", "opacity", 1.0)
//	binding.Bind(store, opacity, fade, clock, binding.SnapshotAndReplace)
//
// The store holds targets weakly: a collected target drops its bindings.
package binding

import (
	"fmt"
	"log/slog"
	"slices"
	"time"
	"weak"

	"github.com/go-drift/tempo/pkg/animation"
	"github.com/go-drift/tempo/pkg/errors"
)

// HandoffBehavior selects how a new animation interacts with the ones
// already running on a property.
type HandoffBehavior int

const (
	// SnapshotAndReplace stops the running animations; the new one starts
	// from the property's current animated value.
	SnapshotAndReplace HandoffBehavior = iota
	// Compose appends the new animation: it starts from the output of the
	// animations already running.
	Compose
)

func (h HandoffBehavior) String() string {
	switch h {
	case SnapshotAndReplace:
		return "SnapshotAndReplace"
	case Compose:
		return "Compose"
	default:
		return fmt.Sprintf("HandoffBehavior(%d)", int(h))
	}
}

// Source computes a property value from a clock. *keyframes.Animation[T]
// implements it.
type Source[T any] interface {
	GetCurrentValue(origin, destination T, clock *animation.Clock) T
}

// layer is the type-erased per-property record.
type layer interface {
	// apply recomputes the property. It returns false once the layer has
	// nothing left to drive.
	apply(s *Store) (bool, error)
}

// Store keeps the bindings of animated properties and updates them after
// every tick that changed a clock.
type Store struct {
	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger

	manager    *animation.TimeManager
	layers     []layer
	unregister func()
}

// NewStore returns a store updated by tm's resource-update hook.
func NewStore(tm *animation.TimeManager) *Store {
	s := &Store{manager: tm}
	s.unregister = tm.RegisterForResourceUpdate(s.Apply)
	return s
}

func (s *Store) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Apply recomputes every animated property now. A failing property does
// not stop the others; the first failure is returned as an
// *errors.AnimationError naming the property, its owner and the clock.
func (s *Store) Apply() error {
	var first error
	s.layers = slices.DeleteFunc(s.layers, func(l layer) bool {
		alive, err := l.apply(s)
		if err != nil && first == nil {
			first = err
		}
		return !alive
	})
	return first
}

// Len returns the number of properties with bindings.
func (s *Store) Len() int {
	return len(s.layers)
}

// Close detaches the store from its manager. Properties keep their last
// animated values.
func (s *Store) Close() {
	if s.unregister != nil {
		s.unregister()
		s.unregister = nil
	}
}

// Binding is one clock driving one property.
type Binding[T any] struct {
	layer   *propertyLayer[T]
	clock   *animation.Clock
	source  Source[T]
	removed bool
	unsub   func()
}

// Clock returns the clock driving the binding.
func (b *Binding[T]) Clock() *animation.Clock {
	return b.clock
}

// IsRemoved reports whether the binding no longer drives its property.
func (b *Binding[T]) IsRemoved() bool {
	return b.removed
}

// Remove detaches the binding and recomputes its property immediately.
func (b *Binding[T]) Remove() error {
	if b.removed {
		return nil
	}
	b.detach()
	s := b.layer.store
	alive, err := b.layer.apply(s)
	if !alive {
		s.drop(b.layer)
	}
	return err
}

func (b *Binding[T]) detach() {
	b.removed = true
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
	}
}

func (s *Store) drop(l layer) {
	s.layers = slices.DeleteFunc(s.layers, func(x layer) bool { return x == l })
}

// Bind drives target with source evaluated against clock. The property is
// updated on the next tick that changes a clock, or by Apply.
func Bind[T any](s *Store, target *Value[T], source Source[T], clock *animation.Clock, handoff HandoffBehavior) *Binding[T] {
	l := layerFor(s, target)
	if handoff == SnapshotAndReplace {
		for _, old := range l.bindings {
			old.detach()
		}
		l.bindings = l.bindings[:0]
		l.hasSnapshot = target.IsAnimating()
		if l.hasSnapshot {
			l.snapshot = target.Get()
		}
	}
	b := &Binding[T]{layer: l, clock: clock, source: source}
	b.unsub = clock.AddListener(animation.RemoveRequested, func(*animation.Clock) {
		b.detach()
	})
	l.bindings = append(l.bindings, b)
	s.logger().Debug("property bound",
		"owner", target.Owner(), "property", target.Name(), "clock", clock.Name(), "handoff", handoff)
	return b
}

func layerFor[T any](s *Store, target *Value[T]) *propertyLayer[T] {
	ptr := weak.Make(target)
	for _, l := range s.layers {
		if pl, ok := l.(*propertyLayer[T]); ok && pl.target == ptr {
			return pl
		}
	}
	pl := &propertyLayer[T]{store: s, target: ptr, owner: target.Owner(), name: target.Name()}
	s.layers = append(s.layers, pl)
	return pl
}

// propertyLayer holds the bindings of one property. The target is held
// weakly; the layer dies with it.
type propertyLayer[T any] struct {
	store  *Store
	target weak.Pointer[Value[T]]
	owner  string
	name   string

	bindings    []*Binding[T]
	snapshot    T
	hasSnapshot bool

	// reported suppresses repeated reports of a persistently invalid value.
	reported bool
}

func (l *propertyLayer[T]) apply(s *Store) (alive bool, err error) {
	v := l.target.Value()
	if v == nil {
		for _, b := range l.bindings {
			b.detach()
		}
		s.logger().Debug("binding target collected", "owner", l.owner, "property", l.name)
		return false, nil
	}
	var t Target[T] = v

	// current is the binding whose output is being computed or written.
	var current *Binding[T]
	defer func() {
		if r := recover(); r != nil {
			ae := &errors.AnimationError{
				Property:   l.name,
				Target:     l.owner,
				Event:      "ResourceUpdate",
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
			if current != nil {
				ae.Clock = current.clock.Name()
				ae.Timeline = current.clock.Timeline().Kind()
			}
			s.logger().Error("property update failed",
				"owner", l.owner, "property", l.name, "clock", ae.Clock, "panic", r)
			alive, err = true, ae
		}
	}()

	l.bindings = slices.DeleteFunc(l.bindings, func(b *Binding[T]) bool { return b.removed })
	if len(l.bindings) == 0 {
		if t.IsAnimating() {
			t.ClearAnimatedValue()
			t.InvalidateProperty()
		}
		return false, nil
	}

	base := t.BaseValue()
	value := base
	if l.hasSnapshot {
		value = l.snapshot
	}
	for _, b := range l.bindings {
		if b.clock.CurrentState() == animation.Stopped {
			continue
		}
		current = b
		value = b.source.GetCurrentValue(value, base, b.clock)
	}
	if current == nil {
		if t.IsAnimating() {
			t.ClearAnimatedValue()
			t.InvalidateProperty()
		}
		return true, nil
	}

	if err := t.ValidateValue(value); err != nil {
		if !l.reported {
			l.reported = true
			errors.ReportInvalidValue(&errors.InvalidValueError{
				Property: t.Name(),
				Target:   t.Owner(),
				Value:    value,
				Err:      err,
			})
		}
		return true, nil
	}
	l.reported = false
	t.SetAnimatedValue(value)
	t.InvalidateProperty()
	return true, nil
}
