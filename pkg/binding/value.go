package binding

import "slices"

// Target is the object side of one animated property. The store reads the
// base value, writes the computed animated value and then invalidates the
// property so dependents recompute.
type Target[T any] interface {
	// Owner describes the object the property belongs to.
	Owner() string
	// Name names the property.
	Name() string
	// BaseValue returns the value the property has without animations.
	BaseValue() T
	// ValidateValue rejects values the property cannot hold.
	ValidateValue(v T) error
	// IsAnimating reports whether an animated value is set.
	IsAnimating() bool
	SetAnimatedValue(v T)
	ClearAnimatedValue()
	InvalidateProperty()
}

var _ Target[float64] = (*Value[float64])(nil)

type valueListener[T any] struct {
	id int
	fn func(T)
}

// Value is an animatable property slot: a base value plus the animated value
// written by the bindings attached to it.
//
// Value is not safe for concurrent use. It is written on the goroutine that
// ticks the time manager.
type Value[T any] struct {
	owner    string
	name     string
	validate func(T) error

	base      T
	animated  T
	animating bool

	listeners []valueListener[T]
	nextID    int
}

// NewValue returns a property slot named name on owner holding base.
func NewValue[T any](owner, name string, base T) *Value[T] {
	return &Value[T]{owner: owner, name: name, base: base}
}

// WithValidator sets the function that rejects invalid values and returns v.
func (v *Value[T]) WithValidator(fn func(T) error) *Value[T] {
	v.validate = fn
	return v
}

// Owner returns the owner description given to NewValue.
func (v *Value[T]) Owner() string { return v.owner }

// Name returns the property name.
func (v *Value[T]) Name() string { return v.name }

// BaseValue returns the value without animations.
func (v *Value[T]) BaseValue() T { return v.base }

// SetBaseValue replaces the base value. Listeners run when no animation
// overrides it.
func (v *Value[T]) SetBaseValue(base T) {
	v.base = base
	if !v.animating {
		v.InvalidateProperty()
	}
}

// Get returns the animated value while animating, otherwise the base value.
func (v *Value[T]) Get() T {
	if v.animating {
		return v.animated
	}
	return v.base
}

// IsAnimating reports whether an animated value overrides the base value.
func (v *Value[T]) IsAnimating() bool { return v.animating }

// ValidateValue runs the validator, if any.
func (v *Value[T]) ValidateValue(x T) error {
	if v.validate == nil {
		return nil
	}
	return v.validate(x)
}

// SetAnimatedValue stores x as the animated value. Call InvalidateProperty
// to notify listeners.
func (v *Value[T]) SetAnimatedValue(x T) {
	v.animated = x
	v.animating = true
}

// ClearAnimatedValue reverts the property to its base value.
func (v *Value[T]) ClearAnimatedValue() {
	var zero T
	v.animated = zero
	v.animating = false
}

// InvalidateProperty notifies listeners of the current value.
func (v *Value[T]) InvalidateProperty() {
	cur := v.Get()
	for _, l := range slices.Clone(v.listeners) {
		l.fn(cur)
	}
}

// AddListener registers fn to run on every invalidation. Returns an
// unsubscribe function.
func (v *Value[T]) AddListener(fn func(T)) func() {
	id := v.nextID
	v.nextID++
	v.listeners = append(v.listeners, valueListener[T]{id: id, fn: fn})
	return func() {
		v.listeners = slices.DeleteFunc(v.listeners, func(l valueListener[T]) bool { return l.id == id })
	}
}
