// Package errors provides structured error handling for the tempo timing engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindUsage indicates a contract violation by the caller, such as
	// controlling a non-root clock or passing a nil timeline.
	KindUsage
	// KindRange indicates a timeline property outside its valid range.
	KindRange
	// KindUnbounded indicates an operation that needs a finite effective
	// duration was applied to a clock without one.
	KindUnbounded
	// KindInvalidValue indicates an animation produced a value the target
	// property rejects.
	KindInvalidValue
	// KindHandler indicates an event handler failed during a tick.
	KindHandler
	// KindConfig indicates a malformed storyboard or configuration document.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindRange:
		return "range"
	case KindUnbounded:
		return "unbounded"
	case KindInvalidValue:
		return "invalid-value"
	case KindHandler:
		return "handler"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel errors wrapped by TimingError. Match them with errors.Is.
var (
	ErrNotRoot           = errors.New("clock is not controllable: only root clocks expose a controller")
	ErrDetached          = errors.New("clock is not attached to a time manager")
	ErrUnboundedDuration = errors.New("effective duration is unbounded")
	ErrNilTimeline       = errors.New("timeline is nil")
	ErrNilTimeManager    = errors.New("time manager is nil")
	ErrInvalidSpeed      = errors.New("speed ratio must be finite and positive")
	ErrInvalidSeek       = errors.New("seek offset must not be negative")
	ErrUnknownOrigin     = errors.New("unknown seek origin")
	ErrReentrantTick     = errors.New("tick called while a tick is in progress")
)

// TimingError represents a structured error raised by the clock engine.
type TimingError struct {
	// Op is the operation that failed (e.g., "animation.Controller.Seek").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Clock names the clock involved, if any.
	Clock string
	// Timeline names the timeline involved, if any.
	Timeline string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *TimingError) Error() string {
	if e.Clock != "" {
		return fmt.Sprintf("%s [%s] clock=%s: %v", e.Op, e.Kind, e.Clock, e.Err)
	}
	if e.Timeline != "" {
		return fmt.Sprintf("%s [%s] timeline=%s: %v", e.Op, e.Kind, e.Timeline, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *TimingError) Unwrap() error {
	return e.Err
}

// New builds a TimingError for op and kind wrapping err.
func New(op string, kind ErrorKind, err error) *TimingError {
	return &TimingError{Op: op, Kind: kind, Err: err}
}

// Rangef builds a KindRange TimingError for the named timeline.
func Rangef(op, timeline, format string, args ...any) *TimingError {
	return &TimingError{
		Op:       op,
		Kind:     KindRange,
		Timeline: timeline,
		Err:      fmt.Errorf(format, args...),
	}
}

// Configf builds a KindConfig TimingError for a malformed document. where
// locates the problem inside the document.
func Configf(op, where, format string, args ...any) *TimingError {
	return &TimingError{
		Op:       op,
		Kind:     KindConfig,
		Timeline: where,
		Err:      fmt.Errorf(format, args...),
	}
}

// KindOf reports the ErrorKind of the first TimingError in err's chain.
func KindOf(err error) ErrorKind {
	var te *TimingError
	if errors.As(err, &te) {
		return te.Kind
	}
	var ae *AnimationError
	if errors.As(err, &ae) {
		return KindHandler
	}
	return KindUnknown
}

// AnimationError wraps a failure raised while a clock's handlers or a
// property binding ran during a tick. It records what was animating so the
// failure can be traced back to its timeline.
type AnimationError struct {
	// Clock names the clock whose handler failed.
	Clock string
	// Timeline is the timeline type, e.g. "parallel" or "keyframes[float64]".
	Timeline string
	// Property names the animated property, if the failure came from a binding.
	Property string
	// Target describes the animated object, if known.
	Target string
	// Event names the event being raised, if the failure came from a handler.
	Event string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the failure.
	StackTrace string
	// Timestamp is when the failure occurred.
	Timestamp time.Time
}

func (e *AnimationError) Error() string {
	subject := e.Clock
	if e.Property != "" {
		subject = fmt.Sprintf("%s (property %s on %s)", e.Clock, e.Property, e.Target)
	}
	where := ""
	if e.Event != "" {
		where = " during " + e.Event
	}
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s clock %s%s: %v", e.Timeline, subject, where, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s clock %s%s: %v", e.Timeline, subject, where, e.Err)
	}
	return fmt.Sprintf("unknown error in %s clock %s%s", e.Timeline, subject, where)
}

func (e *AnimationError) Unwrap() error {
	return e.Err
}

// InvalidValueError reports an animated value the target property rejected.
type InvalidValueError struct {
	// Property names the animated property.
	Property string
	// Target describes the animated object.
	Target string
	// Value is the rejected value.
	Value any
	// Err is the validation failure.
	Err error
	// Timestamp is when the value was first rejected.
	Timestamp time.Time
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid animated value %v for %s on %s: %v", e.Value, e.Property, e.Target, e.Err)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "animation.Driver.Run").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives diagnostics reported by the timing engine.
type ErrorHandler interface {
	// HandleError is called when a recoverable error occurs.
	HandleError(err *TimingError)
	// HandleInvalidValue is called the first time an animated property
	// produces a value its validator rejects.
	HandleInvalidValue(err *InvalidValueError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
