package errors

import (
	"log/slog"
)

// LogHandler is an ErrorHandler that logs through log/slog.
type LogHandler struct {
	// Logger receives the records. Nil means slog.Default().
	Logger *slog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs a TimingError.
func (h *LogHandler) HandleError(err *TimingError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "err", err.Err}
	if h.Verbose {
		if err.Clock != "" {
			attrs = append(attrs, "clock", err.Clock)
		}
		if err.Timeline != "" {
			attrs = append(attrs, "timeline", err.Timeline)
		}
	}
	h.logger().Error("tempo error", attrs...)
}

// HandleInvalidValue logs an InvalidValueError.
func (h *LogHandler) HandleInvalidValue(err *InvalidValueError) {
	if err == nil {
		return
	}
	h.logger().Warn("invalid animated value",
		"property", err.Property,
		"target", err.Target,
		"value", err.Value,
		"err", err.Err,
	)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"value", err.Value}
	if err.Op != "" {
		attrs = append(attrs, "op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("tempo panic", attrs...)
}
