package animation

import "time"

// TimeSource provides wall-clock time to a TimeManager. The default
// implementation uses system time. Tests inject a fake source to control
// timing deterministically.
type TimeSource interface {
	Now() time.Time
}

// systemTime uses system time.
type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// defaultSource is the source used by managers created without one.
var defaultSource TimeSource = systemTime{}

// SetDefaultTimeSource replaces the time source used by managers created
// with a nil source. Returns the previous source so callers can restore it
// during cleanup.
func SetDefaultTimeSource(s TimeSource) TimeSource {
	prev := defaultSource
	if s == nil {
		s = systemTime{}
	}
	defaultSource = s
	return prev
}
