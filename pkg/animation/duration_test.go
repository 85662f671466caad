package animation

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	var zero Duration
	if !zero.IsAutomatic() || zero.HasTimeSpan() || zero.IsForever() {
		t.Error("zero Duration should be Automatic")
	}
	d := DurationOf(1500 * time.Millisecond)
	if !d.HasTimeSpan() || d.TimeSpan() != 1500*time.Millisecond {
		t.Errorf("DurationOf = %v", d)
	}
	if Forever.TimeSpan() != 0 {
		t.Error("Forever should hold no time span")
	}

	tests := []struct {
		d    Duration
		want string
	}{
		{Automatic, "Automatic"},
		{Forever, "Forever"},
		{d, "1.5s"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRepeatBehavior(t *testing.T) {
	tests := []struct {
		name     string
		rb       RepeatBehavior
		hasCount bool
		count    float64
		hasDur   bool
		forever  bool
		str      string
	}{
		{"zero", RepeatBehavior{}, true, 1, false, false, "1x"},
		{"count", RepeatCount(2.5), true, 2.5, false, false, "2.5x"},
		{"duration", RepeatFor(3 * time.Second), false, 0, true, false, "3s"},
		{"forever", RepeatForever, false, 0, false, true, "Forever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rb := tt.rb
			if rb.HasCount() != tt.hasCount || rb.Count() != tt.count {
				t.Errorf("count = (%v, %v), want (%v, %v)", rb.HasCount(), rb.Count(), tt.hasCount, tt.count)
			}
			if rb.HasDuration() != tt.hasDur || rb.IsForever() != tt.forever {
				t.Errorf("kind flags wrong for %v", rb)
			}
			if rb.String() != tt.str {
				t.Errorf("String() = %q, want %q", rb.String(), tt.str)
			}
		})
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{Stopped.String(), "stopped"},
		{Active.String(), "active"},
		{Filling.String(), "filling"},
		{ClockState(9).String(), "ClockState(9)"},
		{HoldEnd.String(), "HoldEnd"},
		{Stop.String(), "Stop"},
		{Completed.String(), "Completed"},
		{Event(42).String(), "Event(42)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
