package storyboard

import (
	"testing"

	"github.com/go-drift/tempo/pkg/graphics"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      any
		want    graphics.Color
		wantErr bool
	}{
		{"#FF0000", graphics.ColorRed, false},
		{"#80FFFFFF", graphics.Color(0x80FFFFFF), false},
		{" 00ff00 ", graphics.ColorGreen, false},
		{4278190335, graphics.ColorBlue, false},
		{"#FFF", 0, true},
		{"blue", 0, true},
		{-1, 0, true},
		{[]any{1, 2}, 0, true},
	}
	for _, tt := range tests {
		got, err := parseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseColor(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseColor(%v) = %#x, want %#x", tt.in, uint32(got), uint32(tt.want))
		}
	}
}

func TestParseKeyTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "uniform"},
		{"Paced", "paced"},
		{"25%", "25%"},
		{"1.5s", "1.5s"},
		{" 100 % ", "100%"},
	}
	for _, tt := range tests {
		kt, err := parseKeyTime(tt.in)
		if err != nil {
			t.Errorf("parseKeyTime(%q) error: %v", tt.in, err)
			continue
		}
		if got := kt.String(); got != tt.want {
			t.Errorf("parseKeyTime(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	if _, err := parseKeyTime("x%"); err == nil {
		t.Error("expected error for a malformed percentage")
	}
}

func TestFormat(t *testing.T) {
	if got := formatFloat(1.0 / 3); got != "0.333333" {
		t.Errorf("formatFloat = %q", got)
	}
	if got := formatComponents(1, 2.5, -3); got != "(1, 2.5, -3)" {
		t.Errorf("formatComponents = %q", got)
	}
}
