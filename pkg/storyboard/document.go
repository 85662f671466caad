package storyboard

// Document is the serialized form of a storyboard. The same structure is
// read from YAML and JSON.
//
//	version: 1.0.0
//	name: intro
//	timeline:
//	  children:
//	    - name: fade
//	      duration: 500ms
//	      animation:
//	        type: float64
//	        frames:
//	          - {value: 0, keyTime: 0%}
//	          - {value: 1, keyTime: 100%}
type Document struct {
	// Version is the document schema version, a semantic version with
	// major version 1.
	Version  string       `yaml:"version" json:"version"`
	Name     string       `yaml:"name,omitempty" json:"name,omitempty"`
	Timeline TimelineSpec `yaml:"timeline" json:"timeline"`
}

// TimelineSpec describes one timeline. Empty fields take the timeline
// defaults: begin at 0s, Automatic duration, one iteration, hold at the
// end, speed 1.
type TimelineSpec struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	// Begin is a duration such as "250ms", or "never".
	Begin string `yaml:"begin,omitempty" json:"begin,omitempty"`
	// Duration is a duration, "automatic" or "forever".
	Duration string `yaml:"duration,omitempty" json:"duration,omitempty"`
	// Repeat is an iteration count such as "2.5x", a duration or "forever".
	Repeat       string  `yaml:"repeat,omitempty" json:"repeat,omitempty"`
	AutoReverse  bool    `yaml:"autoReverse,omitempty" json:"autoReverse,omitempty"`
	Acceleration float64 `yaml:"acceleration,omitempty" json:"acceleration,omitempty"`
	Deceleration float64 `yaml:"deceleration,omitempty" json:"deceleration,omitempty"`
	Speed        float64 `yaml:"speed,omitempty" json:"speed,omitempty"`
	// Fill is "holdEnd" or "stop".
	Fill      string `yaml:"fill,omitempty" json:"fill,omitempty"`
	FrameRate int    `yaml:"frameRate,omitempty" json:"frameRate,omitempty"`
	// Slip is "grow" or "slip".
	Slip string `yaml:"slip,omitempty" json:"slip,omitempty"`

	Children  []TimelineSpec `yaml:"children,omitempty" json:"children,omitempty"`
	Animation *AnimationSpec `yaml:"animation,omitempty" json:"animation,omitempty"`
}

// AnimationSpec describes a key-frame animation driving a leaf timeline.
type AnimationSpec struct {
	// Type is one of float64, color, offset, size, vec2 or vec3.
	Type       string `yaml:"type" json:"type"`
	Cumulative bool   `yaml:"cumulative,omitempty" json:"cumulative,omitempty"`
	Additive   bool   `yaml:"additive,omitempty" json:"additive,omitempty"`
	// From is the value before the first frame and the base of an
	// additive animation.
	From any `yaml:"from,omitempty" json:"from,omitempty"`
	// To is the value of an animation without frames.
	To     any         `yaml:"to,omitempty" json:"to,omitempty"`
	Frames []FrameSpec `yaml:"frames,omitempty" json:"frames,omitempty"`
}

// FrameSpec describes one key frame.
type FrameSpec struct {
	Value any `yaml:"value" json:"value"`
	// KeyTime is a percentage such as "25%", a duration, "uniform" or
	// "paced". Empty means uniform.
	KeyTime string `yaml:"keyTime,omitempty" json:"keyTime,omitempty"`
	// Interpolation is "linear", "discrete" or "spline".
	Interpolation string `yaml:"interpolation,omitempty" json:"interpolation,omitempty"`
	// Spline holds the x1, y1, x2, y2 control points of a spline frame.
	Spline []float64 `yaml:"spline,omitempty" json:"spline,omitempty"`
}
