// Package storyboard loads declarative timeline documents.
//
// A storyboard is a timeline tree whose leaves are driven by key-frame
// animations. Documents are YAML or JSON; the format follows the file
// extension:
//
//	sb, err := storyboard.Load("intro.yaml")
//	root, err := sb.Timeline.CreateClock(tm)
//
// Every animated leaf becomes a [Track] that samples its value from the
// leaf's clock.
package storyboard

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/tempo/pkg/animation"
	"github.com/go-drift/tempo/pkg/errors"
	"github.com/go-drift/tempo/pkg/keyframes"
)

// Format is a document encoding.
type Format int

const (
	// YAML documents use the .yaml or .yml extension.
	YAML Format = iota
	// JSON documents use the .json extension.
	JSON
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return 0, errors.Configf("storyboard.FormatOf", path, "unsupported extension %q: want .yaml, .yml or .json", filepath.Ext(path))
	}
}

// Storyboard is a loaded document: a timeline tree ready for CreateClock and
// the tracks of its animated leaves.
type Storyboard struct {
	Name     string
	Version  string
	Timeline *animation.Timeline

	tracks    []Track
	byContent map[animation.Content]Track
}

// Tracks returns the animated leaves in document order.
func (s *Storyboard) Tracks() []Track {
	return s.tracks
}

// TrackFor returns the track driven by clock, if the clock belongs to an
// animated leaf of this storyboard.
func (s *Storyboard) TrackFor(clock *animation.Clock) (Track, bool) {
	if clock == nil || clock.Content() == nil {
		return nil, false
	}
	t, ok := s.byContent[clock.Content()]
	return t, ok
}

// Track is the key-frame animation of one leaf timeline.
type Track interface {
	// Name is the leaf's timeline name, or its position in the document
	// when unnamed.
	Name() string
	// ValueType is the document type name, such as "color".
	ValueType() string
	// Timeline returns the leaf timeline.
	Timeline() *animation.Timeline
	// Duration is the duration key times resolve against when the clock
	// does not provide one.
	Duration() time.Duration
	// Sample formats the animated value for clock.
	Sample(clock *animation.Clock) string
	// Resolve returns the resolved key-frame offsets for duration d.
	Resolve(d time.Duration) []keyframes.ResolvedKeyFrame
	// FrameValue formats the value of the frame at declaration index i.
	FrameValue(i int) string
}

type track[T any] struct {
	name     string
	typeName string
	timeline *animation.Timeline
	anim     *keyframes.Animation[T]
	from, to T
	format   func(T) string
}

func (t *track[T]) Name() string                    { return t.name }
func (t *track[T]) ValueType() string               { return t.typeName }
func (t *track[T]) Timeline() *animation.Timeline   { return t.timeline }
func (t *track[T]) FrameValue(i int) string         { return t.format(t.anim.Frame(i).Value) }
func (t *track[T]) Resolve(d time.Duration) []keyframes.ResolvedKeyFrame {
	return t.anim.Resolve(d)
}

func (t *track[T]) Duration() time.Duration {
	if t.timeline.Duration.HasTimeSpan() {
		return t.timeline.Duration.TimeSpan()
	}
	return t.anim.NaturalDuration(nil).TimeSpan()
}

func (t *track[T]) Sample(clock *animation.Clock) string {
	return t.format(t.anim.GetCurrentValue(t.from, t.to, clock))
}

// Load reads a storyboard file, choosing the decoder by extension.
func Load(path string) (*Storyboard, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read storyboard: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes and builds a storyboard document.
func Parse(data []byte, format Format) (*Storyboard, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// ParseJSONPath builds the storyboard found at a GJSON path inside a larger
// JSON document, such as an export holding several storyboards.
func ParseJSONPath(data []byte, path string) (*Storyboard, error) {
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return nil, errors.Configf("storyboard.ParseJSONPath", path, "no value at path")
	}
	if !res.IsObject() {
		return nil, errors.Configf("storyboard.ParseJSONPath", path, "value at path is %s, not an object", res.Type)
	}
	return Parse([]byte(res.Raw), JSON)
}

// Decode reads a document without building it. Unknown fields are
// rejected.
func Decode(data []byte, format Format) (*Document, error) {
	const op = "storyboard.Decode"
	var doc Document
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Configf(op, "", "invalid YAML: %w", err)
		}
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Configf(op, "", "invalid JSON: %w", err)
		}
	default:
		return nil, errors.Configf(op, "", "unknown format %v", format)
	}
	return &doc, nil
}

// Encode writes a document in the given format.
func Encode(doc *Document, format Format) ([]byte, error) {
	switch format {
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case JSON:
		return json.MarshalIndent(doc, "", "  ")
	default:
		return nil, errors.Configf("storyboard.Encode", "", "unknown format %v", format)
	}
}

// CheckVersion accepts semantic versions with major version 1. The leading
// "v" is optional.
func CheckVersion(v string) error {
	const op = "storyboard.CheckVersion"
	if v == "" {
		return errors.Configf(op, "version", "missing document version")
	}
	sv := v
	if !strings.HasPrefix(sv, "v") {
		sv = "v" + sv
	}
	if !semver.IsValid(sv) {
		return errors.Configf(op, "version", "%q is not a semantic version", v)
	}
	if semver.Major(sv) != "v1" {
		return errors.Configf(op, "version", "unsupported document version %s: want v1", semver.Canonical(sv))
	}
	return nil
}
