package storyboard_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/tempo/pkg/animation"
	"github.com/go-drift/tempo/pkg/errors"
	"github.com/go-drift/tempo/pkg/storyboard"
	tempotest "github.com/go-drift/tempo/pkg/testing"
)

const ms = time.Millisecond

// sampleAt plays sb and returns every track's value at each time.
func sampleAt(t *testing.T, sb *storyboard.Storyboard, times ...time.Duration) map[time.Duration]map[string]string {
	t.Helper()
	tester := tempotest.NewClockTesterWithT(t)
	root, err := tester.Start(sb.Timeline)
	require.NoError(t, err)

	out := map[time.Duration]map[string]string{}
	for _, at := range times {
		require.NoError(t, tester.AdvanceTo(at))
		values := map[string]string{}
		for _, c := range root.Children() {
			if tr, ok := sb.TrackFor(c); ok {
				values[tr.Name()] = tr.Sample(c)
			}
		}
		out[at] = values
	}
	return out
}

func TestLoad(t *testing.T) {
	for _, file := range []string{"testdata/intro.yaml", "testdata/intro.json"} {
		t.Run(filepath.Ext(file), func(t *testing.T) {
			sb, err := storyboard.Load(file)
			require.NoError(t, err)

			assert.Equal(t, "intro", sb.Name)
			assert.Equal(t, "intro", sb.Timeline.Name)
			require.Len(t, sb.Timeline.Children, 3)
			assert.Equal(t, animation.Begin(500*ms), sb.Timeline.Children[1].BeginTime)
			assert.True(t, sb.Timeline.Children[2].AutoReverse)

			tracks := sb.Tracks()
			require.Len(t, tracks, 3)
			assert.Equal(t, []string{"fade", "tint", "slide"}, []string{tracks[0].Name(), tracks[1].Name(), tracks[2].Name()})
			assert.Equal(t, "color", tracks[1].ValueType())
			assert.Equal(t, "keyframes[graphics.Offset]", tracks[2].Timeline().Kind())
			assert.Equal(t, "(100, 50)", tracks[2].FrameValue(1))

			got := sampleAt(t, sb, 0, 500*ms, time.Second)
			assert.Equal(t, map[string]string{"fade": "0", "tint": "#FF000000", "slide": "(0, 0)"}, got[0], "a stopped track reports its origin")
			assert.Equal(t, "0.5", got[500*ms]["fade"])
			assert.Equal(t, "#FF000000", got[500*ms]["tint"])
			assert.Equal(t, map[string]string{"fade": "1", "tint": "#FF808080", "slide": "(100, 50)"}, got[time.Second])
		})
	}
}

func TestParseJSONPath(t *testing.T) {
	intro, err := os.ReadFile("testdata/intro.json")
	require.NoError(t, err)
	export := []byte(`{"project": "demo", "storyboards": {"intro": ` + string(intro) + `}}`)

	sb, err := storyboard.ParseJSONPath(export, "storyboards.intro")
	require.NoError(t, err)
	assert.Len(t, sb.Tracks(), 3)

	_, err = storyboard.ParseJSONPath(export, "storyboards.outro")
	assert.Equal(t, errors.KindConfig, errors.KindOf(err))
	_, err = storyboard.ParseJSONPath(export, "project")
	assert.Equal(t, errors.KindConfig, errors.KindOf(err))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.ErrorKind
	}{
		{"missing version", `timeline: {duration: 1s}`, errors.KindConfig},
		{"future version", "version: 2.0.0\ntimeline: {duration: 1s}", errors.KindConfig},
		{"unknown field", "version: 1.0.0\ntimeline: {length: 1s}", errors.KindConfig},
		{"bad duration", "version: 1.0.0\ntimeline: {duration: soon}", errors.KindConfig},
		{"bad repeat", "version: 1.0.0\ntimeline: {repeat: twice}", errors.KindConfig},
		{"bad fill", "version: 1.0.0\ntimeline: {fill: freeze}", errors.KindConfig},
		{"unknown value type", "version: 1.0.0\ntimeline: {animation: {type: quaternion}}", errors.KindConfig},
		{"bad color", "version: 1.0.0\ntimeline: {animation: {type: color, frames: [{value: 'red'}]}}", errors.KindConfig},
		{"wrong arity", "version: 1.0.0\ntimeline: {animation: {type: vec3, frames: [{value: [1, 2]}]}}", errors.KindConfig},
		{"spline arity", "version: 1.0.0\ntimeline: {animation: {type: float64, frames: [{value: 1, interpolation: spline, spline: [0, 1]}]}}", errors.KindConfig},
		{"bad key time", "version: 1.0.0\ntimeline: {animation: {type: float64, frames: [{value: 1, keyTime: later}]}}", errors.KindConfig},
		{"missing frame value", "version: 1.0.0\ntimeline: {animation: {type: float64, frames: [{keyTime: 50%}]}}", errors.KindConfig},
		{"children and animation", "version: 1.0.0\ntimeline: {children: [{}], animation: {type: float64}}", errors.KindConfig},
		{"out of range ratio", "version: 1.0.0\ntimeline: {acceleration: 2}", errors.KindRange},
		{"out of range key time", "version: 1.0.0\ntimeline: {animation: {type: float64, frames: [{value: 1, keyTime: 150%}]}}", errors.KindRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := storyboard.Parse([]byte(tt.doc), storyboard.YAML)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err), "error: %v", err)
		})
	}
}

func TestParse_Defaults(t *testing.T) {
	sb, err := storyboard.Parse([]byte(`{"version": "1", "timeline": {"repeat": "2.5x", "begin": "never", "slip": "slip"}}`), storyboard.JSON)
	require.NoError(t, err)
	tl := sb.Timeline
	assert.Nil(t, tl.BeginTime)
	assert.True(t, tl.Duration.IsAutomatic())
	assert.Equal(t, animation.RepeatCount(2.5), tl.RepeatBehavior)
	assert.Equal(t, animation.HoldEnd, tl.FillBehavior)
	assert.Equal(t, animation.Slip, tl.SlipBehavior)
	assert.Empty(t, sb.Tracks())
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    storyboard.Format
		wantErr bool
	}{
		{"a.yaml", storyboard.YAML, false},
		{"dir/b.YML", storyboard.YAML, false},
		{"c.json", storyboard.JSON, false},
		{"d.toml", 0, true},
		{"noext", 0, true},
	}
	for _, tt := range tests {
		got, err := storyboard.FormatOf(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestCheckVersion(t *testing.T) {
	for _, v := range []string{"1", "1.2", "1.0.0", "v1.4.2", "1.0.0-beta.1"} {
		assert.NoError(t, storyboard.CheckVersion(v), v)
	}
	for _, v := range []string{"", "2.0.0", "v0.9.0", "one", "1.0.0.0"} {
		assert.Error(t, storyboard.CheckVersion(v), v)
	}
}

func TestEncode(t *testing.T) {
	doc, err := storyboard.Decode(mustRead(t, "testdata/intro.yaml"), storyboard.YAML)
	require.NoError(t, err)

	for _, format := range []storyboard.Format{storyboard.YAML, storyboard.JSON} {
		data, err := storyboard.Encode(doc, format)
		require.NoError(t, err)
		sb, err := storyboard.Parse(data, format)
		require.NoError(t, err, "%s:\n%s", format, data)
		got := sampleAt(t, sb, time.Second)
		assert.Equal(t, "#FF808080", got[time.Second]["tint"], format.String())
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
