package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestResolve_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, "", cfg.ModulePath)
	assert.Equal(t, filepath.Base(dir), cfg.Name)
	assert.Equal(t, DefaultStep, cfg.Step)
	assert.Equal(t, DefaultMaxTime, cfg.MaxTime)
	assert.Equal(t, DefaultFrameRate, cfg.FrameRate)
	assert.Equal(t, 1.0, cfg.Speed)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestResolve_ModuleName(t *testing.T) {
	tests := []struct {
		module string
		want   string
	}{
		{"example.com/motion", "motion"},
		{"example.com/motion/v2", "motion"},
		{"gopkg.in/motion.v3", "motion"},
	}
	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "go.mod", "module "+tt.module+"\n\ngo 1.24\n")

			cfg, err := Resolve(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.module, cfg.ModulePath)
			assert.Equal(t, tt.want, cfg.Name)
		})
	}
}

func TestResolve_File(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, `
project:
  name: intro
simulate:
  step: 250ms
  maxTime: 10s
play:
  frameRate: 120
  speed: 2
log:
  level: debug
`)

	cfg, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "intro", cfg.Name)
	assert.Equal(t, 250*time.Millisecond, cfg.Step)
	assert.Equal(t, 10*time.Second, cfg.MaxTime)
	assert.Equal(t, 120, cfg.FrameRate)
	assert.Equal(t, 2.0, cfg.Speed)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestResolve_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileName, "simulate:\n  step: 250ms\nplay:\n  frameRate: 120\n")
	writeFile(t, dir, ".env", "TEMPO_STEP=50ms\nTEMPO_FRAME_RATE=30\nTEMPO_LOG_LEVEL=warn\n")
	t.Setenv("TEMPO_FRAME_RATE", "24")

	cfg, err := Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, cfg.Step, ".env overrides tempo.yaml")
	assert.Equal(t, 24, cfg.FrameRate, "process environment overrides .env")
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  string
	}{
		{"bad yaml", "simulate: [", ""},
		{"bad step", "simulate:\n  step: soon\n", ""},
		{"zero step", "simulate:\n  step: 0s\n", ""},
		{"negative max time", "simulate:\n  maxTime: -1s\n", ""},
		{"frame rate too high", "play:\n  frameRate: 5000\n", ""},
		{"negative speed", "play:\n  speed: -1\n", ""},
		{"bad level", "log:\n  level: chatty\n", ""},
		{"bad env frame rate", "", "TEMPO_FRAME_RATE=fast\n"},
		{"bad env speed", "", "TEMPO_SPEED=x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				writeFile(t, dir, FileName, tt.file)
			}
			if tt.env != "" {
				writeFile(t, dir, ".env", tt.env)
			}
			_, err := Resolve(dir)
			assert.Error(t, err)
		})
	}
}

func TestLoadOptional_Missing(t *testing.T) {
	cfg, err := LoadOptional(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, FileName, "project:\n  name: x\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	got, err := FindProjectRoot()
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotReal, err := filepath.EvalSymlinks(got)
	require.NoError(t, err)
	assert.Equal(t, want, gotReal)
}
