package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"
)

// FileName is the optional project configuration file.
const FileName = "tempo.yaml"

// Defaults applied by Resolve.
const (
	DefaultStep      = 100 * time.Millisecond
	DefaultFrameRate = 60
	DefaultMaxTime   = time.Minute
)

// Config represents the optional tempo.yaml configuration.
type Config struct {
	Project  ProjectConfig  `yaml:"project"`
	Simulate SimulateConfig `yaml:"simulate"`
	Play     PlayConfig     `yaml:"play"`
	Log      LogConfig      `yaml:"log"`
}

// ProjectConfig names the project.
type ProjectConfig struct {
	Name string `yaml:"name,omitempty"`
}

// SimulateConfig controls fixed-step simulation.
type SimulateConfig struct {
	Step    string `yaml:"step,omitempty"`
	MaxTime string `yaml:"maxTime,omitempty"`
}

// PlayConfig controls real-time playback.
type PlayConfig struct {
	FrameRate int     `yaml:"frameRate,omitempty"`
	Speed     float64 `yaml:"speed,omitempty"`
}

// LogConfig selects the log level.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Resolved contains resolved configuration values.
type Resolved struct {
	Root       string
	ModulePath string
	Name       string
	Step       time.Duration
	MaxTime    time.Duration
	FrameRate  int
	Speed      float64
	LogLevel   slog.Level
}

// LoadOptional reads tempo.yaml if present.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads tempo.yaml (if present), applies TEMPO_* overrides from a
// .env file in dir and then from the process environment, and resolves
// defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}

	env, err := loadEnv(dir)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	modulePath, err := modulePath(dir)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(cfg.Project.Name)
	if name == "" {
		name = defaultName(modulePath, dir)
	}

	step, err := parsePositive("simulate.step", cfg.Simulate.Step, DefaultStep)
	if err != nil {
		return nil, err
	}
	maxTime, err := parsePositive("simulate.maxTime", cfg.Simulate.MaxTime, DefaultMaxTime)
	if err != nil {
		return nil, err
	}

	frameRate := cfg.Play.FrameRate
	switch {
	case frameRate == 0:
		frameRate = DefaultFrameRate
	case frameRate < 0 || frameRate > 1000:
		return nil, fmt.Errorf("play.frameRate must be between 1 and 1000 (got %d)", frameRate)
	}

	speed := cfg.Play.Speed
	switch {
	case speed == 0:
		speed = 1
	case speed < 0:
		return nil, fmt.Errorf("play.speed must be positive (got %v)", speed)
	}

	var level slog.Level
	if s := strings.TrimSpace(cfg.Log.Level); s != "" {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			return nil, fmt.Errorf("invalid log.level %q: %w", s, err)
		}
	}

	return &Resolved{
		Root:       dir,
		ModulePath: modulePath,
		Name:       name,
		Step:       step,
		MaxTime:    maxTime,
		FrameRate:  frameRate,
		Speed:      speed,
		LogLevel:   level,
	}, nil
}

// FindProjectRoot walks up from the current directory to the nearest
// directory holding tempo.yaml or go.mod. Outside any project it returns
// the current directory.
func FindProjectRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := wd; ; {
		for _, marker := range []string{FileName, "go.mod"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return wd, nil
		}
		dir = parent
	}
}

// loadEnv merges dir/.env with the process environment. Process variables
// win.
func loadEnv(dir string) (map[string]string, error) {
	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
		env = map[string]string{}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "TEMPO_") {
			env[k] = v
		}
	}
	return env, nil
}

func (c *Config) applyEnv(env map[string]string) error {
	if v, ok := env["TEMPO_NAME"]; ok {
		c.Project.Name = v
	}
	if v, ok := env["TEMPO_STEP"]; ok {
		c.Simulate.Step = v
	}
	if v, ok := env["TEMPO_MAX_TIME"]; ok {
		c.Simulate.MaxTime = v
	}
	if v, ok := env["TEMPO_LOG_LEVEL"]; ok {
		c.Log.Level = v
	}
	if v, ok := env["TEMPO_FRAME_RATE"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid TEMPO_FRAME_RATE %q: %w", v, err)
		}
		c.Play.FrameRate = n
	}
	if v, ok := env["TEMPO_SPEED"]; ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("invalid TEMPO_SPEED %q: %w", v, err)
		}
		c.Play.Speed = f
	}
	return nil
}

// modulePath returns the module path of dir/go.mod, or "" when there is no
// go.mod.
func modulePath(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read go.mod: %w", err)
	}
	return modfile.ModulePath(data), nil
}

func defaultName(modulePath, dir string) string {
	base := filepath.Base(dir)
	if modName, _, ok := module.SplitPathVersion(modulePath); ok && modName != "" {
		parts := strings.Split(modName, "/")
		base = parts[len(parts)-1]
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "tempo"
	}
	return base
}

func parsePositive(key, s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive (got %s)", key, s)
	}
	return d, nil
}
