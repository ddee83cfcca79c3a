// Package config loads ribbon configuration.
//
// Configuration is loaded from a single file specified by:
//   - the --config flag, or
//   - the RIBBON_CONFIG environment variable.
//
// With neither set, Default values are used. There is no automatic
// discovery. Files ending in .yaml or .yml are YAML; .json and .jsonc are
// JSON with comments and trailing commas allowed.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/olivier-w/ribbon/internal/ribbon"
	"github.com/olivier-w/ribbon/internal/segment"
	"github.com/olivier-w/ribbon/internal/settings"
	"github.com/olivier-w/ribbon/internal/tween"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "RIBBON_CONFIG"

// Config is the full ribbon configuration.
type Config struct {
	// Seed makes segment lengths reproducible.
	Seed int64 `yaml:"seed" json:"seed"`

	Viewport  ViewportConfig  `yaml:"viewport" json:"viewport"`
	Ribbon    RibbonConfig    `yaml:"ribbon" json:"ribbon"`
	Segment   SegmentConfig   `yaml:"segment" json:"segment"`
	Animation AnimationConfig `yaml:"animation" json:"animation"`
}

// ViewportConfig sizes the virtual screen the ribbon lives in.
type ViewportConfig struct {
	// Width and Height are in screen units, independent of terminal size.
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`

	// FPS is the render frame rate.
	FPS int `yaml:"fps" json:"fps"`
}

// RibbonConfig seeds the controller tunables.
type RibbonConfig struct {
	DrivePoint       float64 `yaml:"drive_point" json:"drive_point"`
	IdleSpeed        float64 `yaml:"idle_speed" json:"idle_speed"`
	PullStrength     float64 `yaml:"pull_strength" json:"pull_strength"`
	PullSpread       float64 `yaml:"pull_spread" json:"pull_spread"`
	VerticalPosition float64 `yaml:"vertical_position" json:"vertical_position"`
	PositionDamping  float64 `yaml:"position_damping" json:"position_damping"`
	CanDestruct      bool    `yaml:"can_destruct" json:"can_destruct"`

	// PrimaryColor and SecondaryColor are hex colours for the front and
	// back faces.
	PrimaryColor   string `yaml:"primary_color" json:"primary_color"`
	SecondaryColor string `yaml:"secondary_color" json:"secondary_color"`

	// Decay is "flat" or "spread".
	Decay string `yaml:"decay" json:"decay"`
}

// SegmentConfig shapes individual segments.
type SegmentConfig struct {
	Length       float64 `yaml:"length" json:"length"`
	LengthJitter float64 `yaml:"length_jitter" json:"length_jitter"`
	Width        float64 `yaml:"width" json:"width"`
	Amplitude    float64 `yaml:"amplitude" json:"amplitude"`
	PhaseStep    float64 `yaml:"phase_step" json:"phase_step"`
	PhaseSpeed   float64 `yaml:"phase_speed" json:"phase_speed"`
	TwistStep    float64 `yaml:"twist_step" json:"twist_step"`
	Frequency    float64 `yaml:"frequency" json:"frequency"`
	Damping      float64 `yaml:"damping" json:"damping"`
}

// AnimationConfig configures straighten transitions.
type AnimationConfig struct {
	DurationMS int    `yaml:"duration_ms" json:"duration_ms"`
	Ease       string `yaml:"ease" json:"ease"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := segment.DefaultParams()
	return &Config{
		Seed: 1,
		Viewport: ViewportConfig{
			Width:  1000,
			Height: 400,
			FPS:    30,
		},
		Ribbon: RibbonConfig{
			DrivePoint:       0.5,
			IdleSpeed:        0.2,
			PullStrength:     0.3,
			PullSpread:       0.1,
			VerticalPosition: 0.5,
			PositionDamping:  0.05,
			CanDestruct:      true,
			PrimaryColor:     "#ff8c00",
			SecondaryColor:   "#5f1fff",
			Decay:            "flat",
		},
		Segment: SegmentConfig{
			Length:       p.Length,
			LengthJitter: p.LengthJitter,
			Width:        p.Width,
			Amplitude:    p.Amplitude,
			PhaseStep:    p.PhaseStep,
			PhaseSpeed:   p.PhaseSpeed,
			TwistStep:    p.TwistStep,
			Frequency:    p.Frequency,
			Damping:      p.Damping,
		},
		Animation: AnimationConfig{
			DurationMS: 1200,
			Ease:       "easeInSine",
		},
	}
}

// Path returns the config file to load: flagValue if set, else the
// RIBBON_CONFIG environment variable. Empty means defaults only.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvVar)
}

// Load reads path over the defaults and validates the result. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (use .yaml, .yml, .json or .jsonc)", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidationError lists every invalid field found by Validate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Validate checks ranges and names. It returns a *ValidationError.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		add("viewport must be positive, got %gx%g", c.Viewport.Width, c.Viewport.Height)
	}
	if c.Viewport.FPS < 1 || c.Viewport.FPS > 240 {
		add("viewport.fps must be in 1..240, got %d", c.Viewport.FPS)
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"ribbon.drive_point", c.Ribbon.DrivePoint},
		{"ribbon.pull_strength", c.Ribbon.PullStrength},
		{"ribbon.vertical_position", c.Ribbon.VerticalPosition},
		{"ribbon.position_damping", c.Ribbon.PositionDamping},
		{"segment.length_jitter", c.Segment.LengthJitter},
	} {
		if f.value < 0 || f.value > 1 {
			add("%s must be in [0,1], got %g", f.name, f.value)
		}
	}
	if c.Ribbon.PullSpread < 0 {
		add("ribbon.pull_spread must not be negative, got %g", c.Ribbon.PullSpread)
	}
	if _, err := ribbon.ParseDecayMode(c.Ribbon.Decay); err != nil {
		add("ribbon.decay: %v", err)
	}
	if _, err := colorful.Hex(c.Ribbon.PrimaryColor); err != nil {
		add("ribbon.primary_color %q is not a hex colour", c.Ribbon.PrimaryColor)
	}
	if _, err := colorful.Hex(c.Ribbon.SecondaryColor); err != nil {
		add("ribbon.secondary_color %q is not a hex colour", c.Ribbon.SecondaryColor)
	}
	if c.Segment.Length <= 0 {
		add("segment.length must be positive, got %g", c.Segment.Length)
	}
	if c.Animation.DurationMS < 0 {
		add("animation.duration_ms must not be negative, got %d", c.Animation.DurationMS)
	}
	if _, ok := tween.Lookup(c.Animation.Ease); !ok {
		add("animation.ease %q is not one of %s", c.Animation.Ease, strings.Join(tween.Names(), ", "))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Dimensions returns the viewport size.
func (c *Config) Dimensions() settings.Dimensions {
	return settings.Dimensions{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

// SegmentParams builds segment parameters. The seed segment starts on the
// configured vertical position.
func (c *Config) SegmentParams() segment.Params {
	p := segment.DefaultParams()
	p.Origin = settings.Point{X: 0, Y: c.Ribbon.VerticalPosition * c.Viewport.Height}
	p.Length = c.Segment.Length
	p.LengthJitter = c.Segment.LengthJitter
	p.Width = c.Segment.Width
	p.Amplitude = c.Segment.Amplitude
	p.PhaseStep = c.Segment.PhaseStep
	p.PhaseSpeed = c.Segment.PhaseSpeed
	p.TwistStep = c.Segment.TwistStep
	p.FPS = c.Viewport.FPS
	p.Frequency = c.Segment.Frequency
	p.Damping = c.Segment.Damping
	return p
}

// RibbonOptions builds controller options. Call Validate first.
func (c *Config) RibbonOptions() (ribbon.Options, error) {
	opts := ribbon.DefaultOptions()
	primary, err := colorful.Hex(c.Ribbon.PrimaryColor)
	if err != nil {
		return opts, fmt.Errorf("primary colour: %w", err)
	}
	secondary, err := colorful.Hex(c.Ribbon.SecondaryColor)
	if err != nil {
		return opts, fmt.Errorf("secondary colour: %w", err)
	}
	decay, err := ribbon.ParseDecayMode(c.Ribbon.Decay)
	if err != nil {
		return opts, err
	}
	curve, ok := tween.Lookup(c.Animation.Ease)
	if !ok {
		return opts, fmt.Errorf("unknown ease %q", c.Animation.Ease)
	}

	opts.DrivePoint = c.Ribbon.DrivePoint
	opts.IdleSpeed = c.Ribbon.IdleSpeed
	opts.PullStrength = c.Ribbon.PullStrength
	opts.PullSpread = c.Ribbon.PullSpread
	opts.VerticalPosition = c.Ribbon.VerticalPosition
	opts.PositionDamping = c.Ribbon.PositionDamping
	opts.CanDestruct = c.Ribbon.CanDestruct
	opts.PrimaryColor = primary
	opts.SecondaryColor = secondary
	opts.Decay = decay
	opts.TransitionDuration = time.Duration(c.Animation.DurationMS) * time.Millisecond
	opts.TransitionEase = curve
	return opts, nil
}
