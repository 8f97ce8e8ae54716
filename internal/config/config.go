package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"vidcompose/internal/assets"
	"vidcompose/internal/timeline"
	"vidcompose/internal/validate"
)

// Config captures the tool settings for a project.
type Config struct {
	Version    int              `yaml:"version"`
	Canvas     CanvasConfig     `yaml:"canvas"`
	Validation ValidationConfig `yaml:"validation"`
	Assets     AssetsConfig     `yaml:"assets"`
	Timeline   TimelineConfig   `yaml:"timeline"`
}

// CanvasConfig is the output frame used when a document has no output
// section.
type CanvasConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    float64 `yaml:"fps"`
}

// ValidationConfig tunes template validation.
type ValidationConfig struct {
	RequiredSections []string `yaml:"required_sections"`
	VariablesKey     string   `yaml:"variables_key"`
	UnusedSeverity   string   `yaml:"unused_severity"`
}

// AssetsConfig controls how asset references are looked up.
type AssetsConfig struct {
	// Root is the directory asset paths are relative to. Relative roots are
	// taken from the project root.
	Root             string   `yaml:"root"`
	FFprobe          string   `yaml:"ffprobe"`
	Probe            *bool    `yaml:"probe,omitempty"`
	LookupTimeoutSec float64  `yaml:"lookup_timeout_s"`
	Concurrency      int      `yaml:"concurrency"`
	AudioExtensions  []string `yaml:"audio_extensions"`
}

// TimelineConfig holds compiler fallbacks.
type TimelineConfig struct {
	FallbackDurationSec float64 `yaml:"fallback_duration_s"`
	FallbackColor       string  `yaml:"fallback_color"`
}

// ProbeEnabled reports whether durations not declared in the asset table
// are read with ffprobe.
func (a AssetsConfig) ProbeEnabled() bool {
	if a.Probe == nil {
		return true
	}
	return *a.Probe
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Canvas: CanvasConfig{
			Width:  timeline.DefaultWidth,
			Height: timeline.DefaultHeight,
			FPS:    timeline.DefaultFPS,
		},
		Validation: ValidationConfig{
			RequiredSections: append([]string(nil), validate.DefaultRequiredSections...),
			VariablesKey:     validate.SectionVariables,
			UnusedSeverity:   string(validate.SeverityWarning),
		},
		Assets: AssetsConfig{
			Root:             ".",
			FFprobe:          "ffprobe",
			Probe:            boolPtr(true),
			LookupTimeoutSec: 10,
			Concurrency:      4,
			AudioExtensions:  append([]string(nil), assets.DefaultAudioExtensions...),
		},
		Timeline: TimelineConfig{
			FallbackDurationSec: timeline.DefaultFallbackDuration,
			FallbackColor:       timeline.DefaultFallbackColor,
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills fields the YAML left empty.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Canvas.Width == 0 {
		c.Canvas.Width = defaults.Canvas.Width
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = defaults.Canvas.Height
	}
	if c.Canvas.FPS == 0 {
		c.Canvas.FPS = defaults.Canvas.FPS
	}
	if c.Validation.RequiredSections == nil {
		c.Validation.RequiredSections = defaults.Validation.RequiredSections
	}
	if c.Validation.VariablesKey == "" {
		c.Validation.VariablesKey = defaults.Validation.VariablesKey
	}
	if c.Validation.UnusedSeverity == "" {
		c.Validation.UnusedSeverity = defaults.Validation.UnusedSeverity
	}
	if c.Assets.Root == "" {
		c.Assets.Root = defaults.Assets.Root
	}
	if c.Assets.FFprobe == "" {
		c.Assets.FFprobe = defaults.Assets.FFprobe
	}
	if c.Assets.Probe == nil {
		c.Assets.Probe = boolPtr(true)
	}
	if c.Assets.LookupTimeoutSec == 0 {
		c.Assets.LookupTimeoutSec = defaults.Assets.LookupTimeoutSec
	}
	if c.Assets.Concurrency == 0 {
		c.Assets.Concurrency = defaults.Assets.Concurrency
	}
	if len(c.Assets.AudioExtensions) == 0 {
		c.Assets.AudioExtensions = defaults.Assets.AudioExtensions
	}
	if c.Timeline.FallbackDurationSec == 0 {
		c.Timeline.FallbackDurationSec = defaults.Timeline.FallbackDurationSec
	}
	if c.Timeline.FallbackColor == "" {
		c.Timeline.FallbackColor = defaults.Timeline.FallbackColor
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// ValidationOptions converts the validation section.
func (c Config) ValidationOptions() validate.Options {
	return validate.Options{
		RequiredSections: append([]string{}, c.Validation.RequiredSections...),
		VariablesKey:     c.Validation.VariablesKey,
		UnusedSeverity:   validate.Severity(c.Validation.UnusedSeverity),
	}
}

// CheckOptions converts the lookup limits.
func (c Config) CheckOptions() assets.CheckOptions {
	return assets.CheckOptions{
		Timeout:     time.Duration(c.Assets.LookupTimeoutSec * float64(time.Second)),
		Concurrency: c.Assets.Concurrency,
	}
}

// CompileOptions converts the canvas, timeline, and lookup settings.
func (c Config) CompileOptions() timeline.Options {
	return timeline.Options{
		Canvas: timeline.Canvas{
			Width:  c.Canvas.Width,
			Height: c.Canvas.Height,
			FPS:    c.Canvas.FPS,
		},
		FallbackDuration: c.Timeline.FallbackDurationSec,
		FallbackColor:    c.Timeline.FallbackColor,
		Assets:           c.CheckOptions(),
	}
}

func boolPtr(v bool) *bool {
	return &v
}
