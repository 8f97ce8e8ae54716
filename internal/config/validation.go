package config

import (
	"fmt"
	"strings"

	"vidcompose/internal/template"
	"vidcompose/internal/validate"
)

// Validate checks the configuration and returns every finding.
func (c Config) Validate() validate.Report {
	var report validate.Report
	report = append(report, c.validateCanvas()...)
	report = append(report, c.validateValidation()...)
	report = append(report, c.validateAssets()...)
	report = append(report, c.validateTimeline()...)
	return report
}

func (c Config) validateCanvas() validate.Report {
	var report validate.Report
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		report = append(report, validate.Errorf(validate.CodeInvalidConfig, "canvas",
			"canvas must have a positive size, got %dx%d", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Canvas.FPS <= 0 {
		report = append(report, validate.Errorf(validate.CodeInvalidConfig, "canvas.fps", "fps must be positive, got %g", c.Canvas.FPS))
	}
	return report
}

func (c Config) validateValidation() validate.Report {
	var report validate.Report
	switch validate.Severity(c.Validation.UnusedSeverity) {
	case validate.SeverityError, validate.SeverityWarning:
	default:
		report = append(report, validate.Errorf(validate.CodeInvalidConfig, "validation.unused_severity",
			"unused_severity must be %q or %q, got %q", validate.SeverityError, validate.SeverityWarning, c.Validation.UnusedSeverity))
	}
	if !template.ValidIdentifier(c.Validation.VariablesKey) {
		report = append(report, validate.Errorf(validate.CodeInvalidConfig, "validation.variables_key",
			"variables_key %q is not a valid key", c.Validation.VariablesKey))
	}
	seen := map[string]bool{}
	for _, name := range c.Validation.RequiredSections {
		if strings.TrimSpace(name) == "" {
			report = append(report, validate.Errorf(validate.CodeInvalidConfig, "validation.required_sections", "section names must not be empty"))
			continue
		}
		if seen[name] {
			report = append(report, validate.Warnf(validate.CodeInvalidConfig, "validation.required_sections", "section %q listed more than once", name))
		}
		seen[name] = true
	}
	return report
}

func (c Config) validateAssets() validate.Report {
	var report validate.Report
	if c.Assets.Concurrency < 1 {
		report = append(report, validate.Errorf(validate.CodeInvalidConfig, "assets.concurrency", "concurrency must be at least 1, got %d", c.Assets.Concurrency))
	}
	if c.Assets.LookupTimeoutSec < 0 {
		report = append(report, validate.Errorf(validate.CodeInvalidConfig, "assets.lookup_timeout_s", "lookup timeout must not be negative"))
	}
	for _, ext := range c.Assets.AudioExtensions {
		if !strings.HasPrefix(ext, ".") {
			report = append(report, validate.Warnf(validate.CodeInvalidConfig, "assets.audio_extensions", "extension %q should start with a dot", ext))
		}
	}
	if c.Assets.ProbeEnabled() && strings.TrimSpace(c.Assets.FFprobe) == "" {
		report = append(report, validate.Errorf(validate.CodeInvalidConfig, "assets.ffprobe", "ffprobe path is empty while probing is enabled"))
	}
	return report
}

func (c Config) validateTimeline() validate.Report {
	var report validate.Report
	if c.Timeline.FallbackDurationSec <= 0 {
		report = append(report, validate.Errorf(validate.CodeInvalidConfig, "timeline.fallback_duration_s",
			"fallback duration must be positive, got %s", fmt.Sprint(c.Timeline.FallbackDurationSec)))
	}
	return report
}
