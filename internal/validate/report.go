// Package validate checks edit documents for structural and variable
// consistency and defines the report type every pipeline stage appends to.
package validate

import (
	"fmt"
	"strings"
)

// Severity of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code classifies a finding.
type Code string

const (
	CodeMissingSection      Code = "missing_section"
	CodeUndefinedVariable   Code = "undefined_variable"
	CodeUnusedVariable      Code = "unused_variable"
	CodeInvalidVariable     Code = "invalid_variable"
	CodeVerbatimPlaceholder Code = "verbatim_placeholder"
	CodeInvalidStructure    Code = "invalid_structure"
	CodeMissingAsset        Code = "missing_asset"
	CodeUnknownType         Code = "unknown_type"
	CodeInvalidEffect       Code = "invalid_effect"
	CodeInvalidAnimation    Code = "invalid_animation"
	CodeInvalidPosition     Code = "invalid_position"
	CodeAssetNotFound       Code = "asset_not_found"
	CodeInvalidInterval     Code = "invalid_interval"
	CodeClampedInterval     Code = "clamped_interval"
	CodeEmptyMainTrack      Code = "empty_main_track"
	CodeInvalidConfig       Code = "invalid_config"
)

// Issue is a single finding.
type Issue struct {
	Level   Severity `json:"level" yaml:"level"`
	Code    Code     `json:"code" yaml:"code"`
	Subject string   `json:"subject,omitempty" yaml:"subject,omitempty"`
	Message string   `json:"message" yaml:"message"`
}

func (i Issue) String() string {
	if i.Subject == "" {
		return fmt.Sprintf("%s: %s", i.Level, i.Message)
	}
	return fmt.Sprintf("%s: %s: %s", i.Level, i.Subject, i.Message)
}

// Errorf builds an error-level issue.
func Errorf(code Code, subject, format string, args ...any) Issue {
	return Issue{Level: SeverityError, Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning-level issue.
func Warnf(code Code, subject, format string, args ...any) Issue {
	return Issue{Level: SeverityWarning, Code: code, Subject: subject, Message: fmt.Sprintf(format, args...)}
}

// Report is an ordered list of findings.
type Report []Issue

// HasErrors reports whether any finding is an error.
func (r Report) HasErrors() bool {
	for _, i := range r {
		if i.Level == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns the error-level findings.
func (r Report) Errors() Report { return r.filter(SeverityError) }

// Warnings returns the warning-level findings.
func (r Report) Warnings() Report { return r.filter(SeverityWarning) }

// WithCode returns the findings carrying code.
func (r Report) WithCode(code Code) Report {
	var out Report
	for _, i := range r {
		if i.Code == code {
			out = append(out, i)
		}
	}
	return out
}

func (r Report) filter(level Severity) Report {
	var out Report
	for _, i := range r {
		if i.Level == level {
			out = append(out, i)
		}
	}
	return out
}

// ReportError carries a report whose errors stopped the pipeline.
type ReportError struct {
	Stage  string
	Report Report
}

func (e *ReportError) Error() string {
	errs := e.Report.Errors()
	msgs := make([]string, 0, len(errs))
	for _, i := range errs {
		msgs = append(msgs, i.String())
	}
	return fmt.Sprintf("%s failed with %d error(s): %s", e.Stage, len(errs), strings.Join(msgs, "; "))
}
