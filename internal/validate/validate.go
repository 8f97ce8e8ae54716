package validate

import (
	"strings"

	"vidcompose/internal/template"
	"vidcompose/pkg/document"
)

// Default document section names.
const (
	SectionAssets    = "assets"
	SectionEditing   = "editing"
	SectionOverlays  = "overlays"
	SectionAudio     = "audio"
	SectionVariables = "variables"
	SectionOutput    = "output"
)

// DefaultRequiredSections lists the sections every edit document carries.
var DefaultRequiredSections = []string{SectionAssets, SectionEditing, SectionOverlays, SectionAudio}

// Options tunes validation.
type Options struct {
	RequiredSections []string
	// VariablesKey names the root key holding declared variables.
	VariablesKey string
	// UnusedSeverity is the level reported for declared but unreferenced
	// variables.
	UnusedSeverity Severity
}

// DefaultOptions returns the standard validation settings.
func DefaultOptions() Options {
	return Options{
		RequiredSections: append([]string(nil), DefaultRequiredSections...),
		VariablesKey:     SectionVariables,
		UnusedSeverity:   SeverityWarning,
	}
}

func (o Options) withDefaults() Options {
	if o.RequiredSections == nil {
		o.RequiredSections = append([]string(nil), DefaultRequiredSections...)
	}
	if strings.TrimSpace(o.VariablesKey) == "" {
		o.VariablesKey = SectionVariables
	}
	if o.UnusedSeverity == "" {
		o.UnusedSeverity = SeverityWarning
	}
	return o
}

// Validate checks doc and returns every finding. Errors must stop
// compilation; warnings are advisory.
func Validate(doc document.Node, opts Options) Report {
	report := CheckTemplate(doc, opts)
	if doc.Kind() != document.KindMap {
		return report
	}
	return append(report, CheckStructure(doc)...)
}

// CheckTemplate runs the checks that need the unresolved template: the
// required sections and the declared/used variable reconciliation.
func CheckTemplate(doc document.Node, opts Options) Report {
	opts = opts.withDefaults()
	if doc.Kind() != document.KindMap {
		return Report{Errorf(CodeInvalidStructure, "$", "document root must be a map, got %s", doc.Kind())}
	}
	var report Report
	report = append(report, checkSections(doc, opts)...)
	report = append(report, checkVariables(doc, opts)...)
	return report
}

func checkSections(doc document.Node, opts Options) Report {
	var report Report
	for _, name := range opts.RequiredSections {
		if !doc.Has(name) {
			report = append(report, Errorf(CodeMissingSection, name, "required section %q is missing", name))
		}
	}
	return report
}

func checkVariables(doc document.Node, opts Options) Report {
	var report Report

	block, _ := doc.Get(opts.VariablesKey)
	_, invalid := template.Declared(block)
	for _, name := range invalid {
		report = append(report, Errorf(CodeInvalidVariable, opts.VariablesKey, "declared variable %q is not a valid identifier", name))
	}

	declared := template.DeclaredSet(block)
	used := template.Extract(doc.Without(opts.VariablesKey))

	for _, name := range used.Minus(declared).Sorted() {
		report = append(report, Errorf(CodeUndefinedVariable, name, "variable %q is used but not declared", name))
	}
	for _, name := range declared.Minus(used).Sorted() {
		report = append(report, Issue{
			Level:   opts.UnusedSeverity,
			Code:    CodeUnusedVariable,
			Subject: name,
			Message: "variable \"" + name + "\" is declared but never used",
		})
	}
	return report
}
