// Package pipeline runs a template through substitution, validation, asset
// resolution, and compilation in one strict pass.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"vidcompose/internal/assets"
	"vidcompose/internal/template"
	"vidcompose/internal/timeline"
	"vidcompose/internal/validate"
	"vidcompose/pkg/document"
)

// Logger keeps the subset of log.Logger used by the pipeline.
type Logger interface {
	Printf(format string, v ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Request is a single compilation job.
type Request struct {
	Template document.Node
	// Bindings are layered over the template's declared defaults.
	Bindings template.Bindings
	Catalog  assets.Catalog
	// NewCatalog builds a catalog from the resolved document's asset table
	// when Catalog is nil. The default answers from declared durations only.
	NewCatalog func(assets.Table) assets.Catalog
}

// Options tunes each stage.
type Options struct {
	Validation validate.Options
	Compile    timeline.Options
	Logger     Logger
}

// DefaultOptions returns the standard settings for every stage.
func DefaultOptions() Options {
	return Options{
		Validation: validate.DefaultOptions(),
		Compile:    timeline.DefaultOptions(),
	}
}

// Result carries everything the pipeline produced. Report holds the
// validation, asset, and compile findings in stage order.
type Result struct {
	Used     template.VarSet
	Bindings template.Bindings
	Resolved document.Node
	Report   validate.Report
	Plan     timeline.Plan
}

// Run executes the pipeline. It stops with *template.UndefinedVariableError
// or *template.InvalidBindingError when substitution fails, and with
// *validate.ReportError when validation finds errors. Element-level problems
// during compilation are warnings in Result.Report.
func Run(ctx context.Context, req Request, opts Options) (Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	if opts.Compile.Logger == nil {
		opts.Compile.Logger = logger
	}
	varsKey := opts.Validation.VariablesKey
	if strings.TrimSpace(varsKey) == "" {
		varsKey = validate.SectionVariables
	}
	declBlock, _ := req.Template.Get(varsKey)
	body := req.Template.Without(varsKey)

	var res Result
	res.Used = template.Extract(body)
	res.Bindings = template.Merge(template.Defaults(declBlock), req.Bindings)
	logger.Printf("pipeline: %d variable(s) used, %d binding(s)", len(res.Used), len(res.Bindings))

	resolved, err := template.Resolve(body, res.Bindings)
	if err != nil {
		logger.Printf("pipeline: resolve failed: %v", err)
		return res, fmt.Errorf("resolve: %w", err)
	}
	res.Resolved = resolved

	res.Report = append(res.Report, validate.CheckTemplate(req.Template, opts.Validation)...)
	res.Report = append(res.Report, validate.CheckStructure(resolved)...)
	if res.Report.HasErrors() {
		logger.Printf("pipeline: validation failed with %d error(s)", len(res.Report.Errors()))
		return res, &validate.ReportError{Stage: "validate", Report: res.Report}
	}

	used := make(template.Bindings, len(res.Used))
	for name := range res.Used {
		used[name] = res.Bindings[name]
	}
	embedded := template.EmbeddedPlaceholders(used)
	for _, name := range sortedKeys(embedded) {
		inner := embedded[name]
		res.Report = append(res.Report, validate.Warnf(validate.CodeVerbatimPlaceholder, name,
			"value of %q contains placeholder(s) %s which were inserted verbatim", name, strings.Join(inner, ", ")))
	}

	catalog := req.Catalog
	if catalog == nil {
		table := assets.Declared(resolved)
		if req.NewCatalog != nil {
			catalog = req.NewCatalog(table)
		} else {
			catalog = assets.TableCatalog(table)
		}
	}
	plan, compileReport, err := timeline.Compile(ctx, resolved, catalog, opts.Compile)
	if err != nil {
		return res, err
	}
	res.Plan = plan
	res.Report = append(res.Report, compileReport...)
	logger.Printf("pipeline: done with %d warning(s)", len(res.Report.Warnings()))
	return res, nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
