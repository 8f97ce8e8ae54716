package cli

import (
	"github.com/spf13/cobra"

	"vidcompose/internal/template"
	"vidcompose/internal/validate"
)

func newValidateCmd() *cobra.Command {
	var flags bindingFlags
	cmd := &cobra.Command{
		Use:   "validate <template>",
		Short: "Check a template's sections, variables, and element structure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], flags)
		},
	}
	cmd.Flags().StringVar(&flags.file, "bindings", "", "JSON, JSONC, or YAML file of variable bindings")
	cmd.Flags().StringArrayVar(&flags.sets, "set", nil, "bind a variable (name=value, repeatable)")
	return cmd
}

func runValidate(cmd *cobra.Command, path string, flags bindingFlags) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.loadTemplate(path)
	if err != nil {
		return err
	}
	bindings, err := flags.load()
	if err != nil {
		return err
	}

	opts := s.cfg.ValidationOptions()
	report := validate.CheckTemplate(doc, opts)

	block, _ := doc.Get(opts.VariablesKey)
	body := doc.Without(opts.VariablesKey)
	merged := template.Merge(template.Defaults(block), bindings)

	unbound := 0
	for _, name := range template.ExtractOrdered(body) {
		if _, ok := merged[name]; !ok {
			unbound++
			report = append(report, validate.Errorf(validate.CodeUndefinedVariable, name, "variable %q has no binding and no default", name))
		}
	}
	if unbound == 0 {
		resolved, err := template.Resolve(body, merged)
		if err != nil {
			report = append(report, validate.Errorf(validate.CodeInvalidVariable, "", "%v", err))
		} else {
			report = append(report, validate.CheckStructure(resolved)...)
		}
	}
	s.logReport(report)

	if outputJSON {
		if err := writeJSON(cmd, struct {
			Template string          `json:"template"`
			Valid    bool            `json:"valid"`
			Issues   validate.Report `json:"issues"`
		}{Template: path, Valid: !report.HasErrors(), Issues: report}); err != nil {
			return err
		}
	} else {
		cmd.Println(boldStyle.Render("Template:") + " " + path)
		cmd.Println()
		printReport(cmd, report)
	}

	if report.HasErrors() {
		return &validate.ReportError{Stage: "validate", Report: report}
	}
	return nil
}
