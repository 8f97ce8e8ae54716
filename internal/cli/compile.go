package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vidcompose/internal/assets"
	"vidcompose/internal/codec"
	"vidcompose/internal/pipeline"
	"vidcompose/internal/validate"
)

func newCompileCmd() *cobra.Command {
	var (
		flags  bindingFlags
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "compile <template>",
		Short: "Resolve a template and write its composition plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args[0], flags, format, out)
		},
	}
	cmd.Flags().StringVar(&flags.file, "bindings", "", "JSON, JSONC, or YAML file of variable bindings")
	cmd.Flags().StringArrayVar(&flags.sets, "set", nil, "bind a variable (name=value, repeatable)")
	cmd.Flags().StringVar(&format, "format", string(codec.JSON), "plan encoding: "+codec.FormatList())
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the plan to this file instead of stdout")
	return cmd
}

func runCompile(cmd *cobra.Command, path string, flags bindingFlags, formatFlag, out string) error {
	format, err := codec.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	if format.Binary() && out == "" {
		return fmt.Errorf("%s output needs --out", format)
	}

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

	opts := pipeline.Options{
		Validation: s.cfg.ValidationOptions(),
		Compile:    s.cfg.CompileOptions(),
		Logger:     s.logger,
	}
	req := pipeline.Request{
		Template: doc,
		Bindings: bindings,
		NewCatalog: func(table assets.Table) assets.Catalog {
			return s.catalog(table)
		},
	}

	res, err := pipeline.Run(cmd.Context(), req, opts)
	s.logReport(res.Report)
	if err != nil {
		var reportErr *validate.ReportError
		if !errors.As(err, &reportErr) {
			return err
		}
		if outputJSON {
			if werr := writeJSON(cmd, struct {
				Template string          `json:"template"`
				Issues   validate.Report `json:"issues"`
			}{Template: path, Issues: reportErr.Report}); werr != nil {
				return werr
			}
			return err
		}
		printReport(cmd, reportErr.Report)
		return err
	}

	plan := res.Plan.Node()
	if out != "" {
		target := out
		if !filepath.IsAbs(target) {
			target, err = filepath.Abs(target)
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}
		}
		data, err := codec.Marshal(format, plan)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
		s.logger.Printf("wrote %s plan to %s (%d bytes)", format, target, len(data))
		out = target
	}

	if outputJSON {
		payload := struct {
			Template string          `json:"template"`
			Out      string          `json:"out,omitempty"`
			Duration float64         `json:"duration"`
			Issues   validate.Report `json:"issues"`
			Plan     any             `json:"plan,omitempty"`
		}{
			Template: path,
			Out:      out,
			Duration: res.Plan.Duration(),
			Issues:   res.Report,
		}
		if out == "" {
			payload.Plan = plan.ToAny()
		}
		return writeJSON(cmd, payload)
	}

	printReport(cmd, res.Report)
	if out != "" {
		cmd.Println(greenStyle.Render("✓") + " wrote plan " + boldStyle.Render(out) +
			faintStyle.Render(fmt.Sprintf(" (%s, %.2fs)", format, res.Plan.Duration())))
		return nil
	}
	return codec.Encode(cmd.OutOrStdout(), format, plan)
}
