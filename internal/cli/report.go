package cli

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"vidcompose/internal/validate"
)

var (
	boldStyle   = lipgloss.NewStyle().Bold(true)
	greenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	redStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
)

// writeJSON prints v to standard output so it can be piped.
func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(data)); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, report validate.Report) {
	if len(report) == 0 {
		cmd.Println(greenStyle.Render("✓") + " no issues")
		return
	}
	for _, issue := range report {
		mark := yellowStyle.Render("!")
		if issue.Level == validate.SeverityError {
			mark = redStyle.Render("✗")
		}
		line := mark + " "
		if issue.Subject != "" {
			line += boldStyle.Render(issue.Subject) + " "
		}
		line += issue.Message + faintStyle.Render(" ["+string(issue.Code)+"]")
		cmd.Println(line)
	}
	cmd.Println()
	cmd.Println(faintStyle.Render(fmt.Sprintf("%d error(s), %d warning(s)", len(report.Errors()), len(report.Warnings()))))
}
