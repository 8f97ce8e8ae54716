package cli

import (
	"github.com/spf13/cobra"

	"vidcompose/internal/template"
)

func newVarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vars <template>",
		Short: "List the variables a template uses and declares",
		Args:  cobra.ExactArgs(1),
		RunE:  runVars,
	}
}

type varInfo struct {
	Name        string `json:"name"`
	Used        bool   `json:"used"`
	Declared    bool   `json:"declared"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

func runVars(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	doc, err := s.loadTemplate(args[0])
	if err != nil {
		return err
	}

	varsKey := s.cfg.Validation.VariablesKey
	block, _ := doc.Get(varsKey)
	decls, _ := template.Declared(block)
	used := template.Extract(doc.Without(varsKey))
	s.logger.Printf("template uses %d variable(s), declares %d", len(used), len(decls))

	defaults := map[string]string{}
	byName := map[string]*varInfo{}
	var order []string
	for _, name := range template.ExtractOrdered(doc.Without(varsKey)) {
		byName[name] = &varInfo{Name: name, Used: true}
		order = append(order, name)
	}
	for _, d := range decls {
		info, ok := byName[d.Name]
		if !ok {
			info = &varInfo{Name: d.Name}
			byName[d.Name] = info
			order = append(order, d.Name)
		}
		info.Declared = true
		info.Description = d.Description
		if d.HasDefault {
			info.Default = d.Default.ToAny()
			defaults[d.Name] = d.Default.String()
		}
	}

	infos := make([]varInfo, 0, len(order))
	for _, name := range order {
		infos = append(infos, *byName[name])
	}

	if outputJSON {
		return writeJSON(cmd, struct {
			Template  string    `json:"template"`
			Variables []varInfo `json:"variables"`
		}{Template: args[0], Variables: infos})
	}

	cmd.Println(boldStyle.Render("Template:") + " " + args[0])
	cmd.Println()
	if len(infos) == 0 {
		cmd.Println(faintStyle.Render("no variables"))
		return nil
	}
	for _, info := range infos {
		var headline string
		switch {
		case info.Used && info.Declared:
			headline = greenStyle.Render("✓") + " " + boldStyle.Render(info.Name)
		case info.Used:
			headline = redStyle.Render("✗") + " " + boldStyle.Render(info.Name) + redStyle.Render(" (not declared)")
		default:
			headline = yellowStyle.Render("!") + " " + boldStyle.Render(info.Name) + yellowStyle.Render(" (unused)")
		}
		if def, ok := defaults[info.Name]; ok {
			headline += faintStyle.Render(" default: " + def)
		}
		cmd.Println(headline)
		if info.Description != "" {
			cmd.Println(faintStyle.Render("  " + info.Description))
		}
	}
	return nil
}
