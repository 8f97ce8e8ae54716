package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidcompose/internal/assets"
	"vidcompose/internal/template"
	"vidcompose/internal/validate"
)

func newAssetsCmd() *cobra.Command {
	var flags bindingFlags
	cmd := &cobra.Command{
		Use:   "assets <template>",
		Short: "List the assets a template references and check they are available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssets(cmd, args[0], flags)
		},
	}
	cmd.Flags().StringVar(&flags.file, "bindings", "", "JSON, JSONC, or YAML file of variable bindings")
	cmd.Flags().StringArrayVar(&flags.sets, "set", nil, "bind a variable (name=value, repeatable)")
	return cmd
}

type assetStatus struct {
	Category assets.Category `json:"category"`
	Name     string          `json:"name"`
	Path     string          `json:"path,omitempty"`
	Uses     int             `json:"uses"`
	Found    bool            `json:"found"`
	Duration float64         `json:"duration,omitempty"`
}

func runAssets(cmd *cobra.Command, path string, flags bindingFlags) error {
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

	varsKey := s.cfg.Validation.VariablesKey
	block, _ := doc.Get(varsKey)
	resolved, err := template.Resolve(doc.Without(varsKey), template.Merge(template.Defaults(block), bindings))
	if err != nil {
		return fmt.Errorf("resolve: %w", err)
	}

	reqs := assets.Required(resolved)
	table := assets.Declared(resolved)
	checkOpts := s.cfg.CheckOptions()
	checkOpts.Logger = s.logger
	res, err := assets.Check(cmd.Context(), reqs, s.catalog(table), checkOpts)
	if err != nil {
		return err
	}

	uses := map[assets.Ref]int{}
	for _, u := range reqs.Uses {
		uses[u.Ref]++
	}
	statuses := make([]assetStatus, 0, len(res.Order))
	for _, ref := range res.Order {
		st := assetStatus{Category: ref.Category, Name: ref.Name, Path: table[ref].Path, Uses: uses[ref]}
		if entry, ok := res.Found(ref); ok {
			st.Found = true
			st.Duration, _ = entry.KnownDuration()
		}
		statuses = append(statuses, st)
	}
	issues := res.Issues()
	s.logReport(issues)

	if outputJSON {
		if err := writeJSON(cmd, struct {
			Template string          `json:"template"`
			Root     string          `json:"root"`
			Assets   []assetStatus   `json:"assets"`
			Issues   validate.Report `json:"issues"`
		}{Template: path, Root: s.paths.AssetsDir, Assets: statuses, Issues: issues}); err != nil {
			return err
		}
	} else {
		printAssets(cmd, s.paths.AssetsDir, statuses)
		if len(issues) > 0 {
			cmd.Println()
			printReport(cmd, issues)
		}
	}

	if missing := len(issues.Errors()); missing > 0 {
		return fmt.Errorf("%d asset(s) not found", missing)
	}
	return nil
}

func printAssets(cmd *cobra.Command, root string, statuses []assetStatus) {
	cmd.Println(boldStyle.Render("Assets root:") + " " + root)
	cmd.Println()
	if len(statuses) == 0 {
		cmd.Println(faintStyle.Render("no asset references"))
		return
	}
	for _, st := range statuses {
		label := boldStyle.Render(st.Name) + faintStyle.Render(" ("+string(st.Category)+")")
		if st.Found {
			headline := greenStyle.Render("✓") + " " + label
			if st.Duration > 0 {
				headline += fmt.Sprintf(" %.2fs", st.Duration)
			}
			cmd.Println(headline)
		} else {
			cmd.Println(redStyle.Render("✗") + " " + label)
		}
		detail := fmt.Sprintf("  used %d time(s)", st.Uses)
		if st.Path != "" {
			detail += " · " + st.Path
		}
		cmd.Println(faintStyle.Render(detail))
	}
}
