package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vidcompose/internal/config"
	"vidcompose/internal/paths"
	"vidcompose/internal/validate"
	"vidcompose/pkg/document"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create project configuration",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		RunE:  runConfigShow,
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to " + paths.ConfigFileName,
		RunE:  runConfigInit,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}

	if outputJSON {
		generic, err := document.DecodeYAML(data)
		if err != nil {
			return err
		}
		return writeJSON(cmd, struct {
			File   string          `json:"file"`
			Config any             `json:"config"`
			Issues validate.Report `json:"issues,omitempty"`
		}{File: pp.ConfigFile, Config: generic.ToAny(), Issues: cfg.Validate()})
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	if _, err := os.Stat(pp.ConfigFile); err == nil {
		return fmt.Errorf("config already exists: %s", pp.ConfigFile)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := os.MkdirAll(pp.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(pp.ConfigFile, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	cmd.Println(greenStyle.Render("✓") + " wrote " + boldStyle.Render(pp.ConfigFile))
	return nil
}
