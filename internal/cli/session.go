package cli

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"vidcompose/internal/assets"
	"vidcompose/internal/codec"
	"vidcompose/internal/config"
	"vidcompose/internal/logx"
	"vidcompose/internal/paths"
	"vidcompose/internal/validate"
	"vidcompose/pkg/document"
)

// session holds what every template command needs: the project layout,
// its configuration, and the command log.
type session struct {
	paths  paths.ProjectPaths
	cfg    config.Config
	logger *log.Logger
	closer io.Closer
}

func openSession(cmd *cobra.Command) (*session, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}

	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return nil, fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	if err := pp.EnsureMetaDirs(); err != nil {
		return nil, err
	}

	logger, closer, err := logx.New(pp, cmd.Name())
	if err != nil {
		return nil, err
	}
	logger.Printf("vidcompose %s: project=%s", cmd.Name(), pp.Root)

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		closer.Close()
		return nil, err
	}
	logger.Printf("loaded config version=%d", cfg.Version)

	report := cfg.Validate()
	for _, issue := range report.Warnings() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: config: %s\n", issue.Message)
	}
	if report.HasErrors() {
		closer.Close()
		msgs := make([]string, 0, len(report.Errors()))
		for _, issue := range report.Errors() {
			msgs = append(msgs, issue.Message)
		}
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(msgs, "; "))
	}

	return &session{
		paths:  paths.ApplyConfig(pp, cfg),
		cfg:    cfg,
		logger: logger,
		closer: closer,
	}, nil
}

func (s *session) Close() error {
	return s.closer.Close()
}

func (s *session) loadTemplate(path string) (document.Node, error) {
	doc, err := codec.LoadDocument(path)
	if err != nil {
		return document.Node{}, err
	}
	s.logger.Printf("loaded template %s", path)
	return doc, nil
}

// catalog builds the on-disk catalog for the given asset table.
func (s *session) catalog(table assets.Table) *assets.ProbeCatalog {
	c := assets.NewProbeCatalog(s.paths.AssetsDir, table, s.logger)
	c.FFprobe = s.cfg.Assets.FFprobe
	c.AudioExtensions = append([]string(nil), s.cfg.Assets.AudioExtensions...)
	c.SkipProbe = !s.cfg.Assets.ProbeEnabled()
	return c
}

func (s *session) logReport(report validate.Report) {
	for _, issue := range report {
		s.logger.Printf("%s [%s]", issue, issue.Code)
	}
}
