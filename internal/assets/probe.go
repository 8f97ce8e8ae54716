package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultAudioExtensions are tried, in order, when a declared audio path
// does not exist.
var DefaultAudioExtensions = []string{".wav", ".mp3", ".ogg", ".m4a", ".aac"}

// ProbeCatalog answers lookups from the declared asset table and the files
// under Root. Durations come from the table when declared, otherwise from
// ffprobe unless SkipProbe is set.
type ProbeCatalog struct {
	Root            string
	Table           Table
	FFprobe         string
	Runner          Runner
	Logger          Logger
	AudioExtensions []string
	SkipProbe       bool
}

// NewProbeCatalog returns a catalog rooted at root using the system ffprobe.
func NewProbeCatalog(root string, table Table, logger Logger) *ProbeCatalog {
	if logger == nil {
		logger = noopLogger{}
	}
	return &ProbeCatalog{
		Root:            root,
		Table:           table,
		FFprobe:         "ffprobe",
		Runner:          ExecRunner{},
		Logger:          logger,
		AudioExtensions: append([]string(nil), DefaultAudioExtensions...),
	}
}

// Lookup implements Catalog.
func (c *ProbeCatalog) Lookup(ctx context.Context, ref Ref) (Entry, error) {
	decl, ok := c.Table[ref]
	if !ok {
		return Entry{}, nil
	}

	path := resolvePath(c.Root, decl.Path)
	if ref.Category == Audio {
		path = c.findAudioFile(path)
	} else if !fileExists(path) {
		path = ""
	}
	if path == "" {
		c.logf("asset %s: no file at %s", ref, decl.Path)
		return Entry{}, nil
	}

	if !ref.Category.Timed() {
		return Entry{Exists: true}, nil
	}
	if decl.HasDuration {
		return Entry{Exists: true, Duration: decl.Duration, HasDuration: true}, nil
	}
	if c.SkipProbe {
		return Entry{Exists: true}, nil
	}

	duration, err := c.probeDuration(ctx, path)
	if err != nil {
		return Entry{}, fmt.Errorf("probe %s: %w", decl.Path, err)
	}
	return Entry{Exists: true, Duration: duration, HasDuration: duration > 0}, nil
}

// findAudioFile returns path when it exists, otherwise the first sibling
// with the same base name and a known audio extension.
func (c *ProbeCatalog) findAudioFile(path string) string {
	if fileExists(path) {
		return path
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	exts := c.AudioExtensions
	if len(exts) == 0 {
		exts = DefaultAudioExtensions
	}
	for _, ext := range exts {
		candidate := base + ext
		if fileExists(candidate) {
			c.logf("found audio file %s for %s", candidate, path)
			return candidate
		}
	}
	return ""
}

type ffprobeOutput struct {
	Format ffprobeFormat `json:"format"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
}

func (c *ProbeCatalog) probeDuration(ctx context.Context, target string) (float64, error) {
	runner := c.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	bin := c.FFprobe
	if bin == "" {
		bin = "ffprobe"
	}

	c.logf("ffprobe target=%s", target)
	result, err := runner.Run(ctx, bin, "-v", "error", "-show_format", "-print_format", "json", target)
	if err != nil {
		if msg := strings.TrimSpace(string(result.Stderr)); msg != "" {
			return 0, fmt.Errorf("ffprobe: %w: %s", err, msg)
		}
		return 0, fmt.Errorf("ffprobe: %w", err)
	}
	if len(result.Stdout) == 0 {
		return 0, fmt.Errorf("ffprobe produced no output")
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(result.Stdout, &parsed); err != nil {
		return 0, fmt.Errorf("decode ffprobe output: %w", err)
	}
	if parsed.Format.Duration == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", parsed.Format.Duration, err)
	}
	return v, nil
}

func (c *ProbeCatalog) logf(format string, v ...any) {
	if c.Logger == nil {
		return
	}
	c.Logger.Printf(format, v...)
}

func resolvePath(root, value string) string {
	if filepath.IsAbs(value) || root == "" {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
