package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"vidcompose/internal/config"
)

// ConfigFileName is the project configuration file.
const ConfigFileName = "vidcompose.yaml"

// ProjectPaths captures canonical locations for a vidcompose project.
type ProjectPaths struct {
	Root       string
	ConfigFile string
	MetaDir    string
	LogsDir    string
	AssetsDir  string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".vidcompose")
	return ProjectPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, ConfigFileName),
		MetaDir:    metaDir,
		LogsDir:    filepath.Join(metaDir, "logs"),
		AssetsDir:  root,
	}
}

// ApplyConfig points AssetsDir at the configured asset root.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	if root := strings.TrimSpace(cfg.Assets.Root); root != "" {
		pp.AssetsDir = ResolvePath(pp.Root, root)
	}
	return pp
}

// ResolvePath returns value unchanged when absolute, otherwise joined to root.
func ResolvePath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureMetaDirs creates the hidden .vidcompose directory and its logs
// directory.
func (p ProjectPaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
