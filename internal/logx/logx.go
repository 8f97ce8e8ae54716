package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"vidcompose/internal/paths"
)

// New creates a logger that writes to a timestamped file inside the project's
// logs directory, named after the command being run. The returned closer
// should be closed when logging is no longer needed.
func New(p paths.ProjectPaths, command string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("ensure logs directory: %w", err)
	}

	filename := time.Now().Format("20060102-150405")
	if command != "" {
		filename += "-" + command
	}
	filePath := filepath.Join(p.LogsDir, filename+".log")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.New(file, command+" ", log.LstdFlags|log.Lmicroseconds|log.Lmsgprefix)
	return logger, file, nil
}
