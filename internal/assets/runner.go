package assets

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// ToolOutput is what an external tool wrote.
type ToolOutput struct {
	Stdout []byte
	Stderr []byte
}

// Runner runs an external media tool such as ffprobe. Tests substitute a
// fake.
type Runner interface {
	Run(ctx context.Context, tool string, args ...string) (ToolOutput, error)
}

// ExecRunner runs tools as child processes. The process is killed when ctx
// ends, and the returned error then wraps ctx.Err() so a lookup deadline
// stays recognisable.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, tool string, args ...string) (ToolOutput, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("%s: %w", tool, ctx.Err())
	}
	return ToolOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, err
}
