package mkvtoolnix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Command describes one external tool invocation.
type Command struct {
	Binary string
	Args   []string
	// Dir is the working directory for the process. Empty inherits the
	// caller's working directory.
	Dir string
}

// Result carries the fully captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs a command to completion and returns its captured output.
// A non-zero exit status is reported through Result.ExitCode; the error is
// reserved for processes that could not be started or were interrupted.
type Executor interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Binary, c.Args...) //nolint:gosec
	cmd.Dir = c.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("run %s: %w", c.Binary, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	result.ExitCode = -1
	return result, fmt.Errorf("start %s: %w", c.Binary, err)
}
