package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/mgit-dev/mgit/internal/log"
)

// ExecResult holds the outcome of one child process.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor spawns one child process per step and blocks until it terminates.
type Executor interface {
	Exec(ctx context.Context, launch Launch, workDir string) (*ExecResult, error)
}

// ProcessExecutor runs steps as real OS processes.
type ProcessExecutor struct {
	logger log.Logger
}

// NewProcessExecutor creates a new process executor.
func NewProcessExecutor(logger log.Logger) *ProcessExecutor {
	if logger == nil {
		logger = log.Noop
	}
	return &ProcessExecutor{logger: logger.WithValues(log.Kv{"svc": "engine.ProcessExecutor"})}
}

// Exec spawns the process with both output streams captured into buffers and
// waits for it to terminate. Output is never inherited from the parent: the
// live progress table owns the terminal, captured output is shown afterwards
// by the failure report. Buffered capture plus a blocking wait also avoids
// the pipe deadlock of waiting for an exit while the pipes are never drained.
func (e *ProcessExecutor) Exec(ctx context.Context, launch Launch, workDir string) (*ExecResult, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, launch.Path, launch.Args...)
	cmd.Dir = workDir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logger.Debugf("Executing %q %v in %s", launch.Path, launch.Args, workDir)

	err := cmd.Run()
	res := &ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}

	// The caller maps context errors to a timeout or cancellation reason.
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitCodeError{Code: res.ExitCode}
	}

	return nil, &SpawnError{Cause: err}
}
