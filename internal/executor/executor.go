package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/iishyfishyy/llmterm/internal/logger"
	"github.com/iishyfishyy/llmterm/internal/shell"
)

// Executor runs commands through a shell interpreter.
type Executor struct {
	Invocation shell.Invocation
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Log        *zap.Logger
}

// New returns an executor bound to the process's standard streams.
func New(inv shell.Invocation, log *zap.Logger) *Executor {
	return &Executor{
		Invocation: inv,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Log:        log,
	}
}

// Run executes command and streams its output to the executor's writers.
func (e *Executor) Run(ctx context.Context, command string) error {
	log := logger.OrNop(e.Log)
	log.Debug("executing command",
		zap.String("shell", e.Invocation.Binary),
		zap.String("flag", e.Invocation.Flag),
		zap.String("command", command))

	cmd := exec.CommandContext(ctx, e.Invocation.Binary, e.Invocation.Flag, command)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	fmt.Fprintln(e.out(), "Command output:")

	if err := cmd.Start(); err != nil {
		log.Debug("command failed to start", zap.Error(err))
		return &SpawnError{Shell: e.Invocation.Binary, Err: err}
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.Debug("command exited non-zero", zap.Int("code", exitErr.ExitCode()))
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("command failed: %w", err)
	}

	log.Debug("command completed successfully")
	return nil
}

func (e *Executor) out() io.Writer {
	if e.Stdout == nil {
		return io.Discard
	}
	return e.Stdout
}

// SpawnError means the shell interpreter could not be started.
type SpawnError struct {
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError means the command ran but exited with a non-zero status.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with status %d", e.Code)
}
