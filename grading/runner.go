package grading

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// stderrTail bounds how much of the submission's stderr is kept for the reply.
const stderrTail = 2000

// Executor runs a submitted program and returns what it printed to stdout.
type Executor interface {
	Run(ctx context.Context, path string) (string, error)
}

// Runner executes submissions as "<Interpreter> <path>" on the host.
// There is no sandbox; Timeout is the only limit applied.
type Runner struct {
	Interpreter string
	Timeout     time.Duration
}

var _ Executor = (*Runner)(nil)

func NewRunner(interpreter string, timeout time.Duration) *Runner {
	return &Runner{
		Interpreter: interpreter,
		Timeout:     timeout,
	}
}

func (r *Runner) Run(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &ExecutionError{ExitCode: -1, Err: err}
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Interpreter, abs)
	cmd.Dir = filepath.Dir(abs)
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", &ExecutionError{
			ExitCode: -1,
			Stderr:   tail(stderr.String(), stderrTail),
			TimedOut: errors.Is(ctxErr, context.DeadlineExceeded),
			Err:      ctxErr,
		}
	}
	if runErr != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &ExecutionError{
			ExitCode: exitCode,
			Stderr:   tail(stderr.String(), stderrTail),
			Err:      runErr,
		}
	}
	return stdout.String(), nil
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
