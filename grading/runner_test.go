package grading_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gsem/gradebot/grading"
	"github.com/stretchr/testify/require"
)

// writeSubmission stores a shell script under the submitted name; the tests
// run it with sh so they do not depend on a Python installation.
func writeSubmission(t *testing.T, name, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(script), 0o644))
	return path
}

func TestRunnerCapturesStdout(t *testing.T) {
	path := writeSubmission(t, "task1.py", `printf '5\r\n10\r\n'`)
	out, err := grading.NewRunner("sh", 5*time.Second).Run(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "5\r\n10\r\n", out)
}

func TestRunnerNonZeroExit(t *testing.T) {
	path := writeSubmission(t, "task1.py", "echo partial; echo boom >&2; exit 3")
	_, err := grading.NewRunner("sh", 5*time.Second).Run(context.Background(), path)

	var execErr *grading.ExecutionError
	require.True(t, errors.As(err, &execErr))
	require.Equal(t, 3, execErr.ExitCode)
	require.False(t, execErr.TimedOut)
	require.Contains(t, execErr.Stderr, "boom")
}

func TestRunnerTimeout(t *testing.T) {
	path := writeSubmission(t, "task1.py", "sleep 5")
	started := time.Now()
	_, err := grading.NewRunner("sh", 100*time.Millisecond).Run(context.Background(), path)

	var execErr *grading.ExecutionError
	require.True(t, errors.As(err, &execErr))
	require.True(t, execErr.TimedOut)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(started), 3*time.Second)
}

func TestRunnerMissingInterpreter(t *testing.T) {
	path := writeSubmission(t, "task1.py", "print(1)")
	_, err := grading.NewRunner("no-such-interpreter-here", time.Second).Run(context.Background(), path)

	var execErr *grading.ExecutionError
	require.True(t, errors.As(err, &execErr))
	require.Equal(t, -1, execErr.ExitCode)
}
