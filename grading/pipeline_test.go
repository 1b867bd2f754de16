package grading_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gsem/gradebot/grading"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	output string
	err    error
	calls  int
	mu     sync.Mutex
}

func (fe *fakeExecutor) Run(ctx context.Context, path string) (string, error) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	fe.calls++
	return fe.output, fe.err
}

type fakeChecker struct {
	violations []grading.Violation
	err        error
	checked    []string
}

func (fc *fakeChecker) Check(ctx context.Context, path string) ([]grading.Violation, error) {
	fc.checked = append(fc.checked, path)
	return fc.violations, fc.err
}

func TestNewPipelineRequiresExecutor(t *testing.T) {
	_, err := grading.NewPipeline(nil, nil)
	require.Error(t, err)
}

func TestPipelinePassesExactOutput(t *testing.T) {
	exec := &fakeExecutor{output: "5\r\n10\r\n"}
	checker := &fakeChecker{}
	p, err := grading.NewPipeline(nil, exec, grading.WithStyleChecker(checker))
	require.NoError(t, err)

	result, err := p.Grade(context.Background(), "/subs/t/task1.py", "task1.py")
	require.NoError(t, err)
	require.Equal(t, grading.Result{TaskID: "task1", Output: "5\r\n10\r\n"}, result)
	require.Equal(t, []string{"/subs/t/task1.py"}, checker.checked)
}

func TestPipelineWrongAnswer(t *testing.T) {
	exec := &fakeExecutor{output: "5\n10\n"}
	checker := &fakeChecker{}
	p, err := grading.NewPipeline(nil, exec, grading.WithStyleChecker(checker))
	require.NoError(t, err)

	_, err = p.Grade(context.Background(), "task1.py", "task1.py")
	var wrong *grading.WrongAnswerError
	require.True(t, errors.As(err, &wrong))
	require.Equal(t, "task1", wrong.TaskID)
	require.Equal(t, "5\r\n10\r\n", wrong.Expected)
	require.Equal(t, "5\n10\n", wrong.Actual)
	require.Empty(t, checker.checked, "style check runs only after a correct answer")
}

func TestPipelineWrongFilenameSkipsExecution(t *testing.T) {
	exec := &fakeExecutor{}
	p, err := grading.NewPipeline(nil, exec)
	require.NoError(t, err)

	_, err = p.Grade(context.Background(), "solution.py", "solution.py")
	require.ErrorIs(t, err, grading.ErrWrongFilename)
	require.Zero(t, exec.calls)
}

func TestPipelineUnknownTask(t *testing.T) {
	exec := &fakeExecutor{}
	p, err := grading.NewPipeline(grading.Answers{"task1": "1\n"}, exec)
	require.NoError(t, err)

	_, err = p.Grade(context.Background(), "task99.py", "task99.py")
	require.ErrorIs(t, err, grading.ErrUnknownTask)
	require.Zero(t, exec.calls)
}

func TestPipelineExecutionError(t *testing.T) {
	execErr := &grading.ExecutionError{ExitCode: 1, Stderr: "Traceback"}
	p, err := grading.NewPipeline(nil, &fakeExecutor{err: execErr})
	require.NoError(t, err)

	_, err = p.Grade(context.Background(), "task1.py", "task1.py")
	require.ErrorIs(t, err, execErr)
}

func TestPipelineStyleViolation(t *testing.T) {
	checker := &fakeChecker{violations: []grading.Violation{{Line: 1, Column: 1, Code: "E111", Message: "indentation is not a multiple of 4"}}}
	p, err := grading.NewPipeline(nil, &fakeExecutor{output: "8\r\n"}, grading.WithStyleChecker(checker))
	require.NoError(t, err)

	_, err = p.Grade(context.Background(), "task11.py", "task11.py")
	var styleErr *grading.StyleViolationError
	require.True(t, errors.As(err, &styleErr))
	require.Len(t, styleErr.Violations, 1)
	require.Contains(t, styleErr.Error(), "E111")
}

func TestPipelineWithRealRunner(t *testing.T) {
	p, err := grading.NewPipeline(nil, grading.NewRunner("sh", 5*time.Second))
	require.NoError(t, err)

	pass := writeSubmission(t, "task1.py", `printf '5\r\n10\r\n'`)
	result, err := p.Grade(context.Background(), pass, "task1.py")
	require.NoError(t, err)
	require.Equal(t, "5\r\n10\r\n", result.Output)

	fail := writeSubmission(t, "task1.py", `printf '5\n10\n'`)
	_, err = p.Grade(context.Background(), fail, "task1.py")
	var wrong *grading.WrongAnswerError
	require.True(t, errors.As(err, &wrong))
	require.Equal(t, "5\r\n10\r\n", wrong.Expected)
	require.Equal(t, "5\n10\n", wrong.Actual)
}
