package grading

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrWrongFilename        = errors.New("submission must be named task<N>.py")
	ErrUnknownTask          = errors.New("no answer is known for this task")
	ErrStyleCheckFailed     = errors.New("style checker could not run")
	ErrWorkerAlreadyRunning = errors.New("grading worker already running")
	ErrWorkerNotRunning     = errors.New("grading worker not running")
)

// ExecutionError reports a submission that could not start, exited
// non-zero or ran past the time limit.
type ExecutionError struct {
	ExitCode int    // Process exit code, -1 when it never exited normally
	Stderr   string // Tail of the captured standard error
	TimedOut bool   // TimedOut, was the process killed by the wall-clock limit
	Err      error  // Underlying exec error
}

func (e *ExecutionError) Error() string {
	switch {
	case e.TimedOut:
		return "execution timed out"
	case e.ExitCode >= 0:
		return fmt.Sprintf("execution failed with exit code %d", e.ExitCode)
	default:
		return fmt.Sprintf("execution failed: %v", e.Err)
	}
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// WrongAnswerError carries both outputs so the student can compare them.
type WrongAnswerError struct {
	TaskID   string
	Expected string
	Actual   string
}

func (e *WrongAnswerError) Error() string {
	return fmt.Sprintf("wrong answer for %s: expected %q, got %q", e.TaskID, e.Expected, e.Actual)
}

// Violation is one finding of the style checker.
type Violation struct {
	Line    int
	Column  int
	Code    string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%d:%d %s %s", v.Line, v.Column, v.Code, v.Message)
}

// StyleViolationError lists every style finding of a submission.
type StyleViolationError struct {
	Violations []Violation
}

func (e *StyleViolationError) Error() string {
	lines := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		lines = append(lines, v.String())
	}
	return fmt.Sprintf("%d style violation(s): %s", len(e.Violations), strings.Join(lines, "; "))
}
