package grading

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Result is a successful grading verdict.
type Result struct {
	TaskID string // Task the submission was graded against
	Output string // Captured standard output, equal to the expected answer
}

// Grader grades one submitted file.
type Grader interface {
	Grade(ctx context.Context, path, filename string) (Result, error)
}

// Pipeline grades a submission in strictly sequential steps: filename,
// execution, exact output comparison, then the optional style check.
// Nothing is retried.
type Pipeline struct {
	answers  Answers
	executor Executor
	style    StyleChecker
}

var _ Grader = (*Pipeline)(nil)

// PipelineOption defines a function type to modify the Pipeline instance.
type PipelineOption func(*Pipeline)

// WithStyleChecker enables the style check step.
func WithStyleChecker(checker StyleChecker) PipelineOption {
	return func(p *Pipeline) {
		p.style = checker
	}
}

func NewPipeline(answers Answers, executor Executor, options ...PipelineOption) (*Pipeline, error) {
	if executor == nil {
		return nil, errors.New("[NewPipeline] executor is required")
	}
	if answers == nil {
		answers = DefaultAnswers()
	}
	p := &Pipeline{
		answers:  answers,
		executor: executor,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// Answers exposes the task table the pipeline grades against.
func (p *Pipeline) Answers() Answers {
	return p.answers
}

func (p *Pipeline) Grade(ctx context.Context, path, filename string) (Result, error) {
	taskID, err := ParseTaskID(filename)
	if err != nil {
		return Result{}, err
	}
	expected, ok := p.answers.Expected(taskID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}

	started := time.Now()
	output, err := p.executor.Run(ctx, path)
	if err != nil {
		return Result{}, err
	}
	log.Debug().Str("task", taskID).Dur("took", time.Since(started)).Msg("Submission executed")

	if output != expected {
		return Result{}, &WrongAnswerError{TaskID: taskID, Expected: expected, Actual: output}
	}

	if p.style != nil {
		violations, err := p.style.Check(ctx, path)
		if err != nil {
			return Result{}, err
		}
		if len(violations) > 0 {
			return Result{}, &StyleViolationError{Violations: violations}
		}
	}
	return Result{TaskID: taskID, Output: output}, nil
}
