package grading

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// StyleChecker statically checks a source file.
type StyleChecker interface {
	Check(ctx context.Context, path string) ([]Violation, error)
}

// Flake8Checker runs flake8 restricted to the pycodestyle error class (E codes).
type Flake8Checker struct {
	Binary  string
	Select  string
	Timeout time.Duration // Wall-clock limit for one run, none when zero
}

var _ StyleChecker = (*Flake8Checker)(nil)

func NewFlake8Checker(binary string, timeout time.Duration) *Flake8Checker {
	return &Flake8Checker{
		Binary:  binary,
		Select:  "E",
		Timeout: timeout,
	}
}

func (c *Flake8Checker) Check(ctx context.Context, path string) ([]Violation, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Binary, "--select="+c.Select, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrStyleCheckFailed, ctxErr)
	}
	violations := ParseFlake8Output(stdout.String())
	if err == nil {
		return violations, nil
	}

	// flake8 exits with 1 when it reports findings
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && len(violations) > 0 {
		return violations, nil
	}
	return nil, fmt.Errorf("%w: %v: %s", ErrStyleCheckFailed, err, strings.TrimSpace(stderr.String()))
}

var flake8Line = regexp.MustCompile(`^(.*):(\d+):(\d+): ([A-Z]+\d+) (.*)$`)

// ParseFlake8Output parses "path:row:col: CODE text" lines, skipping anything else.
func ParseFlake8Output(out string) []Violation {
	var violations []Violation
	for _, line := range strings.Split(out, "\n") {
		m := flake8Line.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		row, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		violations = append(violations, Violation{
			Line:    row,
			Column:  col,
			Code:    m[4],
			Message: m[5],
		})
	}
	return violations
}
