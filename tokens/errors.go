package tokens

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedRosterLine = errors.New("malformed roster line")
	ErrEmptyRoster         = errors.New("roster has no students")
	ErrNoArguments         = errors.New("no arguments given")
	ErrTooManyArguments    = errors.New("too many arguments given")
	ErrWrongDateFormat     = errors.New("date is not in DD.MM.YYYY format")
	ErrDateInPast          = errors.New("date is in the past")
)

// MalformedRosterLineError reports the first roster line without all three fields.
type MalformedRosterLineError struct {
	Line int
	Text string
}

func (e *MalformedRosterLineError) Error() string {
	return fmt.Sprintf("roster line %d %q: expected \"last_name first_name group\"", e.Line, e.Text)
}

func (e *MalformedRosterLineError) Is(target error) bool {
	return target == ErrMalformedRosterLine
}
