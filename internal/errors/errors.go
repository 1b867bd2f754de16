package errors

import (
	"errors"
	"fmt"
)

// Common error types shared by the bot packages
var (
	// Storage errors
	ErrStorage  = errors.New("storage failure")
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Storage marks err as a storage failure while keeping the original cause in the chain.
func Storage(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
