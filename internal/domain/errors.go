package domain

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application.
var (
	ErrDirectoryNotFound = errors.New("address directory not found")
	ErrMalformedJSON     = errors.New("malformed JSON")
	ErrWriteFailed       = errors.New("write failed")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrStale             = errors.New("address book is out of date")
	ErrHistoryDisabled   = errors.New("build history is disabled")
)

// PathError records a failure tied to a specific file or directory.
// It unwraps to both the sentinel Kind and the underlying cause.
type PathError struct {
	Op   string
	Path string
	Kind error
	Err  error
}

// NewPathError creates a new PathError.
func NewPathError(op, path string, kind, err error) *PathError {
	return &PathError{Op: op, Path: path, Kind: kind, Err: err}
}

// Error implements the error interface.
func (e *PathError) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
	case e.Kind != nil:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
}

// Unwrap exposes the sentinel and the cause to errors.Is and errors.As.
func (e *PathError) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
