package recordstore

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError
	ErrValidation = errors.New("validation failed")
	// ErrIndex is matched by every *IndexError
	ErrIndex = errors.New("index out of range")
	// ErrNotFound is returned when a record id is not in the store
	ErrNotFound = errors.New("record not found")
	// ErrFormat is matched by every *FormatError
	ErrFormat = errors.New("malformed data")
	// ErrIO is matched by every *IOError
	ErrIO = errors.New("i/o error")
)

// ValidationError reports a field that is missing, of the wrong type
// or out of range. Field is empty for whole-record rules.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid creates a *ValidationError. Field checks in kinds use it.
func Invalid(field string, format string, args ...any) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("invalid index %d: store is empty", e.Index)
	}
	return fmt.Sprintf("invalid index %d: must be between 0 and %d", e.Index, e.Len-1)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}

// FormatError is returned by import when the source is not valid
// structured data
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed data: %s", e.Err)
	}
	return fmt.Sprintf("malformed data in '%s': %s", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// IOError wraps a failure to read or write the destination
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s '%s': %s", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func (e *IOError) Is(target error) bool {
	return target == ErrIO
}
