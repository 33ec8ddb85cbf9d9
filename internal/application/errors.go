package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInvariant    = errors.New("invariant violation")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InputError reports an unreadable or malformed input file
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// InvariantError signals a logic defect: a taxon left with other than
// exactly one placement when a single one is required.
type InvariantError struct {
	Taxon      string
	Candidates int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("taxon %s has %d placements, expected exactly 1", e.Taxon, e.Candidates)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariant
}
