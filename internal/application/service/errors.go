package service

import (
	"errors"
	"strings"
)

// Sentinel errors for the operation-boundary taxonomy. Callers match with
// errors.Is; the HTTP adapter maps them to response codes.
var (
	// ErrNotFound indicates the referenced notification or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPrecondition indicates the notification is not in the source status
	// the operation requires.
	ErrPrecondition = errors.New("precondition failed")

	// ErrForbidden indicates the acting user lacks the required role or is not
	// the bound executor/approver.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict indicates a duplicate final action by the same executor.
	ErrConflict = errors.New("conflict")
)

// ValidationError reports every violated field of an operation at once.
// No partial commit happens when it is returned.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// fieldCheck accumulates violations across an input structure so the
// caller sees the complete list, not just the first failure.
type fieldCheck struct {
	violations []string
}

func (c *fieldCheck) require(ok bool, message string) {
	if !ok {
		c.violations = append(c.violations, message)
	}
}

func (c *fieldCheck) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: c.violations}
}
