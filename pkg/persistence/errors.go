// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrProcessGroupNotFound indicates a process group was not found by the given identifier.
	ErrProcessGroupNotFound = errors.New("process group not found")

	// ErrProcessGroupAlreadyExists indicates a process group with the same identifier already exists.
	ErrProcessGroupAlreadyExists = errors.New("process group already exists")

	// ErrInvalidProcessGroupID indicates an identifier that cannot be stored.
	ErrInvalidProcessGroupID = errors.New("invalid process group identifier")

	// ErrInvalidSortField indicates an unsupported sort field.
	ErrInvalidSortField = errors.New("invalid sort field")

	// ErrInvalidSortOrder indicates an unsupported sort order.
	ErrInvalidSortOrder = errors.New("invalid sort order")
)

// ProcessGroupError wraps process-group errors with additional context.
type ProcessGroupError struct {
	Op             string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	ProcessGroupID string
	Err            error
	Message        string
}

func (e *ProcessGroupError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s operation failed for process group %s: %s (%v)", e.Op, e.ProcessGroupID, e.Message, e.Err)
	}

	return fmt.Sprintf("%s operation failed for process group %s: %v", e.Op, e.ProcessGroupID, e.Err)
}

func (e *ProcessGroupError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for process-group errors.
func (e *ProcessGroupError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewProcessGroupError creates a new process-group error with context.
func NewProcessGroupError(op, processGroupID string, err error) *ProcessGroupError {
	return &ProcessGroupError{
		Op:             op,
		ProcessGroupID: processGroupID,
		Err:            err,
	}
}

// ValidationError carries the offending value of a rejected list option.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s=%q", e.Err, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewInvalidSortFieldError reports an unsupported sort field.
func NewInvalidSortFieldError(field string) *ValidationError {
	return &ValidationError{Field: "sort_by", Value: field, Err: ErrInvalidSortField}
}

// NewInvalidSortOrderError reports an unsupported sort order.
func NewInvalidSortOrderError(order string) *ValidationError {
	return &ValidationError{Field: "sort_order", Value: order, Err: ErrInvalidSortOrder}
}

// IsProcessGroupNotFound checks if an error indicates a process group was not found.
func IsProcessGroupNotFound(err error) bool {
	return errors.Is(err, ErrProcessGroupNotFound)
}

// IsProcessGroupAlreadyExists checks if an error indicates a duplicate identifier.
func IsProcessGroupAlreadyExists(err error) bool {
	return errors.Is(err, ErrProcessGroupAlreadyExists)
}

// IsInvalidSortField checks if an error indicates an invalid sort field.
func IsInvalidSortField(err error) bool {
	return errors.Is(err, ErrInvalidSortField)
}

// IsInvalidSortOrder checks if an error indicates an invalid sort order.
func IsInvalidSortOrder(err error) bool {
	return errors.Is(err, ErrInvalidSortOrder)
}
