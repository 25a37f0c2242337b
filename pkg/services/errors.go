// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/operion-console/pkg/correlation"
	"github.com/dukex/operion-console/pkg/editor"
	"github.com/dukex/operion-console/pkg/gateway"
	"github.com/dukex/operion-console/pkg/persistence"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInvalidSortField    = errors.New("invalid sort field")
	ErrInvalidSortOrder    = errors.New("invalid sort order")
	ErrInvalidIdentifier   = errors.New("identifier must be lowercase letters, digits and dashes, starting and ending with a letter or digit")
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrMessageIDRequired   = errors.New("message id is required")
	ErrIdentifierMismatch  = errors.New("identifier in body does not match the path")
	ErrProcessGroupNil     = errors.New("process group cannot be nil")

	// Not Found (404).
	ErrProcessGroupNotFound = persistence.ErrProcessGroupNotFound
	ErrMessageNotFound      = errors.New("message not found")

	// Business Logic Conflicts (409 Conflict).
	ErrProcessGroupExists = errors.New("process group already exists")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidSortField) ||
		errors.Is(err, ErrInvalidSortOrder) ||
		errors.Is(err, ErrInvalidIdentifier) ||
		errors.Is(err, ErrDisplayNameRequired) ||
		errors.Is(err, ErrMessageIDRequired) ||
		errors.Is(err, ErrIdentifierMismatch) ||
		errors.Is(err, ErrProcessGroupNil) ||
		errors.Is(err, correlation.ErrInvalidForm) ||
		errors.Is(err, persistence.ErrInvalidProcessGroupID) ||
		gateway.IsValidation(err)
}

// IsNotFoundError checks if an error should return HTTP 404.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrProcessGroupNotFound) ||
		errors.Is(err, editor.ErrProcessGroupNotFound) ||
		errors.Is(err, ErrMessageNotFound) ||
		gateway.IsNotFound(err)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrProcessGroupExists) ||
		gateway.IsConflict(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
