package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrEmptyResponse = errors.New("backend returned an empty process group")
	ErrBaseURL       = errors.New("backend base URL is required")
)

// Error is a non-2xx backend response decoded from its problem document.
type Error struct {
	StatusCode int
	Type       string
	Title      string
	Detail     string
	Instance   string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d %s: %s", e.StatusCode, e.Type, e.Detail)
	}

	return fmt.Sprintf("backend returned %d %s", e.StatusCode, e.Type)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflict reports whether err is a 409 from the backend.
func IsConflict(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

// IsValidation reports whether the backend rejected the document itself.
func IsValidation(err error) bool {
	return hasStatus(err, http.StatusBadRequest) || hasStatus(err, http.StatusUnprocessableEntity)
}

func hasStatus(err error, status int) bool {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode == status
	}

	return false
}
