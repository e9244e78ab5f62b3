// Package apperrors defines the error taxonomy shared by services and handlers.
// Services return *AppError values; handlers turn them into status codes and
// safe messages without leaking the cause.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of failure
type ErrorCode string

const (
	CodeValidation      ErrorCode = "VALIDATION_ERROR"
	CodeMissingData     ErrorCode = "MISSING_DATA"
	CodeNotFound        ErrorCode = "NOT_FOUND"
	CodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
	CodeStore           ErrorCode = "STORE_ERROR"
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
)

// AppError is an application error with a client-safe message
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error code
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeValidation, CodeMissingData:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError reports a missing or malformed required field
func NewValidationError(format string, args ...any) *AppError {
	return &AppError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NewMissingDataError reports an external response without the expected fields
func NewMissingDataError(message string) *AppError {
	return &AppError{Code: CodeMissingData, Message: message}
}

// NewNotFoundError reports a row that is absent or not owned by the caller
func NewNotFoundError(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: resource + " not found"}
}

// NewExternalServiceError wraps a failure of the completion, verification or identity services
func NewExternalServiceError(message string, cause error) *AppError {
	return &AppError{Code: CodeExternalService, Message: message, Cause: cause}
}

// NewStoreError wraps a datastore failure
func NewStoreError(message string, cause error) *AppError {
	return &AppError{Code: CodeStore, Message: message, Cause: cause}
}

// NewInternalError wraps an unexpected failure
func NewInternalError(message string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Cause: cause}
}

// As extracts an *AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code
func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// StatusCode returns the HTTP status for any error, 500 for unclassified ones
func StatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode()
	}
	return http.StatusInternalServerError
}
