package errors

import (
	goerrors "errors"
	"fmt"
)

// Code is a stable identifier for a failure class surfaced by the analytics core.
type Code string

const (
	// Validation indicates a bad argument rejected before any corpus query
	Validation Code = "VALIDATION_ERROR"
	// DataSourceUnavailable indicates the corpus store was unreachable or timed out
	DataSourceUnavailable Code = "DATA_SOURCE_UNAVAILABLE"
	// Internal indicates an unexpected failure
	Internal Code = "INTERNAL_ERROR"
)

// Error is a coded error. Field names the offending argument for validation errors.
type Error struct {
	Code    Code   `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	cause   error
}

// NewValidation creates a validation error for the named field.
func NewValidation(field, message string) *Error {
	return &Error{Code: Validation, Field: field, Message: message}
}

// NewUnavailable wraps a store failure as DataSourceUnavailable.
func NewUnavailable(message string, cause error) *Error {
	return &Error{Code: DataSourceUnavailable, Message: message, cause: cause}
}

// Wrap creates a coded error around cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, msg, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// CodeOf returns the code of the first coded error in err's chain, or Internal.
func CodeOf(err error) Code {
	var e *Error
	if goerrors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return err != nil && CodeOf(err) == Validation
}

// IsUnavailable reports whether err is a DataSourceUnavailable error.
func IsUnavailable(err error) bool {
	return err != nil && CodeOf(err) == DataSourceUnavailable
}
