// Package errors provides standardized domain errors with codes for the OpenShelf API.
//
// Usage:
//
//	// In services - return typed errors
//	if book.AvailableCopies < 1 {
//	    return errors.NoCopiesAvailable("no available copies")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrNoActiveLoan) {
//	    response.BadRequest(w, err.Error(), logger)
//	    return
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeNoCopiesAvailable:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound   Code = "NOT_FOUND"
	CodeValidation Code = "VALIDATION"
	CodeConflict   Code = "CONFLICT"
	CodeInternal   Code = "INTERNAL"

	// Loan lifecycle codes. These surface precondition violations to the
	// caller as rejected operations, never as process failures.
	CodeNoCopiesAvailable Code = "NO_COPIES_AVAILABLE"
	CodeMemberNotFound    Code = "MEMBER_NOT_FOUND"
	CodeNoActiveLoan      Code = "NO_ACTIVE_LOAN"
	CodeInvalidExtension  Code = "INVALID_EXTENSION"
	CodeInvalidDayCount   Code = "INVALID_DAY_COUNT"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeMemberNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeValidation, CodeNoCopiesAvailable, CodeNoActiveLoan,
		CodeInvalidExtension, CodeInvalidDayCount:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
	ErrNoCopiesAvailable = &Error{Code: CodeNoCopiesAvailable, Message: "no available copies"}
	ErrMemberNotFound    = &Error{Code: CodeMemberNotFound, Message: "member does not exist"}
	ErrNoActiveLoan      = &Error{Code: CodeNoActiveLoan, Message: "active loan does not exist"}
	ErrInvalidExtension  = &Error{Code: CodeInvalidExtension, Message: "loan cannot be extended"}
	ErrInvalidDayCount   = &Error{Code: CodeInvalidDayCount, Message: "invalid number of days"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// NoCopiesAvailable creates an error for issuing a book with no free copies.
func NoCopiesAvailable(msg string) *Error {
	return &Error{Code: CodeNoCopiesAvailable, Message: msg}
}

// MemberNotFound creates an error for operations against an unknown member.
func MemberNotFound(msg string) *Error {
	return &Error{Code: CodeMemberNotFound, Message: msg}
}

// NoActiveLoan creates an error for returning a book that is not on loan.
func NoActiveLoan(msg string) *Error {
	return &Error{Code: CodeNoActiveLoan, Message: msg}
}

// InvalidExtension creates an error for extending a loan outside the active state.
func InvalidExtension(msg string) *Error {
	return &Error{Code: CodeInvalidExtension, Message: msg}
}

// InvalidDayCount creates an error for extension requests with a day count below one.
func InvalidDayCount(msg string) *Error {
	return &Error{Code: CodeInvalidDayCount, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
