// Package domain defines core types, interfaces, and errors for the coverage tracker.
package domain

import "fmt"

// The error types below form the contract between the service layer and
// the transport layers. Handlers map them to HTTP statuses with errors.As;
// anything unrecognized is treated as an internal error.

// NotFoundError reports a missing resource, mapped to 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ErrNotFound builds a NotFoundError from a format string.
func ErrNotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ValidationError reports rejected input, mapped to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ErrValidation builds a ValidationError from a format string.
func ErrValidation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a duplicate or stale write, mapped to 409.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ErrConflict builds a ConflictError from a format string.
func ErrConflict(format string, args ...any) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// AccessDeniedError reports insufficient permissions, mapped to 403.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ErrAccessDenied builds an AccessDeniedError from a format string.
func ErrAccessDenied(format string, args ...any) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}
