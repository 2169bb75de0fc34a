// Package errors provides typed application errors with HTTP status mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of application error.
type Code string

const (
	CodeValidation         Code = "VALIDATION_FAILED"
	CodeDuplicateUser      Code = "DUPLICATE_USER"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeProviderQuota      Code = "PROVIDER_QUOTA_EXCEEDED"
	CodeProvider           Code = "PROVIDER_ERROR"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// AppError is an error with a code, a client-safe message and an optional cause.
type AppError struct {
	Code    Code
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

// HTTPStatus maps the error code to an HTTP status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation, CodeDuplicateUser:
		return http.StatusBadRequest
	case CodeInvalidCredentials, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeProviderQuota:
		return http.StatusTooManyRequests
	case CodeProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates an AppError with the given code and message.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf creates an AppError with a formatted message.
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new AppError.
func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Validation is shorthand for a VALIDATION_FAILED error.
func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// NotFound is shorthand for a NOT_FOUND error.
func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

// Unauthorized is shorthand for an UNAUTHORIZED error.
func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

// CodeOf returns the code of err when it is (or wraps) an AppError,
// CodeInternal otherwise.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
