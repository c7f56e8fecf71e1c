package errors

import (
	"errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   appErr,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether the first AppError in the chain carries the given code
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined error codes
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUpstreamComputation = "UPSTREAM_COMPUTATION"
	CodeRenderError         = "RENDER_ERROR"
	CodeInternalError       = "INTERNAL_ERROR"
)

// Common error constructors

// InvalidInput flags malformed caller-supplied data: bad table shapes,
// alpha outside (0,1), residual/table mismatches.
func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func InvalidInputf(format string, args ...interface{}) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// UpstreamComputation flags failures inside the contingency engine,
// e.g. degenerate tables with zero marginals. Never retried.
func UpstreamComputation(message string) *AppError {
	return New(CodeUpstreamComputation, message)
}

// RenderError flags chart rendering or export failures. The computed
// analysis data is unaffected when one of these surfaces.
func RenderError(message string, cause error) *AppError {
	return &AppError{
		Code:    CodeRenderError,
		Message: message,
		Cause:   cause,
	}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// IsInvalidInput reports whether err is an invalid-input error
func IsInvalidInput(err error) bool {
	return HasCode(err, CodeInvalidInput)
}

// IsUpstreamComputation reports whether err came from the contingency engine
func IsUpstreamComputation(err error) bool {
	return HasCode(err, CodeUpstreamComputation)
}

// IsRenderError reports whether err came from chart rendering or export
func IsRenderError(err error) bool {
	return HasCode(err, CodeRenderError)
}
