// Package errors provides the structured error type for contriblens.
// Errors carry a stable code and a category so callers can distinguish
// caller mistakes (configuration), missing entities (not found), and
// degraded per-candidate data (data) without string matching.
package errors

import (
	"fmt"
)

// Error is the structured error type for contriblens.
type Error struct {
	// Code is the unique error code (e.g., "ERR_CONFIG_INVALID_WEIGHTS").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (config, not_found, data, internal).
	Category Category

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with Error sentinels.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates a new Error with the given code and message.
// The category is derived from the code prefix.
func New(code string, message string, cause error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Cause:    cause,
	}
}

// Newf creates a new Error with a formatted message.
func Newf(code string, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// ConfigError creates a configuration error (caller mistake, fail fast).
func ConfigError(message string, cause error) *Error {
	return New(CodeConfigInvalid, message, cause)
}

// NotFoundError creates a not-found error for the given entity kind and id.
func NotFoundError(kind, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %q not found", kind, id), nil).
		WithDetail("kind", kind).
		WithDetail("id", id)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *Error {
	return New(CodeInternal, message, cause)
}

// IsNotFound reports whether err is a not-found error anywhere in its chain.
func IsNotFound(err error) bool {
	return categoryOf(err) == CategoryNotFound
}

// IsConfig reports whether err is a configuration error anywhere in its chain.
func IsConfig(err error) bool {
	return categoryOf(err) == CategoryConfig
}

func categoryOf(err error) Category {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Category
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// GetCode extracts the error code from an Error.
// Returns empty string if not an Error.
func GetCode(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}
