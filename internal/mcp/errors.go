// Package mcp exposes the ranking pipeline over the Model Context
// Protocol: one tool per pipeline boundary call.
package mcp

import (
	"fmt"

	cberrors "github.com/contriblens/contriblens/internal/errors"
)

// JSON-RPC error codes used by the tools.
const (
	// ErrCodeNotFound indicates a requested entity id does not exist.
	ErrCodeNotFound = -32001

	// Standard JSON-RPC error codes.
	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError is a protocol error with a JSON-RPC code.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an invalid-params protocol error.
func NewInvalidParamsError(message string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: message}
}

// MapError converts pipeline errors to protocol errors: configuration
// mistakes become invalid-params, missing entities become not-found, and
// everything else is internal.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}
	switch {
	case cberrors.IsConfig(err):
		return &MCPError{Code: ErrCodeInvalidParams, Message: err.Error()}
	case cberrors.IsNotFound(err):
		return &MCPError{Code: ErrCodeNotFound, Message: err.Error()}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
	}
}
