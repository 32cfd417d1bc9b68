package tools

import (
	"errors"
	"fmt"

	"github.com/phototype/evidence-mcp/internal/document"
	"github.com/phototype/evidence-mcp/internal/store"
)

// Error codes for MCP tool responses.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeEmptyDocument = "EMPTY_DOCUMENT"
	ErrCodeStoreError    = "STORE_ERROR"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}

// WrapStoreError converts store and document failures to coded errors.
func WrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return &CodedError{Code: ErrCodeNotFound, Message: err.Error(), Cause: err}
	case errors.Is(err, document.ErrEmptyDocument):
		return &CodedError{Code: ErrCodeEmptyDocument, Message: "document text is empty", Cause: err}
	default:
		return &CodedError{Code: ErrCodeStoreError, Message: err.Error(), Cause: err}
	}
}
