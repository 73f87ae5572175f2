package engine

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by the base Resources implementation.
// Every concrete handler must override Resources; hitting this is a
// programming error in the handler, not a runtime condition.
var ErrNotImplemented = errors.New("resource retrieval not implemented")

// UnknownResourceTypeError reports a cross-provider resolution miss. It is
// fatal to the caller and never retried.
type UnknownResourceTypeError struct {
	// Name is the requested type, as given (qualified or bare).
	Name string
}

// Error implements the error interface.
func (e *UnknownResourceTypeError) Error() string {
	return fmt.Sprintf("unknown resource type: %s", e.Name)
}

// APIError is the provider SDK error contract: any error raised by a
// provider client exposes a machine-readable code string. The engine
// inspects the code for not-found suppression and retry classification
// but otherwise treats provider errors as opaque.
type APIError interface {
	error

	// ErrorCode returns the provider-specific error code.
	ErrorCode() string
}

// ProviderError is a concrete APIError for providers that do not carry
// their own error type, and for tests.
type ProviderError struct {
	// Code is the machine-readable provider error code.
	Code string

	// Message is the human-readable provider message.
	Message string

	// Err is the underlying transport or SDK error, if any.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// ErrorCode returns the provider error code.
func (e *ProviderError) ErrorCode() string { return e.Code }

// Unwrap returns the underlying error for error chain inspection.
func (e *ProviderError) Unwrap() error { return e.Err }

// ErrorCode extracts the provider error code from an error chain. The
// second return is false when no APIError is present in the chain.
func ErrorCode(err error) (string, bool) {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode(), true
	}
	return "", false
}
