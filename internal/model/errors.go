package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the data-access error taxonomy.
// Use errors.Is() to check against these.
var (
	ErrNetwork        = errors.New("network error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrRequestFailed  = errors.New("request failed")
	ErrLocalStorage   = errors.New("local storage unavailable")
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
)

// APIError represents a classified failure from the transport layer or local validation.
// Implements error interface and supports unwrapping.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // HTTP status, 0 when no response was received
	Err        error  `json:"-"` // Wrapped error, not serialized
}

func (e *APIError) Error() string {
	if e.Err != nil && !isSentinel(e.Err) {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func isSentinel(err error) bool {
	switch err {
	case ErrNetwork, ErrUnauthorized, ErrRequestFailed, ErrLocalStorage, ErrInvalidRequest, ErrNotFound:
		return true
	}
	return false
}

// NewNetworkError wraps a failure where no HTTP response was received
// (DNS, connection refused, timeout, cancellation).
func NewNetworkError(err error) *APIError {
	return &APIError{
		Code:    "NETWORK_ERROR",
		Message: "network request failed",
		Err:     fmt.Errorf("%w: %v", ErrNetwork, err),
	}
}

// NewUnauthorizedError creates an error for 401/403 responses.
// Callers must not retry; credentials have already been cleared.
func NewUnauthorizedError(statusCode int) *APIError {
	return &APIError{
		Code:       "UNAUTHORIZED",
		Message:    "Unauthorized or forbidden",
		StatusCode: statusCode,
		Err:        ErrUnauthorized,
	}
}

// NewRequestFailedError creates an error for any other non-2xx response.
// message is the human-readable text extracted from the response.
func NewRequestFailedError(statusCode int, message string) *APIError {
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &APIError{
		Code:       "REQUEST_FAILED",
		Message:    message,
		StatusCode: statusCode,
		Err:        ErrRequestFailed,
	}
}

// NewValidationError creates an error for input that fails shape validation.
// No request is sent when this is returned.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:       "VALIDATION_ERROR",
		Message:    fmt.Sprintf("invalid %s: %s", field, reason),
		StatusCode: http.StatusBadRequest,
		Err:        ErrInvalidRequest,
	}
}

// NewNotFoundError creates a 404 error for missing resources.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
		Err:        ErrNotFound,
	}
}

// NewLocalStorageError records a degraded guest store.
// Non-fatal: the store keeps working in memory.
func NewLocalStorageError(op string, err error) *APIError {
	return &APIError{
		Code:    "LOCAL_STORAGE_ERROR",
		Message: fmt.Sprintf("local storage %s failed", op),
		Err:     fmt.Errorf("%w: %v", ErrLocalStorage, err),
	}
}

// OperationError is returned by resource clients. Message is the
// operation's user-facing failure text; Err keeps the classified cause.
type OperationError struct {
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	return e.Message
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// WrapOperation attaches an operation failure message to err.
// Returns nil when err is nil.
func WrapOperation(message string, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Message: message, Err: err}
}

// StatusCode returns the HTTP status carried anywhere in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
