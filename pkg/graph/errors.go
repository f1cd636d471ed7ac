package graph

import (
	"fmt"
	"time"
)

// GraphError represents a request the Graph API rejected.
// It includes the HTTP status code and the response body so the operator
// can see what the API objected to.
type GraphError struct {
	// Operation is a short description of the attempted call
	Operation string

	// StatusCode is the HTTP status code (0 if not applicable)
	StatusCode int

	// Message is the error response body
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("graph %s failed (status %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("graph %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure: token acquisition failed
// or the API rejected the bearer token (HTTP 401 or 403). Authentication
// failures are global conditions and abort the run.
type AuthError struct {
	// Operation is a short description of the attempted call
	Operation string

	// Message is the error message
	Message string

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("graph %s authentication failed: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *AuthError) Unwrap() error {
	return e.Cause
}

// RateLimitError represents throttling (HTTP 429) that persisted through
// all retry attempts. It includes the last Retry-After duration the API
// provided.
type RateLimitError struct {
	// Operation is a short description of the attempted call
	Operation string

	// RetryAfter is the duration the API asked us to wait (if provided)
	RetryAfter time.Duration

	// Message is the error response body
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("graph %s throttled (retry after %s): %s", e.Operation, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("graph %s throttled: %s", e.Operation, e.Message)
}

// TimeoutError represents a request that exceeded the configured timeout.
type TimeoutError struct {
	// Operation is a short description of the attempted call
	Operation string

	// Timeout is the configured timeout duration
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("graph %s timed out after %s", e.Operation, e.Timeout)
}

// ParseError represents a malformed response body.
type ParseError struct {
	// Operation is a short description of the attempted call
	Operation string

	// RawResponse is the raw response body that failed to parse
	RawResponse string

	// Cause is the underlying parse error
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("graph %s response parse error: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
