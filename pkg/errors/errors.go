// Package errors provides custom error types for the assetsync system.
// These errors enable programmatic error checking so callers can tell
// transient registry conditions (rate limits, server errors) apart from
// fatal ones, and treat missing objects as values rather than failures.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the assetsync system
var (
	// ErrNotFound indicates that a requested registry object was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrCredentialsRequired indicates that registry credentials are missing
	ErrCredentialsRequired = errors.New("registry credentials required")

	// ErrRateLimited indicates that the registry rate limit has been exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrRegistryUnavailable indicates that the registry returned a server error
	ErrRegistryUnavailable = errors.New("registry unavailable")

	// ErrRetryExhausted indicates that the retry budget for a request ran out
	ErrRetryExhausted = errors.New("retry budget exhausted")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a registry object is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure for a computed attribute
// group. Missing source fields downgrade that group to skipped, so a
// ValidationError never aborts a whole reconciliation.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// APIError represents an error response from the asset registry.
// RetryAfter carries the server's Retry-After hint when present, and
// NearLimit reflects the X-RateLimit-NearLimit warning header.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	RetryAfter time.Duration
	NearLimit  bool
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("registry error (status %d) at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("registry error at %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	if e.StatusCode == 429 {
		return target == ErrRateLimited
	}
	if e.StatusCode >= 500 {
		return target == ErrRegistryUnavailable
	}
	return false
}

// Retryable reports whether the error represents a transient condition
// that the retry policy may attempt again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// RetryExhaustedError indicates that a request was retried up to the
// configured budget and still failed. It is terminal, distinct from the
// transient errors it wraps.
type RetryExhaustedError struct {
	Attempts int
	Endpoint string
	Err      error
}

// Error implements the error interface
func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("max retries (%d) exceeded for %s: %v", e.Attempts, e.Endpoint, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RetryExhaustedError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RetryExhaustedError) Is(target error) bool {
	return target == ErrRetryExhausted
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsRetryExhausted checks if an error is a retry exhaustion error
func IsRetryExhausted(err error) bool {
	return errors.Is(err, ErrRetryExhausted)
}

// IsTransient checks if an error represents a retryable condition
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return errors.Is(err, ErrTimeout)
}

// Is is an alias for the standard library errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is an alias for the standard library errors.As
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Wrap helpers

// WrapResource wraps an error with resource operation context
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if id != "" {
		return fmt.Errorf("failed to %s %s %s: %w", operation, resource, id, err)
	}
	return fmt.Errorf("failed to %s %s: %w", operation, resource, err)
}

// WrapIO wraps an I/O error with operation context
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to %s %s: %w", operation, path, err)
}

// WrapParse wraps a parsing error with format context
func WrapParse(format, source string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to parse %s from %s: %w", format, source, err)
}
