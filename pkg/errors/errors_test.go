package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("object", "OBJ-123")
	assert.Equal(t, "object with ID OBJ-123 not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.True(t, Is(err, ErrNotFound))
}

func TestAPIErrorClassification(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		rateLimited bool
		unavailable bool
		retryable   bool
	}{
		{"rate limited", 429, true, false, true},
		{"server error", 500, false, true, true},
		{"bad gateway", 502, false, true, true},
		{"bad request", 400, false, false, false},
		{"forbidden", 403, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewAPIError(tt.status, "/object/1", "boom")
			assert.Equal(t, tt.rateLimited, Is(err, ErrRateLimited))
			assert.Equal(t, tt.unavailable, Is(err, ErrRegistryUnavailable))
			assert.Equal(t, tt.retryable, err.Retryable())
			assert.Equal(t, tt.retryable, IsTransient(err))
		})
	}
}

func TestAPIErrorRetryAfter(t *testing.T) {
	err := &APIError{StatusCode: 429, Endpoint: "/object/aql", Message: "slow down", RetryAfter: 7 * time.Second}
	assert.Contains(t, err.Error(), "status 429")
	assert.Equal(t, 7*time.Second, err.RetryAfter)
}

func TestRetryExhaustedError(t *testing.T) {
	inner := NewAPIError(503, "/object/1", "unavailable")
	err := &RetryExhaustedError{Attempts: 5, Endpoint: "/object/1", Err: inner}

	assert.True(t, IsRetryExhausted(err))
	assert.Contains(t, err.Error(), "max retries (5) exceeded")

	// Exhaustion is terminal even though it wraps a transient error.
	var apiErr *APIError
	assert.True(t, As(err, &apiErr))
	assert.Equal(t, 503, apiErr.StatusCode)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("purchase_date", "required for age calculation")
	assert.True(t, Is(err, ErrInvalidInput))
	assert.Equal(t, "validation failed for field purchase_date: required for age calculation", err.Error())
}

func TestWrapHelpers(t *testing.T) {
	base := New("boom")

	assert.Nil(t, WrapResource("fetch", "object", "1", nil))

	wrapped := WrapResource("fetch", "object", "OBJ-9", base)
	assert.EqualError(t, wrapped, "failed to fetch object OBJ-9: boom")
	assert.True(t, Is(wrapped, base))

	parsed := WrapParse("json", "search response", base)
	assert.EqualError(t, parsed, "failed to parse json from search response: boom")
}

func TestIsTransientNonAPI(t *testing.T) {
	assert.False(t, IsTransient(New("plain")))
	assert.True(t, IsTransient(fmt.Errorf("wrapped: %w", ErrTimeout)))
}
