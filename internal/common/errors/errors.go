// internal/common/errors/errors.go
// Package errors provides the standardized error taxonomy for question
// processing. Adapter and dispatcher failures are always converted to
// values of these types; nothing past the dispatcher boundary surfaces a
// raw transport error.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// ErrCodeInvalidInput rejects an empty or malformed question before
	// classification. The only pre-dispatch rejection.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrCodeTimedOut marks a backend that exceeded its deadline after the
	// allowed retry.
	ErrCodeTimedOut ErrorCode = "TIMED_OUT"

	// ErrCodeFailed marks a backend that returned an error or a malformed
	// payload. Assumed non-transient; never retried.
	ErrCodeFailed ErrorCode = "FAILED"

	// ErrCodePartialDegraded means one of two expected backends was
	// unavailable in COMBINED mode. Not fatal; surfaced via Answer.Degraded.
	ErrCodePartialDegraded ErrorCode = "PARTIAL_DEGRADED"

	// ErrCodeTotalFailure means every expected backend was unavailable.
	// Still answered, apologetically.
	ErrCodeTotalFailure ErrorCode = "TOTAL_FAILURE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewInvalidInputError creates a non-retryable rejection for empty or
// malformed question text.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Question text is empty or malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimedOutError creates a retryable backend deadline error.
func NewTimedOutError(backend string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimedOut,
		Message:   "Backend exceeded its deadline",
		Details:   fmt.Sprintf("backend: %s", backend),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFailedError creates a non-retryable backend failure.
func NewFailedError(backend string, err error) *StandardError {
	details := fmt.Sprintf("backend: %s", backend)
	if err != nil {
		details = fmt.Sprintf("backend: %s, error: %s", backend, err.Error())
	}
	return &StandardError{
		Code:      ErrCodeFailed,
		Message:   "Backend returned an error or malformed payload",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPartialDegradedError records that one of two expected backends was
// unavailable during a combined dispatch.
func NewPartialDegradedError(unavailable string) *StandardError {
	return &StandardError{
		Code:      ErrCodePartialDegraded,
		Message:   "One expected backend was unavailable",
		Details:   fmt.Sprintf("unavailable: %s", unavailable),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTotalFailureError records that all expected backends were unavailable.
func NewTotalFailureError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTotalFailure,
		Message:   "All expected backends were unavailable",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is a StandardError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}
