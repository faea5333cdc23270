// Package errors provides standardized error handling for the activities API.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Registry errors
const (
	ErrCodeActivityNotFound ErrorCode = "ACTIVITY_NOT_FOUND"
	ErrCodeAlreadySignedUp  ErrorCode = "ALREADY_SIGNED_UP"
	ErrCodeNotSignedUp      ErrorCode = "NOT_SIGNED_UP"
	ErrCodeActivityFull     ErrorCode = "ACTIVITY_FULL"
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeSeedInvalid      ErrorCode = "SEED_INVALID"
)

// Infrastructure errors
const (
	ErrCodeEventPublishFailed   ErrorCode = "EVENT_PUBLISH_FAILED"
	ErrCodeExternalService      ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout              ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound     ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication       ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"
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
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Is matches on Code so callers can compare against the sentinel values below.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrActivityNotFound = &StandardError{Code: ErrCodeActivityNotFound}
	ErrAlreadySignedUp  = &StandardError{Code: ErrCodeAlreadySignedUp}
	ErrNotSignedUp      = &StandardError{Code: ErrCodeNotSignedUp}
	ErrActivityFull     = &StandardError{Code: ErrCodeActivityFull}
)

// ==========================
// 2. Error Constructors
// ==========================

// NewActivityNotFoundError creates a non-retryable lookup error.
func NewActivityNotFoundError(activity string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityNotFound,
		Message:   "Activity not found",
		Details:   fmt.Sprintf("activity: %s", activity),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlreadySignedUpError creates a non-retryable duplicate signup error.
func NewAlreadySignedUpError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlreadySignedUp,
		Message:   "Student is already signed up for this activity",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotSignedUpError creates a non-retryable unregister error.
func NewNotSignedUpError(activity, email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotSignedUp,
		Message:   "Student is not signed up for this activity",
		Details:   fmt.Sprintf("activity: %s, email: %s", activity, email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActivityFullError creates a non-retryable capacity error.
func NewActivityFullError(activity string, maxParticipants int) *StandardError {
	return &StandardError{
		Code:      ErrCodeActivityFull,
		Message:   "Activity is full",
		Details:   fmt.Sprintf("activity: %s, max_participants: %d", activity, maxParticipants),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationError creates a non-retryable input validation error.
func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSeedInvalidError reports a seed document that cannot be loaded.
func NewSeedInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSeedInvalid,
		Message:   "Activity seed document is invalid",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEventPublishFailedError creates a retryable sink delivery error.
func NewEventPublishFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEventPublishFailed,
		Message:   "Registration event delivery failed",
		Details:   fmt.Sprintf("sink: %s, error: %s", sink, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthentication,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Error Conversion to HTTP
// ==========================

// HTTPStatusMapping maps error codes to response status codes. Codes absent
// from the map are served as 500.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeActivityNotFound: http.StatusNotFound,
	ErrCodeAlreadySignedUp:  http.StatusBadRequest,
	ErrCodeNotSignedUp:      http.StatusBadRequest,
	ErrCodeActivityFull:     http.StatusBadRequest,
	ErrCodeValidationFailed: http.StatusUnprocessableEntity,
	ErrCodeTimeout:          http.StatusGatewayTimeout,
	ErrCodeExternalService:  http.StatusBadGateway,
}

// GetHTTPStatus returns the response status for an error code.
func GetHTTPStatus(code ErrorCode) int {
	if status, ok := HTTPStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Normalize always returns a StandardError, wrapping foreign errors as
// INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "SIGNED_UP") || strings.Contains(codeStr, "FULL"):
		return "INVALID_STATE"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "EVENT") || strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "INTEGRATION"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	default:
		return "OTHER"
	}
}
