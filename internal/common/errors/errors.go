// Package errors provides standardized error handling for the loan scoring client.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed      ErrorCode = "VALIDATION_FAILED"
	ErrCodeApplicationRejected   ErrorCode = "APPLICATION_REJECTED"
	ErrCodeServiceUnreachable    ErrorCode = "SERVICE_UNREACHABLE"
	ErrCodeUnexpectedStatus      ErrorCode = "UNEXPECTED_STATUS"
	ErrCodeMalformedResponse     ErrorCode = "MALFORMED_RESPONSE"
	ErrCodeRequestEncodingFailed ErrorCode = "REQUEST_ENCODING_FAILED"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

const (
	CategoryValidation  = "VALIDATION"
	CategoryApplication = "APPLICATION"
	CategoryTransport   = "TRANSPORT"
	CategoryOther       = "OTHER"
)

// DefaultRejectionMessage is used when the service rejects without a reason.
const DefaultRejectionMessage = "Failed to process loan application"

// StandardError represents a structured client error.
type StandardError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	StatusCode int                    `json:"statusCode,omitempty"`
	Retryable  bool                   `json:"retryable"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Cause      error                  `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// WithMetadata attaches a key to the error and returns it.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError reports a draft that failed local validation.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Application data validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewApplicationRejectedError wraps a success:false answer from the service.
func NewApplicationRejectedError(message string, statusCode int) *StandardError {
	if message == "" {
		message = DefaultRejectionMessage
	}
	return &StandardError{
		Code:       ErrCodeApplicationRejected,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  false,
		Timestamp:  time.Now().UTC(),
	}
}

// NewServiceUnreachableError reports a request that never got a response.
func NewServiceUnreachableError(baseURL string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceUnreachable,
		Message:   "Loan scoring service is unreachable",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"baseUrl": baseURL},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewUnexpectedStatusError reports a non-2xx answer that is not a rejection.
func NewUnexpectedStatusError(statusCode int, message string) *StandardError {
	if message == "" {
		message = fmt.Sprintf("scoring service returned status %d", statusCode)
	}
	return &StandardError{
		Code:       ErrCodeUnexpectedStatus,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500,
		Timestamp:  time.Now().UTC(),
	}
}

// NewMalformedResponseError reports a body that could not be decoded or failed its schema.
func NewMalformedResponseError(endpoint string, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedResponse,
		Message:   "Malformed response from scoring service",
		Details:   fmt.Sprintf("endpoint: %s, error: %s", endpoint, details),
		Retryable: false,
		Metadata:  map[string]interface{}{"endpoint": endpoint},
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestEncodingFailedError reports a request body that could not be built.
func NewRequestEncodingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestEncodingFailed,
		Message:   "Failed to encode request",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// FromError normalizes any error into a StandardError.
func FromError(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// CodeOf returns the code of err, or "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return FromError(err).Code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed:
		return CategoryValidation
	case ErrCodeApplicationRejected:
		return CategoryApplication
	case ErrCodeServiceUnreachable,
		ErrCodeUnexpectedStatus,
		ErrCodeMalformedResponse,
		ErrCodeRequestEncodingFailed:
		return CategoryTransport
	default:
		return CategoryOther
	}
}

// IsTransportError reports whether err is a failure to get a usable answer.
func IsTransportError(err error) bool {
	return err != nil && GetErrorCategory(CodeOf(err)) == CategoryTransport
}

// IsApplicationRejection reports whether the service answered success:false.
func IsApplicationRejection(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeApplicationRejected
}

// IsUnreachable reports whether no response was received at all.
func IsUnreachable(err error) bool {
	return err != nil && CodeOf(err) == ErrCodeServiceUnreachable
}
