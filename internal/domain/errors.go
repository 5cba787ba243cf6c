package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a machine-readable error code for failures outside the
// validation verdict itself (bad requests, broken policies, collaborator outages)
type ErrorCode string

const (
	// Request Errors (VALIDATION_*)
	ErrorCodeInvalidRequest ErrorCode = "VALIDATION_INVALID_REQUEST"
	ErrorCodeInvalidMode    ErrorCode = "VALIDATION_INVALID_MODE"

	// Policy Errors (POLICY_*)
	ErrorCodePolicyInvalid  ErrorCode = "POLICY_INVALID"
	ErrorCodePolicyNotFound ErrorCode = "POLICY_NOT_FOUND"

	// Collaborator Errors (PAYEE_*, REPORT_*)
	ErrorCodePayeeLookupFailed ErrorCode = "PAYEE_LOOKUP_FAILED"
	ErrorCodeReportSaveFailed  ErrorCode = "REPORT_SAVE_FAILED"

	// Internal Errors (INTERNAL_*)
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrorCodeDatabaseError ErrorCode = "INTERNAL_DATABASE_ERROR"
)

// DomainError represents a structured domain error with error code and context
type DomainError struct {
	Err     error
	Details map[string]interface{}
	Code    ErrorCode
	Message string
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail field to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// WrapError wraps an existing error with a domain error code
func WrapError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Err:     err,
	}
}

// IsDomainError checks if an error is a DomainError with the given code
func IsDomainError(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error, returns empty string if not a DomainError
func GetErrorCode(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsRequestError checks if an error was caused by the caller's input
func IsRequestError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodeInvalidRequest ||
		code == ErrorCodeInvalidMode
}

// IsCollaboratorError checks if an error came from an external dependency
func IsCollaboratorError(err error) bool {
	code := GetErrorCode(err)
	return code == ErrorCodePayeeLookupFailed ||
		code == ErrorCodeReportSaveFailed ||
		code == ErrorCodeDatabaseError
}
