package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for the authentication/authorization taxonomy. Credential-level
// failures map to 401; session and policy failures map to 403.
const (
	CodeMissingCredential = "MISSING_CREDENTIAL"
	CodeInvalidCredential = "INVALID_CREDENTIAL"
	CodeSessionExpired    = "SESSION_EXPIRED"
	CodeForbidden         = "FORBIDDEN"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewMissingCredential marks a request that carried no bearer credential.
func NewMissingCredential() error {
	return NewDomainError(CodeMissingCredential, "missing authorization header", http.StatusUnauthorized, nil)
}

// NewInvalidCredential marks a credential that failed verification. The kind
// distinguishes malformed, signature and expiry failures for callers that log.
func NewInvalidCredential(kind string, err error) error {
	return &DomainError{
		Code:       CodeInvalidCredential,
		Message:    "invalid token",
		HTTPStatus: http.StatusUnauthorized,
		Details:    map[string]any{"kind": kind},
		Err:        err,
	}
}

// NewSessionExpired marks a verified credential whose server-side session is
// absent or stale. Distinct forbidden condition, not unauthenticated.
func NewSessionExpired() error {
	return NewDomainError(CodeSessionExpired, "session expired", http.StatusForbidden, nil)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
