package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors. Authentication failures deliberately carry generic
// messages so callers cannot distinguish which check failed.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user not found")
	ErrContactNotFound    = NewError(ErrCodeNotFound, "contact not found")
	ErrUserAlreadyExists  = NewError(ErrCodeConflict, "user with this email or username already exists")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "Invalid email or password")
	ErrInvalidToken       = NewError(ErrCodeUnauthorized, "invalid token")
	ErrUnauthenticated    = NewError(ErrCodeUnauthorized, "authentication credentials required")
	ErrUserInactive       = NewError(ErrCodeUnauthorized, "user not found or inactive")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrStorageUnavailable = NewError(ErrCodeUnavailable, "storage unavailable")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
