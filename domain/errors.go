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

// Invalid, Forbidden and NotFound are shorthands for the most common classifications.
func Invalid(message string) *Error   { return NewError(ErrCodeInvalid, message) }
func Forbidden(message string) *Error { return NewError(ErrCodeForbidden, message) }
func NotFound(message string) *Error  { return NewError(ErrCodeNotFound, message) }

// Common domain errors.
var (
	ErrTaskNotFound         = NewError(ErrCodeNotFound, "task not found")
	ErrCategoryNotFound     = NewError(ErrCodeNotFound, "category not found")
	ErrStudentNotFound      = NewError(ErrCodeNotFound, "student not found")
	ErrParentNotFound       = NewError(ErrCodeNotFound, "parent not found")
	ErrTeacherNotFound      = NewError(ErrCodeNotFound, "teacher profile not found")
	ErrSchoolNotFound       = NewError(ErrCodeNotFound, "school not found")
	ErrClassNotFound        = NewError(ErrCodeNotFound, "class not found")
	ErrLinkRequestNotFound  = NewError(ErrCodeNotFound, "link request not found or already processed")
	ErrRewardNotFound       = NewError(ErrCodeNotFound, "reward not found")
	ErrRedemptionNotFound   = NewError(ErrCodeNotFound, "redemption not found")
	ErrUserNotFound         = NewError(ErrCodeNotFound, "user not found")
	ErrRewardUnavailable    = NewError(ErrCodeInvalid, "reward is not available for redemption")
	ErrInsufficientPoints   = NewError(ErrCodeInvalid, "insufficient points")
	ErrNotPending           = NewError(ErrCodeInvalid, "redemption is no longer pending")
	ErrRequestExpired       = NewError(ErrCodeInvalid, "link request has expired")
	ErrUnauthorized         = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload       = NewError(ErrCodeInvalid, "invalid payload")
	ErrInvalidID            = NewError(ErrCodeInvalid, "invalid id format")
	ErrProfileExists        = NewError(ErrCodeConflict, "profile already exists")
	ErrNotAwaitingApproval  = NewError(ErrCodeInvalid, "task is not awaiting approval")
	ErrTaskAlreadyApproved  = NewError(ErrCodeInvalid, "task already approved")
	ErrPointsServiceOffline = NewError(ErrCodeUnavailable, "points service unavailable")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
