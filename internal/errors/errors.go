package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeInvalidCredentials indicates the email/password pair was rejected.
	ErrCodeInvalidCredentials ErrorCode = "invalid_credentials"
	// ErrCodeInvalidInput indicates a required field was missing or malformed.
	ErrCodeInvalidInput ErrorCode = "invalid_input"
	// ErrCodePasswordTooShort indicates the password is below the policy minimum.
	ErrCodePasswordTooShort ErrorCode = "password_too_short"
	// ErrCodeOperationInProgress indicates a login or register attempt is already in flight.
	ErrCodeOperationInProgress ErrorCode = "operation_in_progress"
	// ErrCodeCorruptedSessionData indicates a persisted session record failed validation.
	// It never leaves the session service.
	ErrCodeCorruptedSessionData ErrorCode = "corrupted_session_data"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and optional cause.
// It supports error wrapping and unwrapping for use with errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for input errors)
	Field string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// InvalidCredentials creates a new InvalidCredentials error.
func InvalidCredentials(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidCredentials,
		Message: message,
	}
}

// InvalidInput creates a new InvalidInput error for a specific field.
func InvalidInput(field, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidInput,
		Message: message,
		Field:   field,
	}
}

// PasswordTooShort creates a new PasswordTooShort error for the given minimum length.
func PasswordTooShort(minLength int) *AppError {
	return &AppError{
		Code:    ErrCodePasswordTooShort,
		Message: fmt.Sprintf("Password must be at least %d characters", minLength),
		Field:   "password",
	}
}

// OperationInProgress creates a new OperationInProgress error naming the rejected operation.
func OperationInProgress(op string) *AppError {
	return &AppError{
		Code:    ErrCodeOperationInProgress,
		Message: fmt.Sprintf("%s rejected: another sign-in is already in progress", op),
	}
}

// CorruptedSessionData wraps a decode or validation failure of a persisted session record.
func CorruptedSessionData(cause error) *AppError {
	return &AppError{
		Code:    ErrCodeCorruptedSessionData,
		Message: "persisted session is corrupted",
		Cause:   cause,
	}
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: message,
	}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsInvalidCredentials checks if an error is an InvalidCredentials error.
func IsInvalidCredentials(err error) bool {
	return isCode(err, ErrCodeInvalidCredentials)
}

// IsInvalidInput checks if an error is an InvalidInput error.
func IsInvalidInput(err error) bool {
	return isCode(err, ErrCodeInvalidInput)
}

// IsPasswordTooShort checks if an error is a PasswordTooShort error.
func IsPasswordTooShort(err error) bool {
	return isCode(err, ErrCodePasswordTooShort)
}

// IsOperationInProgress checks if an error is an OperationInProgress error.
func IsOperationInProgress(err error) bool {
	return isCode(err, ErrCodeOperationInProgress)
}

// IsCorruptedSessionData checks if an error is a CorruptedSessionData error.
func IsCorruptedSessionData(err error) bool {
	return isCode(err, ErrCodeCorruptedSessionData)
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool {
	return isCode(err, ErrCodeNotFound)
}

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool {
	return isCode(err, ErrCodeInternal)
}

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool {
	return isCode(err, ErrCodeTimeout)
}

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool {
	return isCode(err, ErrCodeCanceled)
}

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
