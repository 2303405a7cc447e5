package errors

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"

	"github.com/redis/go-redis/v9"
)

// MapStorageError maps session storage backend errors to AppError instances.
// It handles:
// - redis.Nil, sql.ErrNoRows, fs.ErrNotExist → NotFound
// - Context timeouts/cancellations → Timeout/Canceled
//
// AppErrors pass through untouched. Anything else is wrapped as Internal.
func MapStorageError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}

	// Check for context errors first
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Storage request timed out",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "Storage request was canceled",
			Cause:   err,
		}
	}

	if errors.Is(err, redis.Nil) || errors.Is(err, sql.ErrNoRows) || errors.Is(err, fs.ErrNotExist) {
		return &AppError{
			Code:    ErrCodeNotFound,
			Message: "Session record not found",
			Cause:   err,
		}
	}

	return &AppError{
		Code:    ErrCodeInternal,
		Message: "Session storage failure",
		Cause:   err,
	}
}

// MapContextError maps a context error to Timeout or Canceled. Other errors are returned as-is.
func MapContextError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Sign-in timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Sign-in was canceled.")
	default:
		return err
	}
}
