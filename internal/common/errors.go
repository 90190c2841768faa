// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Configuration errors.
	ErrConfiguration  = errors.New("configuration error")
	ErrUnknownAccount = fmt.Errorf("%w: unknown account", ErrConfiguration)

	// Categorization pipeline errors.
	ErrEmptyTrainingSet  = errors.New("no labeled transactions available for training")
	ErrNoWork            = errors.New("no uncategorized transactions")
	ErrNotTrained        = errors.New("model has not been trained")
	ErrValidation        = errors.New("invalid category")
	ErrContractViolation = errors.New("contract violation")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsFatal reports whether err should stop the run with a non-zero exit.
// ErrNoWork is benign: the run ends, but nothing went wrong.
func IsFatal(err error) bool {
	return err != nil && !errors.Is(err, ErrNoWork)
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
