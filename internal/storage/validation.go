package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// Validation errors.
var (
	ErrNilContext          = errors.New("context cannot be nil")
	ErrEmptyString         = errors.New("string parameter cannot be empty")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrInvalidUpdate       = errors.New("invalid categorization")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Account == "" {
		return fmt.Errorf("%w: missing account", ErrInvalidTransaction)
	}
	if txn.DatePosted.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return nil
}

func validateCategorizations(updates []model.Categorization) error {
	for i, u := range updates {
		if u.TransactionID == "" {
			return fmt.Errorf("%w: update %d has no transaction id", ErrInvalidUpdate, i)
		}
		if strings.TrimSpace(u.Category) == "" {
			return fmt.Errorf("%w: update %d for %s has no category", ErrInvalidUpdate, i, u.TransactionID)
		}
	}
	return nil
}
