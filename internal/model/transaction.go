// Package model defines the domain types shared by the categorization pipeline.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnknownCategory marks a transaction that has not been categorized yet.
const UnknownCategory = "Unknown"

// Transaction is a single imported bank or credit-card transaction.
type Transaction struct {
	DatePosted time.Time
	ID         string // Institution transaction id, stable across re-imports
	Account    string
	Payee      string
	Memo       string
	Category   string
	Notes      string
	Amount     decimal.Decimal
}

// Description is the raw text the classifier learns from: payee and memo
// joined by a single space.
func (t Transaction) Description() string {
	return t.Payee + " " + t.Memo
}

// Month returns the first day of the month the transaction was posted in.
func (t Transaction) Month() time.Time {
	return time.Date(t.DatePosted.Year(), t.DatePosted.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// String renders the transaction for prompts and log lines.
func (t Transaction) String() string {
	parts := []string{t.DatePosted.Format("2006-01-02"), t.Amount.StringFixed(2), strings.TrimSpace(t.Description())}
	return strings.Join(parts, "  ")
}

// Categorization is one category/note update keyed by transaction id.
type Categorization struct {
	TransactionID string
	Category      string
	Notes         string
}

// TrainingExample is a labeled description used to fit the classifier.
// Descriptions are stored raw; normalization happens at fit time.
type TrainingExample struct {
	Description string
	Category    string
}
