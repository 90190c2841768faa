package categorizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-autocategorize/internal/common"
	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// CategoryWriter applies a batch of categorizations atomically.
type CategoryWriter interface {
	ApplyCategorizations(ctx context.Context, account string, updates []model.Categorization) error
}

// Commit writes categories[i] and notes[i] to records[i] as one batch. The
// three slices must have the same length; otherwise nothing is written.
func Commit(ctx context.Context, w CategoryWriter, account string, records []model.Transaction, categories, notes []string) error {
	if len(records) != len(categories) || len(records) != len(notes) {
		return fmt.Errorf("%w: %d records, %d categories, %d notes",
			common.ErrContractViolation, len(records), len(categories), len(notes))
	}
	if len(records) == 0 {
		return nil
	}

	updates := make([]model.Categorization, len(records))
	for i, txn := range records {
		updates[i] = model.Categorization{
			TransactionID: txn.ID,
			Category:      categories[i],
			Notes:         notes[i],
		}
	}

	if err := w.ApplyCategorizations(ctx, account, updates); err != nil {
		return fmt.Errorf("failed to commit categorizations: %w", err)
	}

	slog.Info("Committed categorizations", "account", account, "count", len(updates))
	return nil
}
