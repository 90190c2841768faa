package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// ListUnexported returns up to limit transactions of the account that have
// not been sent to the spreadsheet yet, oldest first. A limit of zero or
// less returns all of them.
func (s *SQLiteStorage) ListUnexported(ctx context.Context, account string, limit int) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(account, "account"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	return s.queryTransactions(ctx, s.db, `
		SELECT t.account, t.id, t.date_posted, t.payee, t.memo, t.amount, t.category, t.notes
		FROM transactions t
		JOIN transaction_meta m ON m.account = t.account AND m.transaction_id = t.id
		WHERE t.account = ? AND m.exported = 0
		ORDER BY t.date_posted, t.id
		LIMIT ?
	`, account, limit)
}

// CountUnexported returns how many transactions of the account await export.
func (s *SQLiteStorage) CountUnexported(ctx context.Context, account string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transaction_meta WHERE account = ? AND exported = 0
	`, account).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unexported transactions: %w", err)
	}
	return count, nil
}

// MarkExported flags the given transactions of the account as exported.
// Call it only after the rows reached the spreadsheet.
func (s *SQLiteStorage) MarkExported(ctx context.Context, account string, ids []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(account, "account"); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now()
		for _, id := range ids {
			result, err := tx.ExecContext(ctx, `
				UPDATE transaction_meta
				SET exported = 1, exported_at = ?
				WHERE account = ? AND transaction_id = ?
			`, now, account, id)
			if err != nil {
				return fmt.Errorf("failed to mark %s exported: %w", id, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to check export flag of %s: %w", id, err)
			}
			if affected != 1 {
				return fmt.Errorf("%w: %s/%s", ErrTransactionNotFound, account, id)
			}
		}
		return nil
	})
}
