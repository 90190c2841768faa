package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/spice-autocategorize/internal/model"
)

const transactionColumns = `account, id, date_posted, payee, memo, amount, category, notes`

// SaveTransactions inserts transactions that are not stored yet, each with
// an unexported metadata row, and returns how many were new. A transaction
// already present for the same account and id is left untouched.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactions(transactions); err != nil {
		return 0, err
	}
	if len(transactions) == 0 {
		return 0, nil
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		txnStmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = txnStmt.Close() }()

		metaStmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO transaction_meta (account, transaction_id, imported_at, exported)
			VALUES (?, ?, ?, 0)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = metaStmt.Close() }()

		now := time.Now()
		for _, txn := range transactions {
			category := txn.Category
			if category == "" {
				category = model.UnknownCategory
			}

			result, err := txnStmt.ExecContext(ctx,
				txn.Account,
				txn.ID,
				txn.DatePosted,
				txn.Payee,
				txn.Memo,
				txn.Amount,
				category,
				txn.Notes,
			)
			if err != nil {
				return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to check insert of %s: %w", txn.ID, err)
			}
			if affected == 0 {
				slog.Debug("Skipping existing transaction", "account", txn.Account, "id", txn.ID)
				continue
			}

			if _, err := metaStmt.ExecContext(ctx, txn.Account, txn.ID, now); err != nil {
				return fmt.Errorf("failed to insert metadata for %s: %w", txn.ID, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ListLabeled returns the account's transactions that carry a category other
// than Unknown.
func (s *SQLiteStorage) ListLabeled(ctx context.Context, account string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(account, "account"); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE account = ? AND category != ?
		ORDER BY date_posted, id
	`, account, model.UnknownCategory)
}

// ListUnlabeled returns the account's transactions whose category is Unknown,
// oldest first.
func (s *SQLiteStorage) ListUnlabeled(ctx context.Context, account string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(account, "account"); err != nil {
		return nil, err
	}

	return s.queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE account = ? AND category = ?
		ORDER BY date_posted, id
	`, account, model.UnknownCategory)
}

// GetTransaction retrieves a single transaction.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, account, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	txns, err := s.queryTransactions(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE account = ? AND id = ?
	`, account, id)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrTransactionNotFound, account, id)
	}
	return &txns[0], nil
}

// ApplyCategorizations writes every update in one database transaction.
// An update that matches no row of the account fails the whole batch and
// nothing is written.
func (s *SQLiteStorage) ApplyCategorizations(ctx context.Context, account string, updates []model.Categorization) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(account, "account"); err != nil {
		return err
	}
	if err := validateCategorizations(updates); err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE transactions
			SET category = ?, notes = ?
			WHERE account = ? AND id = ?
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, u := range updates {
			result, err := stmt.ExecContext(ctx, u.Category, u.Notes, account, u.TransactionID)
			if err != nil {
				return fmt.Errorf("failed to update transaction %s: %w", u.TransactionID, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to check update of %s: %w", u.TransactionID, err)
			}
			if affected != 1 {
				return fmt.Errorf("%w: %s/%s", ErrTransactionNotFound, account, u.TransactionID)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to apply %d categorizations: %w", len(updates), err)
	}

	slog.Debug("Applied categorizations", "account", account, "count", len(updates))
	return nil
}

// CountTransactions returns how many transactions the account holds, split
// into labeled and unlabeled.
func (s *SQLiteStorage) CountTransactions(ctx context.Context, account string) (labeled, unlabeled int, err error) {
	if err := validateContext(ctx); err != nil {
		return 0, 0, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN category != ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN category = ? THEN 1 ELSE 0 END), 0)
		FROM transactions
		WHERE account = ?
	`, model.UnknownCategory, model.UnknownCategory, account).Scan(&labeled, &unlabeled)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return labeled, unlabeled, nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, q queryable, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	err := row.Scan(
		&txn.Account,
		&txn.ID,
		&txn.DatePosted,
		&txn.Payee,
		&txn.Memo,
		&txn.Amount,
		&txn.Category,
		&txn.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return txn, ErrTransactionNotFound
	}
	if err != nil {
		return txn, fmt.Errorf("failed to scan transaction: %w", err)
	}
	return txn, nil
}
