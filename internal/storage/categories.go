package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/spice-autocategorize/internal/model"
)

// ListCategories returns the category vocabulary in insertion order.
func (s *SQLiteStorage) ListCategories(ctx context.Context) (model.Vocabulary, error) {
	if err := validateContext(ctx); err != nil {
		return model.Vocabulary{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM categories ORDER BY position, name
	`)
	if err != nil {
		return model.Vocabulary{}, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return model.Vocabulary{}, fmt.Errorf("failed to scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return model.Vocabulary{}, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return model.NewVocabulary(names), nil
}

// AddCategories appends names to the vocabulary and returns how many were
// new. Names are trimmed; blanks and "Unknown" are rejected.
func (s *SQLiteStorage) AddCategories(ctx context.Context, names []string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if err := validateString(trimmed, "category name"); err != nil {
			return 0, err
		}
		if trimmed == model.UnknownCategory {
			return 0, fmt.Errorf("%w: %q is reserved for uncategorized transactions", ErrInvalidUpdate, trimmed)
		}
	}

	added := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), -1) + 1 FROM categories`).Scan(&next); err != nil {
			return fmt.Errorf("failed to read category position: %w", err)
		}

		for _, name := range names {
			result, err := tx.ExecContext(ctx, `
				INSERT OR IGNORE INTO categories (name, position) VALUES (?, ?)
			`, strings.TrimSpace(name), next)
			if err != nil {
				return fmt.Errorf("failed to add category %q: %w", name, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to check insert of category %q: %w", name, err)
			}
			if affected > 0 {
				added++
				next++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
