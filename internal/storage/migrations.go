package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS transactions (
					account TEXT NOT NULL,
					id TEXT NOT NULL,
					date_posted DATE NOT NULL,
					payee TEXT NOT NULL DEFAULT '',
					memo TEXT NOT NULL DEFAULT '',
					amount TEXT NOT NULL,
					category TEXT NOT NULL DEFAULT 'Unknown',
					notes TEXT NOT NULL DEFAULT '',
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					PRIMARY KEY (account, id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_account_category ON transactions(account, category)`,
				`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date_posted)`,

				`CREATE TABLE IF NOT EXISTS categories (
					name TEXT PRIMARY KEY,
					position INTEGER NOT NULL
				)`,
			)
		},
	},
	{
		Version:     2,
		Description: "Track spreadsheet export per transaction",
		Up: func(tx *sql.Tx) error {
			return execAll(tx,
				`CREATE TABLE IF NOT EXISTS transaction_meta (
					account TEXT NOT NULL,
					transaction_id TEXT NOT NULL,
					imported_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					exported INTEGER NOT NULL DEFAULT 0,
					exported_at DATETIME,
					PRIMARY KEY (account, transaction_id),
					FOREIGN KEY (account, transaction_id) REFERENCES transactions(account, id)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_transaction_meta_exported ON transaction_meta(account, exported)`,
				// Rows imported before export tracking existed start out unexported.
				`INSERT OR IGNORE INTO transaction_meta (account, transaction_id)
					SELECT account, id FROM transactions`,
			)
		},
	},
}

func execAll(tx *sql.Tx, queries ...string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's PRAGMA user_version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
