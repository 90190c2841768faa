package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/spice-autocategorize/internal/config"
	"github.com/Veraticus/spice-autocategorize/internal/storage"
)

// openStorage opens and migrates the database at path.
func openStorage(ctx context.Context, path string) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}
