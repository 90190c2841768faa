// Package testutil provides test utilities for the spice autocategorizer:
// migrated in-memory databases and transaction fixtures.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spice-autocategorize/internal/model"
	"github.com/Veraticus/spice-autocategorize/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database seeded with the given
// categories. It automatically handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.BasicCategories...)
//	db.SeedTransactions(testutil.NewTransaction("1").WithPayee("SAFEWAY").Build())
func SetupTestDB(t *testing.T, categories ...string) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(categories) > 0 {
		if _, err := store.AddCategories(ctx, categories); err != nil {
			t.Fatalf("failed to seed categories: %v", err)
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		t:       t,
	}
}

// SeedTransactions saves transactions or fails the test.
func (db *TestDB) SeedTransactions(txns ...model.Transaction) {
	db.t.Helper()
	if _, err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// MustGet returns a stored transaction or fails the test.
func (db *TestDB) MustGet(account, id string) model.Transaction {
	db.t.Helper()
	txn, err := db.Storage.GetTransaction(context.Background(), account, id)
	if err != nil {
		db.t.Fatalf("failed to load transaction %s/%s: %v", account, id, err)
	}
	return *txn
}
