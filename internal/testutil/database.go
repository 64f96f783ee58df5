// Package testutil provides helpers for tests that need a seeded store.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/Veraticus/spendsmart/internal/storage"
	"github.com/shopspring/decimal"
)

// IST is the fixed zone tests bucket days in, so results do not depend on
// the machine's local time zone.
var IST = time.FixedZone("IST", 5*3600+1800)

// TestDB is an initialized store plus helpers for seeding it.
type TestDB struct {
	Storage  service.Storage
	Location *time.Location
	t        *testing.T
}

// TestDBOptions configures SetupTestDBWithOptions.
type TestDBOptions struct {
	Location *time.Location
	Backend  storage.Backend
}

// SetupTestDB opens an in-memory store located in IST.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithOptions opens and initializes a store of the requested
// backend in a temporary directory. It is closed when the test ends.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	if opts.Backend == "" {
		opts.Backend = storage.BackendMemory
	}
	if opts.Location == nil {
		opts.Location = IST
	}

	path := filepath.Join(t.TempDir(), "spendsmart.db")
	if opts.Backend == storage.BackendSnapshot {
		path = filepath.Join(filepath.Dir(path), "spendsmart.json")
	}

	opened, err := storage.Open(context.Background(), opts.Backend, path,
		storage.WithLocation(opts.Location),
		storage.WithFlushDebounce(5*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	if opened.Degraded {
		t.Fatalf("test store fell back to memory: %v", opened.Cause)
	}

	t.Cleanup(func() {
		if err := opened.Storage.Close(); err != nil {
			t.Errorf("failed to close test store: %v", err)
		}
	})

	return &TestDB{
		Storage:  opened.Storage,
		Location: opts.Location,
		t:        t,
	}
}

// At returns the epoch milliseconds of a wall-clock time in the store's location.
func (db *TestDB) At(year int, month time.Month, day, hour, minute int) int64 {
	return time.Date(year, month, day, hour, minute, 0, 0, db.Location).UnixMilli()
}

// MustAddTransaction creates a UPI transaction or fails the test.
func (db *TestDB) MustAddTransaction(categoryID int64, amount string, date int64, note string) int64 {
	db.t.Helper()
	id, err := db.Storage.CreateTransaction(context.Background(), model.TransactionInput{
		Amount:        decimal.RequireFromString(amount),
		CategoryID:    categoryID,
		Note:          note,
		Date:          date,
		PaymentMethod: model.PaymentUPI,
	})
	if err != nil {
		db.t.Fatalf("failed to add transaction: %v", err)
	}
	return id
}

// MustCreate creates a transaction from a full input or fails the test.
func (db *TestDB) MustCreate(in model.TransactionInput) int64 {
	db.t.Helper()
	id, err := db.Storage.CreateTransaction(context.Background(), in)
	if err != nil {
		db.t.Fatalf("failed to create transaction: %v", err)
	}
	return id
}

// MustSetBudget upserts a budget or fails the test.
func (db *TestDB) MustSetBudget(categoryID int64, limit, monthYear string) int64 {
	db.t.Helper()
	id, err := db.Storage.UpsertBudget(context.Background(), categoryID, decimal.RequireFromString(limit), monthYear)
	if err != nil {
		db.t.Fatalf("failed to set budget: %v", err)
	}
	return id
}

// MustCreateCategory creates a category or fails the test.
func (db *TestDB) MustCreateCategory(name, emoji, colorHex string) int64 {
	db.t.Helper()
	id, err := db.Storage.CreateCategory(context.Background(), name, emoji, colorHex)
	if err != nil {
		db.t.Fatalf("failed to create category %q: %v", name, err)
	}
	return id
}
