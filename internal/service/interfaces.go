// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/shopspring/decimal"
)

// Storage defines the contract for our persistence layer.
// Date ranges are inclusive epoch-millisecond bounds; an inverted range matches nothing.
type Storage interface {
	// Initialize prepares the store and seeds default categories on first run.
	// It must be called before any other method and is idempotent.
	Initialize(ctx context.Context) error

	CategoryStore
	TransactionStore
	BudgetStore
	SpendingQueries

	// DeleteAllData clears transactions and budgets and restores the default categories.
	DeleteAllData(ctx context.Context) error
	// FlushNow persists any pending writes before returning.
	FlushNow(ctx context.Context) error
	Close() error
}

// CategoryStore manages categories.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, name, emoji, colorHex string) (int64, error)
	UpdateCategory(ctx context.Context, category model.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	CountTransactionsForCategory(ctx context.Context, id int64) (int, error)
}

// TransactionStore manages transactions. Listing methods return rows ordered
// by date descending, ties broken by ascending id.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, input model.TransactionInput) (int64, error)
	UpdateTransaction(ctx context.Context, id int64, input model.TransactionInput) error
	DeleteTransaction(ctx context.Context, id int64) error
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	ListTransactions(ctx context.Context) ([]model.TransactionWithCategory, error)
	ListTransactionsByDateRange(ctx context.Context, start, end int64) ([]model.TransactionWithCategory, error)
	ListRecentTransactions(ctx context.Context, limit int) ([]model.TransactionWithCategory, error)
	SearchTransactions(ctx context.Context, query string) ([]model.TransactionWithCategory, error)
}

// BudgetStore manages monthly budgets.
type BudgetStore interface {
	// GetBudget returns nil without error when no budget exists.
	GetBudget(ctx context.Context, categoryID int64, monthYear string) (*model.Budget, error)
	ListBudgetsForMonth(ctx context.Context, monthYear string) ([]model.Budget, error)
	UpsertBudget(ctx context.Context, categoryID int64, limit decimal.Decimal, monthYear string) (int64, error)
	DeleteBudget(ctx context.Context, id int64) error
}

// SpendingQueries aggregates transactions.
type SpendingQueries interface {
	TotalForRange(ctx context.Context, start, end int64) (decimal.Decimal, error)
	TotalForCategoryInRange(ctx context.Context, categoryID, start, end int64) (decimal.Decimal, error)
	CategorySpendingForRange(ctx context.Context, start, end int64) ([]model.CategorySpending, error)
	DailySpendingForRange(ctx context.Context, start, end int64) ([]model.DailySpending, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
