package storage

import (
	"context"

	"github.com/Veraticus/spendsmart/internal/aggregate"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/shopspring/decimal"
)

// rangeByID loads the transactions within [start, end] in ascending id order.
func rangeByID(ctx context.Context, q querier, start, end int64) ([]model.Transaction, error) {
	return queryTransactions(ctx, q, "WHERE date BETWEEN ? AND ? ORDER BY id", start, end)
}

// TotalForRange sums every transaction dated within [start, end].
func (s *SQLiteStorage) TotalForRange(ctx context.Context, start, end int64) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}
	txns, err := rangeByID(ctx, s.db, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return aggregate.Total(txns, start, end), nil
}

// TotalForCategoryInRange sums one category's transactions within [start, end].
func (s *SQLiteStorage) TotalForCategoryInRange(ctx context.Context, categoryID, start, end int64) (decimal.Decimal, error) {
	if err := validateContext(ctx); err != nil {
		return decimal.Zero, err
	}
	txns, err := queryTransactions(ctx, s.db,
		"WHERE category_id = ? AND date BETWEEN ? AND ? ORDER BY id", categoryID, start, end)
	if err != nil {
		return decimal.Zero, err
	}
	return aggregate.TotalForCategory(txns, categoryID, start, end), nil
}

// CategorySpendingForRange groups spending within [start, end] by category, largest first.
func (s *SQLiteStorage) CategorySpendingForRange(ctx context.Context, start, end int64) ([]model.CategorySpending, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, dbError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	txns, err := rangeByID(ctx, tx, start, end)
	if err != nil {
		return nil, err
	}
	categories, err := listCategories(ctx, tx)
	if err != nil {
		return nil, err
	}

	return aggregate.ByCategory(txns, model.NewCategoryIndex(categories), start, end), nil
}

// DailySpendingForRange buckets spending within [start, end] by local day.
func (s *SQLiteStorage) DailySpendingForRange(ctx context.Context, start, end int64) ([]model.DailySpending, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	txns, err := rangeByID(ctx, s.db, start, end)
	if err != nil {
		return nil, err
	}
	return aggregate.ByDay(txns, s.location, start, end), nil
}
