package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/shopspring/decimal"
)

// GetBudget returns the budget for a category and month, or nil if none is set.
func (s *SQLiteStorage) GetBudget(ctx context.Context, categoryID int64, monthYear string) (*model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getBudget(ctx, s.db, categoryID, monthYear)
}

func getBudget(ctx context.Context, q querier, categoryID int64, monthYear string) (*model.Budget, error) {
	var b model.Budget
	err := q.QueryRowContext(ctx, `
		SELECT id, category_id, limit_amount, month_year
		FROM budgets
		WHERE category_id = ? AND month_year = ?
	`, categoryID, monthYear).Scan(&b.ID, &b.CategoryID, &b.LimitAmount, &b.MonthYear)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("get budget", err)
	}
	return &b, nil
}

// ListBudgetsForMonth returns the month's budgets ordered by id.
func (s *SQLiteStorage) ListBudgetsForMonth(ctx context.Context, monthYear string) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, limit_amount, month_year
		FROM budgets
		WHERE month_year = ?
		ORDER BY id
	`, monthYear)
	if err != nil {
		return nil, dbError("query budgets", err)
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var b model.Budget
		if err := rows.Scan(&b.ID, &b.CategoryID, &b.LimitAmount, &b.MonthYear); err != nil {
			return nil, dbError("scan budget", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("read budgets", err)
	}
	return budgets, nil
}

// UpsertBudget sets the limit for a category and month, keeping the id of an existing budget.
func (s *SQLiteStorage) UpsertBudget(ctx context.Context, categoryID int64, limit decimal.Decimal, monthYear string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateBudget(limit, monthYear); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, dbError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := getBudget(ctx, tx, categoryID, monthYear)
	if err != nil {
		return 0, err
	}

	var id int64
	if existing != nil {
		id = existing.ID
		if _, err := tx.ExecContext(ctx, `UPDATE budgets SET limit_amount = ? WHERE id = ?`, limit.String(), id); err != nil {
			return 0, dbError("update budget", err)
		}
	} else {
		c, err := getCategory(ctx, tx, categoryID)
		if err != nil {
			return 0, err
		}
		if c == nil {
			return 0, categoryMissing(categoryID)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO budgets (category_id, limit_amount, month_year)
			VALUES (?, ?, ?)
		`, categoryID, limit.String(), monthYear)
		if err != nil {
			return 0, dbError("insert budget", err)
		}
		if id, err = result.LastInsertId(); err != nil {
			return 0, dbError("get budget ID", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, dbError("commit budget", err)
	}

	slog.Debug("Upserted budget", "id", id, "category_id", categoryID, "month", monthYear)
	return id, nil
}

// DeleteBudget removes a budget.
func (s *SQLiteStorage) DeleteBudget(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return dbError("delete budget", err)
	}
	return requireAffected(result, "budget", id)
}
