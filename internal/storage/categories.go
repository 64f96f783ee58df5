package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ListCategories returns all categories ordered by id.
func (s *SQLiteStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return listCategories(ctx, s.db)
}

func listCategories(ctx context.Context, q querier) ([]model.Category, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, emoji, color_hex, is_default
		FROM categories
		ORDER BY id
	`)
	if err != nil {
		return nil, dbError("query categories", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Emoji, &c.ColorHex, &c.IsDefault); err != nil {
			return nil, dbError("scan category", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, dbError("read categories", err)
	}
	return categories, nil
}

// GetCategory returns the category with the given id.
func (s *SQLiteStorage) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	c, err := getCategory(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, notFound("category", id)
	}
	return c, nil
}

// getCategory returns nil without error when the category does not exist.
func getCategory(ctx context.Context, q querier, id int64) (*model.Category, error) {
	var c model.Category
	err := q.QueryRowContext(ctx, `
		SELECT id, name, emoji, color_hex, is_default
		FROM categories
		WHERE id = ?
	`, id).Scan(&c.ID, &c.Name, &c.Emoji, &c.ColorHex, &c.IsDefault)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("get category", err)
	}
	return &c, nil
}

// CreateCategory adds a user category and returns its id.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, name, emoji, colorHex string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	name, emoji, colorHex, err := normalizeCategory(name, emoji, colorHex)
	if err != nil {
		return 0, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (name, emoji, color_hex, is_default)
		VALUES (?, ?, ?, 0)
	`, name, emoji, colorHex)
	if err != nil {
		return 0, dbError("create category", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, dbError("get category ID", err)
	}

	slog.Info("Created category", "id", id, "name", name)
	return id, nil
}

// UpdateCategory replaces the name, emoji and color of an existing category.
// IsDefault cannot be changed.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	name, emoji, colorHex, err := normalizeCategory(category.Name, category.Emoji, category.ColorHex)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, emoji = ?, color_hex = ?
		WHERE id = ?
	`, name, emoji, colorHex, category.ID)
	if err != nil {
		return dbError("update category", err)
	}

	return requireAffected(result, "category", category.ID)
}

// DeleteCategory removes a user category. Its transactions and budgets are kept.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := getCategory(ctx, tx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return notFound("category", id)
	}
	if c.IsDefault {
		return fmt.Errorf("%w: category %q is a default category", common.ErrProtectedEntity, c.Name)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
		return dbError("delete category", err)
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit category deletion", err)
	}

	slog.Info("Deleted category", "id", id, "name", c.Name)
	return nil
}

// CountTransactionsForCategory counts transactions that reference the category.
func (s *SQLiteStorage) CountTransactionsForCategory(ctx context.Context, id int64) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE category_id = ?`, id).Scan(&count)
	if err != nil {
		return 0, dbError("count transactions", err)
	}
	return count, nil
}

func requireAffected(result sql.Result, entity string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return dbError("check affected rows", err)
	}
	if n == 0 {
		return notFound(entity, id)
	}
	return nil
}
