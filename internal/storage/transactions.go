package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/Veraticus/spendsmart/internal/aggregate"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/shopspring/decimal"
)

const transactionColumns = `id, amount, category_id, note, date, payment_method,
	is_recurring, recurring_interval_days, is_split, split_share`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		t        model.Transaction
		method   string
		interval sql.NullInt64
		share    decimal.NullDecimal
	)
	err := row.Scan(&t.ID, &t.Amount, &t.CategoryID, &t.Note, &t.Date, &method,
		&t.IsRecurring, &interval, &t.IsSplit, &share)
	if err != nil {
		return t, err
	}

	t.PaymentMethod = model.PaymentMethod(method)
	if interval.Valid {
		days := int(interval.Int64)
		t.RecurringIntervalDays = &days
	}
	if share.Valid {
		v := share.Decimal
		t.SplitShare = &v
	}
	return t, nil
}

func transactionArgs(in model.TransactionInput) []any {
	var interval, share any
	if in.RecurringIntervalDays != nil {
		interval = *in.RecurringIntervalDays
	}
	if in.SplitShare != nil {
		share = in.SplitShare.String()
	}
	return []any{
		in.Amount.String(), in.CategoryID, in.Note, in.Date, string(in.PaymentMethod),
		in.IsRecurring, interval, in.IsSplit, share,
	}
}

// CreateTransaction validates and stores a new transaction, returning its id.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, input model.TransactionInput) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateTransactionInput(input); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, dbError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := getCategory(ctx, tx, input.CategoryID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, categoryMissing(input.CategoryID)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (amount, category_id, note, date, payment_method,
			is_recurring, recurring_interval_days, is_split, split_share)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, transactionArgs(input)...)
	if err != nil {
		return 0, dbError("insert transaction", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, dbError("get transaction ID", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, dbError("commit transaction", err)
	}

	slog.Debug("Created transaction", "id", id, "category_id", input.CategoryID)
	return id, nil
}

// UpdateTransaction replaces every field of an existing transaction.
// A transaction whose category was deleted may keep that category id.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, id int64, input model.TransactionInput) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactionInput(input); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := getTransaction(ctx, tx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return notFound("transaction", id)
	}

	if input.CategoryID != existing.CategoryID {
		c, err := getCategory(ctx, tx, input.CategoryID)
		if err != nil {
			return err
		}
		if c == nil {
			return categoryMissing(input.CategoryID)
		}
	}

	args := append(transactionArgs(input), id)
	if _, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, category_id = ?, note = ?, date = ?, payment_method = ?,
			is_recurring = ?, recurring_interval_days = ?, is_split = ?, split_share = ?
		WHERE id = ?
	`, args...); err != nil {
		return dbError("update transaction", err)
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit transaction", err)
	}
	return nil
}

// DeleteTransaction removes a transaction.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return dbError("delete transaction", err)
	}
	return requireAffected(result, "transaction", id)
}

// GetTransaction returns the raw transaction with the given id.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	t, err := getTransaction(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, notFound("transaction", id)
	}
	return t, nil
}

func getTransaction(ctx context.Context, q querier, id int64) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dbError("get transaction", err)
	}
	return &t, nil
}

// ListTransactions returns every transaction, newest first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context) ([]model.TransactionWithCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listEnriched(ctx, "", nil)
}

// ListTransactionsByDateRange returns transactions dated within [start, end], newest first.
func (s *SQLiteStorage) ListTransactionsByDateRange(ctx context.Context, start, end int64) ([]model.TransactionWithCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.listEnriched(ctx, "WHERE date BETWEEN ? AND ?", []any{start, end})
}

// ListRecentTransactions returns at most limit transactions, newest first.
func (s *SQLiteStorage) ListRecentTransactions(ctx context.Context, limit int) ([]model.TransactionWithCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	rows, err := s.listEnriched(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	return aggregate.Recent(rows, limit), nil
}

// SearchTransactions matches query against notes and category names, ignoring case.
func (s *SQLiteStorage) SearchTransactions(ctx context.Context, query string) ([]model.TransactionWithCategory, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	rows, err := s.listEnriched(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	return aggregate.Search(rows, query), nil
}

// listEnriched reads matching transactions and joins them with the current categories.
func (s *SQLiteStorage) listEnriched(ctx context.Context, where string, args []any) ([]model.TransactionWithCategory, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, dbError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	txns, err := queryTransactions(ctx, tx, where+" ORDER BY date DESC, id ASC", args...)
	if err != nil {
		return nil, err
	}
	categories, err := listCategories(ctx, tx)
	if err != nil {
		return nil, err
	}

	return model.NewCategoryIndex(categories).EnrichAll(txns), nil
}

func queryTransactions(ctx context.Context, q querier, clause string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+transactionColumns+` FROM transactions `+clause, args...)
	if err != nil {
		return nil, dbError("query transactions", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, dbError("scan transaction", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError("read transactions", err)
	}
	return txns, nil
}
