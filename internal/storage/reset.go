package storage

import (
	"context"
	"log/slog"
)

// DeleteAllData clears transactions and budgets, restores the default
// categories and restarts every id counter, in one database transaction.
func (s *SQLiteStorage) DeleteAllData(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, query := range []string{
		`DELETE FROM transactions`,
		`DELETE FROM budgets`,
		`DELETE FROM categories`,
		`DELETE FROM sqlite_sequence WHERE name IN ('transactions', 'budgets', 'categories')`,
	} {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return dbError("reset data", err)
		}
	}

	if err := seedCategoriesTx(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit reset", err)
	}

	slog.Info("Deleted all data", "path", s.dbPath)
	return nil
}
