package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/google/uuid"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const metaInstallationID = "installation_id"

// SQLiteStorage implements service.Storage on an embedded SQLite database.
type SQLiteStorage struct {
	db       *sql.DB
	location *time.Location
	dbPath   string
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
// Pass ":memory:" for a throwaway database.
func NewSQLiteStorage(dbPath string, opts ...Option) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}
	o := buildOptions(opts)

	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, dbError("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, dbError("open database", err)
	}

	// A single connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, dbError("ping database", err)
	}

	return &SQLiteStorage{
		db:       db,
		dbPath:   dbPath,
		location: o.location,
	}, nil
}

// Initialize applies migrations and seeds the default categories once.
func (s *SQLiteStorage) Initialize(ctx context.Context) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	var installationID string
	err = tx.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaInstallationID).Scan(&installationID)
	switch {
	case err == nil:
		slog.Debug("Store already initialized", "installation_id", installationID)
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return dbError("read initialization marker", err)
	}

	if err := seedCategoriesTx(ctx, tx); err != nil {
		return err
	}

	installationID = uuid.NewString()
	if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, metaInstallationID, installationID); err != nil {
		return dbError("record initialization", err)
	}

	if err := tx.Commit(); err != nil {
		return dbError("commit seed", err)
	}

	slog.Info("Seeded default categories",
		"count", len(model.DefaultCategories()),
		"installation_id", installationID)
	return nil
}

// InstallationID returns the id recorded when the store was first seeded.
func (s *SQLiteStorage) InstallationID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, metaInstallationID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", dbError("read installation id", err)
	}
	return id, nil
}

func seedCategoriesTx(ctx context.Context, tx *sql.Tx) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO categories (id, name, emoji, color_hex, is_default)
		VALUES (?, ?, ?, ?, 1)
	`)
	if err != nil {
		return dbError("prepare seed statement", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, c := range model.DefaultCategories() {
		if _, err := stmt.ExecContext(ctx, c.ID, c.Name, c.Emoji, c.ColorHex); err != nil {
			return dbError(fmt.Sprintf("seed category %q", c.Name), err)
		}
	}
	return nil
}

// FlushNow is a no-op: every SQLite write is durable when it returns.
func (s *SQLiteStorage) FlushNow(ctx context.Context) error {
	return validateContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// dbError marks a driver failure as a persistence error.
func dbError(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", common.ErrPersistence, action, err)
}
