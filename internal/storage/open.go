package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/service"
)

var (
	_ service.Storage = (*SQLiteStorage)(nil)
	_ service.Storage = (*SnapshotStorage)(nil)
)

// Backend names a storage implementation.
type Backend string

// Supported backends.
const (
	BackendSQLite   Backend = "sqlite"
	BackendSnapshot Backend = "snapshot"
	BackendMemory   Backend = "memory"
)

// ParseBackend validates a configured backend name.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(name); b {
	case BackendSQLite, BackendSnapshot, BackendMemory:
		return b, nil
	default:
		return "", fmt.Errorf("%w: unknown storage backend %q", common.ErrInvalidConfig, name)
	}
}

// Opened is an initialized store. When the configured medium could not be
// used, Degraded is set, Cause holds the reason and Storage is an in-memory
// store whose changes will not survive the process.
type Opened struct {
	Storage  service.Storage
	Cause    error
	Backend  Backend
	Degraded bool
}

// Open creates and initializes the configured backend at path. If the medium
// is unavailable it falls back to a seeded in-memory store rather than failing.
func Open(ctx context.Context, backend Backend, path string, opts ...Option) (*Opened, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	store, err := openBackend(ctx, backend, path, opts)
	if err == nil {
		return &Opened{Storage: store, Backend: backend}, nil
	}
	if _, parseErr := ParseBackend(string(backend)); parseErr != nil {
		return nil, parseErr
	}

	slog.Warn("Storage unavailable, falling back to in-memory store; changes will not be saved",
		"backend", backend,
		"path", path,
		"error", err)

	fallback := NewMemoryStorage(opts...)
	if initErr := fallback.Initialize(ctx); initErr != nil {
		return nil, fmt.Errorf("failed to initialize fallback store: %w", initErr)
	}

	return &Opened{
		Storage:  fallback,
		Backend:  BackendMemory,
		Degraded: true,
		Cause:    err,
	}, nil
}

func openBackend(ctx context.Context, backend Backend, path string, opts []Option) (service.Storage, error) {
	var store service.Storage
	switch backend {
	case BackendSQLite:
		s, err := NewSQLiteStorage(path, opts...)
		if err != nil {
			return nil, err
		}
		store = s
	case BackendSnapshot:
		if err := validateString(path, "path"); err != nil {
			return nil, err
		}
		store = NewSnapshotStorage(NewFileMedium(path), opts...)
	case BackendMemory:
		store = NewMemoryStorage(opts...)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", common.ErrInvalidConfig, backend)
	}

	if err := store.Initialize(ctx); err != nil {
		if closeErr := store.Close(); closeErr != nil {
			slog.Debug("Failed to close store after initialization error", "error", closeErr)
		}
		return nil, err
	}
	return store, nil
}
