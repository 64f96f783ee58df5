package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Medium is where the snapshot store keeps its serialized state.
type Medium interface {
	// Load returns nil data and no error when nothing has been stored yet.
	Load(ctx context.Context) ([]byte, error)
	// Store replaces the stored document with data.
	Store(ctx context.Context, data []byte) error
}

// FileMedium stores the snapshot in a single JSON file, replaced atomically.
type FileMedium struct {
	path string
}

// NewFileMedium returns a medium backed by the file at path.
func NewFileMedium(path string) *FileMedium {
	return &FileMedium{path: filepath.Clean(path)}
}

// Path returns the snapshot file location.
func (m *FileMedium) Path() string {
	return m.path
}

// Load reads the snapshot file.
func (m *FileMedium) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return data, nil
}

// Store writes data to a temporary file and renames it over the snapshot.
func (m *FileMedium) Store(_ context.Context, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0750); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := os.Rename(tmpPath, m.path); err != nil {
		if rmErr := os.Remove(tmpPath); rmErr != nil {
			return fmt.Errorf("failed to replace snapshot: %w (cleanup: %v)", err, rmErr)
		}
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
