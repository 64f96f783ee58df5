package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/google/uuid"
)

const snapshotVersion = 1

// ErrNotInitialized is returned when a store is used before Initialize.
var ErrNotInitialized = errors.New("store not initialized")

// snapshotDocument is the persisted form of the snapshot store. Entity slices
// are kept in ascending id order.
type snapshotDocument struct {
	InstallationID    string              `json:"installation_id"`
	Categories        []model.Category    `json:"categories"`
	Transactions      []model.Transaction `json:"transactions"`
	Budgets           []model.Budget      `json:"budgets"`
	Version           int                 `json:"version"`
	NextTransactionID int64               `json:"next_transaction_id"`
	NextCategoryID    int64               `json:"next_category_id"`
	NextBudgetID      int64               `json:"next_budget_id"`
}

func seededDocument(installationID string) snapshotDocument {
	return snapshotDocument{
		Version:           snapshotVersion,
		InstallationID:    installationID,
		Categories:        model.DefaultCategories(),
		Transactions:      []model.Transaction{},
		Budgets:           []model.Budget{},
		NextTransactionID: 1,
		NextCategoryID:    model.FirstUserCategoryID,
		NextBudgetID:      1,
	}
}

// repairCounters raises any id counter that would collide with a stored id.
func (d *snapshotDocument) repairCounters() {
	for _, c := range d.Categories {
		d.NextCategoryID = max(d.NextCategoryID, c.ID+1)
	}
	for _, t := range d.Transactions {
		d.NextTransactionID = max(d.NextTransactionID, t.ID+1)
	}
	for _, b := range d.Budgets {
		d.NextBudgetID = max(d.NextBudgetID, b.ID+1)
	}
	d.NextCategoryID = max(d.NextCategoryID, model.FirstUserCategoryID)
	d.NextTransactionID = max(d.NextTransactionID, 1)
	d.NextBudgetID = max(d.NextBudgetID, 1)
}

// SnapshotStorage implements service.Storage on in-memory state that is
// written to a Medium after a quiet period following each mutation.
// A nil medium keeps the data in memory only.
type SnapshotStorage struct {
	medium   Medium
	timer    *time.Timer
	location *time.Location
	state    snapshotDocument
	retry    service.RetryOptions
	debounce time.Duration

	// mu guards state and the generation counters. writeMu serializes writes
	// to the medium and is always acquired before mu.
	mu      sync.Mutex
	writeMu sync.Mutex

	generation  uint64
	written     uint64
	initialized bool
}

// NewSnapshotStorage returns a snapshot store over medium.
func NewSnapshotStorage(medium Medium, opts ...Option) *SnapshotStorage {
	o := buildOptions(opts)
	return &SnapshotStorage{
		medium:   medium,
		location: o.location,
		debounce: o.debounce,
		retry:    o.retry,
	}
}

// NewMemoryStorage returns a snapshot store that never persists.
func NewMemoryStorage(opts ...Option) *SnapshotStorage {
	return NewSnapshotStorage(nil, opts...)
}

// Persistent reports whether the store writes to a medium.
func (s *SnapshotStorage) Persistent() bool {
	return s.medium != nil
}

// Initialize loads the stored snapshot, or seeds and writes a fresh one on first run.
func (s *SnapshotStorage) Initialize(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	if s.medium == nil {
		s.state = seededDocument(uuid.NewString())
		s.initialized = true
		slog.Debug("Initialized in-memory store")
		return nil
	}

	data, err := s.medium.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	if data != nil {
		var doc snapshotDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%w: corrupt snapshot: %w", common.ErrPersistence, err)
		}
		if doc.InstallationID != "" {
			if doc.Version > snapshotVersion {
				return fmt.Errorf("%w: snapshot version %d is newer than supported version %d",
					common.ErrPersistence, doc.Version, snapshotVersion)
			}
			doc.repairCounters()
			s.state = doc
			s.initialized = true
			slog.Debug("Loaded snapshot",
				"transactions", len(doc.Transactions),
				"categories", len(doc.Categories),
				"budgets", len(doc.Budgets))
			return nil
		}
	}

	doc := seededDocument(uuid.NewString())
	encoded, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode snapshot: %w", common.ErrPersistence, err)
	}
	if err := s.medium.Store(ctx, encoded); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	s.state = doc
	s.initialized = true
	slog.Info("Seeded default categories",
		"count", len(doc.Categories),
		"installation_id", doc.InstallationID)
	return nil
}

// InstallationID returns the id recorded when the store was first seeded.
func (s *SnapshotStorage) InstallationID(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.InstallationID, nil
}

// ready must be called with mu held.
func (s *SnapshotStorage) ready() error {
	if !s.initialized {
		return ErrNotInitialized
	}
	return nil
}

// changed records a mutation and schedules a write. Must be called with mu held.
func (s *SnapshotStorage) changed() {
	s.generation++
	if s.medium == nil {
		return
	}
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.flushInBackground)
		return
	}
	s.timer.Reset(s.debounce)
}

func (s *SnapshotStorage) flushInBackground() {
	if err := s.persist(context.Background()); err != nil {
		slog.Error("Failed to persist snapshot, will retry after the next change", "error", err)
	}
}

// persist writes the latest state if it has not been written yet.
func (s *SnapshotStorage) persist(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	gen := s.generation
	if gen == s.written {
		s.mu.Unlock()
		return nil
	}
	data, err := json.Marshal(s.state)
	s.mu.Unlock()

	if err != nil {
		return &common.RetryableError{
			Err:       fmt.Errorf("%w: encode snapshot: %w", common.ErrPersistence, err),
			Retryable: false,
		}
	}

	if err := s.medium.Store(ctx, data); err != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, err)
	}

	s.mu.Lock()
	if gen > s.written {
		s.written = gen
	}
	s.mu.Unlock()

	slog.Debug("Persisted snapshot", "generation", gen, "bytes", len(data))
	return nil
}

func (s *SnapshotStorage) stopTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
}

// FlushNow cancels the pending debounce and writes the current state synchronously.
func (s *SnapshotStorage) FlushNow(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	s.stopTimer()
	if s.medium == nil {
		return nil
	}
	return common.WithRetry(ctx, func() error { return s.persist(ctx) }, s.retry)
}

// DeleteAllData replaces the state with a freshly seeded one. The new state is
// written first; if that fails nothing changes in memory or on the medium.
func (s *SnapshotStorage) DeleteAllData(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}
	fresh := seededDocument(s.state.InstallationID)
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.medium != nil {
		data, err := json.Marshal(fresh)
		if err != nil {
			return fmt.Errorf("%w: encode snapshot: %w", common.ErrPersistence, err)
		}
		err = common.WithRetry(ctx, func() error {
			if err := s.medium.Store(ctx, data); err != nil {
				return fmt.Errorf("%w: %w", common.ErrPersistence, err)
			}
			return nil
		}, s.retry)
		if err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = fresh
	s.generation++
	s.written = s.generation
	if s.timer != nil {
		s.timer.Stop()
	}

	slog.Info("Deleted all data")
	return nil
}

// Close writes any pending changes.
func (s *SnapshotStorage) Close() error {
	return s.FlushNow(context.Background())
}
