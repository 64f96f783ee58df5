package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/spendsmart/internal/aggregate"
	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/shopspring/decimal"
)

// lock acquires mu for an operation and checks the store is usable.
// On error mu is not held.
func (s *SnapshotStorage) lock(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	if err := s.ready(); err != nil {
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *SnapshotStorage) categoryIndex(id int64) int {
	for i, c := range s.state.Categories {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *SnapshotStorage) transactionIndex(id int64) int {
	for i, t := range s.state.Transactions {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *SnapshotStorage) budgetIndex(categoryID int64, monthYear string) int {
	for i, b := range s.state.Budgets {
		if b.CategoryID == categoryID && b.MonthYear == monthYear {
			return i
		}
	}
	return -1
}

// ListCategories returns all categories ordered by id.
func (s *SnapshotStorage) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	out := make([]model.Category, len(s.state.Categories))
	copy(out, s.state.Categories)
	return out, nil
}

// GetCategory returns the category with the given id.
func (s *SnapshotStorage) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return nil, notFound("category", id)
	}
	c := s.state.Categories[i]
	return &c, nil
}

// CreateCategory adds a user category and returns its id.
func (s *SnapshotStorage) CreateCategory(ctx context.Context, name, emoji, colorHex string) (int64, error) {
	name, emoji, colorHex, err := normalizeCategory(name, emoji, colorHex)
	if err != nil {
		return 0, err
	}
	if err := s.lock(ctx); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	id := s.state.NextCategoryID
	s.state.NextCategoryID++
	s.state.Categories = append(s.state.Categories, model.Category{
		ID:       id,
		Name:     name,
		Emoji:    emoji,
		ColorHex: colorHex,
	})
	s.changed()

	slog.Info("Created category", "id", id, "name", name)
	return id, nil
}

// UpdateCategory replaces the name, emoji and color of an existing category.
func (s *SnapshotStorage) UpdateCategory(ctx context.Context, category model.Category) error {
	name, emoji, colorHex, err := normalizeCategory(category.Name, category.Emoji, category.ColorHex)
	if err != nil {
		return err
	}
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := s.categoryIndex(category.ID)
	if i < 0 {
		return notFound("category", category.ID)
	}
	c := &s.state.Categories[i]
	c.Name, c.Emoji, c.ColorHex = name, emoji, colorHex
	s.changed()
	return nil
}

// DeleteCategory removes a user category. Its transactions and budgets are kept.
func (s *SnapshotStorage) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := s.categoryIndex(id)
	if i < 0 {
		return notFound("category", id)
	}
	c := s.state.Categories[i]
	if c.IsDefault {
		return fmt.Errorf("%w: category %q is a default category", common.ErrProtectedEntity, c.Name)
	}

	s.state.Categories = append(s.state.Categories[:i], s.state.Categories[i+1:]...)
	s.changed()

	slog.Info("Deleted category", "id", id, "name", c.Name)
	return nil
}

// CountTransactionsForCategory counts transactions that reference the category.
func (s *SnapshotStorage) CountTransactionsForCategory(ctx context.Context, id int64) (int, error) {
	if err := s.lock(ctx); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.state.Transactions {
		if t.CategoryID == id {
			count++
		}
	}
	return count, nil
}

// CreateTransaction validates and stores a new transaction, returning its id.
func (s *SnapshotStorage) CreateTransaction(ctx context.Context, input model.TransactionInput) (int64, error) {
	if err := validateTransactionInput(input); err != nil {
		return 0, err
	}
	if err := s.lock(ctx); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	if s.categoryIndex(input.CategoryID) < 0 {
		return 0, categoryMissing(input.CategoryID)
	}

	id := s.state.NextTransactionID
	s.state.NextTransactionID++
	s.state.Transactions = append(s.state.Transactions, input.Build(id))
	s.changed()

	slog.Debug("Created transaction", "id", id, "category_id", input.CategoryID)
	return id, nil
}

// UpdateTransaction replaces every field of an existing transaction.
func (s *SnapshotStorage) UpdateTransaction(ctx context.Context, id int64, input model.TransactionInput) error {
	if err := validateTransactionInput(input); err != nil {
		return err
	}
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return notFound("transaction", id)
	}
	if input.CategoryID != s.state.Transactions[i].CategoryID && s.categoryIndex(input.CategoryID) < 0 {
		return categoryMissing(input.CategoryID)
	}

	s.state.Transactions[i] = input.Build(id)
	s.changed()
	return nil
}

// DeleteTransaction removes a transaction.
func (s *SnapshotStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return notFound("transaction", id)
	}
	s.state.Transactions = append(s.state.Transactions[:i], s.state.Transactions[i+1:]...)
	s.changed()
	return nil
}

// GetTransaction returns the raw transaction with the given id.
func (s *SnapshotStorage) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return nil, notFound("transaction", id)
	}
	t := s.state.Transactions[i].Clone()
	return &t, nil
}

// listing enriches the selected transactions and orders them newest first.
// Must be called with mu held.
func (s *SnapshotStorage) listing(keep func(model.Transaction) bool) []model.TransactionWithCategory {
	idx := model.NewCategoryIndex(s.state.Categories)
	rows := make([]model.TransactionWithCategory, 0, len(s.state.Transactions))
	for _, t := range s.state.Transactions {
		if keep == nil || keep(t) {
			rows = append(rows, model.Enrich(t.Clone(), idx))
		}
	}
	aggregate.SortForListing(rows)
	return rows
}

// ListTransactions returns every transaction, newest first.
func (s *SnapshotStorage) ListTransactions(ctx context.Context) ([]model.TransactionWithCategory, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.listing(nil), nil
}

// ListTransactionsByDateRange returns transactions dated within [start, end], newest first.
func (s *SnapshotStorage) ListTransactionsByDateRange(ctx context.Context, start, end int64) ([]model.TransactionWithCategory, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return s.listing(func(t model.Transaction) bool {
		return aggregate.InRange(t.Date, start, end)
	}), nil
}

// ListRecentTransactions returns at most limit transactions, newest first.
func (s *SnapshotStorage) ListRecentTransactions(ctx context.Context, limit int) ([]model.TransactionWithCategory, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return aggregate.Recent(s.listing(nil), limit), nil
}

// SearchTransactions matches query against notes and category names, ignoring case.
func (s *SnapshotStorage) SearchTransactions(ctx context.Context, query string) ([]model.TransactionWithCategory, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return aggregate.Search(s.listing(nil), query), nil
}

// GetBudget returns the budget for a category and month, or nil if none is set.
func (s *SnapshotStorage) GetBudget(ctx context.Context, categoryID int64, monthYear string) (*model.Budget, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	i := s.budgetIndex(categoryID, monthYear)
	if i < 0 {
		return nil, nil
	}
	b := s.state.Budgets[i]
	return &b, nil
}

// ListBudgetsForMonth returns the month's budgets ordered by id.
func (s *SnapshotStorage) ListBudgetsForMonth(ctx context.Context, monthYear string) ([]model.Budget, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	var out []model.Budget
	for _, b := range s.state.Budgets {
		if b.MonthYear == monthYear {
			out = append(out, b)
		}
	}
	return out, nil
}

// UpsertBudget sets the limit for a category and month, keeping the id of an existing budget.
func (s *SnapshotStorage) UpsertBudget(ctx context.Context, categoryID int64, limit decimal.Decimal, monthYear string) (int64, error) {
	if err := validateBudget(limit, monthYear); err != nil {
		return 0, err
	}
	if err := s.lock(ctx); err != nil {
		return 0, err
	}
	defer s.mu.Unlock()

	if i := s.budgetIndex(categoryID, monthYear); i >= 0 {
		s.state.Budgets[i].LimitAmount = limit
		s.changed()
		return s.state.Budgets[i].ID, nil
	}

	if s.categoryIndex(categoryID) < 0 {
		return 0, categoryMissing(categoryID)
	}

	id := s.state.NextBudgetID
	s.state.NextBudgetID++
	s.state.Budgets = append(s.state.Budgets, model.Budget{
		ID:          id,
		CategoryID:  categoryID,
		LimitAmount: limit,
		MonthYear:   monthYear,
	})
	s.changed()
	return id, nil
}

// DeleteBudget removes a budget.
func (s *SnapshotStorage) DeleteBudget(ctx context.Context, id int64) error {
	if err := s.lock(ctx); err != nil {
		return err
	}
	defer s.mu.Unlock()

	for i, b := range s.state.Budgets {
		if b.ID == id {
			s.state.Budgets = append(s.state.Budgets[:i], s.state.Budgets[i+1:]...)
			s.changed()
			return nil
		}
	}
	return notFound("budget", id)
}

// TotalForRange sums every transaction dated within [start, end].
func (s *SnapshotStorage) TotalForRange(ctx context.Context, start, end int64) (decimal.Decimal, error) {
	if err := s.lock(ctx); err != nil {
		return decimal.Zero, err
	}
	defer s.mu.Unlock()
	return aggregate.Total(s.state.Transactions, start, end), nil
}

// TotalForCategoryInRange sums one category's transactions within [start, end].
func (s *SnapshotStorage) TotalForCategoryInRange(ctx context.Context, categoryID, start, end int64) (decimal.Decimal, error) {
	if err := s.lock(ctx); err != nil {
		return decimal.Zero, err
	}
	defer s.mu.Unlock()
	return aggregate.TotalForCategory(s.state.Transactions, categoryID, start, end), nil
}

// CategorySpendingForRange groups spending within [start, end] by category, largest first.
func (s *SnapshotStorage) CategorySpendingForRange(ctx context.Context, start, end int64) ([]model.CategorySpending, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	idx := model.NewCategoryIndex(s.state.Categories)
	return aggregate.ByCategory(s.state.Transactions, idx, start, end), nil
}

// DailySpendingForRange buckets spending within [start, end] by local day.
func (s *SnapshotStorage) DailySpendingForRange(ctx context.Context, start, end int64) ([]model.DailySpending, error) {
	if err := s.lock(ctx); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()
	return aggregate.ByDay(s.state.Transactions, s.location, start, end), nil
}
