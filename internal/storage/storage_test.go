package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLocation = time.FixedZone("IST", 5*3600+1800)

type backendFactory struct {
	open func(t *testing.T) service.Storage
	name string
}

func backends() []backendFactory {
	opts := []Option{WithLocation(testLocation), WithFlushDebounce(5 * time.Millisecond)}
	return []backendFactory{
		{
			name: "sqlite",
			open: func(t *testing.T) service.Storage {
				t.Helper()
				store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"), opts...)
				require.NoError(t, err)
				return store
			},
		},
		{
			name: "snapshot",
			open: func(t *testing.T) service.Storage {
				t.Helper()
				return NewSnapshotStorage(NewFileMedium(filepath.Join(t.TempDir(), "snapshot.json")), opts...)
			},
		},
		{
			name: "memory",
			open: func(t *testing.T) service.Storage {
				t.Helper()
				return NewMemoryStorage(opts...)
			},
		},
	}
}

// forEachBackend runs fn against a freshly initialized store of every backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, ctx context.Context, s service.Storage)) {
	t.Helper()
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			s := b.open(t)
			require.NoError(t, s.Initialize(ctx))
			t.Cleanup(func() { _ = s.Close() })
			fn(t, ctx, s)
		})
	}
}

func at(year int, month time.Month, day, hour, minute int) int64 {
	return time.Date(year, month, day, hour, minute, 0, 0, testLocation).UnixMilli()
}

func input(categoryID int64, amount string, date int64, note string) model.TransactionInput {
	return model.TransactionInput{
		Amount:        decimal.RequireFromString(amount),
		CategoryID:    categoryID,
		Note:          note,
		Date:          date,
		PaymentMethod: model.PaymentUPI,
	}
}

func mustCreate(t *testing.T, ctx context.Context, s service.Storage, in model.TransactionInput) int64 {
	t.Helper()
	id, err := s.CreateTransaction(ctx, in)
	require.NoError(t, err)
	return id
}

func rowIDs(rows []model.TransactionWithCategory) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestInitializeSeedsOnce(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		require.NoError(t, s.Initialize(ctx))

		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.DefaultCategories(), cats)

		id, err := s.CreateCategory(ctx, "Pets", "🐶", "#123456")
		require.NoError(t, err)
		assert.Equal(t, model.FirstUserCategoryID, id)

		require.NoError(t, s.Initialize(ctx))
		cats, err = s.ListCategories(ctx)
		require.NoError(t, err)
		assert.Len(t, cats, 13)
	})
}

func TestCategories(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		t.Run("create fills defaults", func(t *testing.T) {
			id, err := s.CreateCategory(ctx, "  Gifts ", "", "")
			require.NoError(t, err)

			c, err := s.GetCategory(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, "Gifts", c.Name)
			assert.Equal(t, model.FallbackCategoryEmoji, c.Emoji)
			assert.Equal(t, model.FallbackCategoryColor, c.ColorHex)
			assert.False(t, c.IsDefault)
		})

		t.Run("create rejects invalid input", func(t *testing.T) {
			_, err := s.CreateCategory(ctx, "   ", "🎁", "#FFFFFF")
			assert.ErrorIs(t, err, common.ErrValidation)

			_, err = s.CreateCategory(ctx, "Bad color", "🎁", "red")
			assert.ErrorIs(t, err, common.ErrValidation)
		})

		t.Run("update keeps default flag", func(t *testing.T) {
			err := s.UpdateCategory(ctx, model.Category{ID: 1, Name: "Food", Emoji: "🍕", ColorHex: "#000000", IsDefault: false})
			require.NoError(t, err)

			c, err := s.GetCategory(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, "Food", c.Name)
			assert.Equal(t, "🍕", c.Emoji)
			assert.Equal(t, "#000000", c.ColorHex)
			assert.True(t, c.IsDefault)
		})

		t.Run("update missing", func(t *testing.T) {
			err := s.UpdateCategory(ctx, model.Category{ID: 999, Name: "Ghost"})
			assert.ErrorIs(t, err, common.ErrNotFound)
		})

		t.Run("defaults are protected", func(t *testing.T) {
			for id := int64(1); id <= 12; id++ {
				assert.ErrorIs(t, s.DeleteCategory(ctx, id), common.ErrProtectedEntity)
			}
			cats, err := s.ListCategories(ctx)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(cats), 12)
		})

		t.Run("delete and ids are not reused", func(t *testing.T) {
			id, err := s.CreateCategory(ctx, "Temp", "⏳", "#ABCDEF")
			require.NoError(t, err)
			require.NoError(t, s.DeleteCategory(ctx, id))

			_, err = s.GetCategory(ctx, id)
			assert.ErrorIs(t, err, common.ErrNotFound)
			assert.ErrorIs(t, s.DeleteCategory(ctx, id), common.ErrNotFound)

			next, err := s.CreateCategory(ctx, "Temp again", "⏳", "#ABCDEF")
			require.NoError(t, err)
			assert.Greater(t, next, id)
		})
	})
}

func TestOrphanedTransactions(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		catID, err := s.CreateCategory(ctx, "Hobbies", "🎨", "#112233")
		require.NoError(t, err)

		txID := mustCreate(t, ctx, s, input(catID, "40", at(2024, 3, 1, 10, 0), "paint"))
		_, err = s.UpsertBudget(ctx, catID, decimal.NewFromInt(100), "2024-03")
		require.NoError(t, err)

		count, err := s.CountTransactionsForCategory(ctx, catID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.NoError(t, s.DeleteCategory(ctx, catID))

		rows, err := s.ListTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, catID, rows[0].CategoryID)
		assert.Equal(t, model.FallbackCategoryName, rows[0].CategoryName)
		assert.Equal(t, model.FallbackCategoryEmoji, rows[0].CategoryEmoji)
		assert.Equal(t, model.FallbackCategoryColor, rows[0].CategoryColor)

		budget, err := s.GetBudget(ctx, catID, "2024-03")
		require.NoError(t, err)
		require.NotNil(t, budget, "budgets are not cascaded")

		spending, err := s.CategorySpendingForRange(ctx, 0, at(2025, 1, 1, 0, 0))
		require.NoError(t, err)
		require.Len(t, spending, 1)
		assert.Equal(t, model.FallbackCategoryName, spending[0].CategoryName)

		// The orphan stays editable as long as its category is unchanged.
		edit := input(catID, "45", at(2024, 3, 1, 10, 0), "paint and brushes")
		require.NoError(t, s.UpdateTransaction(ctx, txID, edit))

		err = s.UpdateTransaction(ctx, txID, input(999, "45", at(2024, 3, 1, 10, 0), ""))
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestCreateTransactionValidation(t *testing.T) {
	weekly, fortnightly := model.RecurringWeekly, 14
	half, zero := decimal.RequireFromString("0.5"), decimal.Zero
	date := at(2024, 3, 1, 9, 0)

	tests := []struct {
		mutate func(*model.TransactionInput)
		name   string
	}{
		{name: "zero amount", mutate: func(in *model.TransactionInput) { in.Amount = decimal.Zero }},
		{name: "negative amount", mutate: func(in *model.TransactionInput) { in.Amount = decimal.NewFromInt(-5) }},
		{name: "missing date", mutate: func(in *model.TransactionInput) { in.Date = 0 }},
		{name: "unknown payment method", mutate: func(in *model.TransactionInput) { in.PaymentMethod = "Cheque" }},
		{name: "unknown category", mutate: func(in *model.TransactionInput) { in.CategoryID = 404 }},
		{name: "recurring without interval", mutate: func(in *model.TransactionInput) { in.IsRecurring = true }},
		{name: "unsupported interval", mutate: func(in *model.TransactionInput) {
			in.IsRecurring = true
			in.RecurringIntervalDays = &fortnightly
		}},
		{name: "interval without recurring", mutate: func(in *model.TransactionInput) { in.RecurringIntervalDays = &weekly }},
		{name: "split without share", mutate: func(in *model.TransactionInput) { in.IsSplit = true }},
		{name: "split with zero share", mutate: func(in *model.TransactionInput) {
			in.IsSplit = true
			in.SplitShare = &zero
		}},
		{name: "share without split", mutate: func(in *model.TransactionInput) { in.SplitShare = &half }},
	}

	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := input(1, "10", date, "")
				tt.mutate(&in)
				_, err := s.CreateTransaction(ctx, in)
				assert.ErrorIs(t, err, common.ErrValidation)
			})
		}

		rows, err := s.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}

func TestTransactionLifecycle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		interval := model.RecurringMonthly
		share := decimal.RequireFromString("125.25")
		in := model.TransactionInput{
			Amount:                decimal.RequireFromString("250.50"),
			CategoryID:            7,
			Note:                  `Rent "March"`,
			Date:                  at(2024, 3, 1, 9, 30),
			PaymentMethod:         model.PaymentCard,
			IsRecurring:           true,
			RecurringIntervalDays: &interval,
			IsSplit:               true,
			SplitShare:            &share,
		}

		id, err := s.CreateTransaction(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		got, err := s.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, "250.5", got.Amount.String())
		assert.Equal(t, int64(7), got.CategoryID)
		assert.Equal(t, `Rent "March"`, got.Note)
		assert.Equal(t, in.Date, got.Date)
		assert.Equal(t, model.PaymentCard, got.PaymentMethod)
		assert.True(t, got.IsRecurring)
		require.NotNil(t, got.RecurringIntervalDays)
		assert.Equal(t, 30, *got.RecurringIntervalDays)
		assert.True(t, got.IsSplit)
		require.NotNil(t, got.SplitShare)
		assert.Equal(t, "125.25", got.SplitShare.String())

		update := input(2, "99.99", at(2024, 3, 2, 8, 0), "taxi")
		require.NoError(t, s.UpdateTransaction(ctx, id, update))

		got, err = s.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "99.99", got.Amount.String())
		assert.Equal(t, int64(2), got.CategoryID)
		assert.False(t, got.IsRecurring)
		assert.Nil(t, got.RecurringIntervalDays)
		assert.False(t, got.IsSplit)
		assert.Nil(t, got.SplitShare)

		assert.ErrorIs(t, s.UpdateTransaction(ctx, 42, update), common.ErrNotFound)

		require.NoError(t, s.DeleteTransaction(ctx, id))
		_, err = s.GetTransaction(ctx, id)
		assert.ErrorIs(t, err, common.ErrNotFound)
		assert.ErrorIs(t, s.DeleteTransaction(ctx, id), common.ErrNotFound)

		next := mustCreate(t, ctx, s, input(1, "1", at(2024, 3, 3, 8, 0), ""))
		assert.Equal(t, int64(2), next, "transaction ids are never reused")
	})
}

func TestStoredTransactionsAreCopies(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		interval := model.RecurringWeekly
		share := decimal.NewFromInt(50)
		in := input(1, "100", at(2024, 3, 1, 9, 0), "dinner")
		in.IsRecurring, in.RecurringIntervalDays = true, &interval
		in.IsSplit, in.SplitShare = true, &share

		id := mustCreate(t, ctx, s, in)
		interval = 99
		share = decimal.NewFromInt(-999)

		got, err := s.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 7, *got.RecurringIntervalDays)
		assert.Equal(t, "50", got.SplitShare.String())

		*got.RecurringIntervalDays = 30
		*got.SplitShare = decimal.NewFromInt(7)

		rows, err := s.ListTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		*rows[0].SplitShare = decimal.NewFromInt(8)

		edited := got.Input()
		*edited.SplitShare = decimal.NewFromInt(9)

		got, err = s.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 7, *got.RecurringIntervalDays)
		assert.Equal(t, "50", got.SplitShare.String())

		require.NoError(t, s.UpdateTransaction(ctx, id, edited))
		*edited.SplitShare = decimal.NewFromInt(10)

		got, err = s.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "9", got.SplitShare.String())
	})
}

func TestListingOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		early := at(2024, 3, 1, 9, 0)
		late := at(2024, 3, 5, 9, 0)

		mustCreate(t, ctx, s, input(1, "10", early, "a")) // 1
		mustCreate(t, ctx, s, input(2, "20", late, "b"))  // 2
		mustCreate(t, ctx, s, input(3, "30", early, "c")) // 3
		mustCreate(t, ctx, s, input(4, "40", late, "d"))  // 4

		rows, err := s.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 4, 1, 3}, rowIDs(rows))
		assert.Equal(t, "Transport", rows[0].CategoryName)

		t.Run("date range is inclusive", func(t *testing.T) {
			rows, err := s.ListTransactionsByDateRange(ctx, early, early)
			require.NoError(t, err)
			assert.Equal(t, []int64{1, 3}, rowIDs(rows))

			rows, err = s.ListTransactionsByDateRange(ctx, early, late)
			require.NoError(t, err)
			assert.Equal(t, []int64{2, 4, 1, 3}, rowIDs(rows))
		})

		t.Run("inverted range is empty", func(t *testing.T) {
			rows, err := s.ListTransactionsByDateRange(ctx, late, early)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})

		t.Run("recent", func(t *testing.T) {
			rows, err := s.ListRecentTransactions(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, []int64{2, 4, 1}, rowIDs(rows))

			rows, err = s.ListRecentTransactions(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, rows)

			rows, err = s.ListRecentTransactions(ctx, 100)
			require.NoError(t, err)
			assert.Len(t, rows, 4)

			_, err = s.ListRecentTransactions(ctx, -1)
			assert.ErrorIs(t, err, common.ErrValidation)
		})
	})
}

func TestSearchTransactions(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		mustCreate(t, ctx, s, input(1, "10", at(2024, 3, 1, 9, 0), "Coffee with Sam"))
		mustCreate(t, ctx, s, input(2, "20", at(2024, 3, 2, 9, 0), "Metro"))
		mustCreate(t, ctx, s, input(6, "30", at(2024, 3, 3, 9, 0), "weekly coffee beans"))

		tests := []struct {
			query string
			want  []int64
		}{
			{query: "COFFEE", want: []int64{3, 1}},
			{query: "transport", want: []int64{2}},
			{query: "gro", want: []int64{3}},
			{query: "", want: []int64{3, 2, 1}},
			{query: "nothing here", want: []int64{}},
		}

		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				rows, err := s.SearchTransactions(ctx, tt.query)
				require.NoError(t, err)
				assert.Equal(t, tt.want, rowIDs(rows))
			})
		}
	})
}

func TestSpendingQueries(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		start := at(2024, 3, 1, 0, 0)
		end := at(2024, 3, 31, 23, 59)

		mustCreate(t, ctx, s, input(1, "100", at(2024, 3, 10, 12, 0), "lunch"))
		mustCreate(t, ctx, s, input(2, "100", at(2024, 3, 11, 8, 0), "cab"))
		mustCreate(t, ctx, s, input(1, "150", at(2024, 3, 12, 20, 0), "dinner"))
		mustCreate(t, ctx, s, input(1, "999", at(2024, 4, 2, 20, 0), "outside range"))

		total, err := s.TotalForRange(ctx, start, end)
		require.NoError(t, err)
		assert.Equal(t, "350", total.String())

		food, err := s.TotalForCategoryInRange(ctx, 1, start, end)
		require.NoError(t, err)
		assert.Equal(t, "250", food.String())

		none, err := s.TotalForCategoryInRange(ctx, 9, start, end)
		require.NoError(t, err)
		assert.True(t, none.IsZero())

		spending, err := s.CategorySpendingForRange(ctx, start, end)
		require.NoError(t, err)
		require.Len(t, spending, 2)
		assert.Equal(t, int64(1), spending[0].CategoryID)
		assert.Equal(t, "250", spending[0].Total.String())
		assert.Equal(t, "Food & Drinks", spending[0].CategoryName)
		assert.Equal(t, "🍔", spending[0].CategoryEmoji)
		assert.Equal(t, int64(2), spending[1].CategoryID)
		assert.Equal(t, "100", spending[1].Total.String())

		inverted, err := s.TotalForRange(ctx, end, start)
		require.NoError(t, err)
		assert.True(t, inverted.IsZero())

		invertedSpending, err := s.CategorySpendingForRange(ctx, end, start)
		require.NoError(t, err)
		assert.Empty(t, invertedSpending)
	})
}

func TestCategorySpendingTies(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		mustCreate(t, ctx, s, input(5, "50", at(2024, 3, 3, 9, 0), ""))
		mustCreate(t, ctx, s, input(3, "50", at(2024, 3, 1, 9, 0), ""))
		mustCreate(t, ctx, s, input(8, "80", at(2024, 3, 2, 9, 0), ""))

		spending, err := s.CategorySpendingForRange(ctx, 0, at(2025, 1, 1, 0, 0))
		require.NoError(t, err)
		require.Len(t, spending, 3)
		assert.Equal(t, int64(8), spending[0].CategoryID)
		assert.Equal(t, int64(5), spending[1].CategoryID)
		assert.Equal(t, int64(3), spending[2].CategoryID)
	})
}

func TestDailySpending(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		beforeMidnight := time.Date(2024, 3, 10, 23, 59, 59, 999_000_000, testLocation).UnixMilli()
		midnight := at(2024, 3, 11, 0, 0)

		mustCreate(t, ctx, s, input(1, "20", beforeMidnight, ""))
		mustCreate(t, ctx, s, input(2, "30", midnight, ""))
		mustCreate(t, ctx, s, input(3, "5", at(2024, 3, 10, 9, 0), ""))
		mustCreate(t, ctx, s, input(3, "7", at(2024, 3, 14, 9, 0), ""))

		days, err := s.DailySpendingForRange(ctx, at(2024, 3, 10, 0, 0), at(2024, 3, 13, 0, 0))
		require.NoError(t, err)
		require.Len(t, days, 2)
		assert.Equal(t, "2024-03-10", days[0].Day)
		assert.Equal(t, "25", days[0].Total.String())
		assert.Equal(t, "2024-03-11", days[1].Day)
		assert.Equal(t, "30", days[1].Total.String())

		empty, err := s.DailySpendingForRange(ctx, midnight, beforeMidnight)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestTotalsAreExact(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		date := at(2024, 3, 1, 9, 0)
		for i := 0; i < 10; i++ {
			mustCreate(t, ctx, s, input(1, "0.1", date, ""))
		}
		total, err := s.TotalForRange(ctx, date, date)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromInt(1)), "got %s", total)
	})
}

func TestBudgets(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		none, err := s.GetBudget(ctx, 1, "2024-03")
		require.NoError(t, err)
		assert.Nil(t, none)

		id, err := s.UpsertBudget(ctx, 1, decimal.NewFromInt(5000), "2024-03")
		require.NoError(t, err)

		again, err := s.UpsertBudget(ctx, 1, decimal.RequireFromString("6000.5"), "2024-03")
		require.NoError(t, err)
		assert.Equal(t, id, again, "upsert keeps the id")

		b, err := s.GetBudget(ctx, 1, "2024-03")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Equal(t, id, b.ID)
		assert.Equal(t, "6000.5", b.LimitAmount.String())

		other, err := s.UpsertBudget(ctx, 1, decimal.NewFromInt(100), "2024-04")
		require.NoError(t, err)
		assert.NotEqual(t, id, other)

		transport, err := s.UpsertBudget(ctx, 2, decimal.NewFromInt(300), "2024-03")
		require.NoError(t, err)

		march, err := s.ListBudgetsForMonth(ctx, "2024-03")
		require.NoError(t, err)
		require.Len(t, march, 2)
		assert.Equal(t, id, march[0].ID)
		assert.Equal(t, transport, march[1].ID)

		t.Run("validation", func(t *testing.T) {
			_, err := s.UpsertBudget(ctx, 1, decimal.Zero, "2024-03")
			assert.ErrorIs(t, err, common.ErrValidation)
			_, err = s.UpsertBudget(ctx, 1, decimal.NewFromInt(-1), "2024-03")
			assert.ErrorIs(t, err, common.ErrValidation)
			_, err = s.UpsertBudget(ctx, 1, decimal.NewFromInt(10), "2024-3")
			assert.ErrorIs(t, err, common.ErrValidation)
			_, err = s.UpsertBudget(ctx, 404, decimal.NewFromInt(10), "2024-03")
			assert.ErrorIs(t, err, common.ErrValidation)
		})

		require.NoError(t, s.DeleteBudget(ctx, transport))
		assert.ErrorIs(t, s.DeleteBudget(ctx, transport), common.ErrNotFound)

		march, err = s.ListBudgetsForMonth(ctx, "2024-03")
		require.NoError(t, err)
		assert.Len(t, march, 1)
	})
}

func TestDeleteAllData(t *testing.T) {
	forEachBackend(t, func(t *testing.T, ctx context.Context, s service.Storage) {
		catID, err := s.CreateCategory(ctx, "Pets", "🐶", "#123456")
		require.NoError(t, err)
		require.NoError(t, s.UpdateCategory(ctx, model.Category{ID: 2, Name: "Commute", Emoji: "🚌", ColorHex: "#000000"}))
		mustCreate(t, ctx, s, input(catID, "10", at(2024, 3, 1, 9, 0), ""))
		mustCreate(t, ctx, s, input(1, "20", at(2024, 3, 2, 9, 0), ""))
		_, err = s.UpsertBudget(ctx, 1, decimal.NewFromInt(100), "2024-03")
		require.NoError(t, err)

		require.NoError(t, s.DeleteAllData(ctx))

		cats, err := s.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.DefaultCategories(), cats)

		rows, err := s.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Empty(t, rows)

		budgets, err := s.ListBudgetsForMonth(ctx, "2024-03")
		require.NoError(t, err)
		assert.Empty(t, budgets)

		txID := mustCreate(t, ctx, s, input(1, "5", at(2024, 3, 1, 9, 0), ""))
		assert.Equal(t, int64(1), txID)

		newCat, err := s.CreateCategory(ctx, "Pets", "🐶", "#123456")
		require.NoError(t, err)
		assert.Equal(t, model.FirstUserCategoryID, newCat)

		budgetID, err := s.UpsertBudget(ctx, 1, decimal.NewFromInt(100), "2024-03")
		require.NoError(t, err)
		assert.Equal(t, int64(1), budgetID)
	})
}

func TestNilContext(t *testing.T) {
	forEachBackend(t, func(t *testing.T, _ context.Context, s service.Storage) {
		//nolint:staticcheck // exercising nil context handling
		_, err := s.ListCategories(nil)
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}
