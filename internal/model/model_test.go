package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	require.Len(t, cats, 12)

	for i, c := range cats {
		assert.Equal(t, int64(i+1), c.ID)
		assert.True(t, c.IsDefault, c.Name)
		assert.NotEmpty(t, c.Emoji, c.Name)
		assert.Regexp(t, `^#[0-9A-F]{6}$`, c.ColorHex)
	}
	assert.Equal(t, "Food & Drinks", cats[0].Name)
	assert.Equal(t, "Others", cats[OthersCategoryID-1].Name)

	// Callers may mutate the returned slice freely.
	cats[0].Name = "changed"
	assert.Equal(t, "Food & Drinks", DefaultCategories()[0].Name)
}

func TestEnrich(t *testing.T) {
	idx := NewCategoryIndex(DefaultCategories())

	t.Run("known category", func(t *testing.T) {
		row := Enrich(Transaction{ID: 1, CategoryID: 2, Amount: decimal.NewFromInt(10)}, idx)
		assert.Equal(t, "Transport", row.CategoryName)
		assert.Equal(t, "🚗", row.CategoryEmoji)
		assert.Equal(t, "#4ECDC4", row.CategoryColor)
		assert.Equal(t, int64(1), row.ID)
	})

	t.Run("missing category falls back", func(t *testing.T) {
		row := Enrich(Transaction{ID: 2, CategoryID: 99}, idx)
		assert.Equal(t, FallbackCategoryName, row.CategoryName)
		assert.Equal(t, FallbackCategoryEmoji, row.CategoryEmoji)
		assert.Equal(t, FallbackCategoryColor, row.CategoryColor)
		assert.Equal(t, int64(99), row.CategoryID)
	})

	t.Run("enrich all keeps order", func(t *testing.T) {
		rows := idx.EnrichAll([]Transaction{{ID: 3, CategoryID: 1}, {ID: 1, CategoryID: 5}})
		require.Len(t, rows, 2)
		assert.Equal(t, int64(3), rows[0].ID)
		assert.Equal(t, "Health", rows[1].CategoryName)
	})
}

func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "valid", key: "2024-03"},
		{name: "december", key: "2023-12"},
		{name: "month 13", key: "2024-13", wantErr: true},
		{name: "single digit month", key: "2024-3", wantErr: true},
		{name: "full date", key: "2024-03-01", wantErr: true},
		{name: "empty", key: "", wantErr: true},
		{name: "garbage", key: "march-24", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthKey(tt.key, time.UTC)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, got.Day())
			assert.Equal(t, tt.key, MonthKey(got))
		})
	}
}

func TestParsePaymentMethod(t *testing.T) {
	m, err := ParsePaymentMethod("upi")
	require.NoError(t, err)
	assert.Equal(t, PaymentUPI, m)

	m, err = ParsePaymentMethod(" Card ")
	require.NoError(t, err)
	assert.Equal(t, PaymentCard, m)

	_, err = ParsePaymentMethod("cheque")
	assert.Error(t, err)

	assert.True(t, PaymentOther.Valid())
	assert.False(t, PaymentMethod("Bitcoin").Valid())
}

func TestTransactionInputRoundTrip(t *testing.T) {
	interval := RecurringMonthly
	in := TransactionInput{
		Amount:                decimal.RequireFromString("12.50"),
		CategoryID:            3,
		Note:                  "shoes",
		Date:                  1_700_000_000_000,
		PaymentMethod:         PaymentCash,
		IsRecurring:           true,
		RecurringIntervalDays: &interval,
	}

	txn := in.Build(7)
	assert.Equal(t, int64(7), txn.ID)
	assert.Equal(t, in, txn.Input())
	assert.Equal(t, int64(1_700_000_000_000), txn.Time(time.UTC).UnixMilli())
}

func TestTransactionCopiesDoNotShareFields(t *testing.T) {
	interval := RecurringWeekly
	share := decimal.NewFromInt(40)
	in := TransactionInput{RecurringIntervalDays: &interval, SplitShare: &share}

	txn := in.Build(1)
	interval, share = 30, decimal.NewFromInt(1)
	assert.Equal(t, RecurringWeekly, *txn.RecurringIntervalDays)
	assert.Equal(t, "40", txn.SplitShare.String())

	clone := txn.Clone()
	*clone.SplitShare = decimal.NewFromInt(2)
	back := txn.Input()
	*back.RecurringIntervalDays = 30
	assert.Equal(t, "40", txn.SplitShare.String())
	assert.Equal(t, RecurringWeekly, *txn.RecurringIntervalDays)

	assert.Nil(t, Transaction{}.Clone().SplitShare)
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "₹0"},
		{"250.50", "₹250.5"},
		{"999", "₹999"},
		{"1000", "₹1,000"},
		{"123456.5", "₹1,23,456.5"},
		{"12345678.999", "₹1,23,45,679"},
		{"0.005", "₹0.01"},
		{"-1500", "-₹1,500"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(decimal.RequireFromString(tt.in)))
		})
	}
}
