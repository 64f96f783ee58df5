package model

import "github.com/shopspring/decimal"

// CategorySpending is the total spent in one category over a range.
type CategorySpending struct {
	Total         decimal.Decimal
	CategoryName  string
	CategoryEmoji string
	CategoryColor string
	CategoryID    int64
}

// DailySpending is the total spent on one local calendar day.
type DailySpending struct {
	Total decimal.Decimal
	// Day is formatted as YYYY-MM-DD.
	Day string
}
