package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MonthKeyLayout is the time layout of a budget month key ("YYYY-MM").
const MonthKeyLayout = "2006-01"

// Budget caps spending in one category for one calendar month.
type Budget struct {
	LimitAmount decimal.Decimal `json:"limit_amount"`
	MonthYear   string          `json:"month_year"`
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"category_id"`
}

// MonthKey formats t as a budget month key.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// ParseMonthKey parses a "YYYY-MM" key into the first instant of that month in loc.
func ParseMonthKey(key string, loc *time.Location) (time.Time, error) {
	if len(key) != len(MonthKeyLayout) {
		return time.Time{}, fmt.Errorf("month key %q must have the form YYYY-MM", key)
	}
	t, err := time.ParseInLocation(MonthKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("month key %q must have the form YYYY-MM: %w", key, err)
	}
	return t, nil
}
