// Package insight derives budget health and monthly spending summaries from
// the store's aggregation queries.
package insight

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/spendsmart/internal/aggregate"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/shopspring/decimal"
)

// Thresholds, in percent of the budget limit.
const (
	WarningPercent = 80
	OverPercent    = 100
)

// NudgeThresholdPercent is the month-over-month change that produces a nudge.
const NudgeThresholdPercent = 10

// Level classifies how much of a budget has been used.
type Level string

// Budget health levels.
const (
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
	LevelOver    Level = "over"
)

// Source is the part of the store insights read from.
type Source interface {
	service.SpendingQueries
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListBudgetsForMonth(ctx context.Context, monthYear string) ([]model.Budget, error)
}

// Health reports spending against one budget.
type Health struct {
	Spent    decimal.Decimal
	Limit    decimal.Decimal
	Level    Level
	Category model.Category
	BudgetID int64
	Percent  int64
}

// Report summarizes one month of spending.
type Report struct {
	Month          time.Time
	Total          decimal.Decimal
	LastMonthTotal decimal.Decimal
	// ChangePercent is the change against last month; zero when last month had no spending.
	ChangePercent decimal.Decimal
	DailyAverage  decimal.Decimal
	Categories    []model.CategorySpending
	Daily         []model.DailySpending
	Nudges        []string
	DaysCounted   int
}

var hundred = decimal.NewFromInt(100)

// MonthStart returns the first instant of t's month in loc.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(location(loc))
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthRange returns the inclusive epoch-ms bounds of t's month in loc.
func MonthRange(t time.Time, loc *time.Location) (int64, int64) {
	start := MonthStart(t, loc)
	return start.UnixMilli(), start.AddDate(0, 1, 0).UnixMilli() - 1
}

// DayRange returns the inclusive epoch-ms bounds of t's calendar day in loc.
func DayRange(t time.Time, loc *time.Location) (int64, int64) {
	t = t.In(location(loc))
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli() - 1
}

// DaysInMonth returns the number of days in t's month.
func DaysInMonth(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// Classify maps a used percentage to a level.
func Classify(percent int64) Level {
	switch {
	case percent >= OverPercent:
		return LevelOver
	case percent >= WarningPercent:
		return LevelWarning
	default:
		return LevelOK
	}
}

// BudgetHealth pairs each budget with what was spent in its category.
// Budgets whose category no longer exists are skipped.
func BudgetHealth(budgets []model.Budget, categories []model.Category, spent map[int64]decimal.Decimal) []Health {
	idx := model.NewCategoryIndex(categories)

	health := make([]Health, 0, len(budgets))
	for _, b := range budgets {
		cat, ok := idx[b.CategoryID]
		if !ok {
			continue
		}
		s := spent[b.CategoryID]
		var pct int64
		if b.LimitAmount.IsPositive() {
			pct = roundHalfUp(s.Div(b.LimitAmount).Mul(hundred))
		}
		health = append(health, Health{
			BudgetID: b.ID,
			Category: cat,
			Spent:    s,
			Limit:    b.LimitAmount,
			Percent:  pct,
			Level:    Classify(pct),
		})
	}
	return health
}

// LoadBudgetHealth computes budget health for the month containing month.
func LoadBudgetHealth(ctx context.Context, src Source, month time.Time, loc *time.Location) ([]Health, error) {
	key := model.MonthKey(MonthStart(month, loc))
	budgets, err := src.ListBudgetsForMonth(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets for %s: %w", key, err)
	}
	categories, err := src.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	start, end := MonthRange(month, loc)
	spent := make(map[int64]decimal.Decimal, len(budgets))
	for _, b := range budgets {
		total, err := src.TotalForCategoryInRange(ctx, b.CategoryID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to total category %d: %w", b.CategoryID, err)
		}
		spent[b.CategoryID] = total
	}

	return BudgetHealth(budgets, categories, spent), nil
}

// Month builds the report for the month containing month. now decides how
// many days count toward the daily average: up to today for the current
// month, the whole month otherwise.
func Month(ctx context.Context, src Source, month, now time.Time, loc *time.Location) (*Report, error) {
	start, end := MonthRange(month, loc)
	prevStart, prevEnd := MonthRange(MonthStart(month, loc).AddDate(0, -1, 0), loc)

	total, err := src.TotalForRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to total month: %w", err)
	}
	last, err := src.TotalForRange(ctx, prevStart, prevEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to total previous month: %w", err)
	}
	cats, err := src.CategorySpendingForRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load category spending: %w", err)
	}
	daily, err := src.DailySpendingForRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily spending: %w", err)
	}

	r := &Report{
		Month:          MonthStart(month, loc),
		Total:          total,
		LastMonthTotal: last,
		ChangePercent:  decimal.Zero,
		Categories:     cats,
		Daily:          daily,
	}
	if last.IsPositive() {
		r.ChangePercent = total.Sub(last).Div(last).Mul(hundred)
	}

	r.DaysCounted = daysCounted(r.Month, now.In(r.Month.Location()))
	r.DailyAverage = total.Div(decimal.NewFromInt(int64(r.DaysCounted)))
	r.Nudges = Nudges(r)
	return r, nil
}

func daysCounted(month, now time.Time) int {
	if now.Year() == month.Year() && now.Month() == month.Month() {
		return now.Day()
	}
	return DaysInMonth(month)
}

// Nudges returns short observations about a report.
func Nudges(r *Report) []string {
	var nudges []string

	if len(r.Categories) > 0 {
		top := r.Categories[0]
		sum := decimal.Zero
		for _, c := range r.Categories {
			sum = sum.Add(c.Total)
		}
		var pct int64
		if sum.IsPositive() {
			pct = roundHalfUp(top.Total.Div(sum).Mul(hundred))
		}
		nudges = append(nudges, fmt.Sprintf("%s %s is your top spend at %d%% of total.",
			top.CategoryEmoji, top.CategoryName, pct))
	}

	threshold := decimal.NewFromInt(NudgeThresholdPercent)
	change := abs(roundHalfUp(r.ChangePercent))
	switch {
	case r.ChangePercent.GreaterThan(threshold):
		nudges = append(nudges, fmt.Sprintf("You're spending %d%% more than last month.", change))
	case r.ChangePercent.LessThan(threshold.Neg()):
		nudges = append(nudges, fmt.Sprintf("Great! You're spending %d%% less than last month.", change))
	}

	if len(r.Daily) > 0 {
		highest := r.Daily[0]
		for _, d := range r.Daily[1:] {
			if d.Total.GreaterThan(highest.Total) {
				highest = d
			}
		}
		label := highest.Day
		if day, err := time.Parse(aggregate.DayLayout, highest.Day); err == nil {
			label = day.Format("02 Jan")
		}
		nudges = append(nudges, fmt.Sprintf("Highest spend day: %s (%s)", label, model.FormatCurrency(highest.Total)))
	}

	return nudges
}

// roundHalfUp rounds to the nearest integer, halves toward positive infinity.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(decimal.New(5, -1)).Floor().IntPart()
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
