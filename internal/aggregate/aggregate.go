// Package aggregate computes totals and breakdowns over transaction sets.
//
// All functions are pure. Ranges are inclusive epoch-millisecond bounds and an
// inverted range (start > end) selects nothing.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/shopspring/decimal"
)

// DayLayout formats daily bucket keys.
const DayLayout = "2006-01-02"

// InRange reports whether date lies within [start, end].
func InRange(date, start, end int64) bool {
	return date >= start && date <= end
}

// Filter returns the transactions dated within [start, end], in input order.
func Filter(txns []model.Transaction, start, end int64) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if InRange(t.Date, start, end) {
			out = append(out, t)
		}
	}
	return out
}

// Total sums the amounts of transactions within [start, end].
func Total(txns []model.Transaction, start, end int64) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if InRange(t.Date, start, end) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// TotalForCategory sums the amounts of one category's transactions within [start, end].
func TotalForCategory(txns []model.Transaction, categoryID, start, end int64) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.CategoryID == categoryID && InRange(t.Date, start, end) {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// ByCategory groups transactions within [start, end] by category, sorted by
// total descending. Equal totals keep the order in which their category first
// appears when transactions are visited by ascending id. Categories with no
// transactions are omitted; missing categories use the fallback display.
func ByCategory(txns []model.Transaction, idx model.CategoryIndex, start, end int64) []model.CategorySpending {
	ordered := byID(txns)

	var groups []model.CategorySpending
	pos := make(map[int64]int)
	for _, t := range ordered {
		if !InRange(t.Date, start, end) {
			continue
		}
		i, ok := pos[t.CategoryID]
		if !ok {
			name, emoji, color := idx.Display(t.CategoryID)
			groups = append(groups, model.CategorySpending{
				CategoryID:    t.CategoryID,
				Total:         decimal.Zero,
				CategoryName:  name,
				CategoryEmoji: emoji,
				CategoryColor: color,
			})
			i = len(groups) - 1
			pos[t.CategoryID] = i
		}
		groups[i].Total = groups[i].Total.Add(t.Amount)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.GreaterThan(groups[j].Total)
	})
	return groups
}

// ByDay buckets transactions within [start, end] by calendar day in loc,
// ascending by day. Days without transactions are omitted.
func ByDay(txns []model.Transaction, loc *time.Location, start, end int64) []model.DailySpending {
	if loc == nil {
		loc = time.Local
	}

	totals := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if !InRange(t.Date, start, end) {
			continue
		}
		day := t.Time(loc).Format(DayLayout)
		if cur, ok := totals[day]; ok {
			totals[day] = cur.Add(t.Amount)
		} else {
			totals[day] = t.Amount
		}
	}

	days := make([]model.DailySpending, 0, len(totals))
	for day, total := range totals {
		days = append(days, model.DailySpending{Day: day, Total: total})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day < days[j].Day
	})
	return days
}

// SortForListing orders rows by date descending, ties by ascending id.
func SortForListing(rows []model.TransactionWithCategory) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date > rows[j].Date
		}
		return rows[i].ID < rows[j].ID
	})
}

// Search keeps rows whose note or category name contains query, ignoring case.
// An empty query keeps every row.
func Search(rows []model.TransactionWithCategory, query string) []model.TransactionWithCategory {
	if query == "" {
		return rows
	}
	out := make([]model.TransactionWithCategory, 0, len(rows))
	for _, r := range rows {
		if containsIgnoreCase(r.Note, query) || containsIgnoreCase(r.CategoryName, query) {
			out = append(out, r)
		}
	}
	return out
}

// Recent returns at most limit rows from the front of rows.
func Recent(rows []model.TransactionWithCategory, limit int) []model.TransactionWithCategory {
	if limit < len(rows) {
		return rows[:limit]
	}
	return rows
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func byID(txns []model.Transaction) []model.Transaction {
	if sort.SliceIsSorted(txns, func(i, j int) bool { return txns[i].ID < txns[j].ID }) {
		return txns
	}
	ordered := make([]model.Transaction, len(txns))
	copy(ordered, txns)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	return ordered
}
