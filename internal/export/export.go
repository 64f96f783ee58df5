// Package export writes transactions to CSV and XLSX files.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/shopspring/decimal"
)

// Header is the first line of every export.
var Header = []string{"Date", "Time", "Amount", "Category", "Note", "Payment Method", "Recurring"}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Row is one exported transaction with every field already formatted.
type Row struct {
	Amount        decimal.Decimal
	Date          string
	Time          string
	Category      string
	Note          string
	PaymentMethod string
	Recurring     string
}

// Rows formats txns in order. Categories missing from categories are
// exported under the fallback name.
func Rows(txns []model.Transaction, categories []model.Category, loc *time.Location) []Row {
	if loc == nil {
		loc = time.Local
	}
	idx := model.NewCategoryIndex(categories)

	rows := make([]Row, 0, len(txns))
	for _, t := range txns {
		name, _, _ := idx.Display(t.CategoryID)
		when := t.Time(loc)
		recurring := "No"
		if t.IsRecurring {
			recurring = "Yes"
		}
		rows = append(rows, Row{
			Date:          when.Format(dateLayout),
			Time:          when.Format(timeLayout),
			Amount:        t.Amount,
			Category:      name,
			Note:          t.Note,
			PaymentMethod: string(t.PaymentMethod),
			Recurring:     recurring,
		})
	}
	return rows
}

// Transactions strips the enrichment from listed rows.
func Transactions(rows []model.TransactionWithCategory) []model.Transaction {
	txns := make([]model.Transaction, 0, len(rows))
	for _, r := range rows {
		txns = append(txns, r.Transaction)
	}
	return txns
}

// WriteCSV writes txns as CSV. The note column is always quoted; other
// fields are quoted only when they contain a separator, quote or newline.
func WriteCSV(w io.Writer, txns []model.Transaction, categories []model.Category, loc *time.Location) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(Header, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range Rows(txns, categories, loc) {
		fields := []string{
			r.Date,
			r.Time,
			r.Amount.String(),
			quoteIfNeeded(r.Category),
			quote(r.Note),
			quoteIfNeeded(r.PaymentMethod),
			r.Recurring,
		}
		if _, err := bw.WriteString(strings.Join(fields, ",") + "\n"); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteIfNeeded(s string) string {
	if strings.ContainsAny(s, ",\"\r\n") {
		return quote(s)
	}
	return s
}
