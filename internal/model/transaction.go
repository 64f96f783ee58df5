package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a transaction was paid.
type PaymentMethod string

// Supported payment methods.
const (
	PaymentUPI   PaymentMethod = "UPI"
	PaymentCash  PaymentMethod = "Cash"
	PaymentCard  PaymentMethod = "Card"
	PaymentOther PaymentMethod = "Other"
)

// PaymentMethods lists every supported payment method.
var PaymentMethods = []PaymentMethod{PaymentUPI, PaymentCash, PaymentCard, PaymentOther}

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

// ParsePaymentMethod matches s case-insensitively against the supported methods.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, known := range PaymentMethods {
		if strings.EqualFold(strings.TrimSpace(s), string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Recurring intervals accepted for recurring transactions.
const (
	RecurringWeekly  = 7
	RecurringMonthly = 30
)

// Transaction is a single expense record.
// Date is milliseconds since the Unix epoch.
type Transaction struct {
	RecurringIntervalDays *int             `json:"recurring_interval_days,omitempty"`
	SplitShare            *decimal.Decimal `json:"split_share,omitempty"`
	Amount                decimal.Decimal  `json:"amount"`
	Note                  string           `json:"note"`
	PaymentMethod         PaymentMethod    `json:"payment_method"`
	ID                    int64            `json:"id"`
	CategoryID            int64            `json:"category_id"`
	Date                  int64            `json:"date"`
	IsRecurring           bool             `json:"is_recurring"`
	IsSplit               bool             `json:"is_split"`
}

// Time returns the transaction date in loc.
func (t Transaction) Time(loc *time.Location) time.Time {
	return time.UnixMilli(t.Date).In(loc)
}

// TransactionInput carries the caller-supplied fields of a transaction.
type TransactionInput struct {
	RecurringIntervalDays *int
	SplitShare            *decimal.Decimal
	Amount                decimal.Decimal
	Note                  string
	PaymentMethod         PaymentMethod
	CategoryID            int64
	Date                  int64
	IsRecurring           bool
	IsSplit               bool
}

// Build returns the transaction stored for this input under id.
func (in TransactionInput) Build(id int64) Transaction {
	return Transaction{
		ID:                    id,
		Amount:                in.Amount,
		CategoryID:            in.CategoryID,
		Note:                  in.Note,
		Date:                  in.Date,
		PaymentMethod:         in.PaymentMethod,
		IsRecurring:           in.IsRecurring,
		RecurringIntervalDays: cloneInt(in.RecurringIntervalDays),
		IsSplit:               in.IsSplit,
		SplitShare:            cloneDecimal(in.SplitShare),
	}
}

// Input returns the mutable fields of t.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Amount:                t.Amount,
		CategoryID:            t.CategoryID,
		Note:                  t.Note,
		Date:                  t.Date,
		PaymentMethod:         t.PaymentMethod,
		IsRecurring:           t.IsRecurring,
		RecurringIntervalDays: cloneInt(t.RecurringIntervalDays),
		IsSplit:               t.IsSplit,
		SplitShare:            cloneDecimal(t.SplitShare),
	}
}

// Clone returns a copy of t that shares no memory with it.
func (t Transaction) Clone() Transaction {
	t.RecurringIntervalDays = cloneInt(t.RecurringIntervalDays)
	t.SplitShare = cloneDecimal(t.SplitShare)
	return t
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneDecimal(p *decimal.Decimal) *decimal.Decimal {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// TransactionWithCategory is a transaction joined with its category's display fields at read time.
type TransactionWithCategory struct {
	CategoryName  string
	CategoryEmoji string
	CategoryColor string
	Transaction
}
