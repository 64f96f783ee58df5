// Package storage provides the data persistence layer for spendsmart.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/shopspring/decimal"
)

// Validation errors. Each wraps common.ErrValidation.
var (
	ErrNilContext         = fmt.Errorf("%w: context cannot be nil", common.ErrValidation)
	ErrEmptyString        = fmt.Errorf("%w: string parameter cannot be empty", common.ErrValidation)
	ErrInvalidTransaction = fmt.Errorf("%w: invalid transaction", common.ErrValidation)
	ErrInvalidCategory    = fmt.Errorf("%w: invalid category", common.ErrValidation)
	ErrInvalidBudget      = fmt.Errorf("%w: invalid budget", common.ErrValidation)
	ErrInvalidLimit       = fmt.Errorf("%w: limit cannot be negative", common.ErrValidation)
)

var colorHexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// normalizeCategory trims the fields of a category and fills in defaults for
// an empty emoji or color.
func normalizeCategory(name, emoji, colorHex string) (string, string, string, error) {
	name = strings.TrimSpace(name)
	emoji = strings.TrimSpace(emoji)
	colorHex = strings.TrimSpace(colorHex)

	if name == "" {
		return "", "", "", fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	if emoji == "" {
		emoji = model.FallbackCategoryEmoji
	}
	if colorHex == "" {
		colorHex = model.FallbackCategoryColor
	}
	if !colorHexPattern.MatchString(colorHex) {
		return "", "", "", fmt.Errorf("%w: color %q must be #RRGGBB", ErrInvalidCategory, colorHex)
	}
	return name, emoji, colorHex, nil
}

// validateTransactionInput checks the field invariants of a transaction.
// Category existence is checked by the backend.
func validateTransactionInput(in model.TransactionInput) error {
	if !in.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidTransaction, in.Amount)
	}
	if in.Date <= 0 {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if !in.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidTransaction, in.PaymentMethod)
	}

	if in.IsRecurring {
		if in.RecurringIntervalDays == nil {
			return fmt.Errorf("%w: recurring transaction needs an interval", ErrInvalidTransaction)
		}
		if d := *in.RecurringIntervalDays; d != model.RecurringWeekly && d != model.RecurringMonthly {
			return fmt.Errorf("%w: recurring interval must be %d or %d days, got %d",
				ErrInvalidTransaction, model.RecurringWeekly, model.RecurringMonthly, d)
		}
	} else if in.RecurringIntervalDays != nil {
		return fmt.Errorf("%w: interval set on a non-recurring transaction", ErrInvalidTransaction)
	}

	if in.IsSplit {
		if in.SplitShare == nil || !in.SplitShare.IsPositive() {
			return fmt.Errorf("%w: split transaction needs a positive share", ErrInvalidTransaction)
		}
	} else if in.SplitShare != nil {
		return fmt.Errorf("%w: share set on a non-split transaction", ErrInvalidTransaction)
	}

	return nil
}

// validateBudget checks the limit and month key of a budget.
func validateBudget(limit decimal.Decimal, monthYear string) error {
	if !limit.IsPositive() {
		return fmt.Errorf("%w: limit must be positive, got %s", ErrInvalidBudget, limit)
	}
	if _, err := model.ParseMonthKey(monthYear, time.UTC); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBudget, err)
	}
	return nil
}

// validateLimit rejects negative row limits.
func validateLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return nil
}

// categoryMissing reports a reference to a category that does not exist.
func categoryMissing(id int64) error {
	return fmt.Errorf("%w: category %d does not exist", common.ErrValidation, id)
}

// notFound reports a missing entity.
func notFound(entity string, id int64) error {
	return fmt.Errorf("%w: %s %d", common.ErrNotFound, entity, id)
}
