package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/Veraticus/spendsmart/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"
)

// withStore opens the configured store, runs fn and closes the store,
// reporting a failed final flush as the command's error.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, store service.Storage) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if a.cfg == nil {
		return fmt.Errorf("%w: configuration not loaded", common.ErrInvalidConfig)
	}

	opened, err := storage.Open(ctx, a.cfg.Storage.Backend, a.cfg.Storage.Path,
		storage.WithLocation(a.location),
		storage.WithFlushDebounce(a.cfg.Storage.FlushDebounce),
	)
	if err != nil {
		return err
	}
	if opened.Degraded {
		fmt.Fprintln(a.errOut, cli.FormatWarning(fmt.Sprintf(
			"Could not open %s (%v). Using a temporary in-memory store; changes will not be saved.",
			a.cfg.Storage.Path, opened.Cause)))
	}

	defer func() {
		if closeErr := opened.Storage.Close(); closeErr != nil {
			slog.Error("Failed to close store", "error", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}()

	return fn(ctx, opened.Storage)
}

// userMessage renders err for the terminal.
func userMessage(err error) string {
	var userErr *common.UserError
	switch {
	case errors.As(err, &userErr):
		return userErr.Error()
	case errors.Is(err, common.ErrNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, common.ErrProtectedEntity):
		return "Not allowed: " + err.Error()
	case errors.Is(err, common.ErrValidation):
		return "Invalid input: " + err.Error()
	case errors.Is(err, common.ErrPersistence):
		return "Could not save your data: " + err.Error()
	case errors.Is(err, common.ErrInvalidConfig):
		return "Configuration problem: " + err.Error()
	default:
		return err.Error()
	}
}

func out(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewUserError(fmt.Sprintf("invalid %s ID %q", what, arg), common.ErrValidation)
	}
	return id, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("invalid amount %q", s), common.ErrValidation)
	}
	return d, nil
}

// parseDate accepts "YYYY-MM-DD" or "YYYY-MM-DD HH:MM" in the local zone.
func (a *app) parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateTimeLayout, dateLayout} {
		if t, err := time.ParseInLocation(layout, s, a.location); err == nil {
			return t, nil
		}
	}
	return time.Time{}, common.NewUserError(
		fmt.Sprintf("invalid date %q, expected YYYY-MM-DD or \"YYYY-MM-DD HH:MM\"", s), common.ErrValidation)
}

// parseMonth resolves a --month flag; empty means the current month.
func (a *app) parseMonth(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		now := a.now().In(a.location)
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, a.location), nil
	}
	t, err := model.ParseMonthKey(strings.TrimSpace(s), a.location)
	if err != nil {
		return time.Time{}, common.NewUserError(fmt.Sprintf("invalid month %q", s), err)
	}
	return t, nil
}

// parseRecurring maps "weekly" or "monthly" (or their day counts) to an
// interval. "none" and "" clear recurrence.
func parseRecurring(s string) (*int, error) {
	var days int
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "no":
		return nil, nil
	case "weekly", strconv.Itoa(model.RecurringWeekly):
		days = model.RecurringWeekly
	case "monthly", strconv.Itoa(model.RecurringMonthly):
		days = model.RecurringMonthly
	default:
		return nil, common.NewUserError(
			fmt.Sprintf("invalid recurrence %q, expected weekly, monthly or none", s), common.ErrValidation)
	}
	return &days, nil
}

func formatDate(epochMs int64, loc *time.Location) string {
	return time.UnixMilli(epochMs).In(loc).Format(dateTimeLayout)
}

func categoryLabel(emoji, name string) string {
	return strings.TrimSpace(emoji + " " + name)
}
