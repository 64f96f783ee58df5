package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/insight"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const (
	recentOnSummary = 5
	shareBarWidth   = 20
)

var decimalHundred = decimal.NewFromInt(100)

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "See where the money went",
		Long: `Summaries of your spending.

Examples:
  spendsmart report summary
  spendsmart report categories --month 2024-03
  spendsmart report insights`,
	}

	cmd.AddCommand(a.summaryCmd())
	cmd.AddCommand(a.monthReportCmd("categories", "Spending per category for a month", a.printCategories))
	cmd.AddCommand(a.monthReportCmd("daily", "Spending per day for a month", a.printDaily))
	cmd.AddCommand(a.monthReportCmd("insights", "Month totals and spending tips", a.printInsights))

	return cmd
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Today, this month and your latest transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := a.now()
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				dayStart, dayEnd := insight.DayRange(now, a.location)
				today, err := store.TotalForRange(ctx, dayStart, dayEnd)
				if err != nil {
					return err
				}

				report, err := insight.Month(ctx, store, now, now, a.location)
				if err != nil {
					return err
				}

				recent, err := store.ListRecentTransactions(ctx, recentOnSummary)
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				out(w, "%s\n", cli.FormatTitle("Spending summary"))
				out(w, "  Today:       %s\n", cli.FormatAmount(today))
				out(w, "  This month:  %s\n", cli.FormatAmount(report.Total))
				out(w, "  Last month:  %s\n", cli.FormatAmount(report.LastMonthTotal))
				if report.LastMonthTotal.IsPositive() {
					out(w, "  Change:      %s\n", cli.FormatPercent(report.ChangePercent))
				}
				out(w, "\n%s\n", cli.BoldStyle.Render("Recent transactions"))
				a.printTransactions(w, recent)
				return nil
			})
		},
	}
}

// monthReportCmd builds a report subcommand that renders one month.
func (a *app) monthReportCmd(use, short string, render func(io.Writer, *insight.Report)) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.parseMonth(month)
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				report, err := insight.Month(ctx, store, m, a.now(), a.location)
				if err != nil {
					return fmt.Errorf("failed to build report: %w", err)
				}
				render(cmd.OutOrStdout(), report)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")
	return cmd
}

func (a *app) printCategories(w io.Writer, r *insight.Report) {
	out(w, "%s\n", cli.TitleStyle.Render(fmt.Sprintf("%s Categories for %s", cli.ChartIcon, model.MonthKey(r.Month))))
	if len(r.Categories) == 0 {
		out(w, "%s\n", cli.FormatInfo("No spending this month."))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range r.Categories {
		var pct int64
		if r.Total.IsPositive() {
			pct = c.Total.Mul(decimalHundred).Div(r.Total).Round(0).IntPart()
		}
		out(tw, "%s\t%s\t%s\t%d%%\n",
			categoryLabel(c.CategoryEmoji, c.CategoryName),
			cli.ProgressBar(pct, shareBarWidth),
			model.FormatCurrency(c.Total),
			pct)
	}
	out(tw, "%s\t\t%s\t\n", cli.BoldStyle.Render("Total"), cli.FormatAmount(r.Total))
	if err := tw.Flush(); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func (a *app) printDaily(w io.Writer, r *insight.Report) {
	out(w, "%s\n", cli.TitleStyle.Render(fmt.Sprintf("%s Daily spending for %s", cli.ChartIcon, model.MonthKey(r.Month))))
	if len(r.Daily) == 0 {
		out(w, "%s\n", cli.FormatInfo("No spending this month."))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, d := range r.Daily {
		out(tw, "%s\t%s\n", d.Day, model.FormatCurrency(d.Total))
	}
	if err := tw.Flush(); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func (a *app) printInsights(w io.Writer, r *insight.Report) {
	body := fmt.Sprintf("Total:          %s\nLast month:     %s\nDaily average:  %s over %d days",
		model.FormatCurrency(r.Total),
		model.FormatCurrency(r.LastMonthTotal),
		model.FormatCurrency(r.DailyAverage),
		r.DaysCounted)
	if r.LastMonthTotal.IsPositive() {
		body += "\nChange:         " + cli.FormatPercent(r.ChangePercent)
	}
	out(w, "%s\n", cli.RenderBox(fmt.Sprintf("%s %s", cli.ChartIcon, model.MonthKey(r.Month)), body))

	for _, n := range r.Nudges {
		out(w, "%s %s\n", cli.TipIcon, n)
	}
}
