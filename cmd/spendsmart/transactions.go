package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/insight"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// txFlags holds the editable transaction fields shared by add and update.
type txFlags struct {
	amount     string
	date       string
	note       string
	method     string
	recurring  string
	splitShare string
	categoryID int64
}

func (f *txFlags) register(flags *pflag.FlagSet) {
	flags.StringVarP(&f.amount, "amount", "a", "", "Amount spent, e.g. 250.50")
	flags.Int64VarP(&f.categoryID, "category", "c", model.OthersCategoryID, "Category ID")
	flags.StringVarP(&f.date, "date", "d", "", `Date as YYYY-MM-DD or "YYYY-MM-DD HH:MM" (default: now)`)
	flags.StringVarP(&f.note, "note", "n", "", "Free-text note")
	flags.StringVarP(&f.method, "method", "m", string(model.PaymentUPI), "Payment method (UPI, Cash, Card, Other)")
	flags.StringVar(&f.recurring, "recurring", "", "Recurrence: weekly, monthly or none")
	flags.StringVar(&f.splitShare, "split-share", "", `Your share of a split bill, or "none"`)
}

var txFlagNames = []string{"amount", "category", "date", "note", "method", "recurring", "split-share"}

func anyTxFlagChanged(flags *pflag.FlagSet) bool {
	for _, name := range txFlagNames {
		if flags.Changed(name) {
			return true
		}
	}
	return false
}

// applyTxFlags copies every changed flag onto in.
func (a *app) applyTxFlags(flags *pflag.FlagSet, f *txFlags, in *model.TransactionInput) error {
	if flags.Changed("amount") {
		amount, err := parseAmount(f.amount)
		if err != nil {
			return err
		}
		in.Amount = amount
	}
	if flags.Changed("category") {
		in.CategoryID = f.categoryID
	}
	if flags.Changed("date") {
		when, err := a.parseDate(f.date)
		if err != nil {
			return err
		}
		in.Date = when.UnixMilli()
	}
	if flags.Changed("note") {
		in.Note = f.note
	}
	if flags.Changed("method") {
		method, err := model.ParsePaymentMethod(f.method)
		if err != nil {
			return err
		}
		in.PaymentMethod = method
	}
	if flags.Changed("recurring") {
		interval, err := parseRecurring(f.recurring)
		if err != nil {
			return err
		}
		in.IsRecurring = interval != nil
		in.RecurringIntervalDays = interval
	}
	if flags.Changed("split-share") {
		if s := strings.ToLower(strings.TrimSpace(f.splitShare)); s == "" || s == "none" {
			in.IsSplit = false
			in.SplitShare = nil
		} else {
			share, err := parseAmount(f.splitShare)
			if err != nil {
				return err
			}
			in.IsSplit = true
			in.SplitShare = &share
		}
	}
	return nil
}

func (a *app) transactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "Record and browse transactions",
	}

	cmd.AddCommand(a.addTxCmd())
	cmd.AddCommand(a.updateTxCmd())
	cmd.AddCommand(a.deleteTxCmd())
	cmd.AddCommand(a.showTxCmd())
	cmd.AddCommand(a.listTxCmd())
	cmd.AddCommand(a.recentTxCmd())
	cmd.AddCommand(a.searchTxCmd())

	return cmd
}

func (a *app) addTxCmd() *cobra.Command {
	var f txFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Long: `Record money spent.

Examples:
  spendsmart tx add --amount 250.50 --category 1 --note "Lunch"
  spendsmart tx add -a 499 -c 10 --method Card --recurring monthly
  spendsmart tx add -a 1200 -c 1 --split-share 400 --date "2024-03-02 21:05"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("amount") {
				return common.NewUserError("--amount is required", common.ErrValidation)
			}

			in := model.TransactionInput{
				CategoryID:    f.categoryID,
				Date:          a.now().UnixMilli(),
				PaymentMethod: model.PaymentUPI,
			}
			if err := a.applyTxFlags(cmd.Flags(), &f, &in); err != nil {
				return err
			}

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				id, err := store.CreateTransaction(ctx, in)
				if err != nil {
					return fmt.Errorf("failed to add transaction: %w", err)
				}
				out(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(fmt.Sprintf("Added transaction %d: %s", id, model.FormatCurrency(in.Amount))))
				return nil
			})
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func (a *app) updateTxCmd() *cobra.Command {
	var f txFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a transaction",
		Long:  `Change any field of a transaction. Fields whose flags are not given keep their value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}
			if !anyTxFlagChanged(cmd.Flags()) {
				return common.NewUserError("nothing to update, pass at least one field flag", common.ErrValidation)
			}

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				current, err := store.GetTransaction(ctx, id)
				if err != nil {
					return err
				}

				in := current.Input()
				if err := a.applyTxFlags(cmd.Flags(), &f, &in); err != nil {
					return err
				}
				if err := store.UpdateTransaction(ctx, id, in); err != nil {
					return fmt.Errorf("failed to update transaction: %w", err)
				}
				out(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(fmt.Sprintf("Updated transaction %d", id)))
				return nil
			})
		},
	}

	f.register(cmd.Flags())
	return cmd
}

func (a *app) deleteTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				if err := store.DeleteTransaction(ctx, id); err != nil {
					return fmt.Errorf("failed to delete transaction: %w", err)
				}
				out(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(fmt.Sprintf("Deleted transaction %d", id)))
				return nil
			})
		},
	}
}

func (a *app) showTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				t, err := store.GetTransaction(ctx, id)
				if err != nil {
					return err
				}
				cats, err := store.ListCategories(ctx)
				if err != nil {
					return err
				}
				row := model.Enrich(*t, model.NewCategoryIndex(cats))

				w := cmd.OutOrStdout()
				out(w, "%s\n", cli.TitleStyle.Render(fmt.Sprintf("Transaction %d", row.ID)))
				out(w, "  Amount:    %s\n", model.FormatCurrency(row.Amount))
				out(w, "  Category:  %s\n", categoryLabel(row.CategoryEmoji, row.CategoryName))
				out(w, "  Date:      %s\n", formatDate(row.Date, a.location))
				out(w, "  Method:    %s\n", row.PaymentMethod)
				if row.Note != "" {
					out(w, "  Note:      %s\n", row.Note)
				}
				if row.IsRecurring && row.RecurringIntervalDays != nil {
					out(w, "  Recurring: every %d days\n", *row.RecurringIntervalDays)
				}
				if row.IsSplit && row.SplitShare != nil {
					out(w, "  Split:     your share %s\n", model.FormatCurrency(*row.SplitShare))
				}
				return nil
			})
		},
	}
}

func (a *app) listTxCmd() *cobra.Command {
	var from, to, month string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Long: `List every transaction, or those within a date range.

Examples:
  spendsmart tx list
  spendsmart tx list --month 2024-03
  spendsmart tx list --from 2024-03-01 --to 2024-03-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			ranged := flags.Changed("from") || flags.Changed("to") || flags.Changed("month")

			var start, end int64
			if ranged {
				var err error
				start, end, err = a.listRange(from, to, month)
				if err != nil {
					return err
				}
			}

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				var rows []model.TransactionWithCategory
				var err error
				if ranged {
					rows, err = store.ListTransactionsByDateRange(ctx, start, end)
				} else {
					rows, err = store.ListTransactions(ctx)
				}
				if err != nil {
					return fmt.Errorf("failed to list transactions: %w", err)
				}
				a.printTransactions(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&month, "month", "", "Month to list (YYYY-MM)")

	return cmd
}

func (a *app) listRange(from, to, month string) (int64, int64, error) {
	if month != "" {
		m, err := a.parseMonth(month)
		if err != nil {
			return 0, 0, err
		}
		start, end := insight.MonthRange(m, a.location)
		return start, end, nil
	}

	start, end := int64(0), a.now().AddDate(100, 0, 0).UnixMilli()
	if from != "" {
		t, err := a.parseDate(from)
		if err != nil {
			return 0, 0, err
		}
		start, _ = insight.DayRange(t, a.location)
	}
	if to != "" {
		t, err := a.parseDate(to)
		if err != nil {
			return 0, 0, err
		}
		_, end = insight.DayRange(t, a.location)
	}
	return start, end, nil
}

func (a *app) recentTxCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				rows, err := store.ListRecentTransactions(ctx, limit)
				if err != nil {
					return err
				}
				a.printTransactions(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Number of transactions to show")
	return cmd
}

func (a *app) searchTxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find transactions by note or category name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				rows, err := store.SearchTransactions(ctx, args[0])
				if err != nil {
					return err
				}
				a.printTransactions(cmd.OutOrStdout(), rows)
				return nil
			})
		},
	}
}

func (a *app) printTransactions(w io.Writer, rows []model.TransactionWithCategory) {
	if len(rows) == 0 {
		out(w, "%s\n", cli.FormatInfo("No transactions found. Use 'spendsmart tx add' to record one."))
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	out(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Date"),
		cli.HeaderStyle.Render("Amount"),
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Method"),
		cli.HeaderStyle.Render("Note"))

	for _, r := range rows {
		out(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			formatDate(r.Date, a.location),
			model.FormatCurrency(r.Amount),
			categoryLabel(r.CategoryEmoji, r.CategoryName),
			r.PaymentMethod,
			r.Note)
	}
	if err := tw.Flush(); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}
