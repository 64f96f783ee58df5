package main

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/insight"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/spf13/cobra"
)

const budgetBarWidth = 20

func (a *app) budgetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "budgets",
		Aliases: []string{"budget"},
		Short:   "Manage monthly category budgets",
		Long: `Set a spending limit per category for a month and see how close you are to it.

Budgets turn yellow at 80% of the limit and red once it is reached.`,
	}

	cmd.AddCommand(a.listBudgetsCmd())
	cmd.AddCommand(a.setBudgetCmd())
	cmd.AddCommand(a.deleteBudgetCmd())
	cmd.AddCommand(a.budgetHealthCmd())

	return cmd
}

func (a *app) listBudgetsCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the budgets for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.parseMonth(month)
			if err != nil {
				return err
			}
			key := model.MonthKey(m)

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				budgets, err := store.ListBudgetsForMonth(ctx, key)
				if err != nil {
					return fmt.Errorf("failed to list budgets: %w", err)
				}
				w := cmd.OutOrStdout()
				if len(budgets) == 0 {
					out(w, "%s\n", cli.FormatInfo(fmt.Sprintf("No budgets set for %s.", key)))
					return nil
				}

				cats, err := store.ListCategories(ctx)
				if err != nil {
					return err
				}
				idx := model.NewCategoryIndex(cats)

				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				out(tw, "%s\t%s\t%s\n",
					cli.HeaderStyle.Render("ID"),
					cli.HeaderStyle.Render("Category"),
					cli.HeaderStyle.Render("Limit"))
				for _, b := range budgets {
					name, emoji, _ := idx.Display(b.CategoryID)
					out(tw, "%d\t%s\t%s\n", b.ID, categoryLabel(emoji, name), model.FormatCurrency(b.LimitAmount))
				}
				if err := tw.Flush(); err != nil {
					slog.Error("failed to write output", "error", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")
	return cmd
}

func (a *app) setBudgetCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "set <category-id> <limit>",
		Short: "Set or replace a category's budget",
		Long: `Set the spending limit for a category in a month. Setting it again replaces the limit.

Example:
  spendsmart budgets set 1 5000 --month 2024-03`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			categoryID, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			limit, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			m, err := a.parseMonth(month)
			if err != nil {
				return err
			}
			key := model.MonthKey(m)

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				id, err := store.UpsertBudget(ctx, categoryID, limit, key)
				if err != nil {
					return fmt.Errorf("failed to set budget: %w", err)
				}
				out(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(fmt.Sprintf(
					"Budget %d: %s for category %d in %s", id, model.FormatCurrency(limit), categoryID, key)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")
	return cmd
}

func (a *app) deleteBudgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "budget")
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				if err := store.DeleteBudget(ctx, id); err != nil {
					return fmt.Errorf("failed to delete budget: %w", err)
				}
				out(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(fmt.Sprintf("Deleted budget %d", id)))
				return nil
			})
		},
	}
}

func (a *app) budgetHealthCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Show spending against each budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.parseMonth(month)
			if err != nil {
				return err
			}

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				health, err := insight.LoadBudgetHealth(ctx, store, m, a.location)
				if err != nil {
					return fmt.Errorf("failed to compute budget health: %w", err)
				}

				w := cmd.OutOrStdout()
				out(w, "%s\n", cli.TitleStyle.Render(fmt.Sprintf("%s Budgets for %s", cli.BudgetIcon, model.MonthKey(m))))
				if len(health) == 0 {
					out(w, "%s\n", cli.FormatInfo("No budgets set. Use 'spendsmart budgets set' to add one."))
					return nil
				}

				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				for _, h := range health {
					style := cli.LevelStyle(string(h.Level))
					out(tw, "%s\t%s\t%s / %s\t%s\n",
						categoryLabel(h.Category.Emoji, h.Category.Name),
						style.Render(cli.ProgressBar(h.Percent, budgetBarWidth)),
						model.FormatCurrency(h.Spent),
						model.FormatCurrency(h.Limit),
						style.Render(fmt.Sprintf("%d%%", h.Percent)))
				}
				if err := tw.Flush(); err != nil {
					slog.Error("failed to write output", "error", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month as YYYY-MM (default: current month)")
	return cmd
}
