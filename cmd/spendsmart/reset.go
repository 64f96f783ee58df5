package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/spf13/cobra"
)

const resetPhrase = "DELETE"

func (a *app) resetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all transactions and budgets",
		Long: `Reset removes every transaction, budget and custom category and restores
the default categories.

This is a destructive operation and cannot be undone. Export first if you
want to keep a copy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				w := cmd.OutOrStdout()

				if !force {
					txns, err := store.ListTransactions(ctx)
					if err != nil {
						return err
					}
					out(w, "%s\n", cli.FormatWarning(fmt.Sprintf(
						"This will permanently delete %d transactions, all budgets and custom categories.", len(txns))))

					ok, err := cli.ConfirmPhrase(ctx, cli.NewNonBlockingReader(a.in), w,
						fmt.Sprintf("Type %s to confirm:", resetPhrase), resetPhrase)
					if err != nil {
						return fmt.Errorf("failed to read confirmation: %w", err)
					}
					if !ok {
						out(w, "\nReset canceled.\n")
						return nil
					}
				}

				if err := store.DeleteAllData(ctx); err != nil {
					return fmt.Errorf("failed to reset data: %w", err)
				}
				out(w, "%s\n", cli.FormatSuccess("All data deleted. Default categories restored."))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}
