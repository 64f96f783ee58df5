package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/config"
	"github.com/Veraticus/spendsmart/internal/export"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/spf13/cobra"
)

type exportWriter func(io.Writer, []model.Transaction, []model.Category, *time.Location) error

var exportFormats = map[string]exportWriter{
	"csv":  export.WriteCSV,
	"xlsx": export.WriteXLSX,
}

func (a *app) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <csv|xlsx>",
		Short: "Export every transaction",
		Long: `Write all transactions, newest first, as CSV or an Excel workbook.

Examples:
  spendsmart export csv > spending.csv
  spendsmart export xlsx --output ~/spending.xlsx`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"csv", "xlsx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := strings.ToLower(args[0])
			write, ok := exportFormats[format]
			if !ok {
				return common.NewUserError(fmt.Sprintf("unknown export format %q, expected csv or xlsx", args[0]), common.ErrValidation)
			}
			if format == "xlsx" && output == "" {
				return common.NewUserError("xlsx export needs --output", common.ErrValidation)
			}

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				rows, err := store.ListTransactions(ctx)
				if err != nil {
					return fmt.Errorf("failed to list transactions: %w", err)
				}
				cats, err := store.ListCategories(ctx)
				if err != nil {
					return err
				}
				txns := export.Transactions(rows)

				if output == "" {
					return write(cmd.OutOrStdout(), txns, cats, a.location)
				}

				path, err := config.ExpandPath(output)
				if err != nil {
					return common.NewUserError("invalid --output path", err)
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", path, err)
				}
				if err := write(f, txns, cats, a.location); err != nil {
					if closeErr := f.Close(); closeErr != nil {
						slog.Warn("Failed to close export file", "path", path, "error", closeErr)
					}
					return fmt.Errorf("failed to export: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("failed to close %s: %w", path, err)
				}

				out(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(fmt.Sprintf("Exported %d transactions to %s", len(txns), path)))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write (default: stdout, csv only)")
	return cmd
}
