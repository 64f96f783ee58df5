package main

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/model"
	"github.com/Veraticus/spendsmart/internal/ofx"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/spf13/cobra"
)

func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import transactions from bank files",
	}
	cmd.AddCommand(a.importOFXCmd())
	return cmd
}

func (a *app) importOFXCmd() *cobra.Command {
	var (
		categoryID int64
		credits    bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "ofx [files or directories...]",
		Short: "Import transactions from OFX/QFX statements",
		Long: `Import spending from OFX or QFX files exported from your bank or card issuer.

Only debits are imported unless --credits is given. Directories are searched
recursively for .ofx and .qfx files.

Examples:
  spendsmart import ofx ~/Downloads/statement.qfx
  spendsmart import ofx ~/Downloads/*.ofx --category 6
  spendsmart import ofx ~/Statements --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := collectOFXFiles(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return common.NewUserError("no OFX or QFX files found to import", common.ErrValidation)
			}

			opts := []ofx.Option{ofx.WithCategory(categoryID)}
			if credits {
				opts = append(opts, ofx.WithCredits())
			}
			parser := ofx.NewParser(opts...)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			inputs, err := parseOFXFiles(ctx, parser, files)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(inputs) == 0 {
				out(w, "%s\n", cli.FormatWarning("No transactions found in any file."))
				return nil
			}
			if dryRun {
				a.printImportPreview(cmd, inputs)
				return nil
			}

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				if _, err := store.GetCategory(ctx, categoryID); err != nil {
					return err
				}
				return a.saveImported(ctx, cmd, store, inputs)
			})
		},
	}

	cmd.Flags().Int64VarP(&categoryID, "category", "c", model.OthersCategoryID, "Category for imported transactions")
	cmd.Flags().BoolVar(&credits, "credits", false, "Also import deposits and refunds")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Preview import without saving")

	return cmd
}

// collectOFXFiles expands globs and walks directories for statement files.
func collectOFXFiles(args []string) ([]string, error) {
	var files []string
	for _, pattern := range args {
		if info, err := os.Stat(pattern); err == nil && info.IsDir() {
			err := filepath.WalkDir(pattern, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if !d.IsDir() && isOFXFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("failed to read directory %s: %w", pattern, err)
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("invalid pattern %s", pattern), err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}

func isOFXFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ofx", ".qfx":
		return true
	}
	return false
}

type importKey struct {
	amount string
	note   string
	date   int64
}

// parseOFXFiles parses every file, dropping transactions already seen in an
// earlier file. Unreadable files are logged and skipped.
func parseOFXFiles(ctx context.Context, parser *ofx.Parser, files []string) ([]model.TransactionInput, error) {
	seen := make(map[importKey]bool)
	var inputs []model.TransactionInput

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}
		parsed, err := parser.ParseFile(ctx, f)
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close file", "file", path, "error", closeErr)
		}
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		added := 0
		for _, in := range parsed {
			key := importKey{amount: in.Amount.String(), note: in.Note, date: in.Date}
			if seen[key] {
				continue
			}
			seen[key] = true
			inputs = append(inputs, in)
			added++
		}
		slog.Info("Processed file",
			"file", filepath.Base(path),
			"transactions_found", len(parsed),
			"added", added,
			"duplicates", len(parsed)-added)
	}
	return inputs, nil
}

func (a *app) printImportPreview(cmd *cobra.Command, inputs []model.TransactionInput) {
	w := cmd.OutOrStdout()
	txns := make([]model.Transaction, 0, len(inputs))
	for _, in := range inputs {
		txns = append(txns, in.Build(0))
	}
	a.printTransactions(w, model.NewCategoryIndex(model.DefaultCategories()).EnrichAll(txns))
	out(w, "\n%s\n", cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions would be imported.", len(inputs))))
}

func (a *app) saveImported(ctx context.Context, cmd *cobra.Command, store service.Storage, inputs []model.TransactionInput) error {
	w := cmd.OutOrStdout()
	saved := 0

	handler := cli.NewInterruptHandler(w)
	handler.SetSummary(func() string {
		return fmt.Sprintf("Imported %d of %d transactions before stopping.", saved, len(inputs))
	})
	ctx, stop := handler.HandleInterrupts(ctx)
	defer stop()

	bar := cli.NewProgressBar(a.errOut, len(inputs), "Importing")
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			if handler.WasInterrupted() {
				return nil
			}
			return err
		}
		if _, err := store.CreateTransaction(ctx, in); err != nil {
			return fmt.Errorf("failed to save imported transaction %d of %d: %w", saved+1, len(inputs), err)
		}
		saved++
		if err := bar.Add(1); err != nil {
			slog.Debug("Failed to update progress bar", "error", err)
		}
	}

	out(w, "%s\n", cli.FormatSuccess(fmt.Sprintf("Imported %d transactions", saved)))
	return nil
}
