package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/spf13/cobra"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cat"},
		Short:   "Manage spending categories",
		Long:    `List, add, update, and delete the categories transactions are filed under.`,
	}

	cmd.AddCommand(a.listCategoriesCmd())
	cmd.AddCommand(a.addCategoryCmd())
	cmd.AddCommand(a.updateCategoryCmd())
	cmd.AddCommand(a.deleteCategoryCmd())

	return cmd
}

func (a *app) listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				categories, err := store.ListCategories(ctx)
				if err != nil {
					return fmt.Errorf("failed to list categories: %w", err)
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				defer w.Flush()

				out(w, "%s\t%s\t%s\t%s\n",
					cli.HeaderStyle.Render("ID"),
					cli.HeaderStyle.Render("Name"),
					cli.HeaderStyle.Render("Color"),
					cli.HeaderStyle.Render("Default"))
				out(w, "%s\t%s\t%s\t%s\n",
					strings.Repeat("-", 4),
					strings.Repeat("-", 24),
					strings.Repeat("-", 7),
					strings.Repeat("-", 7))

				for _, cat := range categories {
					def := ""
					if cat.IsDefault {
						def = "yes"
					}
					out(w, "%d\t%s\t%s\t%s\n", cat.ID, categoryLabel(cat.Emoji, cat.Name), cat.ColorHex, def)
				}
				return nil
			})
		},
	}
}

func (a *app) addCategoryCmd() *cobra.Command {
	var emoji, color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long: `Create a category. Emoji and color default to 📦 and #B2BEC3 when omitted.

Example:
  spendsmart categories add Pets --emoji 🐶 --color "#A1B2C3"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				id, err := store.CreateCategory(ctx, args[0], emoji, color)
				if err != nil {
					return fmt.Errorf("failed to create category: %w", err)
				}
				out(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(fmt.Sprintf("Created category %q (ID: %d)", strings.TrimSpace(args[0]), id)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&emoji, "emoji", "", "Category emoji")
	cmd.Flags().StringVar(&color, "color", "", "Category color as #RRGGBB")

	return cmd
}

func (a *app) updateCategoryCmd() *cobra.Command {
	var name, emoji, color string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a category",
		Long:  `Change the name, emoji or color of a category. Default categories can be edited too.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("emoji") && !flags.Changed("color") {
				return common.NewUserError("must specify --name, --emoji or --color to update", common.ErrValidation)
			}

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				current, err := store.GetCategory(ctx, id)
				if err != nil {
					return err
				}

				updated := *current
				if flags.Changed("name") {
					updated.Name = name
				}
				if flags.Changed("emoji") {
					updated.Emoji = emoji
				}
				if flags.Changed("color") {
					updated.ColorHex = color
				}

				if err := store.UpdateCategory(ctx, updated); err != nil {
					return fmt.Errorf("failed to update category: %w", err)
				}
				out(cmd.OutOrStdout(), "%s\n", cli.FormatSuccess(fmt.Sprintf("Updated category %d", id)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New category name")
	cmd.Flags().StringVar(&emoji, "emoji", "", "New category emoji")
	cmd.Flags().StringVar(&color, "color", "", "New category color as #RRGGBB")

	return cmd
}

func (a *app) deleteCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom category",
		Long: `Delete a user-created category. Default categories cannot be deleted.
Transactions filed under the category are kept and shown as "Unknown".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "category")
			if err != nil {
				return err
			}

			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				count, err := store.CountTransactionsForCategory(ctx, id)
				if err != nil {
					return err
				}
				if err := store.DeleteCategory(ctx, id); err != nil {
					return fmt.Errorf("failed to delete category: %w", err)
				}

				w := cmd.OutOrStdout()
				out(w, "%s\n", cli.FormatSuccess(fmt.Sprintf("Deleted category %d", id)))
				if count > 0 {
					out(w, "%s\n", cli.FormatInfo(fmt.Sprintf("%d transaction(s) now show as %q", count, "Unknown")))
				}
				return nil
			})
		},
	}
}
