package main

import (
	"context"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/service"
	"github.com/spf13/cobra"
)

type installationIdentifier interface {
	InstallationID(ctx context.Context) (string, error)
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the data file and seed the default categories",
		Long: `Create the configured store if needed. The twelve default categories are
seeded on first run only; running init again changes nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, store service.Storage) error {
				w := cmd.OutOrStdout()

				cats, err := store.ListCategories(ctx)
				if err != nil {
					return err
				}

				out(w, "%s\n", cli.FormatSuccess("Store ready"))
				out(w, "  Backend:    %s\n", a.cfg.Storage.Backend)
				if a.cfg.Storage.Path != "" {
					out(w, "  Path:       %s\n", a.cfg.Storage.Path)
				}
				out(w, "  Categories: %d\n", len(cats))

				if ider, ok := store.(installationIdentifier); ok {
					id, err := ider.InstallationID(ctx)
					if err != nil {
						return err
					}
					out(w, "  Install ID: %s\n", id)
				}
				return nil
			})
		},
	}
}
