package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Veraticus/spendsmart/internal/cli"
	"github.com/Veraticus/spendsmart/internal/common"
	"github.com/Veraticus/spendsmart/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries what every command needs. Tests build their own with a
// private viper, clock and input.
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	location *time.Location
	now      func() time.Time
	in       io.Reader
	errOut   io.Writer
	cfgFile  string
}

func newApp() *app {
	return &app{
		v:        viper.New(),
		location: time.Local,
		now:      time.Now,
		in:       os.Stdin,
		errOut:   os.Stderr,
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spendsmart",
		Short: "💰 Personal spending tracker",
		Long: `spendsmart: a local-first spending tracker.

Record expenses against categories, set monthly budgets per category and
see where the money went, all stored on this machine.`,
		PersistentPreRunE: a.initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/spendsmart/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("backend", "", "storage backend (sqlite, snapshot, memory)")
	flags.String("db", "", "path of the data file")

	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = a.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	root.AddCommand(a.initCmd())
	root.AddCommand(a.categoriesCmd())
	root.AddCommand(a.transactionsCmd())
	root.AddCommand(a.budgetsCmd())
	root.AddCommand(a.reportCmd())
	root.AddCommand(a.exportCmd())
	root.AddCommand(a.importCmd())
	root.AddCommand(a.resetCmd())
	root.AddCommand(versionCmd())

	return root
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newApp().rootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(userMessage(err)))
		os.Exit(1)
	}
}

func (a *app) initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	if err := config.ConfigureViper(a.v, a.cfgFile); err != nil {
		return err
	}

	// Explicit flags win over config and environment.
	if f := cmd.Flags().Lookup("backend"); f != nil && f.Changed {
		a.v.Set(config.KeyStorageBackend, f.Value.String())
	}
	if f := cmd.Flags().Lookup("db"); f != nil && f.Changed {
		a.v.Set(config.KeyStoragePath, f.Value.String())
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := common.SetupLogger(a.errOut, cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spendsmart %s\n", version)
		},
	}
}
