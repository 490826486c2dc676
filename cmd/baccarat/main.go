package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/baccarat-tracker/internal/config"
	"github.com/yourusername/baccarat-tracker/internal/logger"
	"github.com/yourusername/baccarat-tracker/internal/service"
	"github.com/yourusername/baccarat-tracker/internal/store"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

const (
	outputText = "text"
	outputJSON = "json"
)

// app carries the dependencies shared by every command
type app struct {
	configFile string
	output     string

	cfg     *config.Config
	logger  *logrus.Logger
	store   *store.FileStore
	tracker *service.TrackerService
}

// Rates, confidences and units are rendered as JSON numbers.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "baccarat",
		Short:         "Record baccarat hands and analyse the shoe",
		Long:          `Keeps a ledger of baccarat hands, derives statistics, patterns, road diagrams and a rule-based forecast for the next hand.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		Version:       fmt.Sprintf("%s (%s)", Version, GitCommit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.output != outputText && a.output != outputJSON {
				return fmt.Errorf("unknown output format %q, expected text or json", a.output)
			}
			if err := a.loadConfig(); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := a.setupDependencies(cmd); err != nil {
				return fmt.Errorf("failed to setup dependencies: %w", err)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", outputText, "Output format: text or json")

	rootCmd.AddCommand(
		a.newAddCmd(),
		a.newDeleteCmd(),
		a.newClearCmd(),
		a.newShoeCmd(),
		a.newDealerCmd(),
		a.newHistoryCmd(),
		a.newStatsCmd(),
		a.newPatternsCmd(),
		a.newForecastCmd(),
		a.newRoadsCmd(),
		a.newBacktestCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
		a.newServeCmd(),
	)

	return rootCmd
}

func (a *app) loadConfig() error {
	cfg, err := config.LoadWithDefaults(a.configFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) setupDependencies(cmd *cobra.Command) error {
	a.logger = logger.NewLogger(a.cfg.App.LogLevel, a.cfg.App.Environment)
	// Keep stdout clean for command output
	a.logger.SetOutput(cmd.ErrOrStderr())

	fileStore, err := store.NewFileStore(a.cfg.Storage.SnapshotPath)
	if err != nil {
		return err
	}
	a.store = fileStore

	a.tracker = service.NewTrackerService(fileStore, a.logger,
		service.WithWriteThrough(!a.cfg.AutosaveEnabled() || cmd.Name() != "serve"),
		service.WithBacktestCache(a.cfg.BacktestCacheTTL(), a.cfg.Backtest.CacheSize))
	if err := a.tracker.Load(a.context(cmd)); err != nil {
		return err
	}
	return nil
}

func (a *app) context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
