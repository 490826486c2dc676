package main

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/yourusername/baccarat-tracker/internal/backtest"
	"github.com/yourusername/baccarat-tracker/internal/ledger"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

func (a *app) newAddCmd() *cobra.Command {
	var playerScore, bankerScore int

	cmd := &cobra.Command{
		Use:   "add <player|banker|tie>",
		Short: "Record the winner of a hand",
		Long:  `Records a hand for the current shoe and dealer. The forecast made before the hand is stored with it and scored against the winner.`,
		Example: `  baccarat add banker --player 3 --banker 8
  baccarat add p
  baccarat add tie`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			winner, err := models.ParseWinner(args[0])
			if err != nil {
				return err
			}
			req := ledger.AppendRequest{Winner: winner}
			if cmd.Flags().Changed("player") {
				req.PlayerScore = &playerScore
			}
			if cmd.Flags().Changed("banker") {
				req.BankerScore = &bankerScore
			}

			rec, err := a.tracker.AddOutcome(a.context(cmd), req)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), rec, func(w io.Writer) error {
				return renderRecorded(w, rec, a.tracker.Forecast())
			})
		},
	}

	cmd.Flags().IntVar(&playerScore, "player", 0, "Player hand total (0-9)")
	cmd.Flags().IntVar(&bankerScore, "banker", 0, "Banker hand total (0-9)")
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recorded hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.tracker.DeleteOutcome(a.context(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func (a *app) newClearCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every hand and reset the shoe and dealer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to clear %d hands without --yes", len(a.tracker.Records()))
			}
			if err := a.tracker.Clear(a.context(cmd)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Ledger cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&confirmed, "yes", "y", false, "Confirm clearing the ledger")
	return cmd
}

func (a *app) newShoeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shoe",
		Short: "Start a new shoe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shoe, err := a.tracker.NewShoe(a.context(cmd))
			if err != nil {
				return err
			}
			return a.renderCounters(cmd.OutOrStdout(), fmt.Sprintf("Now on shoe %d", shoe))
		},
	}
}

func (a *app) newDealerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dealer",
		Short: "Record a dealer change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dealer, err := a.tracker.ChangeDealer(a.context(cmd))
			if err != nil {
				return err
			}
			return a.renderCounters(cmd.OutOrStdout(), fmt.Sprintf("Now on dealer %d", dealer))
		},
	}
}

func (a *app) newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded hands, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records := a.tracker.Records()
			newestFirst := make([]models.OutcomeRecord, 0, len(records))
			for i := len(records) - 1; i >= 0; i-- {
				if limit > 0 && len(newestFirst) == limit {
					break
				}
				newestFirst = append(newestFirst, records[i])
			}
			return a.render(cmd.OutOrStdout(), newestFirst, func(w io.Writer) error {
				return renderHistory(w, newestFirst)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of hands to show (0 for all)")
	return cmd
}

func (a *app) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show win rates, streaks and prediction accuracy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats := a.tracker.Statistics()
			return a.render(cmd.OutOrStdout(), stats, func(w io.Writer) error {
				return renderStatistics(w, stats)
			})
		},
	}
}

func (a *app) newPatternsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "Show patterns detected in the recent hands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := a.tracker.Patterns()
			return a.render(cmd.OutOrStdout(), patterns, func(w io.Writer) error {
				return renderPatterns(w, patterns)
			})
		},
	}
}

func (a *app) newForecastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forecast",
		Short: "Predict the next hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forecast := a.tracker.Forecast()
			return a.render(cmd.OutOrStdout(), forecast, func(w io.Writer) error {
				return renderForecast(w, forecast)
			})
		},
	}
}

func (a *app) newRoadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roads",
		Short: "Draw the big road, bead plate, derived and predicted roads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			roads := a.tracker.Roads()
			return a.render(cmd.OutOrStdout(), roads, func(w io.Writer) error {
				return renderRoads(w, roads)
			})
		},
	}
}

func (a *app) newBacktestCmd() *cobra.Command {
	var minConfidence, commission float64
	cfg := backtest.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay the ledger through the forecaster",
		Long: `Forecasts every recorded hand from the hands before it and settles a flat
one-unit bet on each call. Ties push and banker wins pay less commission.`,
		Example: `  baccarat backtest
  baccarat backtest --from-shoe 2 --min-confidence 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.MinConfidence = decimal.NewFromFloat(minConfidence)
			cfg.CommissionRate = decimal.NewFromFloat(commission)
			result, err := a.tracker.Backtest(a.context(cmd), cfg)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), result, func(w io.Writer) error {
				_, err := io.WriteString(w, backtest.GenerateConsoleReport(result))
				return err
			})
		},
	}

	cmd.Flags().IntVar(&cfg.FromShoe, "from-shoe", 0, "First shoe to score (0 for the first)")
	cmd.Flags().IntVar(&cfg.ToShoe, "to-shoe", 0, "Last shoe to score (0 for the last)")
	cmd.Flags().IntVar(&cfg.Warmup, "warmup", 0, "Number of leading hands to leave unscored")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "Lowest forecast confidence to bet on")
	cmd.Flags().Float64Var(&commission, "commission", backtest.DefaultCommissionRate.InexactFloat64(), "Commission taken from banker wins")
	return cmd
}

func (a *app) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the ledger as a JSON snapshot",
		Long:  `Writes the ledger snapshot to file, or to stdout when no file is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "-" {
				return a.tracker.Export(cmd.OutOrStdout())
			}
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			if err := a.tracker.Export(f); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d hands to %s\n", len(a.tracker.Records()), args[0])
			return nil
		},
	}
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the ledger with a JSON snapshot",
		Long:  `Replaces the ledger with the snapshot in file, or stdin for "-". A malformed snapshot leaves the ledger untouched.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}
			if err := a.tracker.Import(a.context(cmd), r, "cli"); err != nil {
				return err
			}
			return a.renderCounters(cmd.OutOrStdout(), fmt.Sprintf("Imported %d hands", len(a.tracker.Records())))
		},
	}
}
