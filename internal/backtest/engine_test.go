package backtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/baccarat-tracker/internal/analyzer"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// handsOf builds an oldest-first ledger from a string such as "BBPT".
// A '|' starts a new shoe.
func handsOf(t *testing.T, seq string) []models.OutcomeRecord {
	t.Helper()
	shoe := 1
	var records []models.OutcomeRecord
	for _, c := range seq {
		var w models.Winner
		switch c {
		case 'P':
			w = models.WinnerPlayer
		case 'B':
			w = models.WinnerBanker
		case 'T':
			w = models.WinnerTie
		case '|':
			shoe++
			continue
		default:
			t.Fatalf("unknown outcome %q", c)
		}
		records = append(records, models.OutcomeRecord{
			ID:           fmt.Sprintf("hand-%d", len(records)),
			Winner:       w,
			Timestamp:    int64(1700000000000 + len(records)),
			ShoeNumber:   shoe,
			DealerNumber: 1,
		})
	}
	return records
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func runReplay(t *testing.T, cfg BacktestConfig, seq string) (*BacktestState, Metrics) {
	t.Helper()
	engine, err := NewEngine(cfg, quietLogger())
	require.NoError(t, err)
	state, metrics, err := engine.Run(context.Background(), handsOf(t, seq))
	require.NoError(t, err)
	return state, metrics
}

func TestEngine_ReplayScoresEachHandFromPriorHistory(t *testing.T) {
	state, metrics := runReplay(t, DefaultConfig(), "BBBBBBP")

	require.Len(t, state.Hands, 7)
	for _, hand := range state.Hands[:5] {
		assert.Equal(t, OutcomeSkipped, hand.Outcome)
		assert.Equal(t, models.PredictionInsufficientData, hand.Prediction)
	}

	short := state.Hands[5]
	assert.Equal(t, analyzer.RuleShortStreakContinuation, short.Rule)
	assert.Equal(t, models.PredictionBanker, short.Prediction)
	assert.Equal(t, OutcomeWin, short.Outcome)
	assert.Equal(t, "0.95", short.PnL.StringFixed(2))

	long := state.Hands[6]
	assert.Equal(t, analyzer.RuleLongStreakReversal, long.Rule)
	assert.Equal(t, models.PredictionPlayer, long.Prediction)
	assert.Equal(t, OutcomeWin, long.Outcome)
	assert.Equal(t, "1.00", long.PnL.StringFixed(2))

	assert.Equal(t, 7, metrics.Hands)
	assert.Equal(t, 2, metrics.Bets)
	assert.Equal(t, 5, metrics.Skipped)
	assert.Equal(t, "100.0", metrics.Accuracy.StringFixed(1))
	assert.Equal(t, "1.95", metrics.NetUnits.StringFixed(2))
	assert.True(t, metrics.DrawdownNow.IsZero(), "balance is at its peak")
	assert.Equal(t, 2, metrics.LongestWinRun)

	require.Len(t, metrics.ByRule, 2)
	assert.Equal(t, analyzer.RuleLongStreakReversal, metrics.ByRule[0].Rule)
	assert.Equal(t, analyzer.RuleShortStreakContinuation, metrics.ByRule[1].Rule)
}

func TestEngine_LossAndDrawdown(t *testing.T) {
	state, metrics := runReplay(t, DefaultConfig(), "BBBBBBB")

	assert.Equal(t, OutcomeLoss, state.Hands[6].Outcome)
	assert.Equal(t, 1, metrics.Wins)
	assert.Equal(t, 1, metrics.Losses)
	assert.Equal(t, "50.0", metrics.Accuracy.StringFixed(1))
	assert.Equal(t, "-0.05", metrics.NetUnits.StringFixed(2))
	assert.Equal(t, "1.00", metrics.MaxDrawdown.StringFixed(2))
	assert.Equal(t, "1.00", metrics.DrawdownNow.StringFixed(2))
	assert.Equal(t, 1, metrics.LongestLossRun)
	require.Len(t, state.EquityCurve, 2)
	assert.Equal(t, "-0.05", state.EquityCurve.Final().StringFixed(2))
}

func TestEngine_TieIsPush(t *testing.T) {
	state, metrics := runReplay(t, DefaultConfig(), "BBBBBT")

	assert.Equal(t, OutcomePush, state.Hands[5].Outcome)
	assert.True(t, state.Hands[5].PnL.IsZero())
	assert.Equal(t, 1, metrics.Pushes)
	assert.Equal(t, 0, metrics.Bets)
	assert.Empty(t, state.EquityCurve)
}

func TestEngine_ConfigFilters(t *testing.T) {
	t.Run("min confidence skips weak calls", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MinConfidence = decimal.NewFromInt(73)
		_, metrics := runReplay(t, cfg, "BBBBBBP")
		assert.Equal(t, 1, metrics.Bets)
		assert.Equal(t, analyzer.RuleShortStreakContinuation, metrics.ByRule[0].Rule)
	})

	t.Run("warmup", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Warmup = 6
		state, metrics := runReplay(t, cfg, "BBBBBBP")
		require.Len(t, state.Hands, 1)
		assert.Equal(t, "hand-6", state.Hands[0].RecordID)
		assert.Equal(t, 1, metrics.Bets)
	})

	t.Run("shoe range uses full history", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.FromShoe = 2
		state, metrics := runReplay(t, cfg, "BBBBB|BP")
		require.Len(t, state.Hands, 2)
		assert.Equal(t, 2, state.Hands[0].ShoeNumber)
		assert.Equal(t, 2, metrics.Wins)
	})

	t.Run("zero commission", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CommissionRate = decimal.Zero
		_, metrics := runReplay(t, cfg, "BBBBBB")
		assert.Equal(t, "1.00", metrics.NetUnits.StringFixed(2))
	})
}

func TestEngine_EmptyLedger(t *testing.T) {
	state, metrics := runReplay(t, DefaultConfig(), "")
	assert.Empty(t, state.Hands)
	assert.Equal(t, 0, metrics.Hands)
	assert.True(t, metrics.Accuracy.IsZero())
	assert.NotNil(t, metrics.ByRule)
}

func TestEngine_Cancelled(t *testing.T) {
	engine, err := NewEngine(DefaultConfig(), quietLogger())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = engine.Run(ctx, handsOf(t, "BBBBBB"))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBacktestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*BacktestConfig)
		errMsg string
	}{
		{name: "default", mutate: func(*BacktestConfig) {}},
		{name: "negative shoe", mutate: func(c *BacktestConfig) { c.FromShoe = -1 }, errMsg: "shoe bounds"},
		{name: "inverted range", mutate: func(c *BacktestConfig) { c.FromShoe, c.ToShoe = 3, 2 }, errMsg: "from shoe"},
		{name: "negative warmup", mutate: func(c *BacktestConfig) { c.Warmup = -1 }, errMsg: "warmup"},
		{name: "confidence too high", mutate: func(c *BacktestConfig) { c.MinConfidence = decimal.NewFromInt(101) }, errMsg: "min confidence"},
		{name: "commission too high", mutate: func(c *BacktestConfig) { c.CommissionRate = decimal.RequireFromString("0.2") }, errMsg: "commission"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGenerateConsoleReport(t *testing.T) {
	_, metrics := runReplay(t, DefaultConfig(), "BBBBBBP")
	report := GenerateConsoleReport(metrics)

	assert.Contains(t, report, "Backtest Report")
	assert.Contains(t, report, "Accuracy: 100.0% (2 won, 0 lost)")
	assert.Contains(t, report, "Net Units: 1.95")
	assert.Contains(t, report, "Drawdown: 0.00 max, 0.00 now")
	assert.Contains(t, report, analyzer.RuleLongStreakReversal)
}
