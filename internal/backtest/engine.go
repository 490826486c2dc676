package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/baccarat-tracker/internal/analyzer"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

var stake = decimal.NewFromInt(1)

// Engine replays a ledger hand by hand, forecasting each hand from the
// hands before it and settling a flat one-unit bet on the call.
type Engine struct {
	config BacktestConfig
	logger *logrus.Logger
}

// NewEngine creates a new backtesting engine
func NewEngine(cfg BacktestConfig, logger *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{config: cfg, logger: logger}, nil
}

// Run replays records (oldest first) and summarizes the result
func (e *Engine) Run(ctx context.Context, records []models.OutcomeRecord) (*BacktestState, Metrics, error) {
	start := time.Now()
	e.logger.WithFields(logrus.Fields{
		"hands":     len(records),
		"from_shoe": e.config.FromShoe,
		"to_shoe":   e.config.ToShoe,
	}).Info("Starting backtest run")

	state, err := e.HistoricalReplay(ctx, records)
	if err != nil {
		return nil, Metrics{}, err
	}
	metrics := CalculateMetrics(state)

	e.logger.WithFields(logrus.Fields{
		"bets":        metrics.Bets,
		"accuracy":    metrics.Accuracy.String(),
		"net_units":   metrics.NetUnits.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Backtest run complete")
	return state, metrics, nil
}

// HistoricalReplay walks the ledger and settles every in-range hand
func (e *Engine) HistoricalReplay(ctx context.Context, records []models.OutcomeRecord) (*BacktestState, error) {
	state := NewBacktestState()
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("backtest cancelled at hand %d: %w", i, err)
		}
		if i < e.config.Warmup || !e.config.inRange(records[i].ShoeNumber) {
			continue
		}
		state.UpdateState(e.processHand(records[:i], records[i], i))
	}
	return state, nil
}

func (e *Engine) processHand(history []models.OutcomeRecord, rec models.OutcomeRecord, index int) HandResult {
	forecast := analyzer.Forecast(history)
	hand := HandResult{
		RecordID:   rec.ID,
		Index:      index,
		ShoeNumber: rec.ShoeNumber,
		Winner:     rec.Winner,
		Prediction: forecast.Prediction,
		Confidence: forecast.Confidence,
		Rule:       forecast.Rule,
		Outcome:    OutcomeSkipped,
		PnL:        decimal.Zero,
	}

	predicted, ok := forecast.Prediction.Side()
	if !ok || forecast.Confidence.LessThan(e.config.MinConfidence) {
		return hand
	}
	actual, ok := rec.Winner.Side()
	if !ok {
		hand.Outcome = OutcomePush
		return hand
	}
	hand.Outcome, hand.PnL = e.SettleBet(predicted, actual)
	return hand
}

// SettleBet settles a one-unit bet on predicted against the actual winner.
// Banker wins pay less the commission.
func (e *Engine) SettleBet(predicted, actual models.Side) (Outcome, decimal.Decimal) {
	if predicted != actual {
		return OutcomeLoss, stake.Neg()
	}
	if predicted == models.SideBanker {
		return OutcomeWin, stake.Sub(stake.Mul(e.config.CommissionRate))
	}
	return OutcomeWin, stake
}
