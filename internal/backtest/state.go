package backtest

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// Outcome is how a replayed hand settled against its forecast
type Outcome string

const (
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomePush    Outcome = "push"
	OutcomeSkipped Outcome = "skipped"
)

// HandResult is one replayed hand
type HandResult struct {
	RecordID   string            `json:"recordId"`
	Index      int               `json:"index"`
	ShoeNumber int               `json:"shoeNumber"`
	Winner     models.Winner     `json:"winner"`
	Prediction models.Prediction `json:"prediction"`
	Confidence decimal.Decimal   `json:"confidence"`
	Rule       string            `json:"rule"`
	Outcome    Outcome           `json:"outcome"`
	PnL        decimal.Decimal   `json:"pnl"`
}

// BacktestState tracks current backtest state
type BacktestState struct {
	Units       decimal.Decimal `json:"units"`
	PeakUnits   decimal.Decimal `json:"peakUnits"`
	Hands       []HandResult    `json:"hands"`
	EquityCurve EquityCurve     `json:"equityCurve"`
}

// NewBacktestState initializes backtest state at zero units
func NewBacktestState() *BacktestState {
	return &BacktestState{
		Units:       decimal.Zero,
		PeakUnits:   decimal.Zero,
		Hands:       []HandResult{},
		EquityCurve: EquityCurve{},
	}
}

// UpdateState applies a settled hand to the running unit balance
func (s *BacktestState) UpdateState(hand HandResult) {
	s.Hands = append(s.Hands, hand)
	if hand.Outcome != OutcomeWin && hand.Outcome != OutcomeLoss {
		return
	}
	s.Units = s.Units.Add(hand.PnL)
	if s.Units.GreaterThan(s.PeakUnits) {
		s.PeakUnits = s.Units
	}
	s.RecordEquityPoint(hand.Index, s.Units)
}

// GetCurrentDrawdown returns the distance from the peak balance in units
func (s *BacktestState) GetCurrentDrawdown() decimal.Decimal {
	return s.PeakUnits.Sub(s.Units)
}

// RecordEquityPoint adds an equity point to the curve
func (s *BacktestState) RecordEquityPoint(hand int, units decimal.Decimal) {
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Hand:     hand,
		Units:    units,
		Drawdown: s.PeakUnits.Sub(units),
	})
}
