package backtest

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/yourusername/baccarat-tracker/internal/analyzer"
)

// RuleMetrics summarizes the bets placed on one forecast rule
type RuleMetrics struct {
	Rule     string          `json:"rule"`
	Bets     int             `json:"bets"`
	Wins     int             `json:"wins"`
	Losses   int             `json:"losses"`
	Accuracy decimal.Decimal `json:"accuracy"`
	NetUnits decimal.Decimal `json:"netUnits"`
}

// Metrics represents backtest performance metrics
type Metrics struct {
	Hands          int             `json:"hands"`
	Bets           int             `json:"bets"`
	Wins           int             `json:"wins"`
	Losses         int             `json:"losses"`
	Pushes         int             `json:"pushes"`
	Skipped        int             `json:"skipped"`
	Accuracy       decimal.Decimal `json:"accuracy"`
	NetUnits       decimal.Decimal `json:"netUnits"`
	MaxDrawdown    decimal.Decimal `json:"maxDrawdown"`
	DrawdownNow    decimal.Decimal `json:"currentDrawdown"`
	LongestWinRun  int             `json:"longestWinRun"`
	LongestLossRun int             `json:"longestLossRun"`
	ByRule         []RuleMetrics   `json:"byRule"`
}

// CalculateMetrics calculates metrics from backtest state
func CalculateMetrics(state *BacktestState) Metrics {
	metrics := Metrics{
		Accuracy:    decimal.Zero,
		NetUnits:    decimal.Zero,
		MaxDrawdown: decimal.Zero,
		DrawdownNow: decimal.Zero,
		ByRule:      []RuleMetrics{},
	}
	if state == nil {
		return metrics
	}

	byRule := make(map[string]*RuleMetrics)
	winRun, lossRun := 0, 0
	for _, hand := range state.Hands {
		metrics.Hands++
		switch hand.Outcome {
		case OutcomeSkipped:
			metrics.Skipped++
			continue
		case OutcomePush:
			metrics.Pushes++
			continue
		}

		rm, ok := byRule[hand.Rule]
		if !ok {
			rm = &RuleMetrics{Rule: hand.Rule, NetUnits: decimal.Zero}
			byRule[hand.Rule] = rm
		}
		metrics.Bets++
		rm.Bets++
		rm.NetUnits = rm.NetUnits.Add(hand.PnL)
		if hand.Outcome == OutcomeWin {
			metrics.Wins++
			rm.Wins++
			winRun, lossRun = winRun+1, 0
		} else {
			metrics.Losses++
			rm.Losses++
			winRun, lossRun = 0, lossRun+1
		}
		metrics.LongestWinRun = max(metrics.LongestWinRun, winRun)
		metrics.LongestLossRun = max(metrics.LongestLossRun, lossRun)
	}

	metrics.Accuracy = calculateWinRate(metrics.Wins, metrics.Bets)
	metrics.NetUnits = state.Units
	metrics.MaxDrawdown = state.EquityCurve.MaxDrawdown()
	metrics.DrawdownNow = state.GetCurrentDrawdown()

	order := make(map[string]int)
	for i, name := range analyzer.RuleNames() {
		order[name] = i
	}
	for _, rm := range byRule {
		rm.Accuracy = calculateWinRate(rm.Wins, rm.Bets)
		metrics.ByRule = append(metrics.ByRule, *rm)
	}
	sort.Slice(metrics.ByRule, func(i, j int) bool {
		return order[metrics.ByRule[i].Rule] < order[metrics.ByRule[j].Rule]
	})
	return metrics
}

// calculateWinRate returns wins as a percentage of bets, one decimal place
func calculateWinRate(wins, bets int) decimal.Decimal {
	if bets == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(wins)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(bets))).
		Round(1)
}
