package backtest

import "github.com/shopspring/decimal"

// EquityPoint is the unit balance after a settled bet
type EquityPoint struct {
	Hand     int             `json:"hand"`
	Units    decimal.Decimal `json:"units"`
	Drawdown decimal.Decimal `json:"drawdown"`
}

// EquityCurve is the balance history of a replay
type EquityCurve []EquityPoint

// MaxDrawdown returns the largest peak-to-trough drop in units
func (e EquityCurve) MaxDrawdown() decimal.Decimal {
	worst := decimal.Zero
	for _, p := range e {
		if p.Drawdown.GreaterThan(worst) {
			worst = p.Drawdown
		}
	}
	return worst
}

// Final returns the closing balance, zero for an empty curve
func (e EquityCurve) Final() decimal.Decimal {
	if len(e) == 0 {
		return decimal.Zero
	}
	return e[len(e)-1].Units
}
