package backtest

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the house commission taken from banker wins.
var DefaultCommissionRate = decimal.RequireFromString("0.05")

// BacktestConfig controls which hands a replay scores and how bets settle
type BacktestConfig struct {
	// FromShoe and ToShoe bound the scored hands by shoe number. Zero means unbounded.
	FromShoe int
	ToShoe   int
	// Warmup skips scoring for the first Warmup hands of the ledger.
	Warmup int
	// MinConfidence is the lowest forecast confidence that places a bet.
	MinConfidence  decimal.Decimal
	CommissionRate decimal.Decimal
}

// DefaultConfig returns a replay over every hand with standard commission.
func DefaultConfig() BacktestConfig {
	return BacktestConfig{
		MinConfidence:  decimal.Zero,
		CommissionRate: DefaultCommissionRate,
	}
}

// Validate validates backtest config parameters
func (b BacktestConfig) Validate() error {
	if b.FromShoe < 0 || b.ToShoe < 0 {
		return fmt.Errorf("shoe bounds cannot be negative")
	}
	if b.FromShoe > 0 && b.ToShoe > 0 && b.FromShoe > b.ToShoe {
		return fmt.Errorf("from shoe must not be after to shoe")
	}
	if b.Warmup < 0 {
		return fmt.Errorf("warmup cannot be negative")
	}
	if b.MinConfidence.IsNegative() || b.MinConfidence.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("min confidence must be between 0 and 100")
	}
	if b.CommissionRate.IsNegative() || b.CommissionRate.GreaterThan(decimal.RequireFromString("0.1")) {
		return fmt.Errorf("commission rate must be between 0 and 0.1")
	}
	return nil
}

func (b BacktestConfig) inRange(shoe int) bool {
	if b.FromShoe > 0 && shoe < b.FromShoe {
		return false
	}
	if b.ToShoe > 0 && shoe > b.ToShoe {
		return false
	}
	return true
}
