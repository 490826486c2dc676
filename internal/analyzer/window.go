package analyzer

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

const (
	// RecentWindowSize is the number of most recent non-tie hands used by the
	// zigzag, dominance and chop checks.
	RecentWindowSize = 10
	// ExtendedWindowSize is the number of most recent non-tie hands used by
	// the double pattern check.
	ExtendedWindowSize = 20
)

var hundred = decimal.NewFromInt(100)

// nonTieSides returns the winning side of every non-tie record, oldest first.
func nonTieSides(records []models.OutcomeRecord) []models.Side {
	sides := make([]models.Side, 0, len(records))
	for i := range records {
		if side, ok := records[i].Winner.Side(); ok {
			sides = append(sides, side)
		}
	}
	return sides
}

// lastN returns at most n trailing elements of sides.
func lastN(sides []models.Side, n int) []models.Side {
	if len(sides) <= n {
		return sides
	}
	return sides[len(sides)-n:]
}

func countSide(sides []models.Side, side models.Side) int {
	n := 0
	for _, s := range sides {
		if s == side {
			n++
		}
	}
	return n
}

// percentOf returns part/whole*100 rounded to one decimal, or zero for an empty whole.
func percentOf(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(whole))).
		Round(1)
}
