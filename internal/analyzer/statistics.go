// Package analyzer derives statistics, patterns, forecasts and road diagrams
// from an ordered ledger of baccarat hands. Every function is a pure
// re-derivation from the records it is given.
package analyzer

import (
	"github.com/shopspring/decimal"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// Streak represents a run of consecutive equal non-tie outcomes
type Streak struct {
	Side  models.Side `json:"type,omitempty"`
	Count int         `json:"count"`
}

// Statistics represents aggregate counts and streak metrics for a ledger
type Statistics struct {
	Total              int             `json:"total"`
	PlayerWins         int             `json:"playerWins"`
	BankerWins         int             `json:"bankerWins"`
	Ties               int             `json:"ties"`
	PlayerWinRate      decimal.Decimal `json:"playerWinRate"`
	BankerWinRate      decimal.Decimal `json:"bankerWinRate"`
	TieRate            decimal.Decimal `json:"tieRate"`
	CurrentStreak      Streak          `json:"currentStreak"`
	LongestStreak      Streak          `json:"longestStreak"`
	AvgPlayerScore     decimal.Decimal `json:"avgPlayerScore"`
	AvgBankerScore     decimal.Decimal `json:"avgBankerScore"`
	ShoesPlayed        int             `json:"shoesPlayed"`
	CorrectPredictions int             `json:"correctPredictions"`
	TotalPredictions   int             `json:"totalPredictions"`
	PredictionAccuracy decimal.Decimal `json:"predictionAccuracy"`
}

// CalculateStatistics computes aggregate metrics over the full ledger.
// Prediction accuracy only considers hands from currentShoe.
func CalculateStatistics(records []models.OutcomeRecord, currentShoe int) Statistics {
	stats := Statistics{Total: len(records)}

	shoes := make(map[int]struct{})
	var scored, playerSum, bankerSum int64
	for i := range records {
		r := &records[i]
		switch r.Winner {
		case models.WinnerPlayer:
			stats.PlayerWins++
		case models.WinnerBanker:
			stats.BankerWins++
		case models.WinnerTie:
			stats.Ties++
		}
		shoes[r.ShoeNumber] = struct{}{}

		if r.HasScores() {
			scored++
			playerSum += int64(*r.PlayerScore)
			bankerSum += int64(*r.BankerScore)
		}

		if r.ShoeNumber == currentShoe && r.Winner != models.WinnerTie && r.PredictedWinner != nil {
			stats.TotalPredictions++
			if r.IsCorrectPrediction != nil && *r.IsCorrectPrediction {
				stats.CorrectPredictions++
			}
		}
	}

	stats.PlayerWinRate = percentOf(stats.PlayerWins, stats.Total)
	stats.BankerWinRate = percentOf(stats.BankerWins, stats.Total)
	stats.TieRate = percentOf(stats.Ties, stats.Total)
	stats.ShoesPlayed = len(shoes)
	stats.PredictionAccuracy = percentOf(stats.CorrectPredictions, stats.TotalPredictions)

	stats.AvgPlayerScore = average(playerSum, scored)
	stats.AvgBankerScore = average(bankerSum, scored)

	stats.CurrentStreak = CurrentStreak(records)
	stats.LongestStreak = LongestStreak(records)

	return stats
}

// CurrentStreak scans back from the most recent hand, skipping ties, and
// counts consecutive equal winners.
func CurrentStreak(records []models.OutcomeRecord) Streak {
	var streak Streak
	for i := len(records) - 1; i >= 0; i-- {
		side, ok := records[i].Winner.Side()
		if !ok {
			continue
		}
		if streak.Count == 0 {
			streak = Streak{Side: side, Count: 1}
			continue
		}
		if side != streak.Side {
			break
		}
		streak.Count++
	}
	return streak
}

// LongestStreak returns the longest run of equal non-tie winners. When two
// runs share the maximum length the earlier one wins.
func LongestStreak(records []models.OutcomeRecord) Streak {
	var longest, run Streak
	for _, side := range nonTieSides(records) {
		if run.Count > 0 && side == run.Side {
			run.Count++
			continue
		}
		if run.Count > longest.Count {
			longest = run
		}
		run = Streak{Side: side, Count: 1}
	}
	if run.Count > longest.Count {
		longest = run
	}
	return longest
}

func average(sum, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(n)).Round(2)
}
