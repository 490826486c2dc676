package analyzer

import (
	"fmt"
	"math"

	"github.com/yourusername/baccarat-tracker/internal/models"
)

const (
	minPatternRecords    = 6
	zigzagMinStrength    = 60.0
	streakMinCount       = 3
	dominanceMinCount    = 7
	chopMaxDifference    = 2
	chopMinWindow        = 8
	chopStrength         = 70.0
	doubleMinCount       = 3
	randomStrength       = 50.0
	streakStrengthPerRun = 20
)

// DetectPatterns classifies the recent history of the ledger. The result is
// never empty and is ordered by detection order.
func DetectPatterns(records []models.OutcomeRecord) []models.Pattern {
	if len(records) < minPatternRecords {
		return []models.Pattern{{
			Type:        models.PatternInsufficientData,
			Description: fmt.Sprintf("Record at least %d results to detect patterns", minPatternRecords),
			Strength:    0,
		}}
	}

	sides := nonTieSides(records)
	recent := lastN(sides, RecentWindowSize)
	extended := lastN(sides, ExtendedWindowSize)

	patterns := make([]models.Pattern, 0, 4)
	if p, ok := zigzagPattern(recent); ok {
		patterns = append(patterns, p)
	}
	if p, ok := streakPattern(CurrentStreak(records)); ok {
		patterns = append(patterns, p)
	}
	if p, ok := dominancePattern(recent); ok {
		patterns = append(patterns, p)
	}
	if p, ok := chopPattern(recent); ok {
		patterns = append(patterns, p)
	}
	if p, ok := doublePattern(extended); ok {
		patterns = append(patterns, p)
	}

	if len(patterns) == 0 {
		patterns = append(patterns, models.Pattern{
			Type:        models.PatternRandomDistribution,
			Description: "No clear patterns detected - results appear random",
			Strength:    randomStrength,
		})
	}
	return patterns
}

// FindPattern returns the first pattern with the given type.
func FindPattern(patterns []models.Pattern, patternType string) (models.Pattern, bool) {
	for _, p := range patterns {
		if p.Type == patternType {
			return p, true
		}
	}
	return models.Pattern{}, false
}

func zigzagPattern(window []models.Side) (models.Pattern, bool) {
	pairs := len(window) - 1
	if pairs < 1 {
		return models.Pattern{}, false
	}
	changes := 0
	for i := 0; i < pairs; i++ {
		if window[i] != window[i+1] {
			changes++
		}
	}
	strength := float64(changes) / float64(pairs) * 100
	if strength < zigzagMinStrength {
		return models.Pattern{}, false
	}
	return models.Pattern{
		Type:        models.PatternZigzag,
		Description: fmt.Sprintf("Strong alternating pattern detected (%d/%d alternations)", changes, pairs),
		Strength:    strength,
	}, true
}

func streakPattern(streak Streak) (models.Pattern, bool) {
	if streak.Count < streakMinCount {
		return models.Pattern{}, false
	}
	return models.Pattern{
		Type:        models.StreakPatternType(streak.Side),
		Description: fmt.Sprintf("%d consecutive %s wins", streak.Count, streak.Side),
		Strength:    math.Min(float64(streak.Count*streakStrengthPerRun), 100),
	}, true
}

func dominancePattern(window []models.Side) (models.Pattern, bool) {
	for _, side := range []models.Side{models.SidePlayer, models.SideBanker} {
		count := countSide(window, side)
		if count >= dominanceMinCount {
			return models.Pattern{
				Type:        models.DominancePatternType(side),
				Description: fmt.Sprintf("%s winning %d of last %d hands", side.Title(), count, len(window)),
				Strength:    float64(count) / float64(len(window)) * 100,
			}, true
		}
	}
	return models.Pattern{}, false
}

func chopPattern(window []models.Side) (models.Pattern, bool) {
	player := countSide(window, models.SidePlayer)
	banker := countSide(window, models.SideBanker)
	diff := player - banker
	if diff < 0 {
		diff = -diff
	}
	if diff > chopMaxDifference || len(window) < chopMinWindow {
		return models.Pattern{}, false
	}
	return models.Pattern{
		Type:        models.PatternChop,
		Description: fmt.Sprintf("Nearly equal distribution: P%d vs B%d", player, banker),
		Strength:    chopStrength,
	}, true
}

// doublePattern counts overlapping adjacent equal pairs in the window.
func doublePattern(window []models.Side) (models.Pattern, bool) {
	doubles := 0
	for i := 0; i+1 < len(window); i++ {
		if window[i] == window[i+1] {
			doubles++
		}
	}
	if doubles < doubleMinCount {
		return models.Pattern{}, false
	}
	strength := float64(doubles) / (float64(len(window)) / 2) * 100
	return models.Pattern{
		Type:        models.PatternDouble,
		Description: fmt.Sprintf("Results appearing in pairs (%d doubles detected)", doubles),
		Strength:    math.Min(strength, 100),
	}, true
}
