package models

// Pattern type tags, in detection order
const (
	PatternInsufficientData   = "Insufficient Data"
	PatternZigzag             = "Zigzag Pattern"
	PatternChop               = "Chop (Balanced)"
	PatternDouble             = "Double Pattern"
	PatternRandomDistribution = "Random Distribution"
)

// StreakPatternType returns the tag for a streak of the given side, e.g. "Banker Streak".
func StreakPatternType(side Side) string {
	return side.Title() + " Streak"
}

// DominancePatternType returns the tag for a dominance pattern, e.g. "Player Dominance".
func DominancePatternType(side Side) string {
	return side.Title() + " Dominance"
}

// Pattern represents a classification of the recent shoe history
type Pattern struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Strength    float64 `json:"strength" validate:"gte=0,lte=100"`
}
