package analyzer

import "github.com/yourusername/baccarat-tracker/internal/models"

// Analysis bundles every derived view of one ledger state
type Analysis struct {
	Statistics Statistics       `json:"statistics"`
	Patterns   []models.Pattern `json:"patterns"`
	Forecast   models.Forecast  `json:"forecast"`
	Roads      Roads            `json:"roads"`
}

// Analyze derives statistics, patterns, the forecast and all roads from the
// same records slice so the views are mutually consistent.
func Analyze(records []models.OutcomeRecord, currentShoe int) Analysis {
	patterns := DetectPatterns(records)
	forecast := forecastWithPatterns(records, patterns)
	return Analysis{
		Statistics: CalculateStatistics(records, currentShoe),
		Patterns:   patterns,
		Forecast:   forecast,
		Roads:      DeriveRoads(records, forecast.NextPattern),
	}
}
