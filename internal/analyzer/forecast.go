package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// Forecast rule names, in evaluation order
const (
	RuleInsufficientData        = "insufficient_data"
	RuleZigzag                  = "zigzag"
	RuleLongStreakReversal      = "long_streak_reversal"
	RuleShortStreakContinuation = "short_streak_continuation"
	RuleDominanceCorrection     = "dominance_correction"
	RuleDoublePattern           = "double_pattern"
	RuleStatisticalBaseline     = "statistical_baseline"
)

const (
	minForecastHands    = 5
	zigzagRuleThreshold = 60.0
	signalThreshold     = 60.0
	maxConfidence       = 90.0
	longStreakMin       = 6
	shortStreakCap      = 75.0
)

var baselineLookahead = []models.Lookahead{
	models.LookaheadBanker,
	models.LookaheadPlayer,
	models.LookaheadBanker,
	models.LookaheadBanker,
	models.LookaheadPlayer,
	models.LookaheadPlayer,
}

// forecastInput is the view of the ledger every rule evaluates against.
type forecastInput struct {
	sides        []models.Side
	recentPlayer int
	recentBanker int
	streak       Streak
	patterns     []models.Pattern
}

func (in *forecastInput) last() models.Side {
	return in.sides[len(in.sides)-1]
}

// ruleOutcome is what a matching rule contributes to the forecast.
type ruleOutcome struct {
	prediction models.Prediction
	confidence float64
	reason     string
	alternate  *models.Side
	signal     string
	lookahead  []models.Lookahead
}

// forecastRule pairs a predicate with the outcome it produces. Rules are
// evaluated in slice order and the first match wins.
type forecastRule struct {
	name  string
	match func(in *forecastInput) bool
	apply func(in *forecastInput) ruleOutcome
}

var forecastRules = []forecastRule{
	{name: RuleInsufficientData, match: matchInsufficientData, apply: applyInsufficientData},
	{name: RuleZigzag, match: matchZigzag, apply: applyZigzag},
	{name: RuleLongStreakReversal, match: matchLongStreak, apply: applyLongStreak},
	{name: RuleShortStreakContinuation, match: matchShortStreak, apply: applyShortStreak},
	{name: RuleDominanceCorrection, match: matchDominance, apply: applyDominance},
	{name: RuleDoublePattern, match: matchDouble, apply: applyDouble},
	{name: RuleStatisticalBaseline, match: func(*forecastInput) bool { return true }, apply: applyBaseline},
}

// RuleNames returns the forecast rule names in priority order.
func RuleNames() []string {
	names := make([]string, len(forecastRules))
	for i, r := range forecastRules {
		names[i] = r.name
	}
	return names
}

// Forecast predicts the next hand from the current ledger.
func Forecast(records []models.OutcomeRecord) models.Forecast {
	return forecastWithPatterns(records, DetectPatterns(records))
}

func forecastWithPatterns(records []models.OutcomeRecord, patterns []models.Pattern) models.Forecast {
	sides := nonTieSides(records)
	recent := lastN(sides, RecentWindowSize)
	in := &forecastInput{
		sides:        sides,
		recentPlayer: countSide(recent, models.SidePlayer),
		recentBanker: countSide(recent, models.SideBanker),
		streak:       CurrentStreak(records),
		patterns:     patterns,
	}

	for _, rule := range forecastRules {
		if !rule.match(in) {
			continue
		}
		out := rule.apply(in)
		forecast := models.Forecast{
			Prediction:  out.prediction,
			Confidence:  decimal.NewFromFloat(out.confidence).Round(1),
			Reason:      out.reason,
			Alternate:   out.alternate,
			Signals:     []string{},
			NextPattern: padLookahead(out.lookahead),
			Rule:        rule.name,
		}
		if out.signal != "" {
			forecast.Signals = append(forecast.Signals, out.signal)
		}
		if rule.name != RuleInsufficientData {
			forecast.Signals = appendPatternSignals(forecast.Signals, patterns)
		}
		return forecast
	}

	// The baseline rule always matches.
	panic("analyzer: no forecast rule matched")
}

// appendPatternSignals adds a signal for every strong pattern not already
// mentioned by an existing signal.
func appendPatternSignals(signals []string, patterns []models.Pattern) []string {
	for _, p := range patterns {
		if p.Strength <= signalThreshold {
			continue
		}
		mentioned := false
		for _, s := range signals {
			if strings.Contains(s, p.Type) {
				mentioned = true
				break
			}
		}
		if !mentioned {
			signals = append(signals, p.Type+" detected")
		}
	}
	return signals
}

// padLookahead right-pads with unknown entries and truncates to LookaheadLength.
func padLookahead(seq []models.Lookahead) [models.LookaheadLength]models.Lookahead {
	var out [models.LookaheadLength]models.Lookahead
	for i := range out {
		if i < len(seq) {
			out[i] = seq[i]
		} else {
			out[i] = models.LookaheadUnknown
		}
	}
	return out
}

func repeat(entry models.Lookahead, n int) []models.Lookahead {
	seq := make([]models.Lookahead, n)
	for i := range seq {
		seq[i] = entry
	}
	return seq
}

func sidePtr(s models.Side) *models.Side {
	return &s
}

func matchInsufficientData(in *forecastInput) bool {
	return len(in.sides) < minForecastHands
}

func applyInsufficientData(*forecastInput) ruleOutcome {
	return ruleOutcome{
		prediction: models.PredictionInsufficientData,
		confidence: 0,
		reason:     fmt.Sprintf("Need more data: record at least %d non-tie results for predictions", minForecastHands),
	}
}

func matchZigzag(in *forecastInput) bool {
	p, ok := FindPattern(in.patterns, models.PatternZigzag)
	return ok && p.Strength > zigzagRuleThreshold
}

func applyZigzag(in *forecastInput) ruleOutcome {
	zigzag, _ := FindPattern(in.patterns, models.PatternZigzag)
	next := in.last().Opposite()

	seq := make([]models.Lookahead, 0, models.LookaheadLength)
	side := next
	for i := 0; i < models.LookaheadLength; i++ {
		seq = append(seq, models.LookaheadOf(side))
		side = side.Opposite()
	}

	return ruleOutcome{
		prediction: models.PredictSide(next),
		confidence: math.Min(zigzag.Strength, maxConfidence),
		reason:     "Strong zigzag pattern suggests alternation",
		signal:     "Zigzag pattern active",
		lookahead:  seq,
	}
}

func matchLongStreak(in *forecastInput) bool {
	return in.streak.Count >= longStreakMin
}

func applyLongStreak(in *forecastInput) ruleOutcome {
	next := in.streak.Side.Opposite()
	return ruleOutcome{
		prediction: models.PredictSide(next),
		confidence: math.Min(60+float64(in.streak.Count*2), maxConfidence),
		reason:     fmt.Sprintf("Long streak likely to break (%d hands)", in.streak.Count),
		signal:     fmt.Sprintf("%d-hand streak - reversal likely", in.streak.Count),
		lookahead:  repeat(models.LookaheadOf(next), 4),
	}
}

func matchShortStreak(in *forecastInput) bool {
	return in.streak.Count >= streakMinCount && in.streak.Count < longStreakMin
}

func applyShortStreak(in *forecastInput) ruleOutcome {
	side := in.streak.Side
	opposite := side.Opposite()
	seq := append(repeat(models.LookaheadOf(side), 3), repeat(models.LookaheadOf(opposite), 3)...)
	return ruleOutcome{
		prediction: models.PredictSide(side),
		confidence: math.Min(50+float64(in.streak.Count*6), shortStreakCap),
		reason:     fmt.Sprintf("%d-streak may continue", in.streak.Count),
		alternate:  sidePtr(opposite),
		signal:     fmt.Sprintf("%d-hand streak", in.streak.Count),
		lookahead:  seq,
	}
}

func matchDominance(in *forecastInput) bool {
	return in.recentPlayer >= dominanceMinCount || in.recentBanker >= dominanceMinCount
}

func applyDominance(in *forecastInput) ruleOutcome {
	dominant := models.SideBanker
	if in.recentPlayer >= dominanceMinCount {
		dominant = models.SidePlayer
	}
	next := dominant.Opposite()
	return ruleOutcome{
		prediction: models.PredictSide(next),
		confidence: 65,
		reason:     fmt.Sprintf("%s dominance suggests %s correction", dominant.Title(), next),
		alternate:  sidePtr(dominant),
		signal:     fmt.Sprintf("%s dominance detected", dominant.Title()),
		lookahead:  repeat(models.LookaheadOf(next), 4),
	}
}

func matchDouble(in *forecastInput) bool {
	_, ok := FindPattern(in.patterns, models.PatternDouble)
	return ok
}

func applyDouble(in *forecastInput) ruleOutcome {
	last := in.last()
	previous := in.sides[len(in.sides)-2]

	if last == previous {
		next := last.Opposite()
		seq := append(repeat(models.LookaheadOf(next), 2), repeat(models.LookaheadOf(next.Opposite()), 2)...)
		return ruleOutcome{
			prediction: models.PredictSide(next),
			confidence: 55,
			reason:     "Double pattern suggests switch after pair",
			signal:     "Double pattern active",
			lookahead:  seq,
		}
	}

	seq := append([]models.Lookahead{models.LookaheadOf(last)}, repeat(models.LookaheadOf(last.Opposite()), 2)...)
	return ruleOutcome{
		prediction: models.PredictSide(last),
		confidence: 60,
		reason:     "Double pattern suggests pair formation",
		signal:     "Expecting pair completion",
		lookahead:  seq,
	}
}

func applyBaseline(in *forecastInput) ruleOutcome {
	out := ruleOutcome{
		signal:    "Using statistical baseline",
		lookahead: baselineLookahead,
	}
	if in.recentPlayer < in.recentBanker {
		out.prediction = models.PredictionPlayer
		out.confidence = 48
		out.reason = "Statistical rebalancing expected"
	} else {
		out.prediction = models.PredictionBanker
		out.confidence = 46
		out.reason = "Statistical probability favors banker"
	}
	return out
}
