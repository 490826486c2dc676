package models

import "github.com/shopspring/decimal"

// Prediction is the forecaster's call for the next hand
type Prediction string

const (
	PredictionPlayer           Prediction = "player"
	PredictionBanker           Prediction = "banker"
	PredictionInsufficientData Prediction = "insufficient_data"
)

// PredictSide wraps a side as a prediction.
func PredictSide(s Side) Prediction {
	return Prediction(s)
}

// Side returns the predicted side; false for the InsufficientData sentinel.
func (p Prediction) Side() (Side, bool) {
	switch p {
	case PredictionPlayer:
		return SidePlayer, true
	case PredictionBanker:
		return SideBanker, true
	case PredictionInsufficientData:
		return "", false
	default:
		return "", false
	}
}

// Lookahead is a single projected outcome in a forecast sequence
type Lookahead string

const (
	LookaheadPlayer  Lookahead = "player"
	LookaheadBanker  Lookahead = "banker"
	LookaheadUnknown Lookahead = "unknown"
)

// LookaheadLength is the number of hands every forecast projects.
const LookaheadLength = 6

// LookaheadOf converts a side into a lookahead entry.
func LookaheadOf(s Side) Lookahead {
	return Lookahead(s)
}

// Forecast represents the prediction for the next hand and a short projection
type Forecast struct {
	Prediction  Prediction                 `json:"prediction"`
	Confidence  decimal.Decimal            `json:"confidence"`
	Reason      string                     `json:"reason"`
	Alternate   *Side                      `json:"alternate,omitempty"`
	Signals     []string                   `json:"signals"`
	NextPattern [LookaheadLength]Lookahead `json:"nextPattern"`
	Rule        string                     `json:"rule"`
}

// HasPrediction reports whether the forecast names a side.
func (f *Forecast) HasPrediction() bool {
	_, ok := f.Prediction.Side()
	return ok
}
