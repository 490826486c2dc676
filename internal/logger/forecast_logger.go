// Package logger provides forecast-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// ForecastLogger provides dedicated logging for forecast operations.
type ForecastLogger struct {
	*logrus.Entry
}

// NewForecastLogger creates a new forecast logger.
func NewForecastLogger(baseLogger *logrus.Logger) *ForecastLogger {
	return &ForecastLogger{
		Entry: baseLogger.WithField("component", "forecast"),
	}
}

// LogForecast logs the forecast produced for the next hand.
func (fl *ForecastLogger) LogForecast(f models.Forecast, records int, durationMs float64) {
	fl.WithFields(logrus.Fields{
		"rule":                 f.Rule,
		"prediction":           f.Prediction,
		"confidence":           f.Confidence.InexactFloat64(),
		"signals":              len(f.Signals),
		"records":              records,
		"analysis_duration_ms": durationMs,
	}).Debug("Forecast computed")
}

// LogPredictionScored logs the comparison of a stamped prediction with the
// actual winner.
func (fl *ForecastLogger) LogPredictionScored(rec models.OutcomeRecord) {
	if rec.PredictedWinner == nil || rec.IsCorrectPrediction == nil {
		return
	}
	fl.WithFields(logrus.Fields{
		"record_id": rec.ID,
		"predicted": *rec.PredictedWinner,
		"actual":    rec.Winner,
		"correct":   *rec.IsCorrectPrediction,
	}).Info("Prediction scored")
}
