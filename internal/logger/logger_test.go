package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLogger(t *testing.T) {
	log := NewLogger("debug", "development")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	log = NewLogger("bogus", "production")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestAuditLoggerOutcomeRecorded(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	predicted := models.SideBanker
	correct := false
	auditLogger.LogOutcomeRecorded(models.OutcomeRecord{
		ID:                  "hand-1",
		Winner:              models.WinnerPlayer,
		ShoeNumber:          2,
		DealerNumber:        3,
		PredictedWinner:     &predicted,
		IsCorrectPrediction: &correct,
	})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, "hand-1", logEntry["record_id"])
	assert.Equal(t, "player", logEntry["winner"])
	assert.Equal(t, "banker", logEntry["predicted_winner"])
	assert.Equal(t, false, logEntry["prediction_correct"])
	assert.Equal(t, float64(2), logEntry["shoe"])
}

func TestAuditLoggerOutcomeRecordedWithoutPrediction(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogOutcomeRecorded(models.OutcomeRecord{ID: "hand-1", Winner: models.WinnerTie})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.NotContains(t, logEntry, "predicted_winner")
	assert.NotContains(t, logEntry, "prediction_correct")
}

func TestAuditLoggerLedgerCleared(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogLedgerCleared(42)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, float64(42), logEntry["discarded"])
}

func TestAuditLoggerCounterChange(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogCounterChange("shoe", 1, 2)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "shoe", logEntry["counter"])
	assert.Equal(t, float64(2), logEntry["new_value"])
}

func TestAuditLoggerSnapshotRejected(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogSnapshotRejected("api", errors.New("unexpected end of JSON input"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "api", logEntry["source"])
	assert.Equal(t, "unexpected end of JSON input", logEntry["error"])
}

func TestForecastLoggerForecast(t *testing.T) {
	log, buf := setupTestLogger()
	forecastLogger := NewForecastLogger(log)

	forecastLogger.LogForecast(models.Forecast{
		Prediction: models.PredictionPlayer,
		Confidence: decimal.RequireFromString("72.0"),
		Rule:       "long_streak_reversal",
		Signals:    []string{"Long streak detected", "Banker Streak detected"},
	}, 6, 0.4)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "forecast", logEntry["component"])
	assert.Equal(t, "long_streak_reversal", logEntry["rule"])
	assert.Equal(t, 72.0, logEntry["confidence"])
	assert.Equal(t, float64(2), logEntry["signals"])
}

func TestForecastLoggerPredictionScored(t *testing.T) {
	log, buf := setupTestLogger()
	forecastLogger := NewForecastLogger(log)

	forecastLogger.LogPredictionScored(models.OutcomeRecord{ID: "hand-1", Winner: models.WinnerTie})
	assert.Zero(t, buf.Len(), "unscored hands are not logged")

	predicted := models.SidePlayer
	correct := true
	forecastLogger.LogPredictionScored(models.OutcomeRecord{
		ID:                  "hand-2",
		Winner:              models.WinnerPlayer,
		PredictedWinner:     &predicted,
		IsCorrectPrediction: &correct,
	})

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, true, logEntry["correct"])
	assert.Equal(t, "player", logEntry["predicted"])
}
