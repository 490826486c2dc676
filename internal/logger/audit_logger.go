// Package logger provides audit logging.
package logger

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// AuditLogger provides dedicated audit trail logging for ledger changes.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogOutcomeRecorded logs a new hand entering the ledger.
func (al *AuditLogger) LogOutcomeRecorded(rec models.OutcomeRecord) {
	fields := logrus.Fields{
		"record_id": rec.ID,
		"winner":    rec.Winner,
		"shoe":      rec.ShoeNumber,
		"dealer":    rec.DealerNumber,
		"timestamp": rec.Timestamp,
	}
	if rec.PredictedWinner != nil {
		fields["predicted_winner"] = *rec.PredictedWinner
	}
	if rec.IsCorrectPrediction != nil {
		fields["prediction_correct"] = *rec.IsCorrectPrediction
	}
	al.WithFields(fields).Info("Outcome recorded")
}

// LogOutcomeDeleted logs removal of a hand.
func (al *AuditLogger) LogOutcomeDeleted(recordID string, remaining int) {
	al.WithFields(logrus.Fields{
		"record_id": recordID,
		"remaining": remaining,
	}).Info("Outcome deleted")
}

// LogLedgerCleared logs a full reset of the ledger.
func (al *AuditLogger) LogLedgerCleared(discarded int) {
	al.WithField("discarded", discarded).Warn("Ledger cleared")
}

// LogCounterChange logs a shoe or dealer change.
func (al *AuditLogger) LogCounterChange(counter string, oldValue, newValue int) {
	al.WithFields(logrus.Fields{
		"counter":   counter,
		"old_value": oldValue,
		"new_value": newValue,
	}).Info("Session counter changed")
}

// LogSnapshotImported logs a ledger replacement from an external snapshot.
func (al *AuditLogger) LogSnapshotImported(source string, records, shoe, dealer int) {
	al.WithFields(logrus.Fields{
		"source":  source,
		"records": records,
		"shoe":    shoe,
		"dealer":  dealer,
	}).Info("Snapshot imported")
}

// LogSnapshotRejected logs an import that failed validation.
func (al *AuditLogger) LogSnapshotRejected(source string, err error) {
	al.WithFields(logrus.Fields{
		"source": source,
		"error":  err.Error(),
	}).Warn("Snapshot rejected")
}
