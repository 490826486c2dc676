package ledger

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// Snapshot captures the session in its persisted form.
func (s *Session) Snapshot() models.Snapshot {
	return models.Snapshot{
		Results:       s.Records(),
		CurrentShoe:   s.currentShoe,
		CurrentDealer: s.currentDealer,
	}
}

// Restore replaces the session state with snap. Invalid records reject the
// whole snapshot and leave the session untouched.
func (s *Session) Restore(snap models.Snapshot) error {
	for i := range snap.Results {
		if err := s.validate.Struct(snap.Results[i]); err != nil {
			return fmt.Errorf("%w: result %d: %v", models.ErrMalformedSnapshot, i, err)
		}
	}
	if snap.CurrentShoe <= 0 || snap.CurrentDealer <= 0 {
		return fmt.Errorf("%w: shoe and dealer must be positive", models.ErrMalformedSnapshot)
	}

	records := make([]models.OutcomeRecord, len(snap.Results))
	for i, r := range snap.Results {
		records[i] = r.Clone()
	}
	s.records = records
	s.currentShoe = snap.CurrentShoe
	s.currentDealer = snap.CurrentDealer

	s.logger.WithFields(logrus.Fields{
		"records": len(records),
		"shoe":    s.currentShoe,
		"dealer":  s.currentDealer,
	}).Debug("Snapshot restored")
	return nil
}

// Export writes the session as an indented JSON snapshot.
func (s *Session) Export(w io.Writer) error {
	data, err := models.EncodeSnapshot(s.Snapshot())
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Import reads a JSON snapshot and replaces the session state. A malformed
// document returns ErrMalformedSnapshot and keeps the current state.
func (s *Session) Import(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := models.DecodeSnapshot(data)
	if err != nil {
		return err
	}
	return s.Restore(snap)
}
