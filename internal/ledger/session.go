// Package ledger owns the ordered record of hands for one tracking session.
package ledger

import (
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/baccarat-tracker/internal/analyzer"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// AppendRequest carries the user input for one new hand
type AppendRequest struct {
	Winner      models.Winner `json:"winner" validate:"required,oneof=player banker tie"`
	PlayerScore *int          `json:"playerScore,omitempty" validate:"omitempty,min=0,max=9"`
	BankerScore *int          `json:"bankerScore,omitempty" validate:"omitempty,min=0,max=9"`
}

// Session is the single owner of a ledger and its shoe/dealer counters.
// It is not safe for concurrent use.
type Session struct {
	records       []models.OutcomeRecord
	currentShoe   int
	currentDealer int

	validate *validator.Validate
	logger   *logrus.Entry
	now      func() time.Time
	newID    func() string
}

// Option configures a Session
type Option func(*Session)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDGenerator overrides record id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) { s.newID = newID }
}

// NewSession creates an empty session on shoe 1 with dealer 1.
func NewSession(logger *logrus.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	s := &Session{
		records:       make([]models.OutcomeRecord, 0),
		currentShoe:   1,
		currentDealer: 1,
		validate:      validator.New(),
		logger:        logger.WithField("component", "ledger"),
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records a new hand. The forecast for the hand is computed from the
// ledger before the record is added and stored on the record permanently.
func (s *Session) Append(req AppendRequest) (models.OutcomeRecord, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.OutcomeRecord{}, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	forecast := analyzer.Forecast(s.records)

	record := models.OutcomeRecord{
		ID:           s.newID(),
		Winner:       req.Winner,
		PlayerScore:  copyInt(req.PlayerScore),
		BankerScore:  copyInt(req.BankerScore),
		Timestamp:    s.now().UnixMilli(),
		ShoeNumber:   s.currentShoe,
		DealerNumber: s.currentDealer,
	}
	if predicted, ok := forecast.Prediction.Side(); ok {
		record.PredictedWinner = &predicted
		if actual, ok := req.Winner.Side(); ok {
			correct := actual == predicted
			record.IsCorrectPrediction = &correct
		}
	}

	s.records = append(s.records, record)

	s.logger.WithFields(logrus.Fields{
		"record_id":  record.ID,
		"winner":     record.Winner,
		"shoe":       record.ShoeNumber,
		"dealer":     record.DealerNumber,
		"predicted":  forecast.Prediction,
		"rule":       forecast.Rule,
		"confidence": forecast.Confidence.String(),
	}).Debug("Outcome appended")

	return record.Clone(), nil
}

// Delete removes the record with the given id from any position.
func (s *Session) Delete(id string) error {
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			s.logger.WithField("record_id", id).Debug("Outcome deleted")
			return nil
		}
	}
	return fmt.Errorf("%w: %s", models.ErrRecordNotFound, id)
}

// Clear drops every record and resets the shoe and dealer counters.
func (s *Session) Clear() {
	s.records = make([]models.OutcomeRecord, 0)
	s.currentShoe = 1
	s.currentDealer = 1
	s.logger.Debug("Ledger cleared")
}

// NewShoe starts the next shoe and returns its number.
func (s *Session) NewShoe() int {
	s.currentShoe++
	return s.currentShoe
}

// ChangeDealer moves to the next dealer and returns its number.
func (s *Session) ChangeDealer() int {
	s.currentDealer++
	return s.currentDealer
}

// CurrentShoe returns the shoe new hands are recorded against.
func (s *Session) CurrentShoe() int {
	return s.currentShoe
}

// CurrentDealer returns the dealer new hands are recorded against.
func (s *Session) CurrentDealer() int {
	return s.currentDealer
}

// Len returns the number of recorded hands.
func (s *Session) Len() int {
	return len(s.records)
}

// Records returns a copy of the ledger, oldest first.
func (s *Session) Records() []models.OutcomeRecord {
	out := make([]models.OutcomeRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
	}
	return out
}

// Analyze derives every view of the current ledger state.
func (s *Session) Analyze() analyzer.Analysis {
	return analyzer.Analyze(s.records, s.currentShoe)
}

// Statistics returns aggregate metrics for the ledger.
func (s *Session) Statistics() analyzer.Statistics {
	return analyzer.CalculateStatistics(s.records, s.currentShoe)
}

// Patterns returns the patterns detected in the ledger.
func (s *Session) Patterns() []models.Pattern {
	return analyzer.DetectPatterns(s.records)
}

// Forecast returns the prediction for the next hand.
func (s *Session) Forecast() models.Forecast {
	return analyzer.Forecast(s.records)
}

// Roads returns the road diagrams for the ledger and its forecast.
func (s *Session) Roads() analyzer.Roads {
	return analyzer.DeriveRoads(s.records, analyzer.Forecast(s.records).NextPattern)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
