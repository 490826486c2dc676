package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/baccarat-tracker/internal/backtest"
	"github.com/yourusername/baccarat-tracker/internal/ledger"
	"github.com/yourusername/baccarat-tracker/internal/models"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// CountersResponse reports the shoe and dealer new hands are recorded against
type CountersResponse struct {
	CurrentShoe   int `json:"currentShoe"`
	CurrentDealer int `json:"currentDealer"`
}

func (s *Server) handleListOutcomes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Records())
}

func (s *Server) handleAddOutcome(w http.ResponseWriter, r *http.Request) {
	var req ledger.AppendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeServiceError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}
	rec, err := s.tracker.AddOutcome(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleDeleteOutcome(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.DeleteOutcome(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.tracker.Clear(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCounters(w http.ResponseWriter, r *http.Request) {
	shoe, dealer := s.tracker.Counters()
	writeJSON(w, http.StatusOK, CountersResponse{CurrentShoe: shoe, CurrentDealer: dealer})
}

func (s *Server) handleNewShoe(w http.ResponseWriter, r *http.Request) {
	if _, err := s.tracker.NewShoe(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.handleCounters(w, r)
}

func (s *Server) handleChangeDealer(w http.ResponseWriter, r *http.Request) {
	if _, err := s.tracker.ChangeDealer(r.Context()); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.handleCounters(w, r)
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Statistics())
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Patterns())
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Forecast())
}

func (s *Server) handleRoads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Roads())
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.tracker.Analysis())
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	cfg, err := backtestConfigFromQuery(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, fmt.Errorf("%w: %v", models.ErrInvalidInput, err))
		return
	}
	result, err := s.tracker.Backtest(r.Context(), cfg)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func backtestConfigFromQuery(q url.Values) (backtest.BacktestConfig, error) {
	cfg := backtest.DefaultConfig()
	ints := map[string]*int{"fromShoe": &cfg.FromShoe, "toShoe": &cfg.ToShoe, "warmup": &cfg.Warmup}
	for key, dst := range ints {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return cfg, fmt.Errorf("%s must be an integer", key)
			}
			*dst = n
		}
	}
	decimals := map[string]*decimal.Decimal{"minConfidence": &cfg.MinConfidence, "commission": &cfg.CommissionRate}
	for key, dst := range decimals {
		if v := q.Get(key); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return cfg, fmt.Errorf("%s must be a number", key)
			}
			*dst = d
		}
	}
	return cfg, nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := fmt.Sprintf("baccarat-results-%s.json", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := s.tracker.Export(w); err != nil {
		s.logger.WithError(err).Error("Snapshot export failed")
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxImportBytes)
	if err := s.tracker.Import(r.Context(), body, "api"); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "snapshot too large")
			return
		}
		s.writeServiceError(w, err)
		return
	}
	s.handleCounters(w, r)
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrMalformedSnapshot):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrSnapshotNotSaved):
		s.logger.WithError(err).Error("Change kept in memory but not saved")
		writeError(w, http.StatusInternalServerError, models.ErrSnapshotNotSaved.Error())
	default:
		s.logger.WithError(err).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
