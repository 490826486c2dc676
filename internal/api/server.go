// Package api exposes the tracker over HTTP and a websocket feed.
package api

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/baccarat-tracker/internal/analyzer"
	"github.com/yourusername/baccarat-tracker/internal/backtest"
	"github.com/yourusername/baccarat-tracker/internal/health"
	"github.com/yourusername/baccarat-tracker/internal/ledger"
	"github.com/yourusername/baccarat-tracker/internal/metrics"
	"github.com/yourusername/baccarat-tracker/internal/models"
	"github.com/yourusername/baccarat-tracker/internal/service"
)

// Tracker is the ledger service surface used by the HTTP layer
type Tracker interface {
	AddOutcome(ctx context.Context, req ledger.AppendRequest) (models.OutcomeRecord, error)
	DeleteOutcome(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	NewShoe(ctx context.Context) (int, error)
	ChangeDealer(ctx context.Context) (int, error)
	Import(ctx context.Context, r io.Reader, source string) error
	Export(w io.Writer) error
	Records() []models.OutcomeRecord
	Counters() (shoe, dealer int)
	Analysis() analyzer.Analysis
	Statistics() analyzer.Statistics
	Patterns() []models.Pattern
	Forecast() models.Forecast
	Roads() analyzer.Roads
	Backtest(ctx context.Context, cfg backtest.BacktestConfig) (backtest.Metrics, error)
	Subscribe() (<-chan service.Update, func())
}

// Config holds the HTTP server settings
type Config struct {
	Addr           string
	RateLimit      float64
	RateBurst      int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MetricsEnabled bool
	MetricsPath    string
	MaxImportBytes int64
}

// Server serves the tracker API
type Server struct {
	cfg     Config
	tracker Tracker
	health  *health.Checker
	limiter *rate.Limiter
	hub     *Hub
	logger  *logrus.Entry
	server  *http.Server
}

// NewServer creates an API server for tracker
func NewServer(cfg Config, tracker Tracker, checker *health.Checker, logger *logrus.Logger) *Server {
	if cfg.MaxImportBytes <= 0 {
		cfg.MaxImportBytes = 10 << 20
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	entry := logger.WithField("component", "api")
	return &Server{
		cfg:     cfg,
		tracker: tracker,
		health:  checker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		hub:     NewHub(tracker, entry),
		logger:  entry,
	}
}

// Handler builds the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/outcomes", s.handleListOutcomes)
	mux.Handle("POST /api/v1/outcomes", s.limited(s.handleAddOutcome))
	mux.Handle("DELETE /api/v1/outcomes", s.limited(s.handleClear))
	mux.Handle("DELETE /api/v1/outcomes/{id}", s.limited(s.handleDeleteOutcome))

	mux.HandleFunc("GET /api/v1/counters", s.handleCounters)
	mux.Handle("POST /api/v1/shoe", s.limited(s.handleNewShoe))
	mux.Handle("POST /api/v1/dealer", s.limited(s.handleChangeDealer))

	mux.HandleFunc("GET /api/v1/statistics", s.handleStatistics)
	mux.HandleFunc("GET /api/v1/patterns", s.handlePatterns)
	mux.HandleFunc("GET /api/v1/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/v1/roads", s.handleRoads)
	mux.HandleFunc("GET /api/v1/analysis", s.handleAnalysis)
	mux.Handle("GET /api/v1/backtest", s.limited(s.handleBacktest))

	mux.HandleFunc("GET /api/v1/snapshot", s.handleExport)
	mux.Handle("PUT /api/v1/snapshot", s.limited(s.handleImport))

	mux.HandleFunc("GET /ws", s.hub.ServeWS)

	if s.cfg.MetricsEnabled {
		mux.Handle("GET "+s.cfg.MetricsPath, metrics.Handler())
	}
	if s.health != nil {
		s.health.Register(mux)
	}

	return s.logRequests(mux)
}

// Start listens until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.hub.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.cfg.Addr).Info("API server starting")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("API server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) limited(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		h(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      sw.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Request handled")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack is required by the websocket upgrader.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}
