// Package metrics provides the centralized Prometheus metrics registry for the tracker.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "baccarat"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	OutcomesRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outcomes_recorded_total",
		Help:      "Total number of hands recorded by winner",
	}, []string{"winner"})
	OutcomesDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outcomes_deleted_total",
		Help:      "Total number of hands deleted from the ledger",
	})
	LedgerClearsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ledger_clears_total",
		Help:      "Total number of full ledger resets",
	})
	SnapshotImportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_imports_total",
		Help:      "Total number of snapshot imports by status",
	}, []string{"status"})
	SnapshotSavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshot_saves_total",
		Help:      "Total number of snapshot writes by status",
	}, []string{"status"})
)

// Gauge metrics
var (
	LedgerSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ledger_size",
		Help:      "Number of hands currently in the ledger",
	})
	CurrentShoe = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_shoe",
		Help:      "Shoe number new hands are recorded against",
	})
	CurrentDealer = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_dealer",
		Help:      "Dealer number new hands are recorded against",
	})
	WebsocketClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Number of connected analysis feed clients",
	})
)

// Histogram metrics
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Duration of a full ledger analysis in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(OutcomesRecordedTotal)
		registry.MustRegister(OutcomesDeletedTotal)
		registry.MustRegister(LedgerClearsTotal)
		registry.MustRegister(SnapshotImportsTotal)
		registry.MustRegister(SnapshotSavesTotal)

		// Register gauge metrics
		registry.MustRegister(LedgerSize)
		registry.MustRegister(CurrentShoe)
		registry.MustRegister(CurrentDealer)
		registry.MustRegister(WebsocketClients)

		// Register histogram metrics
		registry.MustRegister(AnalysisDuration)

		// Register forecast metrics
		registry.MustRegister(ForecastRulesTotal)
		registry.MustRegister(PredictionsScoredTotal)
		registry.MustRegister(ForecastConfidence)
		registry.MustRegister(PredictionAccuracy)
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestCacheHitRatio)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordOutcome records a hand entering the ledger.
func RecordOutcome(winner string) {
	OutcomesRecordedTotal.WithLabelValues(winner).Inc()
}

// RecordOutcomeDeleted records a hand leaving the ledger.
func RecordOutcomeDeleted() {
	OutcomesDeletedTotal.Inc()
}

// RecordLedgerCleared records a full ledger reset.
func RecordLedgerCleared() {
	LedgerClearsTotal.Inc()
}

// RecordSnapshotImport records an import attempt.
func RecordSnapshotImport(success bool) {
	SnapshotImportsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordSnapshotSave records a snapshot write attempt.
func RecordSnapshotSave(success bool) {
	SnapshotSavesTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordAnalysis records the duration of one analysis pass.
func RecordAnalysis(durationSeconds float64) {
	AnalysisDuration.Observe(durationSeconds)
}

// UpdateLedgerState updates the ledger size and counter gauges.
func UpdateLedgerState(size, shoe, dealer int) {
	LedgerSize.Set(float64(size))
	CurrentShoe.Set(float64(shoe))
	CurrentDealer.Set(float64(dealer))
}

// UpdateWebsocketClients updates the connected feed clients gauge.
func UpdateWebsocketClients(count int) {
	WebsocketClients.Set(float64(count))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
