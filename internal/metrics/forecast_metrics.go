// Package metrics provides forecast-specific metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Forecast metrics
var (
	ForecastRulesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forecast_rules_total",
		Help:      "Total number of forecasts produced by rule",
	}, []string{"rule"})

	PredictionsScoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_scored_total",
		Help:      "Total number of stamped predictions scored against the actual winner",
	}, []string{"result"})

	ForecastConfidence = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "forecast_confidence",
		Help:      "Confidence of the latest forecast in percent",
	})

	PredictionAccuracy = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "prediction_accuracy",
		Help:      "Share of scored predictions that were correct in percent",
	})

	BacktestRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_runs_total",
		Help:      "Total number of ledger replays computed",
	})

	BacktestCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "backtest_cache_hit_ratio",
		Help:      "Share of backtest requests served from cache",
	})
)

// RecordForecast records the rule and confidence of the latest forecast.
func RecordForecast(rule string, confidence float64) {
	ForecastRulesTotal.WithLabelValues(rule).Inc()
	ForecastConfidence.Set(confidence)
}

// RecordPredictionScored records whether a stamped prediction was correct.
func RecordPredictionScored(correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	PredictionsScoredTotal.WithLabelValues(result).Inc()
}

// UpdatePredictionAccuracy updates the prediction accuracy gauge.
func UpdatePredictionAccuracy(percent float64) {
	PredictionAccuracy.Set(percent)
}

// RecordBacktestRun counts a computed replay.
func RecordBacktestRun() {
	BacktestRunsTotal.Inc()
}

// UpdateBacktestCacheHitRatio updates the backtest cache hit ratio gauge.
func UpdateBacktestCacheHitRatio(ratio float64) {
	BacktestCacheHitRatio.Set(ratio)
}
