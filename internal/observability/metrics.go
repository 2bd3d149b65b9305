// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Engine metrics
	ComputationsTotal   *prometheus.CounterVec
	ComputationDuration *prometheus.HistogramVec
	TradesEvaluated     prometheus.Counter
	TradesRejected      *prometheus.CounterVec
	ExcursionsComputed  prometheus.Counter

	// Snapshot metrics
	SnapshotRunsTotal      *prometheus.CounterVec
	SnapshotRunDuration    prometheus.Histogram
	SnapshotsStored        prometheus.Counter
	LastSuccessfulSnapshot prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimited         prometheus.Counter

	// Database metrics
	DBQueryDuration  *prometheus.HistogramVec
	DBQueryErrors    *prometheus.CounterVec
	DBConnectRetries *prometheus.CounterVec

	// Reporting metrics
	ReportsGenerated prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "trading_journal"
	}

	return &Metrics{
		// Engine metrics
		ComputationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "computations_total",
			Help:      "Total number of metric computations by source and status",
		}, []string{"source", "status"}),
		ComputationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "computation_duration_seconds",
			Help:      "Metric computation duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"source"}),
		TradesEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "trades_evaluated_total",
			Help:      "Total number of trades passed to the engine",
		}),
		TradesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "trades_rejected_total",
			Help:      "Total number of trades rejected by validation, by field",
		}, []string{"field"}),
		ExcursionsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "excursions_computed_total",
			Help:      "Total number of per-trade excursion analyses",
		}),

		// Snapshot metrics
		SnapshotRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "runs_total",
			Help:      "Total number of snapshot runs by status",
		}, []string{"status"}),
		SnapshotRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "run_duration_seconds",
			Help:      "Snapshot run duration in seconds",
			Buckets:   []float64{.1, .5, 1, 5, 10, 30, 60, 120, 300},
		}),
		SnapshotsStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "stored_total",
			Help:      "Total number of metric snapshots stored",
		}),
		LastSuccessfulSnapshot: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_snapshot_timestamp",
			Help:      "Unix timestamp of last successful snapshot run",
		}),

		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"method", "route", "code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
		DBConnectRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "connect_retries_total",
			Help:      "Total number of failed connection attempts that were retried",
		}, []string{"database"}),

		// Reporting metrics
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordComputation records one engine run.
func RecordComputation(source, status string, trades int, d time.Duration) {
	DefaultMetrics.ComputationsTotal.WithLabelValues(source, status).Inc()
	DefaultMetrics.ComputationDuration.WithLabelValues(source).Observe(d.Seconds())
	DefaultMetrics.TradesEvaluated.Add(float64(trades))
}

// RecordTradeRejected increments the rejected trades counter for a field.
func RecordTradeRejected(field string) {
	DefaultMetrics.TradesRejected.WithLabelValues(field).Inc()
}

// RecordExcursion increments the excursion counter.
func RecordExcursion() {
	DefaultMetrics.ExcursionsComputed.Inc()
}

// RecordSnapshotRun records a snapshot run and its stored snapshot count.
func RecordSnapshotRun(status string, stored int, d time.Duration) {
	DefaultMetrics.SnapshotRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.SnapshotRunDuration.Observe(d.Seconds())
	DefaultMetrics.SnapshotsStored.Add(float64(stored))
	if status == "success" {
		DefaultMetrics.LastSuccessfulSnapshot.SetToCurrentTime()
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(method, route string, code int, d time.Duration) {
	DefaultMetrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	DefaultMetrics.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordRateLimited increments the rate limited counter.
func RecordRateLimited() {
	DefaultMetrics.RateLimited.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordDBConnectRetry increments the connection retry counter.
func RecordDBConnectRetry(database string) {
	DefaultMetrics.DBConnectRetries.WithLabelValues(database).Inc()
}

// RecordReportGenerated increments the reports counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}
