package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request counter for the console surface
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTP request duration histogram
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// Active HTTP connections gauge
	HTTPActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	// Outbound backend API calls
	BackendCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_calls_total",
			Help: "Total number of backend API calls",
		},
		[]string{"operation", "status"}, // "success", "error"
	)

	BackendCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_call_duration_seconds",
			Help:    "Duration of backend API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Alert feed polling
	AlertPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_polls_total",
			Help: "Total number of alert feed polls",
		},
		[]string{"result"}, // "success", "error", "empty"
	)

	AlertSignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_signals_total",
			Help: "Total number of raised alert notification signals",
		},
		[]string{"severity"},
	)

	// Simulation cycles
	SimulationCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulation_cycles_total",
			Help: "Total number of simulate-and-score cycles",
		},
		[]string{"mode", "result"}, // mode: "manual", "live"
	)
)

// RecordHTTPRequest records metrics for an HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)

	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// IncActiveConnections increments the active connection gauge
func IncActiveConnections() {
	HTTPActiveConnections.Inc()
}

// DecActiveConnections decrements the active connection gauge
func DecActiveConnections() {
	HTTPActiveConnections.Dec()
}

// RecordBackendCall records the outcome of one backend API call
func RecordBackendCall(operation, status string) {
	BackendCallsTotal.WithLabelValues(operation, status).Inc()
}

// RecordBackendCallDuration records backend API call duration
func RecordBackendCallDuration(operation string, duration time.Duration) {
	BackendCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordAlertPoll records the outcome of one alert feed poll
func RecordAlertPoll(result string) {
	AlertPollsTotal.WithLabelValues(result).Inc()
}

// RecordAlertSignal records one raised notification signal
func RecordAlertSignal(severity string) {
	AlertSignalsTotal.WithLabelValues(severity).Inc()
}

// RecordSimulationCycle records the outcome of one simulation cycle
func RecordSimulationCycle(mode, result string) {
	SimulationCyclesTotal.WithLabelValues(mode, result).Inc()
}
