package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WhatsApp-API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Session lifecycle counters
	SessionOpensTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "session_opens_total",
			Help:      "Total successful session handshakes",
		},
	)

	SessionClosesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "session_closes_total",
			Help:      "Total session closes by disconnect reason",
		},
		[]string{"reason", "terminal"},
	)

	ReconnectsScheduledTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "reconnects_scheduled_total",
			Help:      "Total reconnect timers armed after unexpected closes",
		},
	)

	ChallengesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "challenges_generated_total",
			Help:      "Total authentication challenges produced",
		},
		[]string{"kind"},
	)

	// Startup orchestration counters
	StartupSessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "startup_sessions_total",
			Help:      "Sessions processed during batch startup",
		},
		[]string{"status"},
	)

	StartupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "startup_duration_seconds",
			Help:      "Duration of the batch startup run in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
		},
	)

	// Monitor gauges, refreshed from persisted status counts
	AccountsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "accounts_connected",
			Help:      "Accounts whose persisted status is active",
		},
	)

	AccountsDisconnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mint",
			Subsystem: "whatsapp_api",
			Name:      "accounts_disconnected",
			Help:      "Accounts whose persisted status is inactive",
		},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordSessionClose records a connection close by reason
func RecordSessionClose(reason string, terminal bool) {
	t := "false"
	if terminal {
		t = "true"
	}
	SessionClosesTotal.WithLabelValues(reason, t).Inc()
}

// RecordStartup records a batch startup run
func RecordStartup(started, failed int, durationSec float64) {
	StartupSessionsTotal.WithLabelValues("started").Add(float64(started))
	StartupSessionsTotal.WithLabelValues("failed").Add(float64(failed))
	StartupDuration.Observe(durationSec)
}

// SetAccountCounts refreshes the monitor gauges
func SetAccountCounts(connected, disconnected int64) {
	AccountsConnected.Set(float64(connected))
	AccountsDisconnected.Set(float64(disconnected))
}
