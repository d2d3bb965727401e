// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	// Poll metrics
	PollCyclesTotal      *prometheus.CounterVec
	WalletFetchesTotal   *prometheus.CounterVec
	TransactionsIngested prometheus.Counter
	WalletsOnCooldown    prometheus.Gauge

	// Detection metrics
	CandidatesDetected *prometheus.CounterVec
	AlertsFired        *prometheus.CounterVec
	AlertsSuppressed   *prometheus.CounterVec

	// Upstream metrics
	RateLimitRetries prometheus.Counter
	FetchLatency     prometheus.Histogram

	// Storage metrics
	ArchiveInsertErrors prometheus.Counter

	// Health metrics
	LastSuccessfulPoll prometheus.Gauge
}

// NewMetrics creates a Metrics instance with all metrics registered on the
// default registry. Call at most once per process.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "wallet_pulse"
	}

	return &Metrics{
		PollCyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "cycles_total",
			Help:      "Total number of poll cycles by status",
		}, []string{"status"}),
		WalletFetchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "wallet_fetches_total",
			Help:      "Total number of wallet fetches by outcome",
		}, []string{"outcome"}),
		TransactionsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "transactions_ingested_total",
			Help:      "Total number of normalized transactions ingested",
		}),
		WalletsOnCooldown: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "wallets_on_cooldown",
			Help:      "Number of wallets currently skipped due to an empty fetch",
		}),

		CandidatesDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "candidates_total",
			Help:      "Total number of threshold-crossing candidates by side",
		}, []string{"side"}),
		AlertsFired: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "alerts_fired_total",
			Help:      "Total number of alerts dispatched by side",
		}, []string{"side"}),
		AlertsSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detection",
			Name:      "alerts_suppressed_total",
			Help:      "Total number of suppressed candidates by reason",
		}, []string{"reason"}),

		RateLimitRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "rate_limit_retries_total",
			Help:      "Total number of retried rate-limited requests",
		}),
		FetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "fetch_latency_seconds",
			Help:      "Wallet swap fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		ArchiveInsertErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "archive_insert_errors_total",
			Help:      "Total number of failed archive batch inserts",
		}),

		LastSuccessfulPoll: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_poll_timestamp",
			Help:      "Unix timestamp of the last completed poll cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
