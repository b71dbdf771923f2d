package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sheikh-saqib/token-ledger-system/internal/ledger"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "token_ledger",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Total number of ledger operations, by operation and outcome.",
		},
		[]string{"op", "status"},
	)

	notificationsEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "token_ledger",
			Subsystem: "ledger",
			Name:      "notifications_emitted_total",
			Help:      "Total number of state-change notifications emitted.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "token_ledger",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "token_ledger",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~2s
		},
		[]string{"method", "path"},
	)
)

func init() {
	Registry.MustRegister(ledgerOperations, notificationsEmitted, httpRequests, httpDuration)
}

// ObserveOperation records the outcome of one ledger operation. A failed
// notification delivery is counted separately from a rejection because the
// state change itself committed.
func ObserveOperation(op string, err error) {
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrNotificationFailed):
		status = "notify_failed"
	default:
		status = "rejected"
	}
	ledgerOperations.WithLabelValues(op, status).Inc()
	if err == nil {
		notificationsEmitted.Inc()
	}
}

// ObserveRequest records one handled HTTP request.
func ObserveRequest(method, path string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// Handler serves the registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
