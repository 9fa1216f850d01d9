package metrics

import (
	"net/http"
	"sync"

	"privatechef/internal/outcome"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "privatechef",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status class.",
		},
		[]string{"route", "status"},
	)

	externalCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "privatechef",
			Name:      "external_calls_total",
			Help:      "Calls to the store, relay, identity provider and text generation API by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	busyRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "privatechef",
			Name:      "assistant_busy_total",
			Help:      "Assistant requests refused because the same tool was already running.",
		},
		[]string{"tool"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, externalCalls, busyRejections)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncHTTP counts one request for route with the status class (2xx, 4xx...).
func IncHTTP(route string, status int) {
	httpRequests.WithLabelValues(route, statusClass(status)).Inc()
}

// ObserveCall counts one external call. A nil err counts as "ok".
func ObserveCall(operation string, err error) {
	externalCalls.WithLabelValues(operation, OutcomeLabel(err)).Inc()
}

func IncBusy(tool string) {
	busyRejections.WithLabelValues(tool).Inc()
}

// OutcomeLabel maps err to the outcome label value.
func OutcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := outcome.KindOf(err); kind != 0 {
		return kind.String()
	}
	return "error"
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
