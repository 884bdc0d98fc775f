package transport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK           = "ok"
	outcomeFailed       = "failed"
	outcomeUnauthorized = "unauthorized"
	outcomeNetwork      = "network_error"
)

// Metrics holds the transport's Prometheus collectors.
type Metrics struct {
	requests     *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	unauthorized prometheus.Counter
}

// NewMetrics registers the transport collectors on registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storefront_api_requests_total",
				Help: "Storefront API requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "storefront_api_request_duration_seconds",
				Help:    "Storefront API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		unauthorized: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "storefront_api_unauthorized_total",
				Help: "Responses that cleared the session (401/403)",
			},
		),
	}
}
