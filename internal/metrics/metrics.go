// Package metrics holds the bot's Prometheus metrics
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command outcomes
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeThrottled = "throttled"
)

// Metrics holds all Prometheus metrics for the bot
type Metrics struct {
	registry               *prometheus.Registry
	Commands               *prometheus.CounterVec
	IdentityResolutions    *prometheus.CounterVec
	BackendRequestDuration *prometheus.HistogramVec
	CookiesGiven           prometheus.Counter
}

// New creates the metrics on a private registry
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		Commands: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zodbot_commands_total",
			Help: "Chat commands handled, by command and outcome",
		}, []string{"command", "outcome"}),
		IdentityResolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "zodbot_identity_resolutions_total",
			Help: "Chat subject to Fedora account resolutions, by outcome",
		}, []string{"outcome"}),
		BackendRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zodbot_backend_request_duration_seconds",
			Help:    "Latency of requests to Fedora web services",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		CookiesGiven: factory.NewCounter(prometheus.CounterOpts{
			Name: "zodbot_cookies_given_total",
			Help: "Cookies successfully given",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// IncCommand counts one handled command
func (m *Metrics) IncCommand(command, outcome string) {
	m.Commands.WithLabelValues(command, outcome).Inc()
}

// IncResolution counts one identity resolution; outcome is "ok" or a failure kind
func (m *Metrics) IncResolution(outcome string) {
	m.IdentityResolutions.WithLabelValues(outcome).Inc()
}

// ObserveBackend records a backend request. Its signature matches
// apiclient.Config.Observe.
func (m *Metrics) ObserveBackend(service string, d time.Duration) {
	m.BackendRequestDuration.WithLabelValues(service).Observe(d.Seconds())
}

// IncCookiesGiven counts one stored cookie
func (m *Metrics) IncCookiesGiven() {
	m.CookiesGiven.Inc()
}
