package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors exported on /metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	Lookups          *prometheus.CounterVec
	Insights         *prometheus.CounterVec
	HTTPRequests     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_upstream_requests_total",
			Help: "Upstream request attempts by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stock_upstream_request_duration_seconds",
			Help:    "Latency of upstream request attempts.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_lookups_total",
			Help: "Symbol lookups by outcome.",
		}, []string{"outcome"}),
		Insights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_insights_total",
			Help: "Insight completions by provider and outcome.",
		}, []string{"provider", "outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Served HTTP requests.",
		}, []string{"route", "method", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.Lookups,
		m.Insights,
		m.HTTPRequests,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveUpstream(endpoint, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(endpoint).Observe(seconds)
}

func (m *Metrics) ObserveLookup(outcome string) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveInsight(provider, outcome string) {
	if m == nil {
		return
	}
	m.Insights.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ObserveHTTP(route, method, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
}
