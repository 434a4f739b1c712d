// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors the service exports.
type Metrics struct {
	registry *prometheus.Registry

	// ClicksTotal counts recorded clicks per slug.
	ClicksTotal *prometheus.CounterVec
}

// New builds the metric set on its own registry, including the standard
// process and Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry: reg,
		ClicksTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "fob",
			Name:      "clicks_total",
			Help:      "Clicks recorded per slug.",
		}, []string{"slug"}),
	}
}

// Handler returns the exposition endpoint handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
