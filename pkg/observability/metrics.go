package observability

import (
	"context"
	"net/http"

	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "honey"

// Metrics holds the Prometheus collectors fed by executor turns.
type Metrics struct {
	registry *prometheus.Registry

	turns    *prometheus.CounterVec
	tokens   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a private registry that also carries
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Total number of executor turns.",
			},
			[]string{"backend", "path", "status"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_total",
				Help:      "Tokens reported by backends.",
			},
			[]string{"backend"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "turn_duration_seconds",
				Help:      "Duration of executor turns.",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"backend", "path"},
		),
		inflight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "turns_in_flight",
				Help:      "Turns started but not yet finished.",
			},
			[]string{"backend"},
		),
	}
	m.registry.MustRegister(
		m.turns, m.tokens, m.duration, m.inflight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record every turn.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnStart: func(_ context.Context, e *domain.TurnEvent) {
			m.inflight.WithLabelValues(e.Backend).Inc()
		},
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			m.inflight.WithLabelValues(e.Backend).Dec()

			status := "ok"
			if e.Err != nil {
				status = "error"
			}
			m.turns.WithLabelValues(e.Backend, string(e.Path), status).Inc()
			m.duration.WithLabelValues(e.Backend, string(e.Path)).Observe(e.Duration.Seconds())
			if e.Tokens > 0 {
				m.tokens.WithLabelValues(e.Backend).Add(float64(e.Tokens))
			}
		},
	}
}
