package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	sharedApp "github.com/davicafu/scopequery/internal/shared/application"
)

// QueryMetrics expone contadores e histogramas de las consultas.
type QueryMetrics struct {
	queries  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewQueryMetrics registra las métricas en reg. Con un registry propio los
// tests no chocan con el registry global.
func NewQueryMetrics(reg prometheus.Registerer) *QueryMetrics {
	m := &QueryMetrics{
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scopequery_queries_total",
				Help: "Total number of scoped queries per entity/operation/outcome",
			},
			[]string{"entity", "operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scopequery_query_duration_seconds",
				Help:    "Scoped query duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"entity"},
		),
	}

	reg.MustRegister(m.queries, m.duration)
	return m
}

func (m *QueryMetrics) ObserveQuery(_ context.Context, evt sharedApp.QueryEvent) {
	m.queries.WithLabelValues(evt.Entity, evt.Operation, evt.Outcome).Inc()
	m.duration.WithLabelValues(evt.Entity).Observe(evt.Duration.Seconds())
}

var _ sharedApp.QueryObserver = (*QueryMetrics)(nil)
