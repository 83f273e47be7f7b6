package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records business counters on a dedicated registry so tests can build
// as many instances as they like.
type Metrics struct {
	registry       *prometheus.Registry
	predictions    *prometheus.CounterVec
	finalizations  *prometheus.CounterVec
	rankingBuilds  *prometheus.CounterVec
	rankingSeconds *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bolao",
			Name:      "predictions_submitted_total",
			Help:      "Prediction submissions by result.",
		}, []string{"result"}),
		finalizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bolao",
			Name:      "finalizations_total",
			Help:      "Match and round finalizations and rescores.",
		}, []string{"kind"}),
		rankingBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bolao",
			Name:      "ranking_builds_total",
			Help:      "Ranking boards computed from storage, cache misses only.",
		}, []string{"scope"}),
		rankingSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "bolao",
			Name:      "ranking_build_seconds",
			Help:      "Time spent computing a ranking board.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"scope"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.predictions,
		m.finalizations,
		m.rankingBuilds,
		m.rankingSeconds,
	)
	return m
}

func (m *Metrics) PredictionSubmitted(result string) {
	m.predictions.WithLabelValues(result).Inc()
}

func (m *Metrics) Finalized(kind string) {
	m.finalizations.WithLabelValues(kind).Inc()
}

func (m *Metrics) RankingComputed(scope string, took time.Duration) {
	m.rankingBuilds.WithLabelValues(scope).Inc()
	m.rankingSeconds.WithLabelValues(scope).Observe(took.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
