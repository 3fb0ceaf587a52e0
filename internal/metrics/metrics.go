package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	Predictions       *prometheus.CounterVec
	PredictorDuration prometheus.Histogram
	Severity          *prometheus.CounterVec
	RateLimited       prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Predictions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stunting_predictions_total",
			Help: "Form submissions by outcome",
		}, []string{"outcome"}),
		PredictorDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "stunting_predictor_request_duration_seconds",
			Help:    "Latency of calls to the external predictor",
			Buckets: prometheus.DefBuckets,
		}),
		Severity: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stunting_results_total",
			Help: "Successful predictions by rendered severity",
		}, []string{"severity"}),
		RateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "stunting_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}
}

func (m *Metrics) ObservePrediction(outcome string, took time.Duration) {
	m.Predictions.WithLabelValues(outcome).Inc()
	m.PredictorDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveSeverity(severity string) {
	m.Severity.WithLabelValues(severity).Inc()
}

func (m *Metrics) IncRateLimited() { m.RateLimited.Inc() }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
