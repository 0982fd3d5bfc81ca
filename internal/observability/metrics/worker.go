package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	annotateTotal     *prometheus.CounterVec
	annotateDuration  *prometheus.HistogramVec
	annotateInFlight  prometheus.Gauge
	statementsWritten *prometheus.HistogramVec
	queueLag          *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	annotateTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akg",
			Subsystem: "worker",
			Name:      "artifact_annotate_total",
			Help:      "Total annotated artifacts by status.",
		},
		[]string{"service", "status"},
	)
	annotateDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "akg",
			Subsystem: "worker",
			Name:      "artifact_annotate_duration_seconds",
			Help:      "Artifact annotation duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	annotateInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "akg",
			Subsystem: "worker",
			Name:      "artifact_annotate_in_flight",
			Help:      "Number of in-flight artifact annotation tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	statementsWritten := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "akg",
			Subsystem: "worker",
			Name:      "statements_written",
			Help:      "Distribution of statements written per annotated artifact.",
			Buckets:   []float64{5, 6, 7, 8, 10, 12, 16, 20, 30},
		},
		[]string{"service"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "akg",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between artifact upload and annotation start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(annotateTotal, annotateDuration, annotateInFlight, statementsWritten, queueLag)

	return &WorkerMetrics{
		registry:          registry,
		annotateTotal:     annotateTotal,
		annotateDuration:  annotateDuration,
		annotateInFlight:  annotateInFlight,
		statementsWritten: statementsWritten,
		queueLag:          queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartAnnotation() {
	m.annotateInFlight.Inc()
}

func (m *WorkerMetrics) FinishAnnotation(service string, duration time.Duration, err error) {
	m.annotateInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.annotateTotal.WithLabelValues(service, status).Inc()
	m.annotateDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveStatementsWritten(service string, count int) {
	if count <= 0 {
		return
	}
	m.statementsWritten.WithLabelValues(service).Observe(float64(count))
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
