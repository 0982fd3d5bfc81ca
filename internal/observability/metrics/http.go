package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal *prometheus.CounterVec

	graphQueriesTotal   *prometheus.CounterVec
	graphQueryDuration  *prometheus.HistogramVec
	graphReturnedNodes  *prometheus.HistogramVec
	graphTruncatedTotal *prometheus.CounterVec

	searchRequestsTotal *prometheus.CounterVec
	searchResults       *prometheus.HistogramVec
	searchNoResultTotal *prometheus.CounterVec
	searchDuration      *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akg",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "akg",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "akg",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akg",
			Subsystem: "artifact",
			Name:      "uploads_total",
			Help:      "Total accepted artifact uploads by outcome.",
		},
		[]string{"service", "outcome"},
	)
	graphQueriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akg",
			Subsystem: "graph",
			Name:      "queries_total",
			Help:      "Total graph queries by query type.",
		},
		[]string{"service", "query_type"},
	)
	graphQueryDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "akg",
			Subsystem: "graph",
			Name:      "query_duration_seconds",
			Help:      "Graph query execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "query_type"},
	)
	graphReturnedNodes := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "akg",
			Subsystem: "graph",
			Name:      "returned_nodes",
			Help:      "Distribution of node counts returned per graph query.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"service", "query_type"},
	)
	graphTruncatedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akg",
			Subsystem: "graph",
			Name:      "truncated_total",
			Help:      "Total graph queries truncated by the node cap.",
		},
		[]string{"service", "query_type"},
	)
	searchRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akg",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total search requests by mode.",
		},
		[]string{"service", "mode"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "akg",
			Subsystem: "search",
			Name:      "results",
			Help:      "Distribution of result counts per search request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service", "mode"},
	)
	searchNoResultTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "akg",
			Subsystem: "search",
			Name:      "no_result_total",
			Help:      "Total search requests that matched nothing.",
		},
		[]string{"service", "mode"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "akg",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "mode"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		uploadsTotal,
		graphQueriesTotal,
		graphQueryDuration,
		graphReturnedNodes,
		graphTruncatedTotal,
		searchRequestsTotal,
		searchResults,
		searchNoResultTotal,
		searchDuration,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		uploadsTotal:        uploadsTotal,
		graphQueriesTotal:   graphQueriesTotal,
		graphQueryDuration:  graphQueryDuration,
		graphReturnedNodes:  graphReturnedNodes,
		graphTruncatedTotal: graphTruncatedTotal,
		searchRequestsTotal: searchRequestsTotal,
		searchResults:       searchResults,
		searchNoResultTotal: searchNoResultTotal,
		searchDuration:      searchDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses identifier segments so the path label stays low
// cardinality.
func normalizePath(path string) string {
	switch {
	case strings.HasSuffix(path, "/reclassify") && strings.HasPrefix(path, "/v1/artifacts/"):
		return "/v1/artifacts/{artifact_id}/reclassify"
	case strings.HasPrefix(path, "/v1/artifacts/"):
		return "/v1/artifacts/{artifact_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordUpload(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.uploadsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordGraphQuery(service, queryType string, nodeCount int, truncated bool, duration time.Duration) {
	if queryType == "" {
		queryType = "unknown"
	}
	m.graphQueriesTotal.WithLabelValues(service, queryType).Inc()
	m.graphQueryDuration.WithLabelValues(service, queryType).Observe(duration.Seconds())
	m.graphReturnedNodes.WithLabelValues(service, queryType).Observe(float64(nodeCount))
	if truncated {
		m.graphTruncatedTotal.WithLabelValues(service, queryType).Inc()
	}
}

func (m *HTTPServerMetrics) RecordSearch(service, mode string, resultCount int, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	m.searchRequestsTotal.WithLabelValues(service, mode).Inc()
	m.searchResults.WithLabelValues(service, mode).Observe(float64(resultCount))
	m.searchDuration.WithLabelValues(service, mode).Observe(duration.Seconds())
	if resultCount == 0 {
		m.searchNoResultTotal.WithLabelValues(service, mode).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
