package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	FlowTemplate     = "template"
	FlowNotification = "notification"
	FlowBulk         = "bulk"
)

var HttpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HttpRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HttpErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_errors_total",
		Help: "Total number of failed HTTP requests (4xx/5xx)",
	},
	[]string{"endpoint", "status", "method"},
)

var MessagesGeneratedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "keybox_messages_generated_total",
		Help: "Total number of messages rendered, by generator flow",
	},
	[]string{"flow"},
)

var BulkRowsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "keybox_bulk_rows_total",
		Help: "Total number of CSV rows rendered by completed bulk sessions",
	},
)

var HistoryRecordedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "keybox_history_recorded_total",
		Help: "Generated messages processed by the history worker",
	},
	[]string{"result"},
)

var HistoryPrunedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "keybox_history_pruned_total",
		Help: "Generated-message history rows deleted by the pruner",
	},
)

func InitAPIMetrics() {
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(HttpErrorsTotal)
	prometheus.MustRegister(MessagesGeneratedTotal)
	prometheus.MustRegister(BulkRowsTotal)
}

func InitWorkerMetrics() {
	prometheus.MustRegister(HistoryRecordedTotal)
	prometheus.MustRegister(HistoryPrunedTotal)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request count, latency and errors per chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		statusCode := ww.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}
		status := strconv.Itoa(statusCode)
		endpoint := routePattern(r)
		method := r.Method

		HttpRequestsTotal.WithLabelValues(endpoint, status, method).Inc()
		HttpRequestDuration.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())
		if statusCode >= 400 && statusCode < 600 {
			HttpErrorsTotal.WithLabelValues(endpoint, status, method).Inc()
		}
	})
}

// routePattern keeps label cardinality bounded: ids in the path collapse
// into the route pattern, unmatched paths share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
