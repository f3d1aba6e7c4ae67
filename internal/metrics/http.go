package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chiadex",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of handled HTTP requests.",
	}, []string{"path", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chiadex",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of handling an HTTP request.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "method"})
)

// ObserveRequest records one handled request, labeled by route template so
// path parameters do not blow up cardinality.
func ObserveRequest(path, method string, status int, started time.Time) {
	if path == "" {
		path = "unmatched"
	}
	httpRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(path, method).Observe(time.Since(started).Seconds())
}
