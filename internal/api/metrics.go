package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/org/recordvault/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recordvault_requests_total",
		Help: "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recordvault_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	recordsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recordvault_records_total",
		Help: "Number of stored records.",
	})

	authFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recordvault_auth_failures_total",
		Help: "Authentication failures by kind.",
	}, []string{"kind"})

	encryptionMode = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "recordvault_encryption_mode",
		Help: "Field encryption mode: 0=off, 1=on.",
	})
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, recordsTotal, authFailuresTotal, encryptionMode)
}

// MetricsHandler returns the Prometheus metrics HTTP handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// InitRecordCountMetric seeds the records gauge from storage so the
// count survives restarts instead of starting at zero.
func InitRecordCountMetric(ctx context.Context, store storage.Backend) error {
	n, err := store.CountRecords(ctx)
	if err != nil {
		return err
	}
	recordsTotal.Set(float64(n))
	return nil
}

// SetEncryptionModeMetric publishes the startup-fixed encryption mode.
func SetEncryptionModeMetric(on bool) {
	if on {
		encryptionMode.Set(1)
	} else {
		encryptionMode.Set(0)
	}
}

// metricsMiddleware records request metrics.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rr := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rr, r)

		dur := time.Since(start).Seconds()
		status := strconv.Itoa(rr.statusCode)
		requestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		requestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(dur)
	})
}
