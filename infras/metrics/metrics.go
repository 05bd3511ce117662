// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "keepsake"

const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of photo store operations",
		},
		[]string{"operation", "result"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of photo store operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_available",
			Help:      "1 when the photo store is open, 0 once it has been marked unavailable",
		},
	)

	OccupiedSlots = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "occupied_slots",
			Help:      "Number of slots currently holding a photo",
		},
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upload_bytes",
			Help:      "Size of accepted photo uploads in bytes",
			Buckets:   prometheus.ExponentialBuckets(16<<10, 4, 6), // 16KiB .. 16MiB
		},
	)

	UploadRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_rejections_total",
			Help:      "Total number of rejected photo uploads by reason",
		},
		[]string{"reason"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordStoreOperation records one store operation and its outcome.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}

	StoreOperations.WithLabelValues(operation, result).Inc()
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func SetStoreAvailable(available bool) {
	if available {
		StoreAvailable.Set(1)
	} else {
		StoreAvailable.Set(0)
	}
}

func SetOccupiedSlots(count int) {
	OccupiedSlots.Set(float64(count))
}

func RecordUpload(size int64) {
	UploadBytes.Observe(float64(size))
}

func RecordUploadRejection(reason string) {
	UploadRejections.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest records a finished request against its route pattern.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
