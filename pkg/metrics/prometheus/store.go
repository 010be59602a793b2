package prometheus

import (
	"time"

	"github.com/marmos91/embedhttp/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storeMetrics is the Prometheus implementation of metrics.StoreMetrics.
type storeMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
}

// NewStoreMetrics creates StoreMetrics registered on the global registry, or
// a no-op implementation when metrics are disabled.
func NewStoreMetrics() metrics.StoreMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopStoreMetrics()
	}
	return NewStoreMetricsWith(metrics.GetRegistry())
}

// NewStoreMetricsWith creates StoreMetrics registered on reg.
func NewStoreMetricsWith(reg prometheus.Registerer) metrics.StoreMetrics {
	return &storeMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedhttp_store_operations_total",
				Help: "Total number of object store operations by store, operation and status",
			},
			[]string{"store", "operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "embedhttp_store_operation_duration_seconds",
				Help: "Duration of object store operations in seconds",
				Buckets: []float64{
					0.0001, // 100µs
					0.001,  // 1ms
					0.01,   // 10ms
					0.1,    // 100ms
					1.0,    // 1s
				},
			},
			[]string{"store", "operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedhttp_store_bytes_total",
				Help: "Total payload bytes read from or written to object stores",
			},
			[]string{"store", "operation"},
		),
	}
}

func (m *storeMetrics) ObserveOperation(store, operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(store, operation, status).Inc()
	m.operationDuration.WithLabelValues(store, operation).Observe(duration.Seconds())
}

func (m *storeMetrics) RecordBytes(store, operation string, bytes int64) {
	m.bytesTransferred.WithLabelValues(store, operation).Add(float64(bytes))
}
