// Package prometheus provides Prometheus-backed implementations of the
// interfaces in pkg/metrics.
package prometheus

import (
	"strconv"
	"time"

	"github.com/marmos91/embedhttp/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// httpMetrics is the Prometheus implementation of metrics.HTTPMetrics.
type httpMetrics struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	requestsInFlight    *prometheus.GaugeVec
	bytesTransferred    *prometheus.CounterVec
	faultsTotal         *prometheus.CounterVec
	activeConnections   prometheus.Gauge
	connectionsAccepted prometheus.Counter
	connectionsClosed   prometheus.Counter
}

// NewHTTPMetrics creates HTTPMetrics registered on the global registry.
//
// Returns a no-op implementation if metrics are not enabled (InitRegistry not called).
func NewHTTPMetrics() metrics.HTTPMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopHTTPMetrics()
	}
	return NewHTTPMetricsWith(metrics.GetRegistry())
}

// NewHTTPMetricsWith creates HTTPMetrics registered on reg.
func NewHTTPMetricsWith(reg prometheus.Registerer) metrics.HTTPMetrics {
	return &httpMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedhttp_requests_total",
				Help: "Total number of requests by endpoint and status code",
			},
			[]string{"endpoint", "status"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "embedhttp_request_duration_milliseconds",
				Help: "Duration from connection acceptance to response write in milliseconds",
				Buckets: []float64{
					1,    // 1ms
					10,   // 10ms
					50,   // roughly a few poll intervals
					100,  // 100ms
					1000, // 1s
					5000, // default connection budget
				},
			},
			[]string{"endpoint"},
		),
		requestsInFlight: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "embedhttp_requests_in_flight",
				Help: "Current number of handlers running",
			},
			[]string{"endpoint"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedhttp_bytes_transferred_total",
				Help: "Total bytes read from and written to clients",
			},
			[]string{"direction"},
		),
		faultsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "embedhttp_faults_total",
				Help: "Total number of faults by kind",
			},
			[]string{"kind"},
		),
		activeConnections: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "embedhttp_active_connections",
				Help: "Current number of open client connections",
			},
		),
		connectionsAccepted: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "embedhttp_connections_accepted_total",
				Help: "Total number of connections accepted",
			},
		),
		connectionsClosed: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "embedhttp_connections_closed_total",
				Help: "Total number of connections closed",
			},
		),
	}
}

func (m *httpMetrics) RecordRequest(endpoint string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(float64(duration) / float64(time.Millisecond))
}

func (m *httpMetrics) RecordRequestStart(endpoint string) {
	m.requestsInFlight.WithLabelValues(endpoint).Inc()
}

func (m *httpMetrics) RecordRequestEnd(endpoint string) {
	m.requestsInFlight.WithLabelValues(endpoint).Dec()
}

func (m *httpMetrics) RecordBytesTransferred(direction string, bytes int64) {
	m.bytesTransferred.WithLabelValues(direction).Add(float64(bytes))
}

func (m *httpMetrics) RecordFault(kind string) {
	m.faultsTotal.WithLabelValues(kind).Inc()
}

func (m *httpMetrics) SetActiveConnections(count int32) {
	m.activeConnections.Set(float64(count))
}

func (m *httpMetrics) RecordConnectionAccepted() {
	m.connectionsAccepted.Inc()
}

func (m *httpMetrics) RecordConnectionClosed() {
	m.connectionsClosed.Inc()
}
