package metrics

import "time"

// HTTPMetrics provides observability for the HTTP endpoint adapter.
//
// Implementations can collect metrics about requests, connection lifecycle,
// throughput and faults. This interface is optional - if not provided to the
// adapter, a no-op implementation is used with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	adapter := http.New(config, table, prometheus.NewHTTPMetrics())
//
//	// Without metrics (no-op)
//	adapter := http.New(config, table, nil)
type HTTPMetrics interface {
	// RecordRequest records a completed request.
	//
	// Parameters:
	//   - endpoint: Matched endpoint path, or "unmatched" for 400/404 outcomes
	//   - status: HTTP status code written to the client
	//   - duration: Time from acceptance to response write
	RecordRequest(endpoint string, status int, duration time.Duration)

	// RecordRequestStart increments the in-flight handler counter.
	RecordRequestStart(endpoint string)

	// RecordRequestEnd decrements the in-flight handler counter.
	RecordRequestEnd(endpoint string)

	// RecordBytesTransferred records bytes read from or written to clients.
	//
	// Parameters:
	//   - direction: "in" or "out"
	//   - bytes: Number of bytes transferred
	RecordBytesTransferred(direction string, bytes int64)

	// RecordFault counts a fault by kind (e.g. "handler", "accept", "connection").
	RecordFault(kind string)

	// SetActiveConnections updates the current connection count.
	SetActiveConnections(count int32)

	// RecordConnectionAccepted increments the total accepted connections counter.
	RecordConnectionAccepted()

	// RecordConnectionClosed increments the total closed connections counter.
	RecordConnectionClosed()
}

// NewNoopHTTPMetrics returns an HTTPMetrics that records nothing.
func NewNoopHTTPMetrics() HTTPMetrics {
	return noopHTTPMetrics{}
}

type noopHTTPMetrics struct{}

func (noopHTTPMetrics) RecordRequest(endpoint string, status int, duration time.Duration) {}
func (noopHTTPMetrics) RecordRequestStart(endpoint string)                                {}
func (noopHTTPMetrics) RecordRequestEnd(endpoint string)                                  {}
func (noopHTTPMetrics) RecordBytesTransferred(direction string, bytes int64)              {}
func (noopHTTPMetrics) RecordFault(kind string)                                           {}
func (noopHTTPMetrics) SetActiveConnections(count int32)                                  {}
func (noopHTTPMetrics) RecordConnectionAccepted()                                         {}
func (noopHTTPMetrics) RecordConnectionClosed()                                           {}
