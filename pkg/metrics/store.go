package metrics

import "time"

// StoreMetrics provides observability for object store backends.
type StoreMetrics interface {
	// ObserveOperation records one store call.
	//
	// Parameters:
	//   - store: Registered store name
	//   - operation: "get", "put", "delete" or "list"
	//   - duration: Time taken by the backend
	//   - err: Error returned by the backend, nil on success
	ObserveOperation(store, operation string, duration time.Duration, err error)

	// RecordBytes records payload bytes moved by an operation.
	RecordBytes(store, operation string, bytes int64)
}

// NewNoopStoreMetrics returns a StoreMetrics that records nothing.
func NewNoopStoreMetrics() StoreMetrics {
	return noopStoreMetrics{}
}

type noopStoreMetrics struct{}

func (noopStoreMetrics) ObserveOperation(store, operation string, duration time.Duration, err error) {
}
func (noopStoreMetrics) RecordBytes(store, operation string, bytes int64) {}
