// Package metrics holds the collector interfaces used by the HTTP adapter and
// the object stores, their no-op versions, and the process-wide Prometheus
// registry served by Server.
//
// Collection is off until InitRegistry runs. Constructors in the prometheus
// subpackage hand back no-op collectors while it is off, and a nil collector
// passed to the adapter or a store wrapper behaves the same way:
//
//	metrics.InitRegistry()
//	httpMetrics := prometheus.NewHTTPMetrics()
//	a := http.New(cfg, table, httpMetrics)
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry creates the shared registry. Only the first call has an
// effect; collectors built before it stay no-ops.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the shared registry, or nil while collection is off.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled reports whether InitRegistry has run.
func IsEnabled() bool {
	return GetRegistry() != nil
}
