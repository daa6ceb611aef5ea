// Package metric provides Prometheus metrics for projconf.
//
// The registry is private to each process that asks for it; nothing is
// registered with the Prometheus default registry. Metrics cover
// resolution calls, fragment loading, wildcard globbing and the instance
// cache, and are exposed through Handler in Prometheus text format.
package metric
