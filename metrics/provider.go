// Package metrics exposes the Prometheus instruments used across the service.
package metrics

import (
	"strconv"
	"time"
)

// Provider records operational metrics. Repositories and middleware depend on
// this interface so tests can swap in Noop.
type Provider interface {
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
	ObserveStorageOperation(operation string, success bool, duration time.Duration)
	IncrementTokenVerifications(result string)
	IncrementCacheHits()
	IncrementCacheMisses()
}

type PrometheusProvider struct{}

func NewPrometheusProvider() Provider {
	return &PrometheusProvider{}
}

func (p *PrometheusProvider) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func (p *PrometheusProvider) ObserveStorageOperation(operation string, success bool, duration time.Duration) {
	StorageOperationsTotal.WithLabelValues(operation, strconv.FormatBool(success)).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (p *PrometheusProvider) IncrementTokenVerifications(result string) {
	TokenVerificationsTotal.WithLabelValues(result).Inc()
}

func (p *PrometheusProvider) IncrementCacheHits() {
	CacheHitsTotal.Inc()
}

func (p *PrometheusProvider) IncrementCacheMisses() {
	CacheMissesTotal.Inc()
}

type noop struct{}

// Noop discards everything.
func Noop() Provider { return noop{} }

func (noop) ObserveHTTPRequest(string, string, int, time.Duration) {}
func (noop) ObserveStorageOperation(string, bool, time.Duration) {}
func (noop) IncrementTokenVerifications(string) {}
func (noop) IncrementCacheHits() {}
func (noop) IncrementCacheMisses() {}
