// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package metrics exposes the Prometheus collectors for registrations and store calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RegistrationsCreated prometheus.Counter
	ValidationFailures   prometheus.Counter
	StoreDuration        *prometheus.HistogramVec
	StoreErrors          *prometheus.CounterVec
}

// New creates the metrics on a private registry, so tests can build as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RegistrationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "registro_registrations_created_total",
			Help: "Total number of registrations stored",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "registro_validation_failures_total",
			Help: "Total number of form submissions rejected for missing fields",
		}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registro_store_operation_duration_seconds",
			Help:    "Duration of store operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "registro_store_errors_total",
			Help: "Total number of failed store operations",
		}, []string{"backend", "operation"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncrementRegistrationsCreated increments the registrations counter by 1.
func (m *Metrics) IncrementRegistrationsCreated() {
	if m == nil {
		return
	}
	m.RegistrationsCreated.Inc()
}

// IncrementValidationFailures increments the rejected-submission counter by 1.
func (m *Metrics) IncrementValidationFailures() {
	if m == nil {
		return
	}
	m.ValidationFailures.Inc()
}

// ObserveStore records the duration of a store operation started at start,
// counting it as an error when err is non-nil.
func (m *Metrics) ObserveStore(backend, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.StoreDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.StoreErrors.WithLabelValues(backend, operation).Inc()
	}
}
