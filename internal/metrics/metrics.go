// Package metrics exposes Prometheus metrics for the skewt service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Trajectory computation outcomes
const (
	OutcomeOK           = "ok"
	OutcomeNoConvection = "no_convection"
	OutcomeInvalid      = "invalid"
)

var (
	// HTTPRequests counts handled HTTP requests by route, method, and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skewt",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests handled.",
	}, []string{"route", "method", "code"})

	// HTTPRequestDuration observes HTTP request latency by route
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skewt",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})

	// TrajectoryComputations counts parcel trajectory computations by outcome
	TrajectoryComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skewt",
		Subsystem: "parcel",
		Name:      "trajectory_computations_total",
		Help:      "Parcel trajectory computations by outcome.",
	}, []string{"outcome"})

	// TrajectoryDuration observes the time spent integrating a single ascent
	TrajectoryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skewt",
		Subsystem: "parcel",
		Name:      "trajectory_duration_seconds",
		Help:      "Time spent computing a parcel trajectory.",
		Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 8),
	})
)
