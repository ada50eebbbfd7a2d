package monitor

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/afroash/plant-monitor/internal/fetcher"
)

// Metrics tracks acquisition-loop activity for the /metrics endpoint.
type Metrics struct {
	Cycles        *prometheus.CounterVec
	FetchFailures *prometheus.CounterVec
	Connected     prometheus.Gauge
	CycleDuration prometheus.Histogram
}

// NewMetrics registers the monitor's collectors against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "plant_monitor_cycles_total",
			Help: "Acquisition cycles by outcome.",
		}, []string{"outcome"}),
		FetchFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "plant_monitor_fetch_failures_total",
			Help: "Failed fetches by error type.",
		}, []string{"type"}),
		Connected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "plant_monitor_device_connected",
			Help: "1 when the backend declares the device online.",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "plant_monitor_cycle_duration_seconds",
			Help:    "Duration of acquisition cycles.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// failureType buckets a fetch error for the failure counter.
func failureType(err error) string {
	var timeoutErr *fetcher.TimeoutError
	if errors.As(err, &timeoutErr) {
		return "timeout"
	}
	var parseErr *fetcher.ParseError
	if errors.As(err, &parseErr) {
		return "parse"
	}
	return "connection"
}
