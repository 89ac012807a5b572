// Package metrics exposes Prometheus collectors for the refresh engine.
//
// Collectors are registered on a caller-supplied registry rather than the
// global default, so each coordinator instance and each test owns its own.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "ringext"
	subsystem = "refresh"
)

// Cycle results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder records refresh engine activity.
type Recorder struct {
	cycles           *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	observations     *prometheus.CounterVec
	devicesDeparted  prometheus.Counter
	firmwareChanges  *prometheus.CounterVec
	saveFailures     prometheus.Counter
	saveDuration     prometheus.Histogram
	devices          prometheus.Gauge
	materialized     prometheus.Gauge
	lastSuccessEpoch prometheus.Gauge
}

// New creates a Recorder and registers its collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cycles_total",
				Help:      "Total number of refresh cycles by result",
			},
			[]string{"result"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cycle_duration_seconds",
				Help:      "Duration of refresh cycles in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		observations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "observations_reconciled_total",
				Help:      "Total number of observations added or removed by reconciliation",
			},
			[]string{"action"},
		),
		devicesDeparted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "devices_departed_total",
				Help:      "Total number of devices that disappeared between refreshes",
			},
		),
		firmwareChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "firmware",
				Name:      "transitions_total",
				Help:      "Total number of recorded firmware transitions by kind",
			},
			[]string{"kind"},
		),
		saveFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "firmware",
				Name:      "save_failures_total",
				Help:      "Total number of failed firmware history saves",
			},
		),
		saveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "firmware",
				Name:      "save_duration_seconds",
				Help:      "Duration of successful firmware history saves in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		devices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "devices",
				Help:      "Number of devices seen in the last successful refresh",
			},
		),
		materialized: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "observations",
				Help:      "Number of materialized observations after the last successful refresh",
			},
		),
		lastSuccessEpoch: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful refresh",
			},
		),
	}

	reg.MustRegister(
		r.cycles,
		r.cycleDuration,
		r.observations,
		r.devicesDeparted,
		r.firmwareChanges,
		r.saveFailures,
		r.saveDuration,
		r.devices,
		r.materialized,
		r.lastSuccessEpoch,
	)
	return r
}

// ObserveCycle records one completed refresh cycle.
func (r *Recorder) ObserveCycle(success bool, started time.Time, d time.Duration) {
	result := ResultFailure
	if success {
		result = ResultSuccess
		r.lastSuccessEpoch.Set(float64(started.Unix()))
	}
	r.cycles.WithLabelValues(result).Inc()
	r.cycleDuration.Observe(d.Seconds())
}

// ObserveDelta records the size of an applied reconciliation delta.
func (r *Recorder) ObserveDelta(added, removed int) {
	r.observations.WithLabelValues("added").Add(float64(added))
	r.observations.WithLabelValues("removed").Add(float64(removed))
}

// ObserveDeparted records devices that left between two refreshes.
func (r *Recorder) ObserveDeparted(n int) {
	r.devicesDeparted.Add(float64(n))
}

// ObserveFirmwareTransition counts one firmware transition of the given kind.
func (r *Recorder) ObserveFirmwareTransition(kind string) {
	r.firmwareChanges.WithLabelValues(kind).Inc()
}

// ObserveSaveFailure counts one failed firmware save.
func (r *Recorder) ObserveSaveFailure() {
	r.saveFailures.Inc()
}

// ObserveSave records the duration of a successful firmware save.
func (r *Recorder) ObserveSave(d time.Duration) {
	r.saveDuration.Observe(d.Seconds())
}

// SetInventory sets the device and observation gauges.
func (r *Recorder) SetInventory(devices, observations int) {
	r.devices.Set(float64(devices))
	r.materialized.Set(float64(observations))
}
