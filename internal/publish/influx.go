package publish

import (
	"context"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/infrastructure/influxdb"
)

// PointWriter queues InfluxDB points. The influxdb client is non-blocking;
// write failures surface through its error callback.
type PointWriter interface {
	WritePoint(point *write.Point)
}

// MetricWriter records numeric observation values and firmware transitions.
type MetricWriter struct {
	writer PointWriter
}

// NewMetricWriter creates a writer over w.
func NewMetricWriter(w PointWriter) *MetricWriter {
	return &MetricWriter{writer: w}
}

// WriteStates queues a point for every available state with a numeric
// value. It returns the number of points queued.
func (m *MetricWriter) WriteStates(_ context.Context, states []State) int {
	n := 0
	for _, s := range states {
		if !s.Available || s.DeviceID == "" {
			continue
		}
		v, ok := s.Numeric()
		if !ok {
			continue
		}
		m.writer.WritePoint(influxdb.ObservationPoint(s.DeviceID, s.Key, s.Category, v, s.Timestamp))
		n++
	}
	return n
}

// WriteTransition queues the point for one firmware transition.
func (m *MetricWriter) WriteTransition(_ context.Context, t firmware.Transition) {
	m.writer.WritePoint(influxdb.FirmwarePoint(t.DeviceID, string(t.Kind), t.Version, t.PreviousVersion, t.Timestamp))
}
