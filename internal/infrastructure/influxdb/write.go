package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementObservation = "ring_observation"
	MeasurementFirmware    = "ring_firmware"
)

// ObservationPoint builds the point for one numeric observation value.
// Tags stay low-cardinality: device, key and category.
func ObservationPoint(deviceID, key, category string, value float64, ts time.Time) *write.Point {
	return write.NewPoint(
		MeasurementObservation,
		map[string]string{
			"device_id": deviceID,
			"key":       key,
			"category":  category,
		},
		map[string]any{
			"value": value,
		},
		ts,
	)
}

// FirmwarePoint builds the point recording one firmware transition.
// previous is empty for the first version seen on a device.
func FirmwarePoint(deviceID, kind, version, previous string, ts time.Time) *write.Point {
	fields := map[string]any{
		"version": version,
	}
	if previous != "" {
		fields["previous_version"] = previous
	}
	return write.NewPoint(
		MeasurementFirmware,
		map[string]string{
			"device_id": deviceID,
			"kind":      kind,
		},
		fields,
		ts,
	)
}

// WritePoint queues an arbitrary point. Dropped when not connected.
func (c *Client) WritePoint(point *write.Point) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(point)
}
