package reconcile

import "strings"

const (
	// FirmwareHistoryKey is the observation key of the per-device history.
	FirmwareHistoryKey = "firmware_history"

	// CoordinatorHealthKey is the observation key of the coordinator health.
	CoordinatorHealthKey = "coordinator_health"

	// CoordinatorGroup is the add group for the coordinator health
	// observation, which belongs to no device.
	CoordinatorGroup = "__coordinator__"

	separator = "_"
)

// ObservationID returns the identifier of one device observation.
func ObservationID(deviceID, key string) string {
	return deviceID + separator + key
}

// FirmwareHistoryID returns the identifier of a device's firmware history.
func FirmwareHistoryID(deviceID string) string {
	return ObservationID(deviceID, FirmwareHistoryKey)
}

// CoordinatorHealthID returns the identifier of the coordinator health
// observation for a configuration instance.
func CoordinatorHealthID(entryID string) string {
	return entryID + separator + CoordinatorHealthKey
}

// DeviceIDOf returns the owning device of an identifier: everything before
// the first "_". An identifier without "_" is its own device id.
func DeviceIDOf(id string) string {
	deviceID, _, _ := strings.Cut(id, separator)
	return deviceID
}

// KeyOf returns the observation key of an identifier: everything after the
// first "_", or "" when there is none.
func KeyOf(id string) string {
	_, key, _ := strings.Cut(id, separator)
	return key
}
