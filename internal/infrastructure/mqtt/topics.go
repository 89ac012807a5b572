package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix is the root of every ringext topic when none is configured.
const DefaultTopicPrefix = "ringext"

// Device fragment kinds. A device snapshot arrives as up to three retained
// messages which the device cache merges into one record.
const (
	FragmentAttributes = "attributes"
	FragmentHealth     = "health"
	FragmentAlerts     = "alerts"
)

// Topics builds ringext MQTT topics under a configurable prefix.
//
//	topics := mqtt.NewTopics("ringext")
//	topics.ObservationState("12345_rssi")
//	// Returns: "ringext/state/12345_rssi"
type Topics struct {
	Prefix string
}

// NewTopics returns a builder rooted at prefix, or DefaultTopicPrefix if empty.
func NewTopics(prefix string) Topics {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{Prefix: prefix}
}

// DeviceFragment returns the topic carrying one fragment of a device snapshot.
//
// Example: ringext/device/12345/health
func (t Topics) DeviceFragment(deviceID, kind string) string {
	return fmt.Sprintf("%s/device/%s/%s", t.Prefix, deviceID, kind)
}

// AllDeviceFragments matches every fragment of every device.
//
// Pattern: ringext/device/+/+
func (t Topics) AllDeviceFragments() string {
	return fmt.Sprintf("%s/device/+/+", t.Prefix)
}

// ParseDeviceFragment extracts the device id and fragment kind from a topic
// produced by DeviceFragment. ok is false for any other topic shape.
func (t Topics) ParseDeviceFragment(topic string) (deviceID, kind string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.Prefix+"/device/")
	if !found {
		return "", "", false
	}
	deviceID, kind, found = strings.Cut(rest, "/")
	if !found || deviceID == "" || strings.Contains(kind, "/") {
		return "", "", false
	}
	switch kind {
	case FragmentAttributes, FragmentHealth, FragmentAlerts:
		return deviceID, kind, true
	default:
		return "", "", false
	}
}

// ObservationState returns the retained state topic for one observation.
//
// Example: ringext/state/12345_rssi
func (t Topics) ObservationState(identifier string) string {
	return fmt.Sprintf("%s/state/%s", t.Prefix, identifier)
}

// FirmwareEvent returns the topic on which firmware transitions are announced.
//
// Example: ringext/event/firmware
func (t Topics) FirmwareEvent() string {
	return fmt.Sprintf("%s/event/firmware", t.Prefix)
}

// SystemStatus returns the online/offline status topic used for the LWT.
//
// Example: ringext/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.Prefix)
}
