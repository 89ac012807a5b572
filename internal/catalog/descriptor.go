package catalog

import "github.com/nerrad567/ringext-core/internal/attrs"

// ValueFunc extracts an observation value from a merged tree. It returns
// (nil, nil) when there is no value and an error for malformed input.
type ValueFunc func(t attrs.Tree) (any, error)

// AvailableFunc decides whether an observation should exist for a tree.
type AvailableFunc func(t attrs.Tree) (bool, error)

// Descriptor maps an attribute path to an observation.
//
// With no Available func, the observation exists when Path resolves.
// With no Value func, the value is the raw value at Path.
type Descriptor struct {
	Key      string
	Category Category
	Path     string

	Unit        string
	DeviceClass string
	StateClass  string

	Value     ValueFunc
	Available AvailableFunc
}

// Name is the user-facing name, e.g. "Health: Rssi".
func (d Descriptor) Name() string {
	return d.Category.Prefix() + ": " + titleCase(d.Key)
}

// Units.
const (
	UnitDBm       = "dBm"
	UnitPercent   = "%"
	UnitKbps      = "kbps"
	UnitMbps      = "Mbit/s"
	UnitSeconds   = "s"
	UnitHours     = "h"
	UnitDays      = "days"
	UnitMillivolt = "mV"
	UnitVolt      = "V"
	UnitMeter     = "m"
	UnitP         = "p"
)

// Device classes.
const (
	ClassSignalStrength = "signal_strength"
	ClassDataRate       = "data_rate"
	ClassDuration       = "duration"
	ClassTimestamp      = "timestamp"
	ClassBattery        = "battery"
	ClassVoltage        = "voltage"
)

// State classes.
const (
	StateMeasurement     = "measurement"
	StateTotalIncreasing = "total_increasing"
)
