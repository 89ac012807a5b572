package firmware

import (
	"time"

	"github.com/Masterminds/semver/v3"
)

// Kind classifies a transition.
type Kind string

const (
	KindInitial   Kind = "initial"
	KindUpgrade   Kind = "upgrade"
	KindDowngrade Kind = "downgrade"
	// KindChange is a transition between versions that are not both
	// semantic versions, or that compare equal as semantic versions.
	KindChange Kind = "change"
)

// Classify compares previous and version as semantic versions.
func Classify(previous, version string) Kind {
	if previous == "" {
		return KindInitial
	}
	prev, err := semver.NewVersion(previous)
	if err != nil {
		return KindChange
	}
	next, err := semver.NewVersion(version)
	if err != nil {
		return KindChange
	}
	switch next.Compare(prev) {
	case 1:
		return KindUpgrade
	case -1:
		return KindDowngrade
	default:
		return KindChange
	}
}

// Transition is a detected change handed to notifiers.
type Transition struct {
	DeviceID        string    `json:"device_id"`
	DeviceName      string    `json:"device_name"`
	Version         string    `json:"version"`
	PreviousVersion string    `json:"previous_version,omitempty"`
	Kind            Kind      `json:"kind"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewTransition classifies e for deviceID.
func NewTransition(deviceID string, e Entry) Transition {
	return Transition{
		DeviceID:        deviceID,
		DeviceName:      e.DeviceName,
		Version:         e.Version,
		PreviousVersion: e.PreviousVersion,
		Kind:            Classify(e.PreviousVersion, e.Version),
		Timestamp:       e.Timestamp,
	}
}
