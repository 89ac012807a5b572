package coordinator

import (
	"slices"
	"time"

	"github.com/nerrad567/ringext-core/internal/device"
	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/publish"
)

// maxRecentTransitions bounds the transitions kept for the API.
const maxRecentTransitions = 100

// DeviceView is one device as seen by the last cycle that fetched devices.
type DeviceView struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Family          device.Family   `json:"family"`
	Model           string          `json:"model,omitempty"`
	FirmwareVersion string          `json:"firmware_version,omitempty"`
	Observations    []publish.State `json:"observations"`
}

// Snapshot summarizes one completed refresh cycle.
type Snapshot struct {
	CycleID     string                `json:"cycle_id"`
	StartedAt   time.Time             `json:"started_at"`
	Duration    time.Duration         `json:"duration_ns"`
	Success     bool                  `json:"success"`
	Error       string                `json:"error,omitempty"`
	Devices     []DeviceView          `json:"devices"`
	Expected    int                   `json:"expected"`
	Added       int                   `json:"added"`
	Removed     int                   `json:"removed"`
	Departed    []string              `json:"departed,omitempty"`
	Transitions []firmware.Transition `json:"transitions,omitempty"`
}

// Snapshot returns the last cycle snapshot. When the last cycle could not
// fetch devices, Devices still holds the previous device list.
func (in *Instance) Snapshot() (Snapshot, error) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if in.snapshot == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	s := *in.snapshot
	s.Devices = slices.Clone(s.Devices)
	s.Departed = slices.Clone(s.Departed)
	s.Transitions = slices.Clone(s.Transitions)
	return s, nil
}

// Device returns one device view from the last snapshot.
func (in *Instance) Device(id string) (DeviceView, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if in.snapshot == nil {
		return DeviceView{}, false
	}
	for _, d := range in.snapshot.Devices {
		if d.ID == id {
			return d, true
		}
	}
	return DeviceView{}, false
}

// RecentTransitions returns the most recent firmware transitions detected
// by this process, newest first.
func (in *Instance) RecentTransitions() []firmware.Transition {
	in.mu.RLock()
	defer in.mu.RUnlock()

	out := slices.Clone(in.transitions)
	slices.Reverse(out)
	return out
}

// Records returns the device records of the last cycle that fetched devices.
func (in *Instance) Records() []device.Record {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return slices.Clone(in.records)
}
