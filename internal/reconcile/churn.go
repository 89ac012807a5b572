package reconcile

// ChurnTracker remembers the device ids seen on the previous refresh.
//
// Thread Safety:
//   - Not safe for concurrent use. A tracker belongs to one configuration
//     instance and is driven only by its refresh worker.
type ChurnTracker struct {
	tracked Set
}

// NewChurnTracker returns a tracker that has seen no devices.
func NewChurnTracker() *ChurnTracker {
	return &ChurnTracker{tracked: make(Set)}
}

// OnRefresh returns the devices tracked before but missing from current,
// then replaces the tracked set with current. Repeating a call with the
// same current set returns an empty set.
func (c *ChurnTracker) OnRefresh(current Set) Set {
	removed := c.tracked.Minus(current)
	c.tracked = current.Clone()
	return removed
}

// Tracked returns a copy of the devices seen on the last refresh.
func (c *ChurnTracker) Tracked() Set {
	return c.tracked.Clone()
}

// OwnedBy returns the identifiers in actual whose device is in devices.
func OwnedBy(actual, devices Set) []string {
	var out []string
	for _, id := range actual.Sorted() {
		if devices.Has(DeviceIDOf(id)) {
			out = append(out, id)
		}
	}
	return out
}

// Orphans returns the identifiers in actual whose device is not in
// currentDevices, excluding coordinatorID. It is used once at startup to
// clear identifiers left behind while the process was not running.
//
// Parameters:
//   - actual: Identifiers materialized for the configuration instance
//   - currentDevices: Device ids in the current device list
//   - coordinatorID: Identifier that is never an orphan
//
// Returns:
//   - []string: Orphaned identifiers in ascending order, nil when none
func Orphans(actual, currentDevices Set, coordinatorID string) []string {
	var out []string
	for _, id := range actual.Sorted() {
		if id == coordinatorID {
			continue
		}
		if !currentDevices.Has(DeviceIDOf(id)) {
			out = append(out, id)
		}
	}
	return out
}
