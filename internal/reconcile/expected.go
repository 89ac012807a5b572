package reconcile

// DeviceObservations is what one device contributes to a cycle: the keys of
// its available observations and whether it reports a firmware version.
type DeviceObservations struct {
	DeviceID    string
	Keys        []string
	HasFirmware bool
}

// Expected builds the set of identifiers that should be materialized for a
// configuration instance: every available device observation, a firmware
// history for every device reporting firmware, and the coordinator health.
func Expected(entryID string, devices []DeviceObservations) Set {
	expected := NewSet(CoordinatorHealthID(entryID))
	for _, d := range devices {
		for _, key := range d.Keys {
			expected.Add(ObservationID(d.DeviceID, key))
		}
		if d.HasFirmware {
			expected.Add(FirmwareHistoryID(d.DeviceID))
		}
	}
	return expected
}
