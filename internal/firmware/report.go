package firmware

import (
	"fmt"
	"strings"
)

// DefaultChangelogLimit is the number of entries rendered by Changelog.
const DefaultChangelogLimit = 50

// EmptyChangelog is the changelog text when nothing has been recorded.
const EmptyChangelog = "No firmware changes recorded yet"

const unknown = "Unknown"

// Changelog renders the newest limit changes, one per line:
//
//	2026-03-01 09:15 | Front Door: 1.4.26 -> 1.4.27
//	2026-02-11 18:02 | Garage: 2.0.1 (initial)
func (t *Tracker) Changelog(limit int) string {
	changes := t.RecentChanges(limit)
	if len(changes) == 0 {
		return EmptyChangelog
	}

	lines := make([]string, 0, len(changes))
	for _, c := range changes {
		name := c.Entry.DeviceName
		if name == "" {
			name = unknown
		}
		lines = append(lines, fmt.Sprintf("%s | %s: %s", formatMinute(c.Entry.Timestamp), name, describe(c.Entry)))
	}
	return strings.Join(lines, "\n")
}

func describe(e Entry) string {
	if e.Initial() {
		return e.Version + " (initial)"
	}
	return e.PreviousVersion + " -> " + e.Version
}

// Summary groups devices by their current version.
type Summary struct {
	TotalDevices   int                 `json:"total_devices"`
	UniqueVersions int                 `json:"unique_versions"`
	TotalChanges   int                 `json:"total_changes"`
	VersionGroups  map[string][]string `json:"version_groups"`
}

// Summary reports devices per current version. Devices are named by their
// latest entry, falling back to the device id.
func (t *Tracker) Summary() Summary {
	ids := t.Devices()

	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Summary{
		TotalDevices:  len(t.current),
		VersionGroups: make(map[string][]string),
	}
	for _, id := range ids {
		version, ok := t.current[id]
		if !ok {
			continue
		}
		name := id
		if recs := t.history[id]; len(recs) > 0 && recs[len(recs)-1].entry.DeviceName != "" {
			name = recs[len(recs)-1].entry.DeviceName
		}
		s.VersionGroups[version] = append(s.VersionGroups[version], name)
	}
	for _, recs := range t.history {
		s.TotalChanges += len(recs)
	}
	s.UniqueVersions = len(s.VersionGroups)
	return s
}

// HistoryState is the value and attributes of a device's firmware history
// observation.
type HistoryState struct {
	Value      string
	Attributes map[string]any
}

// HistoryState renders the firmware history observation of deviceID. The
// value is the current version, with the update count appended once the
// device has more than one entry. History attributes are newest first.
func (t *Tracker) HistoryState(deviceID string) HistoryState {
	history := t.DeviceHistory(deviceID)
	current, ok := t.CurrentVersion(deviceID)
	if !ok {
		current = unknown
	}

	if len(history) == 0 {
		return HistoryState{
			Value: current,
			Attributes: map[string]any{
				"current_version": unknown,
				"history":         []string{},
				"total_changes":   0,
			},
		}
	}

	value := current
	if len(history) > 1 {
		value = fmt.Sprintf("%s (%d updates)", current, len(history)-1)
	}

	lines := make([]string, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		e := history[i]
		lines = append(lines, formatMinute(e.Timestamp)+": "+describe(e))
	}

	firstSeen := unknown
	if ts := history[0].Timestamp; !ts.IsZero() {
		firstSeen = ts.UTC().Format("2006-01-02")
	}

	return HistoryState{
		Value: value,
		Attributes: map[string]any{
			"current_version": history[len(history)-1].Version,
			"first_seen":      firstSeen,
			"total_updates":   len(history) - 1,
			"history":         lines,
		},
	}
}
