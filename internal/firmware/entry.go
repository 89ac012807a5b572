package firmware

import (
	"encoding/json"
	"time"
)

// Entry is one recorded version transition. Entries are never modified
// after they are appended.
type Entry struct {
	Version         string
	PreviousVersion string // empty for the first version seen
	Timestamp       time.Time
	DeviceName      string
}

// Initial reports whether this is the first version seen for the device.
func (e Entry) Initial() bool {
	return e.PreviousVersion == ""
}

type entryJSON struct {
	Version         string  `json:"version"`
	PreviousVersion *string `json:"previous_version"`
	Timestamp       string  `json:"timestamp"`
	DeviceName      string  `json:"device_name"`
}

// MarshalJSON writes the stored form. A missing previous version is null.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		Version:    e.Version,
		DeviceName: e.DeviceName,
	}
	if e.PreviousVersion != "" {
		prev := e.PreviousVersion
		out.PreviousVersion = &prev
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the stored form. An unreadable timestamp becomes the
// zero time rather than failing the whole document.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = Entry{
		Version:    in.Version,
		DeviceName: in.DeviceName,
		Timestamp:  parseTimestamp(in.Timestamp),
	}
	if in.PreviousVersion != nil {
		e.PreviousVersion = *in.PreviousVersion
	}
	return nil
}

// Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

const minuteLayout = "2006-01-02 15:04"

func formatMinute(ts time.Time) string {
	if ts.IsZero() {
		return "Unknown"
	}
	return ts.UTC().Format(minuteLayout)
}

// Data is the persisted document:
// {"history": {deviceID: [entry...]}, "current_versions": {deviceID: version}}.
type Data struct {
	History         map[string][]Entry `json:"history"`
	CurrentVersions map[string]string  `json:"current_versions"`
}

// Change is an entry together with the device it belongs to.
type Change struct {
	DeviceID string `json:"device_id"`
	Entry    Entry  `json:"entry"`
}
