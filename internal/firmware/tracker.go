package firmware

import (
	"sort"
	"sync"
	"time"
)

// Logger receives transition notices.
type Logger interface {
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}

var placeholders = map[string]struct{}{
	"":            {},
	"unavailable": {},
	"unknown":     {},
}

// IsPlaceholder reports whether version means "not known yet".
func IsPlaceholder(version string) bool {
	_, ok := placeholders[version]
	return ok
}

// record pairs an entry with a global insertion sequence, used to order
// entries that share a timestamp.
type record struct {
	entry Entry
	seq   uint64
}

// Tracker holds per-device firmware history and current versions.
type Tracker struct {
	mu      sync.RWMutex
	history map[string][]record
	current map[string]string
	seq     uint64

	now    func() time.Time
	logger Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source for new entries.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger for detected transitions.
func WithLogger(l Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTracker returns an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		history: make(map[string][]record),
		current: make(map[string]string),
		now:     time.Now,
		logger:  noopLogger{},
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// CheckAndUpdate records version for deviceID if it is a transition.
//
// It returns false without touching state when version is a placeholder or
// equals the current version. Otherwise it appends a new entry, makes
// version current, and returns the entry. Nothing is persisted.
//
// Parameters:
//   - deviceID: Device the version was read from
//   - deviceName: Display name stored on the entry
//   - version: Reported firmware version
//
// Returns:
//   - Entry: The new history entry; PreviousVersion is empty for a first sighting
//   - bool: true when a transition was recorded
func (t *Tracker) CheckAndUpdate(deviceID, deviceName, version string) (Entry, bool) {
	if IsPlaceholder(version) {
		return Entry{}, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	previous := t.current[deviceID]
	if previous == version {
		return Entry{}, false
	}

	entry := Entry{
		Version:         version,
		PreviousVersion: previous,
		Timestamp:       t.now().UTC(),
		DeviceName:      deviceName,
	}
	t.seq++
	t.history[deviceID] = append(t.history[deviceID], record{entry: entry, seq: t.seq})
	t.current[deviceID] = version

	from := previous
	if from == "" {
		from = "initial"
	}
	t.logger.Info("firmware change detected", "device_id", deviceID, "device", deviceName, "from", from, "to", version)

	return entry, true
}

// RemoveDevice deletes all history and the current version of deviceID.
// It reports whether the device was known.
func (t *Tracker) RemoveDevice(deviceID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, hadHistory := t.history[deviceID]
	_, hadCurrent := t.current[deviceID]
	delete(t.history, deviceID)
	delete(t.current, deviceID)
	return hadHistory || hadCurrent
}

// Clear forgets every device.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = make(map[string][]record)
	t.current = make(map[string]string)
}

// CurrentVersion returns the last recorded version of deviceID.
func (t *Tracker) CurrentVersion(deviceID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v, ok := t.current[deviceID]
	return v, ok
}

// DeviceHistory returns the entries of deviceID, oldest first.
func (t *Tracker) DeviceHistory(deviceID string) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return entries(t.history[deviceID])
}

// Devices returns the ids of devices with a current version, sorted.
func (t *Tracker) Devices() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.current))
	for id := range t.current {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RecentChanges returns the newest entries across all devices, newest
// first. Entries with equal timestamps keep their insertion order.
// A limit of zero or less returns every entry.
func (t *Tracker) RecentChanges(limit int) []Change {
	t.mu.RLock()
	type seqChange struct {
		change Change
		seq    uint64
	}
	var all []seqChange
	for id, recs := range t.history {
		for _, r := range recs {
			all = append(all, seqChange{Change{DeviceID: id, Entry: r.entry}, r.seq})
		}
	}
	t.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		ti, tj := all[i].change.Entry.Timestamp, all[j].change.Entry.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return all[i].seq < all[j].seq
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]Change, len(all))
	for i, c := range all {
		out[i] = c.change
	}
	return out
}

// Data returns a snapshot of the tracker for persistence. The snapshot
// shares no memory with the tracker.
func (t *Tracker) Data() Data {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d := Data{
		History:         make(map[string][]Entry, len(t.history)),
		CurrentVersions: make(map[string]string, len(t.current)),
	}
	for id, recs := range t.history {
		d.History[id] = entries(recs)
	}
	for id, v := range t.current {
		d.CurrentVersions[id] = v
	}
	return d
}

// Restore replaces the tracker state with d. Insertion order for entries
// restored with equal timestamps follows device id, then list position.
func (t *Tracker) Restore(d Data) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = make(map[string][]record, len(d.History))
	t.current = make(map[string]string, len(d.CurrentVersions))
	t.seq = 0

	ids := make([]string, 0, len(d.History))
	for id := range d.History {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		recs := make([]record, 0, len(d.History[id]))
		for _, e := range d.History[id] {
			t.seq++
			recs = append(recs, record{entry: e, seq: t.seq})
		}
		t.history[id] = recs
	}
	for id, v := range d.CurrentVersions {
		t.current[id] = v
	}
}

func entries(recs []record) []Entry {
	out := make([]Entry, len(recs))
	for i, r := range recs {
		out[i] = r.entry
	}
	return out
}
