package firmware

import (
	"reflect"
	"testing"
	"time"
)

// stepClock returns times one minute apart starting at start.
func stepClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

var epoch = time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)

func TestCheckAndUpdate_Placeholders(t *testing.T) {
	tr := NewTracker()

	for _, v := range []string{"", "unknown", "unavailable"} {
		if _, changed := tr.CheckAndUpdate("d1", "Cam", v); changed {
			t.Errorf("CheckAndUpdate(%q) changed = true, want false", v)
		}
	}
	if _, ok := tr.CurrentVersion("d1"); ok {
		t.Error("CurrentVersion() set after placeholders")
	}
	if len(tr.DeviceHistory("d1")) != 0 {
		t.Error("DeviceHistory() not empty after placeholders")
	}
}

func TestCheckAndUpdate_Transitions(t *testing.T) {
	tr := NewTracker(WithClock(stepClock(epoch)))

	first, changed := tr.CheckAndUpdate("d1", "Cam", "1.0")
	if !changed {
		t.Fatal("first CheckAndUpdate() changed = false")
	}
	if first.PreviousVersion != "" || !first.Initial() {
		t.Errorf("first entry previous = %q, want none", first.PreviousVersion)
	}

	if _, changed := tr.CheckAndUpdate("d1", "Cam", "1.0"); changed {
		t.Error("repeated CheckAndUpdate() changed = true")
	}

	third, changed := tr.CheckAndUpdate("d1", "Cam", "1.1")
	if !changed {
		t.Fatal("third CheckAndUpdate() changed = false")
	}
	if third.PreviousVersion != "1.0" {
		t.Errorf("third entry previous = %q, want 1.0", third.PreviousVersion)
	}
	if !third.Timestamp.Equal(epoch.Add(time.Minute)) {
		t.Errorf("third entry timestamp = %v", third.Timestamp)
	}

	if v, _ := tr.CurrentVersion("d1"); v != "1.1" {
		t.Errorf("CurrentVersion() = %q, want 1.1", v)
	}
	if got := len(tr.DeviceHistory("d1")); got != 2 {
		t.Errorf("len(DeviceHistory()) = %d, want 2", got)
	}
}

func TestCheckAndUpdate_PlaceholderKeepsCurrent(t *testing.T) {
	tr := NewTracker()
	tr.CheckAndUpdate("d1", "Cam", "1.0")
	tr.CheckAndUpdate("d1", "Cam", "unavailable")

	if _, changed := tr.CheckAndUpdate("d1", "Cam", "1.0"); changed {
		t.Error("version after a placeholder recorded as a change")
	}
}

func TestRemoveDevice(t *testing.T) {
	tr := NewTracker()
	tr.CheckAndUpdate("d1", "Cam", "1.0")
	tr.CheckAndUpdate("d2", "Bell", "2.0")

	if !tr.RemoveDevice("d1") {
		t.Error("RemoveDevice(d1) = false, want true")
	}
	if tr.RemoveDevice("d1") {
		t.Error("second RemoveDevice(d1) = true, want false")
	}
	if _, ok := tr.CurrentVersion("d1"); ok {
		t.Error("CurrentVersion(d1) still set")
	}
	if want := []string{"d2"}; !reflect.DeepEqual(tr.Devices(), want) {
		t.Errorf("Devices() = %v, want %v", tr.Devices(), want)
	}

	// A removed device starts over with an initial entry.
	e, changed := tr.CheckAndUpdate("d1", "Cam", "1.0")
	if !changed || !e.Initial() {
		t.Errorf("CheckAndUpdate() after removal = %+v, %v; want initial entry", e, changed)
	}
}

func TestRecentChanges(t *testing.T) {
	tr := NewTracker(WithClock(stepClock(epoch)))
	tr.CheckAndUpdate("d1", "Cam", "1.0")
	tr.CheckAndUpdate("d2", "Bell", "2.0")
	tr.CheckAndUpdate("d1", "Cam", "1.1")

	got := tr.RecentChanges(2)
	if len(got) != 2 {
		t.Fatalf("len(RecentChanges(2)) = %d, want 2", len(got))
	}
	if got[0].DeviceID != "d1" || got[0].Entry.Version != "1.1" {
		t.Errorf("RecentChanges()[0] = %+v, want d1 1.1", got[0])
	}
	if got[1].DeviceID != "d2" {
		t.Errorf("RecentChanges()[1] = %+v, want d2", got[1])
	}

	if all := tr.RecentChanges(0); len(all) != 3 {
		t.Errorf("len(RecentChanges(0)) = %d, want 3", len(all))
	}
}

func TestRecentChanges_TiesKeepInsertionOrder(t *testing.T) {
	fixed := func() time.Time { return epoch }
	tr := NewTracker(WithClock(fixed))
	tr.CheckAndUpdate("b", "B", "1")
	tr.CheckAndUpdate("a", "A", "1")
	tr.CheckAndUpdate("c", "C", "1")

	var order []string
	for _, c := range tr.RecentChanges(0) {
		order = append(order, c.DeviceID)
	}
	if want := []string{"b", "a", "c"}; !reflect.DeepEqual(order, want) {
		t.Errorf("RecentChanges() order = %v, want %v", order, want)
	}
}

func TestDataRestore(t *testing.T) {
	tr := NewTracker(WithClock(stepClock(epoch)))
	tr.CheckAndUpdate("d1", "Cam", "1.0")
	tr.CheckAndUpdate("d1", "Cam", "1.1")

	data := tr.Data()
	data.History["d1"][0].Version = "mutated"
	if tr.DeviceHistory("d1")[0].Version != "1.0" {
		t.Fatal("Data() shares memory with the tracker")
	}
	data.History["d1"][0].Version = "1.0"

	restored := NewTracker()
	restored.Restore(data)

	if !reflect.DeepEqual(restored.DeviceHistory("d1"), tr.DeviceHistory("d1")) {
		t.Errorf("restored history = %+v, want %+v", restored.DeviceHistory("d1"), tr.DeviceHistory("d1"))
	}
	if _, changed := restored.CheckAndUpdate("d1", "Cam", "1.1"); changed {
		t.Error("restored tracker recorded the current version again")
	}
}

func TestClear(t *testing.T) {
	tr := NewTracker()
	tr.CheckAndUpdate("d1", "Cam", "1.0")
	tr.Clear()

	if len(tr.Devices()) != 0 || len(tr.RecentChanges(0)) != 0 {
		t.Error("Clear() left state behind")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		previous string
		version  string
		want     Kind
	}{
		{"", "1.0.0", KindInitial},
		{"1.4.26", "1.4.27", KindUpgrade},
		{"2.0", "1.9.9", KindDowngrade},
		{"v1.2.0", "v1.10.0", KindUpgrade},
		{"1.0.0", "1.0", KindChange},
		{"cam-1.2", "cam-1.3", KindChange},
		{"Up to Date", "1.0.0", KindChange},
	}
	for _, tt := range tests {
		if got := Classify(tt.previous, tt.version); got != tt.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", tt.previous, tt.version, got, tt.want)
		}
	}
}

func TestNewTransition(t *testing.T) {
	e := Entry{Version: "1.1.0", PreviousVersion: "1.0.0", Timestamp: epoch, DeviceName: "Cam"}
	got := NewTransition("d1", e)
	want := Transition{
		DeviceID:        "d1",
		DeviceName:      "Cam",
		Version:         "1.1.0",
		PreviousVersion: "1.0.0",
		Kind:            KindUpgrade,
		Timestamp:       epoch,
	}
	if got != want {
		t.Errorf("NewTransition() = %+v, want %+v", got, want)
	}
}
