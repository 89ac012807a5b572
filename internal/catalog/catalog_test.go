package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nerrad567/ringext-core/internal/attrs"
)

func decode(t *testing.T, raw string) attrs.Tree {
	t.Helper()
	var tree attrs.Tree
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		t.Fatalf("invalid fixture: %v", err)
	}
	return tree
}

func TestNew_DuplicateKey(t *testing.T) {
	_, err := New(
		Descriptor{Key: "rssi", Category: CategoryHealth, Path: "health.rssi"},
		Descriptor{Key: "rssi", Category: CategoryHealth, Path: "health.other"},
	)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("New() error = %v, want ErrDuplicateKey", err)
	}
}

func TestNew_InvalidDescriptor(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
	}{
		{"missing key", Descriptor{Category: CategoryHealth, Path: "health.rssi"}},
		{"missing category", Descriptor{Key: "rssi", Path: "health.rssi"}},
		{"missing path", Descriptor{Key: "rssi", Category: CategoryHealth}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.desc); !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("New() error = %v, want ErrInvalidDescriptor", err)
			}
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew() did not panic on an invalid descriptor")
		}
	}()
	MustNew(Descriptor{})
}

func TestDefault(t *testing.T) {
	c := Default()
	if c != Default() {
		t.Error("Default() returned a different catalog on the second call")
	}
	if c.Len() != 161 {
		t.Errorf("Len() = %d, want 161", c.Len())
	}

	for _, cat := range Categories() {
		if len(c.ByCategory(cat)) == 0 {
			t.Errorf("ByCategory(%q) is empty", cat)
		}
	}

	all := c.All()
	if all[0].Key != "rssi" {
		t.Errorf("first descriptor = %q, want rssi", all[0].Key)
	}
	if last := all[len(all)-1]; last.Key != "device_kind" || last.Path != "kind" {
		t.Errorf("last descriptor = %+v, want device_kind at kind", last)
	}
}

func TestDefault_Lookup(t *testing.T) {
	tests := []struct {
		key      string
		path     string
		category Category
		unit     string
	}{
		{"rssi", "health.rssi", CategoryHealth, UnitDBm},
		{"wifi_channel", "health.channel", CategoryHealth, ""},
		{"uptime_formatted", "health.uptime_sec", CategoryHealth, ""},
		{"chime_duration", "settings.chime_settings.duration", CategoryAudio, UnitSeconds},
		{"cv_human_enabled", "settings.cv_settings.detection_types.human.enabled", CategoryCVDetection, ""},
		{"cv_motion_stop_notification", "settings.cv_settings.detection_types.motion_stop.notification", CategoryCVDetection, ""},
		{"paid_glass_break", "settings.cv_paid_features.glass_break", CategoryCVPaid, ""},
		{"paid_critical_alerts", "settings.other_paid_features.critical_alerts", CategoryOtherPaid, ""},
		{"lite_24x7_resolution_p", "settings.lite_24x7.resolution_p", CategoryRecording, UnitP},
		{"installation_height", "settings.radar_settings.installation_height", CategoryRadar, UnitMeter},
		{"recording_state", "features.video_recording.recording_state", CategoryFeatures, ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, ok := Default().Lookup(tt.key)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.key)
			}
			if d.Path != tt.path {
				t.Errorf("Path = %q, want %q", d.Path, tt.path)
			}
			if d.Category != tt.category {
				t.Errorf("Category = %q, want %q", d.Category, tt.category)
			}
			if d.Unit != tt.unit {
				t.Errorf("Unit = %q, want %q", d.Unit, tt.unit)
			}
		})
	}

	if _, ok := Default().Lookup("nope"); ok {
		t.Error("Lookup(nope) found a descriptor")
	}
}

func TestDefault_CVDetectionOrder(t *testing.T) {
	cv := Default().ByCategory(CategoryCVDetection)
	want := []string{"cv_human_enabled", "cv_human_mode", "cv_human_notification", "cv_motion_enabled"}
	for i, key := range want {
		if cv[i].Key != key {
			t.Errorf("cv[%d] = %q, want %q", i, cv[i].Key, key)
		}
	}
	if last := cv[len(cv)-1].Key; last != "natural_language_search_enabled" {
		t.Errorf("last cv descriptor = %q, want natural_language_search_enabled", last)
	}
}

func TestPaths_Distinct(t *testing.T) {
	c := MustNew(
		Descriptor{Key: "uptime_sec", Category: CategoryHealth, Path: "health.uptime_sec"},
		Descriptor{Key: "uptime_formatted", Category: CategoryHealth, Path: "health.uptime_sec"},
		Descriptor{Key: "kind", Category: CategoryDeviceStatus, Path: "kind"},
	)
	got := c.Paths()
	if len(got) != 2 || got[0] != "health.uptime_sec" || got[1] != "kind" {
		t.Errorf("Paths() = %v, want [health.uptime_sec kind]", got)
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := MustNew(Descriptor{Key: "rssi", Category: CategoryHealth, Path: "health.rssi"})
	all := c.All()
	all[0].Key = "changed"
	if d, _ := c.Lookup("rssi"); d.Key != "rssi" {
		t.Error("mutating All() changed the catalog")
	}
}

func TestDescriptorName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"rssi", "Health: Rssi"},
		{"battery_percentage", "Power: Battery Percentage"},
		{"lite_24x7_enabled", "Recording: Lite 24X7 Enabled"},
		{"paid_co2_smoke_alarm", "Paid CV: Paid Co2 Smoke Alarm"},
		{"pir_sensitivity_1", "Motion: Pir Sensitivity 1"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, ok := Default().Lookup(tt.key)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.key)
			}
			if got := d.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseCategories(t *testing.T) {
	set, err := ParseCategories([]string{"health", " power "})
	if err != nil {
		t.Fatalf("ParseCategories() error = %v", err)
	}
	if !set[CategoryHealth] || !set[CategoryPower] || len(set) != 2 {
		t.Errorf("ParseCategories() = %v, want health and power", set)
	}

	if _, err := ParseCategories([]string{"health", "lasers"}); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("ParseCategories() error = %v, want ErrUnknownCategory", err)
	}
}

func TestCategoryDisplay(t *testing.T) {
	if got := CategoryFloodlight.Prefix(); got != "Light" {
		t.Errorf("Prefix() = %q, want Light", got)
	}
	if got := CategoryRadar.DisplayName(); got != "Radar / Bird's Eye" {
		t.Errorf("DisplayName() = %q, want %q", got, "Radar / Bird's Eye")
	}
	if got := Category("custom_thing").Prefix(); got != "Custom Thing" {
		t.Errorf("Prefix() = %q, want fallback %q", got, "Custom Thing")
	}
}
