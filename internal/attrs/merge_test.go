package attrs

import (
	"reflect"
	"testing"
)

func TestMerge_SupplementalWins(t *testing.T) {
	base := Tree{"health": map[string]any{"rssi": -50, "battery_percentage": 80}}
	supplemental := map[string]any{"rssi": -40}

	merged := Merge(base, supplemental, nil)

	if got, _ := Resolve(merged, "health.rssi"); got != -40 {
		t.Errorf("health.rssi = %v, want -40", got)
	}
	if got, _ := Resolve(merged, "health.battery_percentage"); got != 80 {
		t.Errorf("health.battery_percentage = %v, want 80", got)
	}
}

func TestMerge_Alerts(t *testing.T) {
	tests := []struct {
		name   string
		base   Tree
		alerts map[string]any
		want   map[string]any
	}{
		{
			name:   "explicit alerts",
			base:   Tree{},
			alerts: map[string]any{"connection": "online", "battery": "low"},
			want:   map[string]any{"alert_connection": "online", "alert_battery": "low"},
		},
		{
			name: "alerts taken from base",
			base: Tree{"alerts": map[string]any{"connection": "offline"}},
			want: map[string]any{"alert_connection": "offline"},
		},
		{
			name:   "explicit empty alerts override base",
			base:   Tree{"alerts": map[string]any{"connection": "offline"}},
			alerts: map[string]any{},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(tt.base, nil, tt.alerts)
			health := Sub(merged, "health")
			if len(tt.want) == 0 {
				if health != nil {
					t.Errorf("health = %v, want absent", health)
				}
				return
			}
			if !reflect.DeepEqual(map[string]any(health), tt.want) {
				t.Errorf("health = %v, want %v", health, tt.want)
			}
		})
	}
}

func TestMerge_HealthWriteBack(t *testing.T) {
	t.Run("no health anywhere", func(t *testing.T) {
		merged := Merge(Tree{"kind": "chime"}, nil, nil)
		if Exists(merged, "health") {
			t.Error("health should not be synthesised when nothing contributes")
		}
	})

	t.Run("empty base health kept", func(t *testing.T) {
		merged := Merge(Tree{"health": map[string]any{}}, nil, nil)
		if !Exists(merged, "health") {
			t.Error("existing empty health should be kept")
		}
	})

	t.Run("non-mapping health replaced", func(t *testing.T) {
		merged := Merge(Tree{"health": "broken"}, map[string]any{"rssi": -60}, nil)
		if got, _ := Resolve(merged, "health.rssi"); got != -60 {
			t.Errorf("health.rssi = %v, want -60", got)
		}
	})
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	base := Tree{
		"kind":   "doorbell",
		"health": map[string]any{"rssi": -50},
		"alerts": map[string]any{"connection": "online"},
	}
	supplemental := map[string]any{"rssi": -40, "packet_loss": 1}
	alerts := map[string]any{"battery": "low"}

	merged := Merge(base, supplemental, alerts)
	merged["kind"] = "changed"
	Sub(merged, "health")["rssi"] = 0

	if base["kind"] != "doorbell" {
		t.Errorf("base.kind mutated: %v", base["kind"])
	}
	if got := base["health"].(map[string]any); len(got) != 1 || got["rssi"] != -50 {
		t.Errorf("base.health mutated: %v", got)
	}
	if len(supplemental) != 2 || len(alerts) != 1 {
		t.Error("fragments mutated")
	}
}

func TestMerge_Deterministic(t *testing.T) {
	base := Tree{"health": map[string]any{"rssi": -50}, "alerts": map[string]any{"a": 1}}
	supplemental := map[string]any{"packet_loss": 2}

	first := Merge(base, supplemental, nil)
	second := Merge(base, supplemental, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Merge not deterministic: %v vs %v", first, second)
	}
}

func TestMerge_NilBase(t *testing.T) {
	merged := Merge(nil, map[string]any{"rssi": -70}, nil)
	if got, _ := Resolve(merged, "health.rssi"); got != -70 {
		t.Errorf("health.rssi = %v, want -70", got)
	}
}

func TestClone(t *testing.T) {
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}

	src := Tree{"a": map[string]any{"b": 1}, "list": []any{"x"}}
	dst := Clone(src)
	if !reflect.DeepEqual(map[string]any(src), map[string]any(dst)) {
		t.Errorf("Clone() = %v, want %v", dst, src)
	}
	dst["a"] = "replaced"
	if _, ok := src["a"].(map[string]any); !ok {
		t.Error("Clone shares top-level map with source")
	}
}
