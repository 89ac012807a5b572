package catalog

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/ringext-core/internal/attrs"
)

type recordingLogger struct {
	messages []string
}

func (l *recordingLogger) Debug(msg string, _ ...any) {
	l.messages = append(l.messages, msg)
}

func TestEvaluate_RSSIScenario(t *testing.T) {
	ev := NewEvaluator(MustNew(Descriptor{Key: "rssi", Category: CategoryHealth, Path: "health.rssi"}))

	tree := decode(t, `{"health": {"rssi": -55}}`)
	if got := ev.Evaluate(tree); !reflect.DeepEqual(got, []string{"rssi"}) {
		t.Errorf("Evaluate() = %v, want [rssi]", got)
	}

	delete(tree["health"].(map[string]any), "rssi")
	if got := ev.Evaluate(tree); len(got) != 0 {
		t.Errorf("Evaluate() after removal = %v, want empty", got)
	}
}

func TestEvaluate_CatalogOrder(t *testing.T) {
	ev := NewEvaluator(Default())
	tree := decode(t, `{
		"kind": "doorbell_v4",
		"stolen": false,
		"health": {"rssi": -60, "firmware_version": "1.4.26", "uptime_sec": 90061},
		"settings": {"chime_settings": {"enable": true}}
	}`)

	want := []string{"rssi", "uptime_sec", "uptime_formatted", "firmware_version", "chime_enable", "stolen", "device_kind"}
	if got := ev.Evaluate(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("Evaluate() = %v, want %v", got, want)
	}
}

func TestEvaluate_PresentNilIsAvailable(t *testing.T) {
	ev := NewEvaluator(MustNew(Descriptor{Key: "rssi", Category: CategoryHealth, Path: "health.rssi"}))
	tree := decode(t, `{"health": {"rssi": null}}`)

	if got := ev.Evaluate(tree); len(got) != 1 {
		t.Fatalf("Evaluate() = %v, want [rssi]", got)
	}
	d, _ := ev.Catalog().Lookup("rssi")
	if v, ok := ev.Value(d, tree); ok {
		t.Errorf("Value() = %v, true; want no value for present nil", v)
	}
}

func TestAvailable_FailureIsUnavailable(t *testing.T) {
	logger := &recordingLogger{}
	ev := NewEvaluator(MustNew(
		Descriptor{
			Key: "broken", Category: CategoryHealth, Path: "health.rssi",
			Available: func(attrs.Tree) (bool, error) { return false, errors.New("malformed") },
		},
		Descriptor{
			Key: "panics", Category: CategoryHealth, Path: "health.rssi",
			Available: func(t attrs.Tree) (bool, error) {
				var m map[string]int
				m["boom"]++
				return true, nil
			},
		},
		Descriptor{Key: "rssi", Category: CategoryHealth, Path: "health.rssi"},
	))
	ev.SetLogger(logger)

	got := ev.Evaluate(decode(t, `{"health": {"rssi": -40}}`))
	if !reflect.DeepEqual(got, []string{"rssi"}) {
		t.Errorf("Evaluate() = %v, want [rssi]", got)
	}
	if len(logger.messages) != 2 {
		t.Errorf("logged %d messages, want 2: %v", len(logger.messages), logger.messages)
	}
}

func TestAvailable_CustomBroaderThanValue(t *testing.T) {
	d := Descriptor{
		Key: "battery_any", Category: CategoryPower, Path: "health.battery_percentage",
		Available: func(t attrs.Tree) (bool, error) { return attrs.Exists(t, "health"), nil },
	}
	ev := NewEvaluator(MustNew(d))
	tree := decode(t, `{"health": {}}`)

	if !ev.Available(d, tree) {
		t.Fatal("Available() = false, want true")
	}
	if _, ok := ev.Value(d, tree); ok {
		t.Error("Value() ok = true, want an available observation without a value")
	}
}

func TestValue_FunctionFailure(t *testing.T) {
	logger := &recordingLogger{}
	ev := NewEvaluator(Default())
	ev.SetLogger(logger)

	d, _ := Default().Lookup("uptime_formatted")
	if v, ok := ev.Value(d, decode(t, `{"health": {"uptime_sec": "soon"}}`)); ok {
		t.Errorf("Value() = %v, want no value", v)
	}
	if len(logger.messages) != 1 || !strings.Contains(logger.messages[0], "failed") {
		t.Errorf("logged %v, want one failure", logger.messages)
	}

	ev.SetLogger(nil)
	panicky := Descriptor{
		Key: "p", Category: CategoryHealth, Path: "x",
		Value: func(attrs.Tree) (any, error) { panic("bad") },
	}
	if _, ok := ev.Value(panicky, nil); ok {
		t.Error("Value() ok = true for a panicking function")
	}
}

func TestValue_BuiltinFunctions(t *testing.T) {
	tree := decode(t, `{
		"health": {
			"uptime_sec": 90061,
			"last_update_time": 1700000000,
			"egress_tx_rate": "2.5",
			"firmware_avg_bitrate": 512.7,
			"ac_power": 1,
			"rssi": -55
		}
	}`)
	ev := NewEvaluator(Default())

	tests := []struct {
		key  string
		want any
	}{
		{"uptime_formatted", "1d 1h 1m"},
		{"last_update_time", time.Unix(1700000000, 0).UTC()},
		{"egress_tx_rate", 2.5},
		{"firmware_avg_bitrate", int64(512)},
		{"ac_power", true},
		{"rssi", float64(-55)},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, _ := Default().Lookup(tt.key)
			got, ok := ev.Value(d, tree)
			if !ok {
				t.Fatalf("Value() returned no value")
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Value() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestValue_TruthyZeroHasNoValue(t *testing.T) {
	ev := NewEvaluator(Default())
	tree := decode(t, `{"health": {"egress_tx_rate": 0, "firmware_avg_bitrate": 0, "ac_power": 0}}`)

	for _, key := range []string{"egress_tx_rate", "firmware_avg_bitrate"} {
		d, _ := Default().Lookup(key)
		if v, ok := ev.Value(d, tree); ok {
			t.Errorf("Value(%s) = %v, want no value", key, v)
		}
	}

	d, _ := Default().Lookup("ac_power")
	if v, ok := ev.Value(d, tree); !ok || v != false {
		t.Errorf("Value(ac_power) = %v, %v; want false, true", v, ok)
	}
}

func TestObservations(t *testing.T) {
	ev := NewEvaluator(Default())
	obs := ev.Observations(decode(t, `{"health": {"rssi": -55, "connected": null}}`))
	if len(obs) != 2 {
		t.Fatalf("Observations() returned %d, want 2", len(obs))
	}
	if obs[0].Descriptor.Key != "rssi" || !obs[0].HasValue {
		t.Errorf("obs[0] = %+v, want rssi with value", obs[0])
	}
	if obs[1].Descriptor.Key != "connected" || obs[1].HasValue {
		t.Errorf("obs[1] = %+v, want connected without value", obs[1])
	}
}

func TestCoverage(t *testing.T) {
	ev := NewEvaluator(MustNew(
		Descriptor{Key: "rssi", Category: CategoryHealth, Path: "health.rssi"},
		Descriptor{Key: "battery_percentage", Category: CategoryPower, Path: "health.battery_percentage"},
		Descriptor{Key: "device_kind", Category: CategoryDeviceStatus, Path: "kind"},
	))
	cov := ev.Coverage(decode(t, `{
		"kind": "stickup_cam",
		"health": {"rssi": -55, "new_field": 1},
		"settings": {}
	}`))

	if cov.TotalAttributes != 3 {
		t.Errorf("TotalAttributes = %d, want 3", cov.TotalAttributes)
	}
	if cov.TotalDescriptors != 3 || cov.Available != 2 || cov.Unavailable != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", cov.TotalDescriptors, cov.Available, cov.Unavailable)
	}
	if !reflect.DeepEqual(cov.UncoveredPaths, []string{"health.new_field"}) {
		t.Errorf("UncoveredPaths = %v", cov.UncoveredPaths)
	}
	if !reflect.DeepEqual(cov.StalePaths, []string{"health.battery_percentage"}) {
		t.Errorf("StalePaths = %v", cov.StalePaths)
	}
	if !reflect.DeepEqual(cov.AvailableKeys, []string{"device_kind", "rssi"}) {
		t.Errorf("AvailableKeys = %v", cov.AvailableKeys)
	}
}
