package coordinator

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/nerrad567/ringext-core/internal/attrs"
	"github.com/nerrad567/ringext-core/internal/catalog"
	"github.com/nerrad567/ringext-core/internal/device"
	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/infrastructure/config"
	"github.com/nerrad567/ringext-core/internal/infrastructure/database"
	"github.com/nerrad567/ringext-core/internal/registry"
	_ "github.com/nerrad567/ringext-core/migrations"
)

func TestDiagnostics(t *testing.T) {
	h := newHarness(t)
	h.source.set(
		doorbell("111", map[string]any{"rssi": -52, "battery_percentage": 80}),
		doorbell("222", map[string]any{"rssi": -60}),
		device.NewRecord("333", "", device.Fragments{Attributes: attrs.Tree{
			"kind":     "chime_pro",
			"location": map[string]any{"latitude": 51.5, "address": "1 High St"},
		}}),
	)
	mustRefresh(t, h)

	d := h.inst.Diagnostics()

	if d.ConfigEntry.EntryID != testEntry {
		t.Errorf("EntryID = %q, want %q", d.ConfigEntry.EntryID, testEntry)
	}
	if d.TotalDevices != 3 {
		t.Errorf("TotalDevices = %d, want 3", d.TotalDevices)
	}
	if d.TotalEntities != 4 {
		t.Errorf("TotalEntities = %d, want 4", d.TotalEntities)
	}

	wantModels := map[string][]string{
		"doorbell_v4": {"111", "222"},
		"chime_pro":   {"333"},
	}
	if !reflect.DeepEqual(d.ModelComparison, wantModels) {
		t.Errorf("ModelComparison = %v, want %v", d.ModelComparison, wantModels)
	}

	wantInconsistencies := []Inconsistency{
		{Model: "doorbell_v4", Device: "222", MissingAttributes: []string{"health.battery_percentage"}},
	}
	if !reflect.DeepEqual(d.Inconsistencies, wantInconsistencies) {
		t.Errorf("Inconsistencies = %+v, want %+v", d.Inconsistencies, wantInconsistencies)
	}

	front := d.Devices["111"]
	if front.EntityCount != 2 {
		t.Errorf("111 EntityCount = %d, want 2", front.EntityCount)
	}
	if front.Name != "Front 111" || front.Family != device.FamilyDoorbells {
		t.Errorf("111 = %+v", front)
	}
	if front.Attrs["description"] != attrs.Redacted {
		t.Errorf("description = %v, want redacted", front.Attrs["description"])
	}
	if front.SensorCoverage.Available != 2 || front.SensorCoverage.TotalDescriptors != 3 {
		t.Errorf("coverage = %+v, want 2 of 3 available", front.SensorCoverage)
	}

	chime := d.Devices["333"]
	loc, _ := attrs.AsTree(chime.Attrs["location"])
	if loc["latitude"] != attrs.Redacted || loc["address"] != attrs.Redacted {
		t.Errorf("location = %v, want redacted", loc)
	}
	if chime.Family != device.FamilyChimes {
		t.Errorf("333 family = %v, want chimes", chime.Family)
	}

	disabled := map[string]bool{}
	for _, e := range d.Entities {
		disabled[e.Identifier] = e.Disabled
	}
	if !disabled["111_battery_percentage"] || disabled["111_rssi"] {
		t.Errorf("entities disabled = %v", disabled)
	}

	if _, err := json.Marshal(d); err != nil {
		t.Errorf("json.Marshal(Diagnostics) error = %v", err)
	}
}

func TestDiagnostics_NoCycle(t *testing.T) {
	h := newHarness(t)

	d := h.inst.Diagnostics()
	if d.TotalDevices != 0 || len(d.Inconsistencies) != 0 || d.Health.Status != StatusUnknown {
		t.Errorf("Diagnostics() before first cycle = %+v", d)
	}
	if d.ConfigEntry.Data["namespace"] != "ringext" {
		t.Errorf("config data = %v", d.ConfigEntry.Data)
	}
}

// TestRefresh_SQLiteRegistry runs cycles against the real registry to check
// the reconciliation fixed point survives a persistence round trip.
func TestRefresh_SQLiteRegistry(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	reg := registry.NewRegistry(registry.NewSQLiteRepository(db.DB), "ringext")
	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	src := &fakeSource{}
	src.set(
		doorbell("111", map[string]any{"rssi": -52, "firmware_version": "1.0.0"}),
		doorbell("222", map[string]any{"battery_percentage": 40}),
	)
	clock := &testClock{now: testEpoch}
	inst, err := New(Deps{
		Source:    src,
		Registry:  reg,
		Tracker:   firmware.NewTracker(firmware.WithClock(clock.Now)),
		Evaluator: catalog.NewEvaluator(testCatalog()),
		Clock:     clock.Now,
	}, Options{EntryID: testEntry, Namespace: "ringext", Interval: time.Hour})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := inst.Refresh(ctx); err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}
	snap, err := inst.Refresh(ctx)
	if err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	if snap.Added != 0 || snap.Removed != 0 {
		t.Errorf("second cycle added %d, removed %d; want fixed point", snap.Added, snap.Removed)
	}

	src.set(doorbell("111", map[string]any{"rssi": -52, "firmware_version": "1.0.0"}))
	if _, err := inst.Refresh(ctx); err != nil {
		t.Fatalf("third Refresh() error = %v", err)
	}

	ids, err := reg.ListIdentifiers(ctx, "ringext", testEntry)
	if err != nil {
		t.Fatalf("ListIdentifiers() error = %v", err)
	}
	want := []string{"111_firmware_history", "111_firmware_version", "111_rssi", "entry1_coordinator_health"}
	if got := ids.Sorted(); !reflect.DeepEqual(got, want) {
		t.Errorf("identifiers = %v, want %v", got, want)
	}
}
