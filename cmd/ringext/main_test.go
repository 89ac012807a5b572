package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/ringext-core/internal/catalog"
	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/infrastructure/config"
	"github.com/nerrad567/ringext-core/internal/infrastructure/database"
	"github.com/nerrad567/ringext-core/internal/infrastructure/logging"
)

const snapshotJSON = `{
  "doorbells": [
    {
      "id": 111,
      "attrs": {"kind": "doorbell_v4", "description": "Front", "address": "1 High St"},
      "health_attrs": {"rssi": -52, "firmware_version": "1.4.26"}
    }
  ]
}`

// writeTestConfig writes a config using a snapshot file and a database in
// a temp dir, with MQTT, InfluxDB and the API disabled.
func writeTestConfig(t *testing.T) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()

	dbPath = filepath.Join(dir, "ringext.db")
	snapshotPath := filepath.Join(dir, "devices.json")
	if err := os.WriteFile(snapshotPath, []byte(snapshotJSON), 0600); err != nil {
		t.Fatalf("writing snapshot: %v", err)
	}

	content := `
instance:
  id: test-01
  name: Test
  namespace: ringext
database:
  path: "` + dbPath + `"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: false
api:
  enabled: false
influxdb:
  enabled: false
refresh:
  interval: 60
  categories: [health, firmware]
  snapshot_file: "` + snapshotPath + `"
`
	configPath = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return configPath, dbPath
}

func execute(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestEnabledCategories(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []catalog.Category
		wantErr bool
	}{
		{"empty enables all", nil, catalog.Categories(), false},
		{"catalog order", []string{"firmware", "health"}, []catalog.Category{catalog.CategoryHealth, catalog.CategoryFirmware}, false},
		{"unknown", []string{"health", "bogus"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enabledCategories(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("enabledCategories() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("enabledCategories() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"), logging.Discard())
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.API.Port != 8095 {
		t.Errorf("API.Port = %d, want default 8095", cfg.API.Port)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("instance:\n  id: has_underscore\n"), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := loadConfig(path, logging.Discard()); err == nil {
		t.Error("loadConfig() should reject an instance id with '_'")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := newRootCommand()
	want := map[string]bool{"run": false, "diagnose": false, "firmware": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestFirmwareChangelogCommand(t *testing.T) {
	configPath, dbPath := writeTestConfig(t)

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Path: dbPath, WALMode: true, BusyTimeout: 5})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	ts := time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)
	data := firmware.Data{
		History: map[string][]firmware.Entry{
			"111": {
				{Version: "1.4.26", Timestamp: ts, DeviceName: "Front"},
				{Version: "1.4.27", PreviousVersion: "1.4.26", Timestamp: ts.Add(time.Hour), DeviceName: "Front"},
			},
		},
		CurrentVersions: map[string]string{"111": "1.4.27"},
	}
	if err := firmware.NewSQLiteStore(db.DB).Save(ctx, data); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	db.Close() //nolint:errcheck // Test cleanup

	out, err := execute(t, "--config", configPath, "firmware", "changelog")
	if err != nil {
		t.Fatalf("firmware changelog error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	want := []string{
		"2026-03-01 10:15 | Front: 1.4.26 -> 1.4.27",
		"2026-03-01 09:15 | Front: 1.4.26 (initial)",
	}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("changelog = %q, want %q", lines, want)
	}

	out, err = execute(t, "--config", configPath, "firmware", "changelog", "--limit", "1")
	if err != nil {
		t.Fatalf("firmware changelog --limit error = %v", err)
	}
	if got := strings.TrimSpace(out); got != want[0] {
		t.Errorf("limited changelog = %q, want %q", got, want[0])
	}

	out, err = execute(t, "--config", configPath, "firmware", "summary")
	if err != nil {
		t.Fatalf("firmware summary error = %v", err)
	}
	var summary firmware.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("unmarshal summary %q: %v", out, err)
	}
	if summary.TotalDevices != 1 || summary.TotalChanges != 2 {
		t.Errorf("summary = %+v, want 1 device with 2 changes", summary)
	}
}

func TestFirmwareChangelogCommand_Empty(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, err := execute(t, "--config", configPath, "firmware", "changelog")
	if err != nil {
		t.Fatalf("firmware changelog error = %v", err)
	}
	if got := strings.TrimSpace(out); got != firmware.EmptyChangelog {
		t.Errorf("changelog = %q, want %q", got, firmware.EmptyChangelog)
	}
}

func TestDiagnoseCommand(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, err := execute(t, "--config", configPath, "diagnose", "--settle", "0s")
	if err != nil {
		t.Fatalf("diagnose error = %v", err)
	}

	var diag map[string]any
	if err := json.Unmarshal([]byte(out), &diag); err != nil {
		t.Fatalf("unmarshal diagnostics %q: %v", out, err)
	}
	if diag["total_devices"] != float64(1) {
		t.Errorf("total_devices = %v, want 1", diag["total_devices"])
	}
	devices, _ := diag["devices"].(map[string]any)
	front, _ := devices["111"].(map[string]any)
	frontAttrs, _ := front["attrs"].(map[string]any)
	if frontAttrs["address"] != "**REDACTED**" {
		t.Errorf("address = %v, want redacted", frontAttrs["address"])
	}
}
