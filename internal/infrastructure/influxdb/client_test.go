package influxdb_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/ringext-core/internal/infrastructure/config"
	"github.com/nerrad567/ringext-core/internal/infrastructure/influxdb"
)

func testConfig() config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:59999",
		Token:         "ringext-dev-token",
		Org:           "ringext",
		Bucket:        "observations",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := influxdb.Connect(context.Background(), cfg)
	if !errors.Is(err, influxdb.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := influxdb.Connect(ctx, testConfig())
	if !errors.Is(err, influxdb.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestClient_ZeroValue(t *testing.T) {
	client := &influxdb.Client{}

	if client.IsConnected() {
		t.Error("IsConnected() = true for zero client")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, influxdb.ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	// Dropped silently while disconnected.
	client.WritePoint(influxdb.ObservationPoint("d1", "rssi", "health", -50, time.Now()))
	client.Flush()

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestObservationPoint(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	line := strings.TrimSpace(write.PointToLineProtocol(
		influxdb.ObservationPoint("12345", "rssi", "health", -55, ts),
		time.Second,
	))

	want := "ring_observation,category=health,device_id=12345,key=rssi value=-55 1700000000"
	if line != want {
		t.Errorf("line protocol = %q, want %q", line, want)
	}
}

func TestFirmwarePoint(t *testing.T) {
	ts := time.Unix(1700000000, 0)

	initial := write.PointToLineProtocol(
		influxdb.FirmwarePoint("12345", "initial", "1.0.0", "", ts), time.Second)
	if strings.Contains(initial, "previous_version") {
		t.Errorf("initial transition should omit previous_version: %q", initial)
	}
	if !strings.HasPrefix(initial, "ring_firmware,device_id=12345,kind=initial ") {
		t.Errorf("unexpected line %q", initial)
	}

	upgrade := write.PointToLineProtocol(
		influxdb.FirmwarePoint("12345", "upgrade", "1.1.0", "1.0.0", ts), time.Second)
	if !strings.Contains(upgrade, `previous_version="1.0.0"`) || !strings.Contains(upgrade, `version="1.1.0"`) {
		t.Errorf("unexpected line %q", upgrade)
	}
}
