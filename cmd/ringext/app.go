package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/ringext-core/internal/device"
	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/infrastructure/config"
	"github.com/nerrad567/ringext-core/internal/infrastructure/database"
	"github.com/nerrad567/ringext-core/internal/infrastructure/logging"
	"github.com/nerrad567/ringext-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/ringext-core/internal/registry"
)

// openDatabase opens and migrates the SQLite database.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig, log *logging.Logger) (*database.DB, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close() //nolint:errcheck // Already failing
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database ready", "path", cfg.Path)
	return db, nil
}

func closeDatabase(db *database.DB, log *logging.Logger) {
	log.Info("closing database")
	if err := db.Close(); err != nil {
		log.Error("error closing database", "error", err)
	}
}

// loadRegistry builds the entity registry over db and fills its cache.
func loadRegistry(ctx context.Context, db *database.DB, namespace string, log *logging.Logger) (*registry.Registry, error) {
	reg := registry.NewRegistry(registry.NewSQLiteRepository(db.DB), namespace)
	reg.SetLogger(log.Component("registry"))
	if err := reg.RefreshCache(ctx); err != nil {
		return nil, fmt.Errorf("loading entity registry: %w", err)
	}
	return reg, nil
}

// loadTracker restores the firmware history from store. A store that cannot
// be read leaves the tracker empty; history is rebuilt from the next cycle.
func loadTracker(ctx context.Context, store firmware.Store, log *logging.Logger) *firmware.Tracker {
	tracker := firmware.NewTracker(firmware.WithLogger(log.Component("firmware")))
	data, err := store.Load(ctx)
	if err != nil {
		log.Error("loading firmware history, starting empty", "error", err)
		return tracker
	}
	tracker.Restore(data)
	log.Info("firmware history loaded", "devices", len(data.CurrentVersions))
	return tracker
}

// sourceHandle is the device source plus the MQTT client behind it, if any.
type sourceHandle struct {
	source device.Source
	mqtt   *mqtt.Client
	cache  *device.Cache
}

func (h *sourceHandle) close(log *logging.Logger) {
	if h.mqtt == nil {
		return
	}
	log.Info("disconnecting from MQTT")
	if err := h.mqtt.Close(); err != nil {
		log.Error("error closing MQTT", "error", err)
	}
}

// openSource picks the device source. A configured snapshot file wins over
// MQTT. When MQTT is enabled the client is connected either way, since
// states and firmware events are published through it.
func openSource(ctx context.Context, cfg *config.Config, snapshotFile string, log *logging.Logger) (*sourceHandle, error) {
	h := &sourceHandle{}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(ctx, cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("connecting to MQTT: %w", err)
		}
		client.SetLogger(log.Component("mqtt"))
		client.SetOnConnect(func() { log.Info("MQTT reconnected") })
		client.SetOnDisconnect(func(err error) { log.Warn("MQTT disconnected", "error", err) })
		h.mqtt = client
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	}

	if snapshotFile != "" {
		fileSource := device.NewFileSource(snapshotFile)
		fileSource.SetLogger(log.Component("snapshot"))
		h.source = fileSource
		log.Info("device source: snapshot file", "path", snapshotFile)
		return h, nil
	}

	if h.mqtt == nil {
		return nil, fmt.Errorf("no device source: mqtt is disabled and no snapshot file is set")
	}
	cache := device.NewCache(h.mqtt.Topics())
	cache.SetLogger(log.Component("device_cache"))
	//nolint:gosec // QoS is validated to 0..2
	if err := cache.Subscribe(h.mqtt, byte(cfg.MQTT.QoS)); err != nil {
		h.close(log)
		return nil, err
	}
	h.source = cache
	h.cache = cache
	log.Info("device source: MQTT fragments", "topic", h.mqtt.Topics().AllDeviceFragments())
	return h, nil
}

// settle waits for retained MQTT fragments to arrive before the first
// cycle. Without it an empty cache would look like an empty account and
// the orphan pass would remove every observation.
func (h *sourceHandle) settle(ctx context.Context, d time.Duration, log *logging.Logger) {
	if h.cache == nil || d <= 0 {
		return
	}
	log.Info("waiting for retained device fragments", "delay", d.String())
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
	log.Info("device fragments received", "devices", h.cache.Len())
}
