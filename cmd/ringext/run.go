package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nerrad567/ringext-core/internal/api"
	"github.com/nerrad567/ringext-core/internal/catalog"
	"github.com/nerrad567/ringext-core/internal/coordinator"
	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/infrastructure/config"
	"github.com/nerrad567/ringext-core/internal/infrastructure/database"
	"github.com/nerrad567/ringext-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/ringext-core/internal/infrastructure/logging"
	"github.com/nerrad567/ringext-core/internal/metrics"
	"github.com/nerrad567/ringext-core/internal/publish"
)

// defaultSettleDelay is how long run waits for retained MQTT fragments.
const defaultSettleDelay = 5 * time.Second

type runOptions struct {
	snapshotFile string
	settle       time.Duration
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the refresh loop and HTTP API until interrupted",
		Long: `Run keeps the materialized observations of the configured instance
reconciled with the device snapshots, publishes their states and tracks
firmware history until SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runService(cmd.Context(), root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.snapshotFile, "snapshot", "", "read devices from this snapshot file instead of MQTT")
	cmd.Flags().DurationVar(&opts.settle, "settle", defaultSettleDelay, "wait for retained MQTT fragments before the first cycle")

	return cmd
}

func runService(ctx context.Context, root *rootOptions, opts *runOptions) error {
	log := logging.Default()
	log.Info("starting ringext", "version", version, "commit", commit, "build_date", date)

	cfg, err := loadConfig(root.configPath, log)
	if err != nil {
		return err
	}
	log = logging.New(cfg.Logging, version)

	categories, err := enabledCategories(cfg.Refresh.Categories)
	if err != nil {
		return fmt.Errorf("refresh.categories: %w", err)
	}

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	reg, err := loadRegistry(ctx, db, cfg.Instance.Namespace, log)
	if err != nil {
		return err
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(promReg)

	store := firmware.NewSQLiteStore(db.DB)
	tracker := loadTracker(ctx, store, log)
	saver := newSaver(store, tracker, cfg, recorder, log)
	saver.Start(ctx)
	defer func() {
		log.Info("flushing firmware history")
		saver.Stop()
	}()

	snapshotFile := cfg.Refresh.SnapshotFile
	if opts.snapshotFile != "" {
		snapshotFile = opts.snapshotFile
	}
	src, err := openSource(ctx, cfg, snapshotFile, log)
	if err != nil {
		return err
	}
	defer src.close(log)

	evaluator := catalog.NewEvaluator(catalog.Default())
	evaluator.SetLogger(log.Component("catalog"))

	deps := coordinator.Deps{
		Source:    src.source,
		Registry:  reg,
		Tracker:   tracker,
		Evaluator: evaluator,
		Saver:     saver,
		Recorder:  recorder,
		Logger:    log.Component("coordinator"),
	}
	if src.mqtt != nil {
		deps.States = publish.NewStatePublisher(src.mqtt, src.mqtt.Topics())
		if cfg.Firmware.Notify {
			deps.Notifier = publish.NewFirmwareNotifier(src.mqtt, src.mqtt.Topics())
		}
	}

	influxClient, err := connectInflux(ctx, cfg.InfluxDB, log)
	if err != nil {
		return err
	}
	if influxClient != nil {
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		deps.Metrics = publish.NewMetricWriter(influxClient)
	}

	inst, err := coordinator.New(deps, coordinator.Options{
		EntryID:           cfg.Instance.ID,
		Name:              cfg.Instance.Name,
		Namespace:         cfg.Instance.Namespace,
		EnabledCategories: categories,
		Interval:          cfg.RefreshInterval(),
	})
	if err != nil {
		return fmt.Errorf("creating coordinator: %w", err)
	}

	if cfg.API.Enabled {
		server, err := api.New(api.Deps{
			Config:      cfg.API,
			Logger:      log.Component("api"),
			Coordinator: inst,
			Gatherer:    promReg,
			Version:     version,
		})
		if err != nil {
			return fmt.Errorf("creating API server: %w", err)
		}
		if err := server.Start(ctx); err != nil {
			return fmt.Errorf("starting API server: %w", err)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API disabled")
	}

	if err := healthCheck(ctx, db, src, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	src.settle(ctx, opts.settle, log)
	if ctx.Err() != nil {
		return nil
	}
	if removed, err := inst.Startup(ctx); err != nil {
		log.Warn("startup orphan cleanup failed", "error", err)
	} else if len(removed) > 0 {
		log.Info("startup orphan cleanup", "removed", len(removed))
	}

	log.Info("initialisation complete", "entry_id", cfg.Instance.ID)
	inst.Run(ctx)

	log.Info("ringext stopped")
	return nil
}

// newSaver wires the asynchronous firmware history saver to the logger and
// metrics.
func newSaver(store firmware.Store, tracker *firmware.Tracker, cfg *config.Config, rec *metrics.Recorder, log *logging.Logger) *firmware.Saver {
	saver := firmware.NewSaver(store, tracker.Data, cfg.FirmwareSaveTimeout())
	saver.SetLogger(log.Component("firmware_saver"))
	saver.SetOnError(func(error) { rec.ObserveSaveFailure() })
	saver.SetOnSaved(rec.ObserveSave)
	return saver
}

// connectInflux connects when InfluxDB is enabled. A nil client means
// metric writes are disabled.
func connectInflux(ctx context.Context, cfg config.InfluxDBConfig, log *logging.Logger) (*influxdb.Client, error) {
	if !cfg.Enabled {
		log.Info("InfluxDB disabled")
		return nil, nil
	}
	client, err := influxdb.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	client.SetOnError(func(err error) {
		log.Error("InfluxDB write error", "error", err)
	})
	log.Info("InfluxDB connected", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)
	return client, nil
}

// healthCheck verifies every connection is usable before the first cycle.
func healthCheck(ctx context.Context, db *database.DB, src *sourceHandle, influxClient *influxdb.Client) error {
	var errs []error
	if err := db.HealthCheck(ctx); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	if src.mqtt != nil {
		if err := src.mqtt.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("mqtt: %w", err))
		}
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("influxdb: %w", err))
		}
	}
	return errors.Join(errs...)
}
