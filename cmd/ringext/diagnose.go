package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nerrad567/ringext-core/internal/coordinator"
	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/infrastructure/config"
	"github.com/nerrad567/ringext-core/internal/infrastructure/database"
)

type diagnoseOptions struct {
	snapshotFile string
	settle       time.Duration
}

func newDiagnoseCommand(root *rootOptions) *cobra.Command {
	opts := &diagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run one refresh cycle and print the redacted diagnostics",
		Long: `Diagnose runs a single refresh cycle against a scratch in-memory
registry and prints the privacy-redacted diagnostics as JSON. The
configured database is only read, for the stored firmware history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiagnose(cmd.Context(), root, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.snapshotFile, "snapshot", "", "read devices from this snapshot file instead of MQTT")
	cmd.Flags().DurationVar(&opts.settle, "settle", defaultSettleDelay, "wait for retained MQTT fragments before the cycle")

	return cmd
}

func runDiagnose(ctx context.Context, root *rootOptions, opts *diagnoseOptions, out, errOut io.Writer) error {
	log := cliLogger(errOut)
	cfg, err := loadConfig(root.configPath, log)
	if err != nil {
		return err
	}

	categories, err := enabledCategories(cfg.Refresh.Categories)
	if err != nil {
		return fmt.Errorf("refresh.categories: %w", err)
	}

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)
	tracker := loadTracker(ctx, firmware.NewSQLiteStore(db.DB), log)

	scratch, err := openDatabase(ctx, config.DatabaseConfig{Path: database.MemoryPath}, log)
	if err != nil {
		return err
	}
	defer closeDatabase(scratch, log)
	reg, err := loadRegistry(ctx, scratch, cfg.Instance.Namespace, log)
	if err != nil {
		return err
	}

	snapshotFile := cfg.Refresh.SnapshotFile
	if opts.snapshotFile != "" {
		snapshotFile = opts.snapshotFile
	}
	diagCfg := *cfg
	if snapshotFile != "" {
		// A snapshot file needs no broker for a one-shot cycle.
		diagCfg.MQTT.Enabled = false
	}
	src, err := openSource(ctx, &diagCfg, snapshotFile, log)
	if err != nil {
		return err
	}
	defer src.close(log)

	inst, err := coordinator.New(coordinator.Deps{
		Source:   src.source,
		Registry: reg,
		Tracker:  tracker,
		Logger:   log.Component("coordinator"),
	}, coordinator.Options{
		EntryID:           cfg.Instance.ID,
		Name:              cfg.Instance.Name,
		Namespace:         cfg.Instance.Namespace,
		EnabledCategories: categories,
		Interval:          cfg.RefreshInterval(),
	})
	if err != nil {
		return fmt.Errorf("creating coordinator: %w", err)
	}

	src.settle(ctx, opts.settle, log)
	if _, err := inst.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh cycle: %w", err)
	}

	return writeIndentedJSON(out, inst.Diagnostics())
}
