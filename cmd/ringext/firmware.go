package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/infrastructure/config"
	"github.com/nerrad567/ringext-core/internal/infrastructure/logging"
)

func newFirmwareCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "firmware",
		Short: "Inspect the stored firmware history",
	}

	var limit int
	changelog := &cobra.Command{
		Use:   "changelog",
		Short: "Print the newest firmware changes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTracker(cmd.Context(), root, cmd.ErrOrStderr(), func(t *firmware.Tracker) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), t.Changelog(limit))
				return err
			})
		},
	}
	changelog.Flags().IntVarP(&limit, "limit", "n", firmware.DefaultChangelogLimit, "number of changes to print (0 for all)")

	summary := &cobra.Command{
		Use:   "summary",
		Short: "Print devices grouped by current firmware version as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTracker(cmd.Context(), root, cmd.ErrOrStderr(), func(t *firmware.Tracker) error {
				return writeIndentedJSON(cmd.OutOrStdout(), t.Summary())
			})
		},
	}

	cmd.AddCommand(changelog, summary)
	return cmd
}

// withTracker loads the stored history into a tracker for fn. Unlike run,
// an unreadable store is an error here.
func withTracker(ctx context.Context, root *rootOptions, errOut io.Writer, fn func(*firmware.Tracker) error) error {
	log := cliLogger(errOut)
	cfg, err := loadConfig(root.configPath, log)
	if err != nil {
		return err
	}

	db, err := openDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	data, err := firmware.NewSQLiteStore(db.DB).Load(ctx)
	if err != nil {
		return fmt.Errorf("loading firmware history: %w", err)
	}
	tracker := firmware.NewTracker()
	tracker.Restore(data)
	return fn(tracker)
}

// cliLogger logs warnings as text to w, keeping stdout for command output.
func cliLogger(w io.Writer) *logging.Logger {
	return logging.NewWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, version, w)
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
