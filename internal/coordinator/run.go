package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/ringext-core/internal/device"
	"github.com/nerrad567/ringext-core/internal/reconcile"
)

// Startup removes observations orphaned while the process was not running:
// every materialized identifier of this instance whose device is not in the
// current device list, except the coordinator health. It returns the
// identifiers removed.
//
// Startup takes the cycle lock, so it never overlaps a refresh.
//
// Returns:
//   - []string: The identifiers removed, in ascending order
//   - error: Fetch or registry failure; nothing is removed after a failed fetch
func (in *Instance) Startup(ctx context.Context) ([]string, error) {
	in.cycleMu.Lock()
	defer in.cycleMu.Unlock()

	c := newCycle(in.now())

	records, err := in.source.Devices(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching devices: %w", err)
	}
	current := reconcile.NewSet(device.IDs(in.usableRecords(c, records))...)

	actual, err := in.registry.ListIdentifiers(ctx, in.opts.Namespace, in.opts.EntryID)
	if err != nil {
		return nil, fmt.Errorf("listing identifiers: %w", err)
	}

	orphans := reconcile.Orphans(actual, current, in.healthID)
	if len(orphans) == 0 {
		in.logger.Debug("no orphaned observations", "cycle_id", c.id)
		return nil, nil
	}

	removed, err := in.remove(ctx, c, orphans)
	in.logger.Info("orphaned observations removed", "cycle_id", c.id, "count", len(removed))
	return removed, err
}

// Trigger requests a refresh cycle from Run. Triggers made while one is
// already pending coalesce; Trigger reports whether a new one was queued.
func (in *Instance) Trigger() bool {
	select {
	case in.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Run executes a refresh cycle immediately, then on every interval tick and
// every Trigger, until ctx is cancelled. Between cycles the coordinator
// health observation is republished every minute.
//
// Run is the single worker of the instance; all cycles it starts run on
// the calling goroutine.
func (in *Instance) Run(ctx context.Context) {
	ticker := time.NewTicker(in.opts.Interval)
	defer ticker.Stop()

	healthTicker := time.NewTicker(healthRepublishInterval)
	defer healthTicker.Stop()

	in.logger.Info("refresh loop started",
		"entry_id", in.opts.EntryID,
		"interval", in.opts.Interval.String(),
	)

	in.runOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			in.logger.Info("refresh loop stopped", "entry_id", in.opts.EntryID)
			return
		case <-ticker.C:
			in.runOnce(ctx)
		case <-in.trigger:
			in.runOnce(ctx)
		case <-healthTicker.C:
			in.publishHealth(ctx)
		}
	}
}

func (in *Instance) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	//nolint:errcheck // The outcome is logged and recorded by the cycle itself
	in.Refresh(ctx)
}
