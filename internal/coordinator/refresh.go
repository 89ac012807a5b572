package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/ringext-core/internal/catalog"
	"github.com/nerrad567/ringext-core/internal/device"
	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/publish"
	"github.com/nerrad567/ringext-core/internal/reconcile"
	"github.com/nerrad567/ringext-core/internal/registry"
)

// Display names of the observations that have no catalog descriptor.
const (
	FirmwareHistoryName   = "Firmware: History"
	CoordinatorHealthName = "Coordinator Health"
)

// cycle carries the working state of one refresh cycle.
type cycle struct {
	id      string
	started time.Time

	fetched     bool
	records     []device.Record
	views       []DeviceView
	expected    reconcile.Set
	added       int
	removed     int
	departed    []string
	transitions []firmware.Transition
	saveNeeded  bool
}

func newCycle(started time.Time) *cycle {
	return &cycle{id: uuid.NewString(), started: started, expected: reconcile.NewSet()}
}

// Refresh runs one refresh cycle and returns its snapshot. Cycles are
// serialized; a call made while another cycle runs waits for it.
//
// Parameters:
//   - ctx: Context for cancellation of the fetch and registry writes
//
// Returns:
//   - Snapshot: The cycle outcome, valid even when the cycle failed
//   - error: Why the cycle failed, nil on success
func (in *Instance) Refresh(ctx context.Context) (Snapshot, error) {
	in.cycleMu.Lock()
	defer in.cycleMu.Unlock()

	c := newCycle(in.now())
	in.logger.Debug("refresh cycle started", "cycle_id", c.id)

	err := in.runCycle(ctx, c)
	return in.finish(ctx, c, err), err
}

func (in *Instance) runCycle(ctx context.Context, c *cycle) error {
	records, err := in.source.Devices(ctx)
	if err != nil {
		return fmt.Errorf("fetching devices: %w", err)
	}
	c.fetched = true
	c.records = in.usableRecords(c, records)

	var errs []error
	if err := in.handleChurn(ctx, c); err != nil {
		errs = append(errs, err)
	}

	observed := in.evaluate(c)

	if err := in.reconcile(ctx, c, observed); err != nil {
		errs = append(errs, err)
	}

	in.publish(ctx, c)
	return errors.Join(errs...)
}

// usableRecords drops records that cannot be materialized and orders the
// rest by family and id. Duplicate ids keep the first record.
func (in *Instance) usableRecords(c *cycle, records []device.Record) []device.Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]device.Record, 0, len(records))
	for _, r := range records {
		if err := device.ValidateID(r.ID); err != nil {
			in.logger.Warn("skipping device", "cycle_id", c.id, "error", err)
			continue
		}
		if r.Empty() {
			in.logger.Debug("skipping device without attributes", "cycle_id", c.id, "device_id", r.ID)
			continue
		}
		if _, dup := seen[r.ID]; dup {
			in.logger.Warn("duplicate device id", "cycle_id", c.id, "device_id", r.ID)
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	device.SortRecords(out)
	return out
}

// handleChurn removes everything owned by devices that disappeared since
// the previous cycle: their observations and their firmware history.
func (in *Instance) handleChurn(ctx context.Context, c *cycle) error {
	departed := in.churn.OnRefresh(reconcile.NewSet(device.IDs(c.records)...))
	if departed.Len() == 0 {
		return nil
	}

	c.departed = departed.Sorted()
	in.recorder.ObserveDeparted(len(c.departed))
	in.logger.Info("devices departed", "cycle_id", c.id, "devices", c.departed)

	for _, id := range c.departed {
		if in.tracker.RemoveDevice(id) {
			c.saveNeeded = true
		}
	}

	actual, err := in.registry.ListIdentifiers(ctx, in.opts.Namespace, in.opts.EntryID)
	if err != nil {
		return fmt.Errorf("listing identifiers of departed devices: %w", err)
	}
	_, err = in.remove(ctx, c, reconcile.OwnedBy(actual, departed))
	return err
}

// evaluate applies the catalog to every record and records firmware
// versions. It returns what each device contributes to the expected set.
func (in *Instance) evaluate(c *cycle) []reconcile.DeviceObservations {
	observed := make([]reconcile.DeviceObservations, 0, len(c.records))
	c.views = make([]DeviceView, 0, len(c.records))

	for _, rec := range c.records {
		obs := in.evaluator.Observations(rec.Attributes)
		view := DeviceView{
			ID:           rec.ID,
			Name:         rec.Name(),
			Family:       rec.Family,
			Model:        rec.Model(),
			Observations: make([]publish.State, 0, len(obs)+1),
		}
		keys := make([]string, 0, len(obs))
		for _, o := range obs {
			keys = append(keys, o.Descriptor.Key)
			view.Observations = append(view.Observations, observationState(rec.ID, o, c.started))
		}

		version, hasFirmware := rec.FirmwareVersion()
		if hasFirmware {
			view.FirmwareVersion = version
			if entry, changed := in.tracker.CheckAndUpdate(rec.ID, rec.Name(), version); changed {
				c.transitions = append(c.transitions, firmware.NewTransition(rec.ID, entry))
				c.saveNeeded = true
			}
			view.Observations = append(view.Observations, in.firmwareHistoryState(rec.ID, c.started))
		}

		c.views = append(c.views, view)
		observed = append(observed, reconcile.DeviceObservations{
			DeviceID:    rec.ID,
			Keys:        keys,
			HasFirmware: hasFirmware,
		})
	}
	return observed
}

// reconcile diffs the expected set against the registry and applies the
// delta: removals first, then one add per group.
func (in *Instance) reconcile(ctx context.Context, c *cycle, observed []reconcile.DeviceObservations) error {
	c.expected = reconcile.Expected(in.opts.EntryID, observed)

	actual, err := in.registry.ListIdentifiers(ctx, in.opts.Namespace, in.opts.EntryID)
	if err != nil {
		return fmt.Errorf("listing identifiers: %w", err)
	}

	delta := reconcile.Reconcile(c.expected, actual)
	if delta.Empty() {
		return nil
	}
	in.logger.Debug("applying delta",
		"cycle_id", c.id,
		"to_add", delta.AddCount(),
		"to_remove", len(delta.ToRemove),
	)

	var errs []error
	if _, err := in.remove(ctx, c, delta.ToRemove); err != nil {
		errs = append(errs, err)
	}
	for _, group := range delta.Groups() {
		specs := in.specs(c, group, delta.ToAdd[group])
		if len(specs) == 0 {
			continue
		}
		if err := in.registry.Add(ctx, in.opts.EntryID, group, specs); err != nil {
			errs = append(errs, err)
			continue
		}
		c.added += len(specs)
	}
	return errors.Join(errs...)
}

// remove deletes identifiers from the registry and clears their published
// state. Identifiers the registry no longer knows count as removed.
func (in *Instance) remove(ctx context.Context, c *cycle, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var errs []error
	removed := make([]string, 0, len(ids))
	for _, id := range ids {
		err := in.registry.Remove(ctx, id)
		if err != nil && !errors.Is(err, registry.ErrEntityNotFound) {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, id)
	}
	c.removed += len(removed)

	if err := in.states.ClearStates(ctx, removed); err != nil {
		in.logger.Warn("clearing removed states failed", "cycle_id", c.id, "error", err)
	}
	in.logger.Debug("observations removed", "cycle_id", c.id, "count", len(removed))
	return removed, errors.Join(errs...)
}

// specs describes the entities to create for one add group.
func (in *Instance) specs(c *cycle, group string, ids []string) []registry.Spec {
	specs := make([]registry.Spec, 0, len(ids))
	for _, id := range ids {
		s, ok := in.spec(group, id)
		if !ok {
			in.logger.Warn("no descriptor for identifier", "cycle_id", c.id, "identifier", id)
			continue
		}
		specs = append(specs, s)
	}
	return specs
}

func (in *Instance) spec(group, id string) (registry.Spec, bool) {
	key := reconcile.KeyOf(id)
	switch {
	case group == reconcile.CoordinatorGroup:
		return registry.Spec{
			Identifier: id,
			Key:        reconcile.CoordinatorHealthKey,
			Name:       CoordinatorHealthName,
			Enabled:    true,
		}, true
	case key == reconcile.FirmwareHistoryKey:
		return registry.Spec{
			Identifier: id,
			Key:        key,
			Category:   string(catalog.CategoryFirmware),
			Name:       FirmwareHistoryName,
			Enabled:    true,
		}, true
	}

	d, ok := in.evaluator.Catalog().Lookup(key)
	if !ok {
		return registry.Spec{}, false
	}
	return registry.Spec{
		Identifier:  id,
		Key:         d.Key,
		Category:    string(d.Category),
		Name:        d.Name(),
		Unit:        d.Unit,
		DeviceClass: d.DeviceClass,
		StateClass:  d.StateClass,
		Enabled:     in.enabled[d.Category],
	}, true
}

// publish hands the cycle results to the state publisher, the metric
// writer and the notifier. Failures are logged and never fail the cycle.
func (in *Instance) publish(ctx context.Context, c *cycle) {
	var states []publish.State
	for _, v := range c.views {
		states = append(states, v.Observations...)
	}

	if err := in.states.PublishStates(ctx, states); err != nil {
		in.logger.Warn("publishing states failed", "cycle_id", c.id, "error", err)
	}
	if in.metrics != nil {
		n := in.metrics.WriteStates(ctx, states)
		in.logger.Debug("metric points queued", "cycle_id", c.id, "count", n)
	}

	for _, t := range c.transitions {
		in.recorder.ObserveFirmwareTransition(string(t.Kind))
		in.logger.Info("firmware transition",
			"cycle_id", c.id,
			"device_id", t.DeviceID,
			"device_name", t.DeviceName,
			"previous_version", t.PreviousVersion,
			"version", t.Version,
			"kind", t.Kind,
		)
		if in.metrics != nil {
			in.metrics.WriteTransition(ctx, t)
		}
		if in.notifier != nil {
			if err := in.notifier.NotifyFirmware(ctx, t); err != nil {
				in.logger.Warn("firmware notification failed", "cycle_id", c.id, "device_id", t.DeviceID, "error", err)
			}
		}
	}

	if c.saveNeeded && in.saver != nil {
		in.saver.Schedule()
	}
}

// finish records the cycle outcome, updates health and metrics, and
// publishes the health observation.
func (in *Instance) finish(ctx context.Context, c *cycle, err error) Snapshot {
	finished := in.now()
	duration := finished.Sub(c.started)
	success := err == nil

	snap := Snapshot{
		CycleID:     c.id,
		StartedAt:   c.started,
		Duration:    duration,
		Success:     success,
		Expected:    c.expected.Len(),
		Added:       c.added,
		Removed:     c.removed,
		Departed:    c.departed,
		Transitions: c.transitions,
	}
	if err != nil {
		snap.Error = err.Error()
	}

	in.mu.Lock()
	if c.fetched {
		snap.Devices = c.views
		in.records = c.records
	} else if in.snapshot != nil {
		snap.Devices = in.snapshot.Devices
	}
	if success {
		in.health.lastUpdate = finished
		in.health.updateCount++
		in.health.lastError = ""
	} else {
		in.health.lastError = snap.Error
	}
	in.health.lastSuccess = success
	in.transitions = append(in.transitions, c.transitions...)
	if n := len(in.transitions); n > maxRecentTransitions {
		in.transitions = append([]firmware.Transition(nil), in.transitions[n-maxRecentTransitions:]...)
	}
	in.snapshot = &snap
	in.mu.Unlock()

	in.recorder.ObserveCycle(success, c.started, duration)
	in.recorder.ObserveDelta(c.added, c.removed)
	if success {
		in.recorder.SetInventory(len(c.records), c.expected.Len())
		in.logger.Info("refresh cycle complete",
			"cycle_id", c.id,
			"devices", len(c.records),
			"expected", c.expected.Len(),
			"added", c.added,
			"removed", c.removed,
			"transitions", len(c.transitions),
			"duration_ms", duration.Milliseconds(),
		)
	} else {
		in.logger.Error("refresh cycle failed", "cycle_id", c.id, "error", err)
	}

	in.publishHealth(ctx)
	return snap
}

// publishHealth publishes the coordinator health observation.
func (in *Instance) publishHealth(ctx context.Context) {
	h := in.Health()
	state := publish.State{
		Identifier: in.healthID,
		Key:        reconcile.CoordinatorHealthKey,
		Name:       CoordinatorHealthName,
		Value:      string(h.Status),
		Attributes: h.Attributes(),
		Available:  true,
		Timestamp:  in.now(),
	}
	if err := in.states.PublishStates(ctx, []publish.State{state}); err != nil {
		in.logger.Warn("publishing coordinator health failed", "error", err)
	}
}

func observationState(deviceID string, o catalog.Observation, ts time.Time) publish.State {
	d := o.Descriptor
	s := publish.State{
		Identifier: reconcile.ObservationID(deviceID, d.Key),
		DeviceID:   deviceID,
		Key:        d.Key,
		Category:   string(d.Category),
		Name:       d.Name(),
		Unit:       d.Unit,
		Available:  true,
		Timestamp:  ts,
	}
	if o.HasValue {
		s.Value = o.Value
	}
	return s
}

func (in *Instance) firmwareHistoryState(deviceID string, ts time.Time) publish.State {
	hs := in.tracker.HistoryState(deviceID)
	return publish.State{
		Identifier: reconcile.FirmwareHistoryID(deviceID),
		DeviceID:   deviceID,
		Key:        reconcile.FirmwareHistoryKey,
		Category:   string(catalog.CategoryFirmware),
		Name:       FirmwareHistoryName,
		Value:      hs.Value,
		Attributes: hs.Attributes,
		Available:  true,
		Timestamp:  ts,
	}
}
