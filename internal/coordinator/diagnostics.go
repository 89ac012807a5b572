package coordinator

import (
	"sort"
	"strings"

	"github.com/nerrad567/ringext-core/internal/attrs"
	"github.com/nerrad567/ringext-core/internal/catalog"
	"github.com/nerrad567/ringext-core/internal/device"
)

// RedactedKeys are attribute keys hidden from diagnostics at any depth.
var RedactedKeys = map[string]struct{}{
	"address":      {},
	"latitude":     {},
	"longitude":    {},
	"email":        {},
	"first_name":   {},
	"last_name":    {},
	"location_id":  {},
	"ring_id":      {},
	"owner":        {},
	"shared_users": {},
	"description":  {},
	"time_zone":    {},
}

// Diagnostics is a privacy-redacted dump of what the instance sees.
type Diagnostics struct {
	ConfigEntry     ConfigEntryInfo             `json:"config_entry"`
	TotalEntities   int                         `json:"total_entities"`
	TotalDevices    int                         `json:"total_devices"`
	ModelComparison map[string][]string         `json:"model_comparison"`
	Inconsistencies []Inconsistency             `json:"inconsistencies"`
	Devices         map[string]DeviceDiagnostic `json:"devices"`
	Entities        []EntityInfo                `json:"entities"`
	Health          Health                      `json:"health"`
}

// ConfigEntryInfo describes the configuration instance.
type ConfigEntryInfo struct {
	EntryID string         `json:"entry_id"`
	Data    map[string]any `json:"data"`
}

// Inconsistency lists attribute paths one device lacks compared with other
// devices of the same model.
type Inconsistency struct {
	Model             string   `json:"model"`
	Device            string   `json:"device"`
	MissingAttributes []string `json:"missing_attributes"`
}

// DeviceDiagnostic is the diagnostic view of one device.
type DeviceDiagnostic struct {
	DeviceID       string           `json:"device_id"`
	Name           string           `json:"name"`
	Model          string           `json:"model"`
	Family         device.Family    `json:"family"`
	EntityCount    int              `json:"entity_count"`
	SensorCoverage catalog.Coverage `json:"sensor_coverage"`
	Attrs          attrs.Tree       `json:"attrs"`
}

// EntityInfo is one materialized observation.
type EntityInfo struct {
	Identifier string `json:"unique_id"`
	Name       string `json:"name"`
	Disabled   bool   `json:"disabled"`
}

// Diagnostics builds the report from the devices of the last cycle and the
// registry. Devices are keyed by id; redaction applies to device
// attributes and configuration data.
func (in *Instance) Diagnostics() Diagnostics {
	records := in.Records()
	entities := in.registry.Entities(in.opts.EntryID)

	d := Diagnostics{
		ConfigEntry: ConfigEntryInfo{
			EntryID: in.opts.EntryID,
			Data:    attrs.Redact(in.configData(), RedactedKeys),
		},
		TotalEntities:   len(entities),
		ModelComparison: map[string][]string{},
		Inconsistencies: []Inconsistency{},
		Devices:         make(map[string]DeviceDiagnostic, len(records)),
		Entities:        make([]EntityInfo, 0, len(entities)),
		Health:          in.Health(),
	}

	for _, e := range entities {
		d.Entities = append(d.Entities, EntityInfo{
			Identifier: e.Identifier,
			Name:       e.Name,
			Disabled:   !e.Enabled,
		})
	}

	var models []string
	for _, rec := range records {
		model := rec.Model()
		if model == "" {
			model = "unknown"
		}
		prefix := rec.ID + "_"
		count := 0
		for _, e := range entities {
			if strings.HasPrefix(e.Identifier, prefix) {
				count++
			}
		}

		d.Devices[rec.ID] = DeviceDiagnostic{
			DeviceID:       rec.ID,
			Name:           rec.Name(),
			Model:          model,
			Family:         rec.Family,
			EntityCount:    count,
			SensorCoverage: in.evaluator.Coverage(rec.Attributes),
			Attrs:          attrs.Redact(rec.Attributes, RedactedKeys),
		}
		if _, seen := d.ModelComparison[model]; !seen {
			models = append(models, model)
		}
		d.ModelComparison[model] = append(d.ModelComparison[model], rec.ID)
	}
	d.TotalDevices = len(d.Devices)

	sort.Strings(models)
	for _, model := range models {
		d.Inconsistencies = append(d.Inconsistencies, inconsistencies(model, d.ModelComparison[model], d.Devices)...)
	}
	return d
}

// inconsistencies compares the redacted attribute paths of devices sharing
// a model. Models with a single device have nothing to compare.
func inconsistencies(model string, ids []string, devices map[string]DeviceDiagnostic) []Inconsistency {
	if len(ids) < 2 {
		return nil
	}

	paths := make(map[string]map[string]struct{}, len(ids))
	all := make(map[string]struct{})
	for _, id := range ids {
		set := make(map[string]struct{})
		for _, p := range attrs.Paths(devices[id].Attrs) {
			set[p] = struct{}{}
			all[p] = struct{}{}
		}
		paths[id] = set
	}

	var out []Inconsistency
	for _, id := range ids {
		var missing []string
		for p := range all {
			if _, ok := paths[id][p]; !ok {
				missing = append(missing, p)
			}
		}
		if len(missing) == 0 {
			continue
		}
		sort.Strings(missing)
		out = append(out, Inconsistency{Model: model, Device: id, MissingAttributes: missing})
	}
	return out
}

func (in *Instance) configData() attrs.Tree {
	categories := make([]any, 0, len(in.opts.EnabledCategories))
	for _, c := range in.opts.EnabledCategories {
		categories = append(categories, string(c))
	}
	return attrs.Tree{
		"name":             in.opts.Name,
		"namespace":        in.opts.Namespace,
		"categories":       categories,
		"interval_seconds": int(in.opts.Interval.Seconds()),
	}
}
