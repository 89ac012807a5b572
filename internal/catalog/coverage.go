package catalog

import (
	"sort"

	"github.com/nerrad567/ringext-core/internal/attrs"
)

// Coverage compares the attribute paths a device exposes with the paths
// the catalog knows about.
type Coverage struct {
	TotalAttributes  int      `json:"total_api_attributes"`
	TotalDescriptors int      `json:"total_sensor_definitions"`
	Available        int      `json:"available_sensors"`
	Unavailable      int      `json:"unavailable_sensors"`
	UncoveredPaths   []string `json:"uncovered_attribute_paths"`
	StalePaths       []string `json:"stale_sensor_paths"`
	AvailableKeys    []string `json:"available_sensor_keys"`
}

// Coverage reports which attributes of t have no descriptor and which
// descriptor paths t does not expose.
func (e *Evaluator) Coverage(t attrs.Tree) Coverage {
	leaves := attrs.Paths(t)
	present := make(map[string]struct{}, len(leaves))
	for _, p := range leaves {
		present[p] = struct{}{}
	}

	defined := e.catalog.Paths()
	known := make(map[string]struct{}, len(defined))
	for _, p := range defined {
		known[p] = struct{}{}
	}

	cov := Coverage{
		TotalAttributes:  len(leaves),
		TotalDescriptors: e.catalog.Len(),
		UncoveredPaths:   []string{},
		StalePaths:       []string{},
		AvailableKeys:    e.Evaluate(t),
	}
	if cov.AvailableKeys == nil {
		cov.AvailableKeys = []string{}
	}
	sort.Strings(cov.AvailableKeys)
	cov.Available = len(cov.AvailableKeys)
	cov.Unavailable = cov.TotalDescriptors - cov.Available

	for _, p := range leaves {
		if _, ok := known[p]; !ok {
			cov.UncoveredPaths = append(cov.UncoveredPaths, p)
		}
	}
	for _, p := range defined {
		if _, ok := present[p]; !ok {
			cov.StalePaths = append(cov.StalePaths, p)
		}
	}
	return cov
}
