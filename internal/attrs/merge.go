package attrs

import (
	"github.com/tiendc/go-deepcopy"
)

// HealthKey and AlertsKey name the sub-trees the merger rewrites.
const (
	HealthKey   = "health"
	AlertsKey   = "alerts"
	alertPrefix = "alert_"
)

// Merge combines the fragments reported for one device into a single tree.
//
//  1. The result starts as a deep copy of base.
//  2. The health sub-tree of base (empty if absent or not a mapping) is
//     overlaid with health; supplemental keys win.
//  3. Each alert is injected into the health sub-tree as "alert_{key}".
//     When alerts is nil, base["alerts"] is used if it is a mapping.
//  4. The health sub-tree is written back under "health" if it is
//     non-empty or base already carried one.
//
// Inputs are never modified.
func Merge(base Tree, health, alerts map[string]any) Tree {
	merged := Clone(base)
	if merged == nil {
		merged = Tree{}
	}

	baseHealth, hadHealth := AsTree(base[HealthKey])
	out := make(map[string]any, len(baseHealth)+len(health)+len(alerts))
	for k, v := range baseHealth {
		out[k] = cloneValue(v)
	}
	for k, v := range health {
		out[k] = cloneValue(v)
	}

	if alerts == nil {
		if a, ok := AsTree(base[AlertsKey]); ok {
			alerts = a
		}
	}
	for k, v := range alerts {
		out[alertPrefix+k] = cloneValue(v)
	}

	if len(out) > 0 || hadHealth {
		merged[HealthKey] = out
	}
	return merged
}

// Clone returns a deep copy of t. Nil stays nil.
func Clone(t Tree) Tree {
	if t == nil {
		return nil
	}
	var dst Tree
	if err := deepcopy.Copy(&dst, &t); err != nil || dst == nil {
		// Fall back to a one-level copy; trees only contain JSON values.
		dst = make(Tree, len(t))
		for k, v := range t {
			dst[k] = cloneValue(v)
		}
	}
	return dst
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Tree:
		return map[string]any(Clone(x))
	case map[string]any:
		return map[string]any(Clone(Tree(x)))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
