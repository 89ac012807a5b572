package reconcile

import "sort"

// Delta is the change needed to turn an actual set into an expected one.
//
// ToAdd groups missing identifiers by owning device, since observations are
// created per device in bulk. The coordinator health identifier is grouped
// under CoordinatorGroup. Identifiers within a group are sorted.
type Delta struct {
	ToAdd    map[string][]string
	ToRemove []string
}

// Reconcile diffs expected against actual. It keeps no state between calls.
func Reconcile(expected, actual Set) Delta {
	d := Delta{
		ToAdd:    make(map[string][]string),
		ToRemove: actual.Minus(expected).Sorted(),
	}

	for _, id := range expected.Minus(actual).Sorted() {
		group := DeviceIDOf(id)
		if KeyOf(id) == CoordinatorHealthKey {
			group = CoordinatorGroup
		}
		d.ToAdd[group] = append(d.ToAdd[group], id)
	}
	return d
}

// Empty reports whether the delta changes nothing.
func (d Delta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// AddCount is the number of identifiers to add across all groups.
func (d Delta) AddCount() int {
	n := 0
	for _, ids := range d.ToAdd {
		n += len(ids)
	}
	return n
}

// Groups returns the add groups in ascending order.
func (d Delta) Groups() []string {
	groups := make([]string, 0, len(d.ToAdd))
	for g := range d.ToAdd {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Apply returns actual with the delta applied. actual is not modified.
func (d Delta) Apply(actual Set) Set {
	out := actual.Clone()
	for _, id := range d.ToRemove {
		delete(out, id)
	}
	for _, ids := range d.ToAdd {
		for _, id := range ids {
			out.Add(id)
		}
	}
	return out
}
