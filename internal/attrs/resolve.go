package attrs

import "strings"

// Tree is one device's attribute snapshot.
type Tree map[string]any

// AsTree returns v as a Tree when it is a mapping node.
// Both Tree and map[string]any are accepted, since JSON decoding produces
// the latter for nested values.
func AsTree(v any) (Tree, bool) {
	switch m := v.(type) {
	case Tree:
		return m, m != nil
	case map[string]any:
		return Tree(m), m != nil
	default:
		return nil, false
	}
}

// Resolve walks path, split on ".", through t.
//
// At each segment the current node must be a mapping containing the key.
// A non-mapping node before the final segment resolves absent immediately.
//
// Returns:
//   - any: The value at path, possibly nil
//   - bool: false when the path is absent; a present nil returns (nil, true)
func Resolve(t Tree, path string) (any, bool) {
	if t == nil || path == "" {
		return nil, false
	}

	var node any = t
	for segment := range strings.SplitSeq(path, ".") {
		m, isMap := AsTree(node)
		if !isMap {
			return nil, false
		}
		next, found := m[segment]
		if !found {
			return nil, false
		}
		node = next
	}
	return node, true
}

// Exists reports whether path resolves to a present value.
func Exists(t Tree, path string) bool {
	_, ok := Resolve(t, path)
	return ok
}

// Sub returns the mapping at path, or nil when absent or not a mapping.
func Sub(t Tree, path string) Tree {
	v, ok := Resolve(t, path)
	if !ok {
		return nil
	}
	m, _ := AsTree(v)
	return m
}
