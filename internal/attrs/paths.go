package attrs

import "sort"

// Redacted replaces values removed by Redact.
const Redacted = "**REDACTED**"

// Paths returns the dotted path of every leaf in t, sorted. Mappings are
// descended and contribute no path of their own, so an empty mapping
// contributes nothing. Sequences are leaves.
func Paths(t Tree) []string {
	var out []string
	collectPaths(t, "", &out)
	sort.Strings(out)
	return out
}

func collectPaths(t Tree, prefix string, out *[]string) {
	for k, v := range t {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if sub, ok := AsTree(v); ok {
			collectPaths(sub, full, out)
			continue
		}
		*out = append(*out, full)
	}
}

// Redact returns a copy of t with the value of every key in keys replaced
// by Redacted, at any depth. Sequences of mappings are redacted element-wise.
func Redact(t Tree, keys map[string]struct{}) Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for k, v := range t {
		if _, hidden := keys[k]; hidden {
			out[k] = Redacted
			continue
		}
		out[k] = redactValue(v, keys)
	}
	return out
}

func redactValue(v any, keys map[string]struct{}) any {
	if sub, ok := AsTree(v); ok {
		return map[string]any(Redact(sub, keys))
	}
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		for i, e := range list {
			out[i] = redactValue(e, keys)
		}
		return out
	}
	return v
}
