// Package catalog holds the static table of observation descriptors and the
// evaluator that applies it to a merged device attribute tree.
//
// A descriptor names one observation (a sensor) by key, the dotted attribute
// path it reads, and optional value and availability functions. The built-in
// table is returned by Default and is never mutated after construction.
//
// Usage:
//
//	ev := catalog.NewEvaluator(catalog.Default())
//	for _, key := range ev.Evaluate(tree) {
//	    d, _ := ev.Catalog().Lookup(key)
//	    v, ok := ev.Value(d, tree)
//	    ...
//	}
package catalog
