// Package attrs handles the untyped attribute trees reported for each device.
//
// A Tree is a nested mapping decoded from JSON: values are scalars, nested
// mappings or sequences. Sequences are opaque leaves and are never
// traversed. Lookups never fail; a missing key or a type mismatch along a
// dotted path resolves to absent, reported as ok == false.
//
// A key that is present with a nil value resolves as present. Availability
// checks therefore treat it as existing, while the numeric, boolean and
// string coercions treat nil as absent.
package attrs
