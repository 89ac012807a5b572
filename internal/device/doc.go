// Package device provides the device records the refresh cycle evaluates.
//
// A device snapshot arrives in up to three fragments: the main attribute
// tree, supplemental health attributes, and alerts. A Record carries the
// merged tree (see attrs.Merge) plus the device's identity and family.
//
// # Sources
//
// Two Source implementations exist:
//
//   - Cache subscribes to retained MQTT fragment topics
//     ({prefix}/device/{id}/{attributes|health|alerts}) and serves the latest
//     fragments of every device.
//   - FileSource reads a JSON or YAML snapshot file on every call, for
//     offline runs and the diagnose command.
//
// Records are rebuilt on every Devices call, so callers always look devices
// up by id at read time and never hold references across cycles.
package device
