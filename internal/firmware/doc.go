// Package firmware tracks the firmware version history of every device.
//
// The Tracker keeps, per device, an append-only list of version transitions
// and the current version. Placeholder versions ("", "unavailable",
// "unknown") are ignored and a repeated version is not a transition.
//
// Persistence is explicit. CheckAndUpdate only changes memory; callers take a
// Data snapshot and hand it to a Store, normally through a Saver that writes
// in the background so the refresh cycle never waits on disk.
//
// Thread Safety:
//   - Tracker methods are safe for concurrent use. Mutation happens on the
//     refresh worker; readers (HTTP handlers) take a read lock.
//   - Saver runs a single background goroutine; Schedule never blocks.
package firmware
