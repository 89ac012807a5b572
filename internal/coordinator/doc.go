// Package coordinator runs the refresh cycle for one configuration instance.
//
// An Instance owns everything that lives for the lifetime of a configuration
// instance: the churn tracker, the firmware history tracker, the health
// counters and the last cycle snapshot. Nothing is kept in package-level
// state; two instances never share mutable data.
//
// # Refresh cycle
//
// Each cycle runs these steps in order:
//
//  1. Fetch the current devices from the device source.
//  2. Compare device ids with the previous cycle; for every departed device
//     remove its materialized observations and its firmware history.
//  3. Evaluate the catalog against each device and record firmware versions.
//  4. Build the expected identifier set and reconcile it against the
//     registry.
//  5. Apply the delta: removals first, then one add per device group.
//  6. Publish observation states, numeric metrics and firmware events, and
//     schedule a durable save of the firmware history when it changed.
//
// Cycles never overlap. Refresh holds the cycle lock for its whole duration,
// and Run feeds scheduled and manual triggers through a single goroutine.
//
// # Failure handling
//
// A device source error fails the cycle before reconciliation, so
// materialized observations survive a temporarily unreachable source.
// Registry errors are collected; the cycle completes what it can and is
// then reported as failed. Publishing errors are logged only.
package coordinator
