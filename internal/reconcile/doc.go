// Package reconcile computes which observations should exist and how the
// materialized set must change to match.
//
// Every observation is identified by a string key. Device observations are
// "{deviceID}_{key}", the per-device firmware history is
// "{deviceID}_firmware_history" and the single coordinator health
// observation is "{entryID}_coordinator_health".
//
// All functions here are pure set algebra over their arguments. Nothing is
// cached between calls; the expected set is rebuilt from current inputs on
// every refresh cycle.
package reconcile
