// Package api implements the read-mostly HTTP API of a ringext instance.
//
// It exposes the last refresh cycle, per-device observations, firmware
// history and a redacted diagnostics dump, plus a Prometheus scrape
// endpoint. The only write operation is POST /api/v1/refresh, which queues
// a refresh cycle on the coordinator.
//
// # Routes
//
//	GET  /api/v1/health
//	GET  /api/v1/cycle
//	GET  /api/v1/devices
//	GET  /api/v1/devices/{id}
//	GET  /api/v1/devices/{id}/firmware
//	GET  /api/v1/firmware/changes?limit=N
//	GET  /api/v1/firmware/changelog?limit=N
//	GET  /api/v1/firmware/summary
//	GET  /api/v1/diagnostics
//	POST /api/v1/refresh
//	GET  /metrics
//
// Handlers never block on a refresh cycle; they read the coordinator's
// published snapshot.
package api
