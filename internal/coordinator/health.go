package coordinator

import (
	"fmt"
	"math"
	"time"
)

// Status is the coordinator health status.
type Status string

// Health statuses.
const (
	StatusHealthy  Status = "Healthy"
	StatusStale    Status = "Stale"
	StatusCritical Status = "Critical"
	StatusFailed   Status = "Failed"
	StatusUnknown  Status = "Unknown"
)

// Health thresholds, measured from the last successful cycle.
const (
	HealthyThreshold = 10 * time.Minute
	StaleThreshold   = 30 * time.Minute
)

// healthState is what the instance remembers between cycles. lastUpdate and
// updateCount only move on successful cycles.
type healthState struct {
	lastUpdate  time.Time
	updateCount int
	lastSuccess bool
	lastError   string
}

// Health is the evaluated coordinator health.
type Health struct {
	Status                  Status     `json:"status"`
	LastUpdate              *time.Time `json:"last_update"`
	MinutesSinceUpdate      *float64   `json:"minutes_since_update"`
	UpdateCount             int        `json:"update_count"`
	LastUpdateSuccess       bool       `json:"last_update_success"`
	HealthyThresholdMinutes int        `json:"healthy_threshold_minutes"`
	StaleThresholdMinutes   int        `json:"stale_threshold_minutes"`
	StatusDetail            string     `json:"status_detail,omitempty"`
	LastError               string     `json:"last_error,omitempty"`
}

// EvaluateHealth derives the health status at now.
//
// A failed last cycle is Failed regardless of age. Before the first
// successful cycle the status is Unknown. Otherwise the age of the last
// successful cycle selects Healthy (up to 10 minutes), Stale (up to 30) or
// Critical.
func EvaluateHealth(lastUpdate time.Time, updateCount int, lastSuccess bool, now time.Time) Health {
	h := Health{
		Status:                  StatusUnknown,
		UpdateCount:             updateCount,
		LastUpdateSuccess:       lastSuccess,
		HealthyThresholdMinutes: int(HealthyThreshold / time.Minute),
		StaleThresholdMinutes:   int(StaleThreshold / time.Minute),
	}

	age := now.Sub(lastUpdate)
	if !lastUpdate.IsZero() {
		ts := lastUpdate.UTC()
		minutes := math.Round(age.Minutes()*10) / 10
		h.LastUpdate = &ts
		h.MinutesSinceUpdate = &minutes

		switch {
		case age <= HealthyThreshold:
			h.StatusDetail = fmt.Sprintf("Updated %.1f min ago - normal operation", minutes)
		case age <= StaleThreshold:
			h.StatusDetail = fmt.Sprintf("Updated %.1f min ago - updates may be delayed", minutes)
		default:
			h.StatusDetail = fmt.Sprintf("Updated %.1f min ago - coordinator may be stuck", minutes)
		}
	}

	switch {
	case !lastSuccess:
		h.Status = StatusFailed
	case lastUpdate.IsZero():
		h.Status = StatusUnknown
	case age <= HealthyThreshold:
		h.Status = StatusHealthy
	case age <= StaleThreshold:
		h.Status = StatusStale
	default:
		h.Status = StatusCritical
	}
	return h
}

// Attributes renders h as observation attributes.
func (h Health) Attributes() map[string]any {
	out := map[string]any{
		"last_update":               nil,
		"minutes_since_update":      nil,
		"update_count":              h.UpdateCount,
		"last_update_success":       h.LastUpdateSuccess,
		"healthy_threshold_minutes": h.HealthyThresholdMinutes,
		"stale_threshold_minutes":   h.StaleThresholdMinutes,
	}
	if h.LastUpdate != nil {
		out["last_update"] = h.LastUpdate.Format(time.RFC3339Nano)
	}
	if h.MinutesSinceUpdate != nil {
		out["minutes_since_update"] = *h.MinutesSinceUpdate
	}
	if h.StatusDetail != "" {
		out["status_detail"] = h.StatusDetail
	}
	if h.LastError != "" {
		out["last_error"] = h.LastError
	}
	return out
}

// Health evaluates the instance health at the current time.
func (in *Instance) Health() Health {
	in.mu.RLock()
	hs := in.health
	in.mu.RUnlock()

	h := EvaluateHealth(hs.lastUpdate, hs.updateCount, hs.lastSuccess, in.now())
	h.LastError = hs.lastError
	return h
}
