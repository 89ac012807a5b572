package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/ringext-core/internal/coordinator"
	"github.com/nerrad567/ringext-core/internal/firmware"
)

// cycleSummary is the /cycle response: the last snapshot without the
// per-device observations.
type cycleSummary struct {
	CycleID     string                `json:"cycle_id"`
	StartedAt   time.Time             `json:"started_at"`
	DurationMS  int64                 `json:"duration_ms"`
	Success     bool                  `json:"success"`
	Error       string                `json:"error,omitempty"`
	DeviceCount int                   `json:"device_count"`
	Expected    int                   `json:"expected"`
	Added       int                   `json:"added"`
	Removed     int                   `json:"removed"`
	Departed    []string              `json:"departed"`
	Transitions []firmware.Transition `json:"transitions"`
}

func (s *Server) handleCycle(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	departed := snap.Departed
	if departed == nil {
		departed = []string{}
	}
	transitions := snap.Transitions
	if transitions == nil {
		transitions = []firmware.Transition{}
	}
	writeJSON(w, http.StatusOK, cycleSummary{
		CycleID:     snap.CycleID,
		StartedAt:   snap.StartedAt,
		DurationMS:  snap.Duration.Milliseconds(),
		Success:     snap.Success,
		Error:       snap.Error,
		DeviceCount: len(snap.Devices),
		Expected:    snap.Expected,
		Added:       snap.Added,
		Removed:     snap.Removed,
		Departed:    departed,
		Transitions: transitions,
	})
}

func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}

	devices := snap.Devices
	if devices == nil {
		devices = []coordinator.DeviceView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": devices,
		"count":   len(devices),
	})
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, ok := s.coord.Device(id)
	if !ok {
		writeNotFound(w, "device not found")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeviceFirmware returns the firmware history of one device. A device
// that left the account keeps a 404 once its history has been dropped.
func (s *Server) handleDeviceFirmware(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tracker := s.coord.Tracker()

	history := tracker.DeviceHistory(id)
	if _, seen := s.coord.Device(id); !seen && len(history) == 0 {
		writeNotFound(w, "device not found")
		return
	}

	current, _ := tracker.CurrentVersion(id)
	state := tracker.HistoryState(id)
	if history == nil {
		history = []firmware.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"device_id":       id,
		"current_version": current,
		"history":         history,
		"state":           state.Value,
		"attributes":      state.Attributes,
	})
}

func (s *Server) handleFirmwareChanges(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, firmware.DefaultChangelogLimit)
	if !ok {
		return
	}

	changes := s.coord.Tracker().RecentChanges(limit)
	if changes == nil {
		changes = []firmware.Change{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"changes": changes,
		"count":   len(changes),
	})
}

func (s *Server) handleFirmwareChangelog(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, firmware.DefaultChangelogLimit)
	if !ok {
		return
	}
	writeText(w, http.StatusOK, s.coord.Tracker().Changelog(limit)+"\n")
}

func (s *Server) handleFirmwareSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Tracker().Summary())
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Diagnostics())
}

// handleRefresh queues a refresh cycle. It never waits for the cycle;
// "queued" is false when a request was already pending.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	queued := s.coord.Trigger()
	s.logger.Info("refresh requested",
		"queued", queued,
		"request_id", r.Context().Value(ctxKeyRequestID),
	)
	writeJSON(w, http.StatusAccepted, map[string]any{"queued": queued})
}

// snapshot loads the last cycle snapshot, writing a 503 when no cycle has
// completed yet.
func (s *Server) snapshot(w http.ResponseWriter) (coordinator.Snapshot, bool) {
	snap, err := s.coord.Snapshot()
	if errors.Is(err, coordinator.ErrNoSnapshot) {
		writeUnavailable(w, "no refresh cycle has completed yet")
		return coordinator.Snapshot{}, false
	}
	if err != nil {
		writeInternalError(w, "failed to read snapshot")
		return coordinator.Snapshot{}, false
	}
	return snap, true
}

// parseLimit reads the limit query parameter. Zero means no limit.
func parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeBadRequest(w, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}
