package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zkfleet/zkfleet-core/internal/attendance"
	"github.com/zkfleet/zkfleet-core/internal/fleet"
)

// handleListDevices returns every registry entry.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": s.registry.Devices(),
		"count":   s.registry.Len(),
	})
}

// handleGetDevice returns one registry entry by ip.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	dev, err := s.registry.ByIP(ip)
	if err != nil {
		if errors.Is(err, fleet.ErrDeviceNotFound) {
			writeNotFound(w, "device not found: "+ip)
			return
		}
		writeInternalError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleDeviceUsers returns the stored roster for one device, optionally
// filtered by ?user_id= (exact), ?name= (substring) or ?admins=1.
func (s *Server) handleDeviceUsers(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	if _, err := s.registry.ByIP(ip); err != nil {
		writeNotFound(w, "device not found: "+ip)
		return
	}

	users, err := s.store.UsersForDevice(r.Context(), ip)
	if err != nil {
		s.logger.Error("loading roster", "ip", ip, "error", err)
		writeInternalError(w, "loading roster failed")
		return
	}

	query := r.URL.Query()
	if userID := query.Get("user_id"); userID != "" {
		users = attendance.FilterByUserID(users, userID)
	}
	if name := query.Get("name"); name != "" {
		users = attendance.FilterByName(users, name)
	}
	if query.Get("admins") == "1" {
		users = attendance.Admins(users)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_ip": ip,
		"users":     users,
		"count":     len(users),
	})
}

// handleDeviceAttendance returns stored punches for one device in timestamp
// order, capped by ?limit=.
func (s *Server) handleDeviceAttendance(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	if _, err := s.registry.ByIP(ip); err != nil {
		writeNotFound(w, "device not found: "+ip)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	events, err := s.store.AttendanceForDevice(r.Context(), ip, limit)
	if err != nil {
		s.logger.Error("loading attendance", "ip", ip, "error", err)
		writeInternalError(w, "loading attendance failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device_ip": ip,
		"events":    events,
		"count":     len(events),
	})
}

// handleSyncUsers triggers a fleet-wide roster sync.
func (s *Server) handleSyncUsers(w http.ResponseWriter, r *http.Request) {
	s.runFleet(w, r, fleet.RunUsers)
}

// handleSyncAttendance triggers a fleet-wide attendance sync.
func (s *Server) handleSyncAttendance(w http.ResponseWriter, r *http.Request) {
	s.runFleet(w, r, fleet.RunAttendance)
}

// runFleet runs one sync over the whole fleet. Runs are serialized; a second
// trigger while one is in flight gets 409 rather than queueing, since the
// caller can simply retry after the current run.
func (s *Server) runFleet(w http.ResponseWriter, r *http.Request, kind fleet.RunKind) {
	if !s.runMu.TryLock() {
		writeError(w, http.StatusConflict, ErrCodeConflict, "a fleet run is already in progress")
		return
	}
	defer s.runMu.Unlock()

	report := s.orchestrator.RunFleet(r.Context(), s.registry.Devices(), kind)
	s.setLastReport(report)
	writeJSON(w, http.StatusOK, report)
}

// handleLatestReport returns the most recent fleet run report.
func (s *Server) handleLatestReport(w http.ResponseWriter, _ *http.Request) {
	report := s.getLastReport()
	if report == nil {
		writeNotFound(w, "no fleet run has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleAttendanceCount returns stored punch counts, fleet-wide or for one
// device via ?ip=.
func (s *Server) handleAttendanceCount(w http.ResponseWriter, r *http.Request) {
	ip := r.URL.Query().Get("ip")
	if ip != "" {
		if _, err := s.registry.ByIP(ip); err != nil {
			writeNotFound(w, "device not found: "+ip)
			return
		}
		count, err := s.store.CountAttendance(r.Context(), ip)
		if err != nil {
			writeInternalError(w, "counting attendance failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"device_ip": ip, "count": count})
		return
	}

	total := 0
	perDevice := make(map[string]int, s.registry.Len())
	for _, dev := range s.registry.Devices() {
		count, err := s.store.CountAttendance(r.Context(), dev.IP)
		if err != nil {
			writeInternalError(w, "counting attendance failed")
			return
		}
		perDevice[dev.IP] = count
		total += count
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": total, "devices": perDevice})
}
