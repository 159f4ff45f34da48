package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homesim-core/internal/device"
)

// CreateDeviceRequest is the body of POST /devices.
type CreateDeviceRequest struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Connectivity string `json:"connectivity"`
}

// AdjustRequest is the body of PUT /devices/{id}/adjustable.
type AdjustRequest struct {
	Value *float64 `json:"value"`
}

// handleListDevices returns all devices in display order.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.registry.ListDevices()
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleGetDeviceStatus returns the display summary of a device.
func (s *Server) handleGetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dev.Status())
}

// handleCreateDevice adds a device.
//
// The name is required. An empty type means "other" and unknown types are
// accepted with the generic profile. An empty connectivity means online.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req CreateDeviceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := device.ValidateName(req.Name); err != nil {
		writeValidationError(w, err.Error())
		return
	}
	conn, err := device.ParseConnectivity(req.Connectivity)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	typ := device.ParseDeviceType(req.Type)
	if device.ValidateDeviceType(typ) != nil {
		s.logger.Debug("unknown device type, using generic profile", "type", typ)
	}

	dev := s.registry.AddDevice(strings.TrimSpace(req.Name), typ, conn)
	writeJSON(w, http.StatusCreated, dev)
}

// handleDeleteDevice removes a device by ID.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := device.ParseID(chi.URLParam(r, "id"))
	if err != nil || !s.registry.RemoveDevice(id) {
		writeNotFound(w, "device not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeviceStats returns device registry statistics.
func (s *Server) handleDeviceStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.GetStats())
}

// handleTogglePower flips the power state of a device.
// An offline device yields 409 with the unsuccessful outcome as the body.
func (s *Server) handleTogglePower(w http.ResponseWriter, r *http.Request) {
	id, err := device.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "device not found")
		return
	}

	outcome, err := s.registry.TogglePower(id)
	s.writeOutcome(w, outcome, err)
}

// handleUpdateAdjustable sets the adjustable parameter of a device.
// Out-of-range values are clamped, not rejected.
func (s *Server) handleUpdateAdjustable(w http.ResponseWriter, r *http.Request) {
	id, err := device.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "device not found")
		return
	}

	var req AdjustRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value == nil {
		writeValidationError(w, "value field is required")
		return
	}

	outcome, err := s.registry.UpdateAdjustable(id, *req.Value)
	s.writeOutcome(w, outcome, err)
}

// lookupDevice resolves the {id} path parameter, writing 404 when it does not
// name a device.
func (s *Server) lookupDevice(w http.ResponseWriter, r *http.Request) (*device.Device, bool) {
	id, err := device.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "device not found")
		return nil, false
	}
	dev, err := s.registry.GetDevice(id)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return nil, false
		}
		writeInternalError(w, "failed to get device")
		return nil, false
	}
	return dev, true
}

// writeOutcome maps the result of a device operation to a response.
func (s *Server) writeOutcome(w http.ResponseWriter, outcome device.Outcome, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, outcome)
	case errors.Is(err, device.ErrDeviceNotFound):
		writeNotFound(w, "device not found")
	case errors.Is(err, device.ErrOffline):
		writeJSON(w, http.StatusConflict, outcome)
	case errors.Is(err, device.ErrNoAdjustable), errors.Is(err, device.ErrInvalidValue):
		writeValidationError(w, outcome.Message)
	default:
		s.logger.Error("device operation failed", "error", err)
		writeInternalError(w, "device operation failed")
	}
}
