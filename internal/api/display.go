package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pixelforge/ledmatrixd/internal/display"
	"github.com/pixelforge/ledmatrixd/internal/history"
)

// startRequest is the body for POST /api/v1/display/start.
type startRequest struct {
	Asset      string `json:"asset"`
	Brightness *int   `json:"brightness,omitempty"`
}

// brightnessRequest is the body for POST /api/v1/display/brightness.
type brightnessRequest struct {
	Brightness *int `json:"brightness"`
}

// handleStatus returns the supervisor snapshot including the asset list.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.supervisor.Status())
}

// handleDisplayStart starts playback of the requested asset.
func (s *Server) handleDisplayStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Asset == "" {
		writeBadRequest(w, "asset is required")
		return
	}

	if err := s.supervisor.Start(req.Asset, req.Brightness); err != nil {
		switch {
		case errors.Is(err, display.ErrAssetNotFound):
			writeError(w, http.StatusNotFound, ErrCodeNotFound, "asset not found: "+req.Asset)
		case errors.Is(err, display.ErrLaunchFailed):
			writeError(w, http.StatusInternalServerError, ErrCodeLaunchFailed, "failed to launch viewer")
		default:
			writeInternalError(w, "display start failed")
		}
		return
	}

	s.recordHistory(r, &history.Entry{
		Action:     history.ActionStart,
		Asset:      req.Asset,
		Brightness: req.Brightness,
	})

	writeJSON(w, http.StatusOK, s.supervisor.Status())
}

// handleDisplayStop stops playback. Stopping an idle display is fine.
func (s *Server) handleDisplayStop(w http.ResponseWriter, r *http.Request) {
	if err := s.supervisor.Stop(); err != nil {
		writeInternalError(w, "display stop failed")
		return
	}

	s.recordHistory(r, &history.Entry{Action: history.ActionStop})

	writeJSON(w, http.StatusOK, s.supervisor.Status())
}

// handleDisplayBrightness updates the brightness level.
func (s *Server) handleDisplayBrightness(w http.ResponseWriter, r *http.Request) {
	var req brightnessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Brightness == nil {
		writeBadRequest(w, "brightness is required")
		return
	}

	if err := s.supervisor.UpdateBrightness(*req.Brightness); err != nil {
		if errors.Is(err, display.ErrBrightnessRange) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, "brightness must be between 1 and 100")
			return
		}
		writeInternalError(w, "brightness update failed")
		return
	}

	s.recordHistory(r, &history.Entry{
		Action:     history.ActionBrightness,
		Brightness: req.Brightness,
	})

	writeJSON(w, http.StatusOK, s.supervisor.Status())
}

// recordHistory writes a playback history entry. Failures are logged and
// never affect the response.
func (s *Server) recordHistory(r *http.Request, e *history.Entry) {
	if s.history == nil {
		return
	}
	if err := s.history.Create(r.Context(), e); err != nil {
		s.logger.Warn("failed to record playback history",
			"action", e.Action,
			"error", err,
		)
	}
}
