package handler

import "net/http"

// FrameHandler serves the latest frame of a match over plain HTTP.
type FrameHandler struct {
	hub *Hub
}

// NewFrameHandler creates a FrameHandler.
func NewFrameHandler(hub *Hub) *FrameHandler {
	return &FrameHandler{hub: hub}
}

// LatestFrame handles GET /api/v1/matches/{id}/frame.
func (h *FrameHandler) LatestFrame(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	f, ok := h.hub.Latest(id)
	if !ok {
		writeError(w, http.StatusNotFound, "no frame for match "+id)
		return
	}
	writeJSON(w, http.StatusOK, f)
}
