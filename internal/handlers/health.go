package handlers

import "net/http"

// HandleHealthz - GET /healthz
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"service": "dunetube-api",
	})
}
