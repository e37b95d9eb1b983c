package handlers

import (
	"net/http"

	"github.com/medbridge/medbridge/internal/usage"
)

type AdminHandler struct {
	usage *usage.Service
}

func NewAdminHandler(us *usage.Service) *AdminHandler {
	return &AdminHandler{usage: us}
}

// Usage reports aggregate upstream model spend per provider and model.
func (h *AdminHandler) Usage(w http.ResponseWriter, r *http.Request) {
	if !h.usage.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "usage log not configured (set DATABASE_URL)")
		return
	}

	summaries, err := h.usage.Summaries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"usage": summaries})
}
