package handler

import "net/http"

type HealthHandler struct {
	provider string
}

func NewHealthHandler(provider string) *HealthHandler {
	return &HealthHandler{provider: provider}
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"provider": h.provider,
	})
}
