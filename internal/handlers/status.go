package handlers

import (
	"net/http"
	"time"

	"github.com/omega-realm/worldserver/internal/world"
)

type StatusHandler struct {
	reporter world.Reporter
}

func NewStatusHandler(reporter world.Reporter) *StatusHandler {
	return &StatusHandler{reporter: reporter}
}

// GetStatus returns the same summary the status loop logs
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s, err := h.reporter.Stats(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Health is the liveness probe
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
