package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Version is stamped at build time.
var Version = "dev"

// SystemHandler serves health and version.
type SystemHandler struct {
	logger  *zap.Logger
	started time.Time
}

// NewSystemHandler creates the handler.
func NewSystemHandler(logger *zap.Logger) *SystemHandler {
	return &SystemHandler{logger: logger, started: time.Now()}
}

// RegisterRoutes registers the system routes.
func (h *SystemHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/system/health", h.Health).Methods("GET")
	router.HandleFunc("/system/version", h.GetVersion).Methods("GET")
}

// Health reports liveness.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
	})
}

// GetVersion reports the server version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}
