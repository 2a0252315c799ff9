package api

import (
	"net/http"
	"strconv"

	"lets-trade-dashboard-go/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SignalHandler serves the signal log pages.
type SignalHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewSignalHandler creates the handler.
func NewSignalHandler(st *store.Store, logger *zap.Logger) *SignalHandler {
	return &SignalHandler{store: st, logger: logger}
}

// RegisterRoutes registers the signal routes.
func (h *SignalHandler) RegisterRoutes(router *mux.Router) {
	signalRouter := router.PathPrefix("/signals").Subrouter()
	signalRouter.HandleFunc("", h.GetSignals).Methods("GET")
	signalRouter.HandleFunc("/stats", h.GetSignalStats).Methods("GET")
	signalRouter.HandleFunc("/{id:[0-9]+}", h.GetSignalByID).Methods("GET")
}

// GetSignals lists signals with filters.
func (h *SignalHandler) GetSignals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := store.SignalFilter{
		Status:     query.Get("status"),
		SignalType: query.Get("signal_type"),
		StockCode:  query.Get("stock_code"),
		Limit:      parseIntParam(query.Get("limit"), 100),
		Offset:     parseIntParam(query.Get("offset"), 0),
	}
	if raw := query.Get("strategy_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil {
			sid := uint(id)
			filter.StrategyID = &sid
		}
	}

	signals, total, err := h.store.ListSignals(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list signals", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list signals")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":  signals,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetSignalByID fetches one signal.
func (h *SignalHandler) GetSignalByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid signal id")
		return
	}

	signal, err := h.store.GetSignal(r.Context(), uint(id))
	if err != nil {
		writeError(w, http.StatusNotFound, "signal not found")
		return
	}
	writeJSON(w, http.StatusOK, signal)
}

// GetSignalStats returns the aggregate signal counts.
func (h *SignalHandler) GetSignalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetSignalStats(r.Context())
	if err != nil {
		h.logger.Error("failed to compute signal stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
