package api

import (
	"encoding/json"
	"net/http"

	"lets-trade-dashboard-go/internal/models"
	"lets-trade-dashboard-go/internal/store"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PortfolioHandler serves the portfolio pages and the bot's sync endpoint.
type PortfolioHandler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewPortfolioHandler creates the handler.
func NewPortfolioHandler(st *store.Store, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{store: st, logger: logger}
}

// RegisterRoutes registers the portfolio routes.
func (h *PortfolioHandler) RegisterRoutes(router *mux.Router) {
	portfolioRouter := router.PathPrefix("/portfolio").Subrouter()
	portfolioRouter.HandleFunc("", h.GetPortfolio).Methods("GET")
	portfolioRouter.HandleFunc("/summary", h.GetSummary).Methods("GET")
	portfolioRouter.HandleFunc("/sync", h.SyncPortfolio).Methods("POST")
}

// GetPortfolio lists positions.
func (h *PortfolioHandler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseIntParam(query.Get("limit"), 100)
	offset := parseIntParam(query.Get("offset"), 0)
	orderBy := query.Get("order_by")
	ascending := query.Get("ascending") == "true"

	positions, total, err := h.store.ListPositions(r.Context(), orderBy, ascending, limit, offset)
	if err != nil {
		h.logger.Error("failed to list positions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list portfolio")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"items":  positions,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetSummary returns the aggregate portfolio view.
func (h *PortfolioHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.GetPortfolioSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to aggregate portfolio", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// SyncPortfolio replaces the portfolio with the snapshot posted by the bot.
func (h *PortfolioHandler) SyncPortfolio(w http.ResponseWriter, r *http.Request) {
	var snapshot []models.Position
	if err := json.NewDecoder(r.Body).Decode(&snapshot); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.store.SyncPositions(r.Context(), snapshot)
	if err != nil {
		h.logger.Error("portfolio sync failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "portfolio sync failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
